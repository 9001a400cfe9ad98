package bytestream

import "testing"

type fixedRecord struct {
	A uint32
	B uint16
}

func TestPeekDoesNotMoveCursor(t *testing.T) {
	s := New([]byte{1, 0, 0, 0, 2, 0, 3, 0, 0, 0, 4, 0})
	v, err := Peek[fixedRecord](s, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.A != 1 || v.B != 2 {
		t.Fatalf("got %+v", v)
	}
	if s.Pos() != 0 {
		t.Fatalf("Peek moved the cursor to %d", s.Pos())
	}
}

func TestReadAdvancesCursor(t *testing.T) {
	s := New([]byte{1, 0, 0, 0, 2, 0, 3, 0, 0, 0, 4, 0})
	first, err := Read[fixedRecord](s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.A != 1 {
		t.Fatalf("got %+v", first)
	}
	second, err := Read[fixedRecord](s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.A != 3 || second.B != 4 {
		t.Fatalf("got %+v", second)
	}
}

func TestReadOutOfBoundsLeavesCursorUnchanged(t *testing.T) {
	s := New([]byte{1, 0, 0, 0, 2, 0})
	s.SetPos(2)
	if _, err := Read[fixedRecord](s); err == nil {
		t.Fatal("expected a short read error")
	}
	if s.Pos() != 2 {
		t.Fatalf("cursor moved on failed read: %d", s.Pos())
	}
}

func TestPeekStringAtBoundedByBufferEnd(t *testing.T) {
	s := New([]byte{'h', 'i', 0, 'x'})
	str, err := s.PeekStringAt(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if str != "hi" {
		t.Fatalf("got %q", str)
	}

	noTerm := New([]byte{'h', 'i'})
	str, err = noTerm.PeekStringAt(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if str != "hi" {
		t.Fatalf("got %q", str)
	}
}

func TestPeekDataShortRead(t *testing.T) {
	s := New([]byte{1, 2, 3})
	dst := make([]byte, 4)
	if err := s.PeekData(dst, 0, 4); err == nil {
		t.Fatal("expected short read error")
	}
}
