package machofmt

// Section is a named sub-range inside a Segment. It exists only inside
// exactly one Segment's Sections slice; the back-reference to that
// Segment is non-owning (§9: "never a strong cyclic owner").
type Section struct {
	Name          string
	SegmentName   string
	VirtualAddr   uint64
	Size          uint64
	Offset        uint64
	Align         uint32
	RelocOffset   uint32
	NumRelocs     uint32
	Flags         uint32
	Reserved1     uint32
	Reserved2     uint32
	Reserved3     uint32
	Content       []byte

	segment *Segment
}

// Segment returns the owning Segment, or nil if this Section has not
// been inserted into one yet.
func (s *Section) Segment() *Segment { return s.segment }

// Equal reports whether two sections have the same name, segment name,
// virtual address, size, offset, alignment, flags and content. The
// back-reference to the owning Segment is not compared, nor are
// RelocOffset, NumRelocs and the Reserved fields.
func (s *Section) Equal(other *Section) bool {
	if s == other {
		return true
	}
	if other == nil {
		return false
	}
	if s.Name != other.Name || s.SegmentName != other.SegmentName {
		return false
	}
	if s.VirtualAddr != other.VirtualAddr || s.Size != other.Size || s.Offset != other.Offset {
		return false
	}
	if s.Align != other.Align || s.Flags != other.Flags {
		return false
	}
	if len(s.Content) != len(other.Content) {
		return false
	}
	for i := range s.Content {
		if s.Content[i] != other.Content[i] {
			return false
		}
	}
	return true
}

func (s *Section) clone() *Section {
	cp := *s
	cp.segment = nil
	cp.Content = append([]byte(nil), s.Content...)
	return &cp
}

func decodeSection32(raw section32) *Section {
	return &Section{
		Name:        stripNull(raw.SectName[:]),
		SegmentName: stripNull(raw.SegName[:]),
		VirtualAddr: uint64(raw.Addr),
		Size:        uint64(raw.Size),
		Offset:      uint64(raw.Offset),
		Align:       raw.Align,
		RelocOffset: raw.RelOff,
		NumRelocs:   raw.NReloc,
		Flags:       raw.Flags,
		Reserved1:   raw.Reserved1,
		Reserved2:   raw.Reserved2,
	}
}

func decodeSection64(raw section64) *Section {
	return &Section{
		Name:        stripNull(raw.SectName[:]),
		SegmentName: stripNull(raw.SegName[:]),
		VirtualAddr: raw.Addr,
		Size:        raw.Size,
		Offset:      uint64(raw.Offset),
		Align:       raw.Align,
		RelocOffset: raw.RelOff,
		NumRelocs:   raw.NReloc,
		Flags:       raw.Flags,
		Reserved1:   raw.Reserved1,
		Reserved2:   raw.Reserved2,
		Reserved3:   raw.Reserved3,
	}
}
