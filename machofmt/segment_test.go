package machofmt

import (
	"bytes"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aaaSection(n int) Section {
	return Section{Content: bytes.Repeat([]byte{0xAA}, n)}
}

func bbbSection(n int) Section {
	return Section{Content: bytes.Repeat([]byte{0xBB}, n)}
}

// S1: happy path single insert.
func TestAddSectionHappyPath(t *testing.T) {
	seg := NewSegment("__TEXT", nil)
	seg.SetVirtualAddress(0x1000)

	inserted := seg.AddSection(aaaSection(16))

	require.Equal(t, uint64(16), seg.FileSize())
	assert.Equal(t, uint64(0), inserted.Offset)
	assert.Equal(t, uint64(0x1000), inserted.VirtualAddr)
	assert.Equal(t, bytes.Repeat([]byte{0xAA}, 16), seg.Data()[0:16])
	assert.Len(t, seg.Sections(), 1)
}

// S2: two back-to-back inserts.
func TestAddSectionTwoInserts(t *testing.T) {
	seg := NewSegment("__TEXT", nil)
	seg.SetVirtualAddress(0x1000)

	seg.AddSection(aaaSection(16))
	second := seg.AddSection(bbbSection(8))

	assert.Equal(t, uint64(24), seg.FileSize())
	assert.Equal(t, uint64(16), second.Offset)
	assert.Equal(t, uint64(0x1010), second.VirtualAddr)
}

// S3: clone equality and independence.
func TestCloneEqualityAndIndependence(t *testing.T) {
	seg := NewSegment("__TEXT", nil)
	seg.AddSection(aaaSection(4))

	clone := seg.Clone()
	assert.True(t, seg.Equal(clone), diffSegments(t, seg, clone))

	clone.SetName("__DATA")
	assert.Equal(t, "__TEXT", seg.Name())
	assert.False(t, seg.Equal(clone))
}

func diffSegments(t *testing.T, a, b *Segment) string {
	t.Helper()
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a.String()),
		B:        difflib.SplitLines(b.String()),
		FromFile: "a",
		ToFile:   "b",
		Context:  2,
	})
	if err != nil {
		return "<diff error>"
	}
	return diff
}

func TestCloneDeepCopiesSections(t *testing.T) {
	seg := NewSegment("__TEXT", nil)
	seg.AddSection(aaaSection(4))

	clone := seg.Clone()
	clone.Sections()[0].Name = "renamed"

	assert.NotEqual(t, "renamed", seg.Sections()[0].Name)
}

func TestCloneDeepCopiesRelocations(t *testing.T) {
	seg := NewSegment("__TEXT", nil)
	seg.AddRelocation(Relocation{Address: 4})
	seg.AddRelocation(Relocation{Address: 1})

	require.Len(t, seg.Relocations(), 2)
	assert.Equal(t, uint64(1), seg.Relocations()[0].Address, "relocations must stay sorted by address")

	clone := seg.Clone()
	clone.AddRelocation(Relocation{Address: 99})
	assert.Len(t, seg.Relocations(), 2, "mutating the clone must not affect the source")
}

func TestHasAndHasSection(t *testing.T) {
	seg := NewSegment("__TEXT", nil)
	inserted := seg.AddSection(Section{Name: "__text", Content: []byte{1, 2, 3}})

	assert.True(t, seg.Has(inserted))
	assert.True(t, seg.HasSection("__text"))
	assert.False(t, seg.HasSection("__data"))
}

func TestRemoveAllSectionsLeavesDataUntouched(t *testing.T) {
	seg := NewSegment("__TEXT", nil)
	seg.AddSection(aaaSection(16))
	seg.SetNumberOfSectionsDeclared(1)

	dataBefore := len(seg.Data())
	seg.RemoveAllSections()

	assert.Empty(t, seg.Sections())
	assert.Equal(t, uint32(0), seg.NumberOfSectionsDeclared())
	assert.Equal(t, dataBefore, len(seg.Data()), "data must not be truncated")
}

func TestAddSectionNeverUpdatesDeclaredCount(t *testing.T) {
	seg := NewSegment("__TEXT", nil)
	seg.AddSection(aaaSection(4))
	seg.AddSection(bbbSection(4))

	assert.Equal(t, uint32(0), seg.NumberOfSectionsDeclared())
	seg.SyncDeclaredSectionCount()
	assert.Equal(t, uint32(2), seg.NumberOfSectionsDeclared())
}

func TestInvariantSectionRangeWithinSegment(t *testing.T) {
	seg := NewSegment("__TEXT", nil)
	seg.SetFileOffset(0x1000)
	seg.AddSection(aaaSection(16))
	seg.AddSection(bbbSection(8))

	for _, sec := range seg.Sections() {
		assert.GreaterOrEqual(t, sec.Offset, seg.FileOffset())
		assert.LessOrEqual(t, sec.Offset+sec.Size, seg.FileOffset()+seg.FileSize())
		relative := sec.Offset - seg.FileOffset()
		assert.Equal(t, sec.Content, seg.Data()[relative:relative+sec.Size])
	}
}
