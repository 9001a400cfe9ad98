package machofmt

import "golang.org/x/exp/slices"

// Relocation is a single Mach-O relocation entry. Segment.Relocations
// is kept sorted by Less (§3: "ordered set... used for deterministic
// iteration"), mirroring the total order LIEF's SegmentCommand::KeyCmp
// imposes via Relocation::operator<.
type Relocation struct {
	Address     uint64
	SymbolNum   uint32
	PCRelative  bool
	Length      uint8
	Extern      bool
	RelocType   uint8
}

// Less implements the total order: primarily by Address, then by
// RelocType to break ties deterministically.
func (r Relocation) Less(other Relocation) bool {
	if r.Address != other.Address {
		return r.Address < other.Address
	}
	return r.RelocType < other.RelocType
}

func (r Relocation) Equal(other Relocation) bool {
	return r == other
}

// sortRelocations re-establishes the total order after a mutation.
func sortRelocations(relocs []Relocation) {
	slices.SortFunc(relocs, func(a, b Relocation) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})
}
