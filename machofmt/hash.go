package machofmt

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// structuralHash derives a fixed-size digest from every semantic field
// of a Segment, including its section list content, backing Segment
// equality per §4.3 ("structural hash... derived from all semantic
// fields including section list content").
func structuralHash(s *Segment) [32]byte {
	h, _ := blake2b.New256(nil)

	write64 := func(v uint64) {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], v)
		h.Write(b[:])
	}
	write32 := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		h.Write(b[:])
	}

	h.Write([]byte(s.name))
	write32(uint32(s.command))
	write64(s.virtualAddress)
	write64(s.virtualSize)
	write64(s.fileOffset)
	write64(s.fileSize)
	write32(s.maxProtection)
	write32(s.initProtection)
	write32(s.flags)
	write32(s.nbSectionsDeclared)
	h.Write(s.data)

	for _, sec := range s.sections {
		h.Write([]byte(sec.Name))
		h.Write([]byte(sec.SegmentName))
		write64(sec.VirtualAddr)
		write64(sec.Size)
		write64(sec.Offset)
		write32(sec.Align)
		write32(sec.Flags)
		h.Write(sec.Content)
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
