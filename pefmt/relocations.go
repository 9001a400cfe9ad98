package pefmt

import "github.com/gogo2464/LIEF/internal/bytestream"

// BaseRelocation is one fixup entry inside an IMAGE_BASE_RELOCATION
// block (§E "Base Relocations").
type BaseRelocation struct {
	PageRVA uint32
	Type    uint8
	Offset  uint16
}

type baseRelocationBlockHeader struct {
	PageRVA     uint32
	BlockSize   uint32
}

const baseRelocationBlockHeaderSize = 8

// parseBaseRelocations walks IMAGE_BASE_RELOCATION blocks, stopping at
// a zero-sized block (§E).
func parseBaseRelocations(s *bytestream.Stream, b *Binary, dir Directory) ([]BaseRelocation, error) {
	base, ok := b.RVAToOffset(dir.RVA)
	if !ok {
		return nil, NotFoundError("relocations", errRVANotMapped)
	}

	var relocs []BaseRelocation
	offset := int64(base)
	end := int64(base) + int64(dir.Size)

	for offset < end {
		header, err := bytestream.Peek[baseRelocationBlockHeader](s, offset)
		if err != nil {
			return relocs, ReadError("relocations", err)
		}
		if header.BlockSize == 0 {
			break
		}

		entryCount := (int(header.BlockSize) - baseRelocationBlockHeaderSize) / 2
		for i := 0; i < entryCount; i++ {
			entry, err := bytestream.Peek[uint16](s, offset+baseRelocationBlockHeaderSize+int64(i)*2)
			if err != nil {
				break
			}
			relocs = append(relocs, BaseRelocation{
				PageRVA: header.PageRVA,
				Type:    uint8(entry >> 12),
				Offset:  entry & 0x0fff,
			})
		}

		offset += int64(header.BlockSize)
	}

	return relocs, nil
}
