package pefmt

import "github.com/gogo2464/LIEF/internal/bytestream"

// DebugEntry is one fixed-layout IMAGE_DEBUG_DIRECTORY record. CodeView
// and PDB payloads are intentionally not decoded (§E "Debug Directory",
// explicit non-goal: "validating semantic correctness... beyond what
// the parser itself needs").
type DebugEntry struct {
	Type      uint32
	Timestamp uint32
	RVA       uint32
	Size      uint32
}

type debugDirectoryRaw struct {
	Characteristics  uint32
	TimeDateStamp    uint32
	MajorVersion     uint16
	MinorVersion     uint16
	Type             uint32
	SizeOfData       uint32
	AddressOfRawData uint32
	PointerToRawData uint32
}

const debugDirectoryRawSize = 28

// parseDebugDirectory decodes one IMAGE_DEBUG_DIRECTORY per entry; the
// array length is dir.Size / debugDirectoryRawSize (§E).
func parseDebugDirectory(s *bytestream.Stream, b *Binary, dir Directory) ([]DebugEntry, error) {
	base, ok := b.RVAToOffset(dir.RVA)
	if !ok {
		return nil, NotFoundError("debug", errRVANotMapped)
	}

	count := int(dir.Size) / debugDirectoryRawSize
	entries := make([]DebugEntry, 0, count)
	for i := 0; i < count; i++ {
		raw, err := bytestream.Peek[debugDirectoryRaw](s, int64(base)+int64(i)*debugDirectoryRawSize)
		if err != nil {
			return entries, ReadError("debug", err)
		}
		entries = append(entries, DebugEntry{
			Type:      raw.Type,
			Timestamp: raw.TimeDateStamp,
			RVA:       raw.AddressOfRawData,
			Size:      raw.SizeOfData,
		})
	}

	return entries, nil
}
