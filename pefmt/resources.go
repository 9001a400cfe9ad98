package pefmt

import "github.com/gogo2464/LIEF/internal/bytestream"

// ResourceEntry is one immediate child of the root resource directory
// (§E "Resources": "one level only").
type ResourceEntry struct {
	Name        string
	ID          uint32
	IsDirectory bool
}

// ResourceDirectory is the root IMAGE_RESOURCE_DIRECTORY header plus its
// immediate named/ID entries. The tree is not recursed further.
type ResourceDirectory struct {
	Characteristics uint32
	TimeDateStamp   uint32
	Entries         []ResourceEntry
}

type resourceDirectoryRaw struct {
	Characteristics     uint32
	TimeDateStamp        uint32
	MajorVersion         uint16
	MinorVersion         uint16
	NumberOfNamedEntries uint16
	NumberOfIDEntries    uint16
}

const resourceDirectoryRawSize = 16

type resourceDirectoryEntryRaw struct {
	NameOrID     uint32
	OffsetToData uint32
}

const resourceDirectoryEntryRawSize = 8

const resourceNameIsStringFlag = uint32(1) << 31
const resourceDataIsDirectoryFlag = uint32(1) << 31

// parseResources decodes the root directory header and its immediate
// entries only (§E).
func parseResources(s *bytestream.Stream, b *Binary, dir Directory) (*ResourceDirectory, error) {
	base, ok := b.RVAToOffset(dir.RVA)
	if !ok {
		return nil, NotFoundError("resources", errRVANotMapped)
	}

	raw, err := bytestream.Peek[resourceDirectoryRaw](s, int64(base))
	if err != nil {
		return nil, ReadError("resources", err)
	}

	rd := &ResourceDirectory{Characteristics: raw.Characteristics, TimeDateStamp: raw.TimeDateStamp}
	total := int(raw.NumberOfNamedEntries) + int(raw.NumberOfIDEntries)

	for i := 0; i < total; i++ {
		entryOffset := int64(base) + resourceDirectoryRawSize + int64(i)*resourceDirectoryEntryRawSize
		entry, err := bytestream.Peek[resourceDirectoryEntryRaw](s, entryOffset)
		if err != nil {
			break
		}

		re := ResourceEntry{IsDirectory: entry.OffsetToData&resourceDataIsDirectoryFlag != 0}
		if entry.NameOrID&resourceNameIsStringFlag != 0 {
			nameOffset := int64(base) + int64(entry.NameOrID&^resourceNameIsStringFlag)
			if length, err := bytestream.Peek[uint16](s, nameOffset); err == nil {
				buf := make([]byte, int(length)*2)
				if err := s.PeekData(buf, nameOffset+2, len(buf)); err == nil {
					re.Name = utf16ToASCII(buf)
				}
			}
		} else {
			re.ID = entry.NameOrID
		}

		rd.Entries = append(rd.Entries, re)
	}

	return rd, nil
}

// utf16ToASCII strips the high byte of each UTF-16LE code unit. Good
// enough for the resource type/name strings this sub-parser surfaces;
// full UTF-16 decoding is out of scope for a presence-level view.
func utf16ToASCII(b []byte) string {
	out := make([]byte, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		out = append(out, b[i])
	}
	return string(out)
}
