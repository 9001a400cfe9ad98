package pefmt

import (
	"github.com/gogo2464/LIEF/internal/bytestream"
)

// ImportEntry is one resolved import: either an ordinal import or a
// (hint, name) import, per §3 "Import Entry".
type ImportEntry struct {
	IATValue    uint64
	RVA         uint32
	IsOrdinal   bool
	Ordinal     uint16
	Hint        uint16
	Name        string
}

// ImportedLibrary groups entries by the DLL that exports them (§3
// "Import groups entries by DLL").
type ImportedLibrary struct {
	Name    string
	Entries []ImportEntry
}

// importDescriptorRaw is the on-disk IMAGE_IMPORT_DESCRIPTOR.
type importDescriptorRaw struct {
	OriginalFirstThunk uint32 // ILT RVA
	TimeDateStamp      uint32
	ForwarderChain     uint32
	NameRVA            uint32
	FirstThunk         uint32 // IAT RVA
}

const importDescriptorSize = 20

// ordinalFlag32/64 mark the high bit of an ILT/IAT slot indicating an
// ordinal import rather than a name import.
const (
	ordinalFlag32 = uint64(1) << 31
	ordinalFlag64 = uint64(1) << 63
)

// parseImports walks the descriptor array starting at dir.RVA (§4.6).
func parseImports(s *bytestream.Stream, b *Binary, dir Directory) ([]ImportedLibrary, error) {
	base, ok := b.RVAToOffset(dir.RVA)
	if !ok {
		return nil, NotFoundError("imports", errRVANotMapped)
	}

	var libraries []ImportedLibrary
	is64 := b.Variant == VariantPE32Plus

	for i := 0; ; i++ {
		descOffset := int64(base) + int64(i)*importDescriptorSize
		desc, err := bytestream.Peek[importDescriptorRaw](s, descOffset)
		if err != nil {
			return libraries, ReadError("imports", err)
		}
		if desc.NameRVA == 0 {
			break // §4.6 step 1: zero name RVA terminates the loop.
		}

		nameOffset, ok := b.RVAToOffset(desc.NameRVA)
		if !ok {
			b.debugf("imports", "dll name RVA not mapped, skipping descriptor")
			continue
		}
		dllName, err := s.PeekStringAt(int64(nameOffset))
		if err != nil {
			b.warn("imports", err)
			continue
		}
		if dllName == "" {
			continue // §4.6 step 2: empty name skips silently.
		}
		if !isValidDLLName(dllName) {
			b.warn("imports", invalidNameErr{kind: "DLL", name: dllName})
			continue
		}

		ilt := desc.OriginalFirstThunk
		if ilt == 0 {
			ilt = desc.FirstThunk
		}
		iltOffset, iltOK := b.RVAToOffset(ilt)
		iatOffset, iatOK := b.RVAToOffset(desc.FirstThunk)
		if !iltOK && !iatOK {
			b.debugf("imports", "descriptor thunk RVAs not mapped, skipping")
			continue
		}

		lib := ImportedLibrary{Name: dllName}
		pointerWidth := int64(4)
		if is64 {
			pointerWidth = 8
		}

		for idx := 0; ; idx++ {
			var iltVal, iatVal uint64
			var err error
			if iltOK {
				iltVal, err = readThunk(s, int64(iltOffset)+int64(idx)*pointerWidth, is64)
				if err != nil {
					iltVal = 0
				}
			}
			if iatOK {
				iatVal, err = readThunk(s, int64(iatOffset)+int64(idx)*pointerWidth, is64)
				if err != nil {
					break
				}
			}
			if iltVal == 0 && iatVal == 0 {
				break // §4.6 step 4.
			}

			data := iltVal
			if data == 0 {
				data = iatVal
			}

			entry := ImportEntry{
				IATValue: iatVal,
				RVA:      desc.FirstThunk + uint32(idx)*uint32(pointerWidth),
			}

			if isOrdinal(data, is64) {
				entry.IsOrdinal = true
				entry.Ordinal = uint16(data & 0xffff)
				lib.Entries = append(lib.Entries, entry)
				continue
			}

			hintNameOffset, ok := b.RVAToOffset(uint32(data))
			if !ok {
				b.debugf("imports", "hint/name RVA not mapped, discarding entry")
				continue
			}
			hint, err := bytestream.Peek[uint16](s, int64(hintNameOffset))
			if err != nil {
				b.warn("imports", err)
				continue
			}
			name, err := s.PeekStringAt(int64(hintNameOffset) + 2)
			if err != nil {
				b.warn("imports", err)
				continue
			}
			if name == "" {
				continue // §4.6 step 6: silent-skip empty names.
			}
			if !isValidImportName(name) {
				b.warn("imports", invalidNameErr{kind: "import", name: name})
				continue
			}
			entry.Hint = hint
			entry.Name = name
			lib.Entries = append(lib.Entries, entry)
		}

		libraries = append(libraries, lib)
	}

	return libraries, nil
}

func readThunk(s *bytestream.Stream, offset int64, is64 bool) (uint64, error) {
	if is64 {
		v, err := bytestream.Peek[uint64](s, offset)
		return v, err
	}
	v, err := bytestream.Peek[uint32](s, offset)
	return uint64(v), err
}

func isOrdinal(data uint64, is64 bool) bool {
	if is64 {
		return data&ordinalFlag64 != 0
	}
	return data&ordinalFlag32 != 0
}

// isValidDLLName implements §4.6 step 2: length >= 4 and every byte
// printable.
func isValidDLLName(name string) bool {
	if len(name) < 4 {
		return false
	}
	return isPrintable(name)
}

// isValidImportName implements §4.6 step 6's "valid import name" rule,
// reusing the same printability bar as a DLL name.
func isValidImportName(name string) bool {
	return isPrintable(name)
}

func isPrintable(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

type invalidNameErr struct {
	kind string
	name string
}

func (e invalidNameErr) Error() string {
	return "invalid " + e.kind + " name: " + e.name
}

var errRVANotMapped = notMappedErr{}

type notMappedErr struct{}

func (notMappedErr) Error() string { return "RVA does not fall inside any section" }
