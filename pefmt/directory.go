package pefmt

import "github.com/gogo2464/LIEF/internal/bytestream"

// DirectoryKind names a data-directory slot by its fixed position in
// the table (§3: "Kind is assigned by position in the table, not by
// on-disk content").
type DirectoryKind int

const (
	DirExport DirectoryKind = iota
	DirImport
	DirResource
	DirException
	DirCertificate
	DirBaseReloc
	DirDebug
	DirArchitecture
	DirGlobalPtr
	DirTLS
	DirLoadConfig
	DirBoundImport
	DirIAT
	DirDelayImport
	DirCLRRuntime
	DirReserved
)

var directoryKindNames = [numDataDirs]string{
	"export", "import", "resource", "exception", "certificate",
	"base_relocation", "debug", "architecture", "global_ptr", "tls",
	"load_config", "bound_import", "iat", "delay_import", "clr_runtime",
	"reserved",
}

func (k DirectoryKind) String() string {
	if int(k) < len(directoryKindNames) {
		return directoryKindNames[k]
	}
	return "unknown"
}

// Directory is one decoded {RVA, size} slot, optionally bound to the
// Section whose range contains RVA (§4.5: "attach a weak reference...
// absence is non-fatal").
type Directory struct {
	Kind    DirectoryKind
	RVA     uint32
	Size    uint32
	Section *SectionHeader
}

func (d Directory) present() bool { return d.RVA > 0 }

// decodeDataDirectories reads the fixed-count array immediately after
// the optional header (§4.5). A decode failure on any single slot
// aborts just that slot's read (not the whole parse) and stops
// appending further slots, since the array is contiguous and a short
// read here usually means the buffer ends mid-table; the PE spec's
// "final null entry" is not enforced (§4.5 note) — a non-null last
// slot is still recorded.
func decodeDataDirectories(s *bytestream.Stream, h headers, sections []SectionHeader) ([numDataDirs]Directory, error) {
	var table [numDataDirs]Directory

	for i := 0; i < numDataDirs; i++ {
		offset := h.optHeaderEnd + int64(i)*8
		raw, err := bytestream.Peek[DataDirectoryRaw](s, offset)
		if err != nil {
			return table, ReadError("data_directories", err)
		}

		dir := Directory{Kind: DirectoryKind(i), RVA: raw.RVA, Size: raw.Size}
		if dir.present() {
			dir.Section = sectionFromRVA(sections, raw.RVA)
		}
		table[i] = dir
	}

	return table, nil
}

// rvaToOffset maps an RVA to a file offset via the section table, per
// §6's externally-exposed rva_to_offset contract.
func rvaToOffset(sections []SectionHeader, rva uint32) (uint32, bool) {
	sec := sectionFromRVA(sections, rva)
	if sec == nil {
		return 0, false
	}
	return rva - sec.VirtualAddress + sec.PointerToRawData, true
}

// sectionFromRVA finds the section whose virtual range contains rva.
func sectionFromRVA(sections []SectionHeader, rva uint32) *SectionHeader {
	for i := range sections {
		sec := &sections[i]
		size := sec.VirtualSize
		if size == 0 {
			size = sec.SizeOfRawData
		}
		if rva >= sec.VirtualAddress && rva < sec.VirtualAddress+size {
			return sec
		}
	}
	return nil
}

// sectionFromOffset finds the unique section whose [PointerToRawData,
// +SizeOfRawData) range contains offset, per §6's section_from_offset.
func sectionFromOffset(sections []SectionHeader, offset uint32) *SectionHeader {
	for i := range sections {
		sec := &sections[i]
		if sec.SizeOfRawData == 0 {
			continue
		}
		if offset >= sec.PointerToRawData && offset < sec.PointerToRawData+sec.SizeOfRawData {
			return sec
		}
	}
	return nil
}
