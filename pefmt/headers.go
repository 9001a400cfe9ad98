package pefmt

import (
	"fmt"

	"github.com/gogo2464/LIEF/internal/bytestream"
)

// Variant discriminates the PE32 and PE32+ optional-header layouts, per
// §4.4's `parse<Variant>()` signature.
type Variant int

const (
	VariantPE32 Variant = iota
	VariantPE32Plus
)

const (
	dosMagic        = 0x5A4D // "MZ"
	peSignature     = 0x00004550
	magicPE32       = 0x010b
	magicPE32Plus   = 0x020b
	peOffsetField   = 0x3C
	numDataDirs     = 16 // §9 Open Question: canonical PE value.
)

// DOSHeader is the fixed 64-byte record at file offset 0. The stub
// bytes between this header and PEOffset are not decoded.
type DOSHeader struct {
	Magic      uint16
	LastPage   uint16
	PageCount  uint16
	ReloCount  uint16
	HeaderSize uint16
	MinAlloc   uint16
	MaxAlloc   uint16
	InitSS     uint16
	InitSP     uint16
	Checksum   uint16
	InitIP     uint16
	InitCS     uint16
	RelocTable uint16
	Overlay    uint16
	Reserved1  [4]uint16
	OEMID      uint16
	OEMInfo    uint16
	Reserved2  [10]uint16
	PEOffset   uint32
}

// FileHeader is the COFF file header immediately following the 4-byte
// "PE\0\0" signature.
type FileHeader struct {
	Machine              uint16
	NumberOfSections     uint16
	TimeDateStamp        uint32
	PointerToSymbolTable uint32
	NumberOfSymbols      uint32
	SizeOfOptionalHeader uint16
	Characteristics      uint16
}

// DataDirectoryRaw is the on-disk {RVA, size} pair, decoded verbatim
// before being wrapped into a Directory (see directory.go).
type DataDirectoryRaw struct {
	RVA  uint32
	Size uint32
}

// OptionalHeader32 is the PE32 optional header, not including its
// trailing data-directory array (decoded separately, §4.5).
type OptionalHeader32 struct {
	Magic                       uint16
	MajorLinkerVersion          uint8
	MinorLinkerVersion          uint8
	SizeOfCode                  uint32
	SizeOfInitializedData       uint32
	SizeOfUninitializedData     uint32
	AddressOfEntryPoint         uint32
	BaseOfCode                  uint32
	BaseOfData                  uint32
	ImageBase                   uint32
	SectionAlignment            uint32
	FileAlignment               uint32
	MajorOperatingSystemVersion uint16
	MinorOperatingSystemVersion uint16
	MajorImageVersion           uint16
	MinorImageVersion           uint16
	MajorSubsystemVersion       uint16
	MinorSubsystemVersion       uint16
	Win32VersionValue           uint32
	SizeOfImage                 uint32
	SizeOfHeaders               uint32
	CheckSum                    uint32
	Subsystem                   uint16
	DllCharacteristics          uint16
	SizeOfStackReserve          uint32
	SizeOfStackCommit           uint32
	SizeOfHeapReserve           uint32
	SizeOfHeapCommit            uint32
	LoaderFlags                 uint32
	NumberOfRvaAndSizes         uint32
}

func (h OptionalHeader32) imageBase() uint64 { return uint64(h.ImageBase) }

// OptionalHeader64 is the PE32+ optional header.
type OptionalHeader64 struct {
	Magic                       uint16
	MajorLinkerVersion          uint8
	MinorLinkerVersion          uint8
	SizeOfCode                  uint32
	SizeOfInitializedData       uint32
	SizeOfUninitializedData     uint32
	AddressOfEntryPoint         uint32
	BaseOfCode                  uint32
	ImageBase                   uint64
	SectionAlignment            uint32
	FileAlignment               uint32
	MajorOperatingSystemVersion uint16
	MinorOperatingSystemVersion uint16
	MajorImageVersion           uint16
	MinorImageVersion           uint16
	MajorSubsystemVersion       uint16
	MinorSubsystemVersion       uint16
	Win32VersionValue           uint32
	SizeOfImage                 uint32
	SizeOfHeaders               uint32
	CheckSum                    uint32
	Subsystem                   uint16
	DllCharacteristics          uint16
	SizeOfStackReserve          uint64
	SizeOfStackCommit           uint64
	SizeOfHeapReserve           uint64
	SizeOfHeapCommit            uint64
	LoaderFlags                 uint32
	NumberOfRvaAndSizes         uint32
}

func (h OptionalHeader64) imageBase() uint64 { return h.ImageBase }

// SectionHeader is the on-disk IMAGE_SECTION_HEADER record.
type SectionHeader struct {
	Name                 [8]byte
	VirtualSize          uint32
	VirtualAddress       uint32
	SizeOfRawData        uint32
	PointerToRawData     uint32
	PointerToRelocations uint32
	PointerToLineNumbers uint32
	NumberOfRelocations  uint16
	NumberOfLineNumbers  uint16
	Characteristics      uint32
}

// NameString returns the NUL-terminated section name (§4.2: never
// interpret semantics beyond the byte layout; truncate at the first NUL).
func (h SectionHeader) NameString() string {
	for i, b := range h.Name {
		if b == 0 {
			return string(h.Name[:i])
		}
	}
	return string(h.Name[:])
}

// headers groups the decoded fixed-layout records parse_headers<Variant>
// produces, before any of steps 2-7 of §4.4 run.
type headers struct {
	dos     DOSHeader
	file    FileHeader
	variant Variant
	opt32   OptionalHeader32
	opt64   OptionalHeader64
	// optHeaderEnd is the absolute offset immediately after the optional
	// header's fixed fields, where the data directory array begins.
	optHeaderEnd int64
}

func (h headers) imageBase() uint64 {
	if h.variant == VariantPE32Plus {
		return h.opt64.imageBase()
	}
	return h.opt32.imageBase()
}

func (h headers) numberOfRvaAndSizes() uint32 {
	if h.variant == VariantPE32Plus {
		return h.opt64.NumberOfRvaAndSizes
	}
	return h.opt32.NumberOfRvaAndSizes
}

// parseHeaders is §4.4 step 1: the only step whose failure is fatal.
// It decodes the DOS header, validates the "MZ"/"PE\0\0" signatures,
// reads the COFF file header, then picks and reads the PE32 or PE32+
// optional header based on its magic.
func parseHeaders(s *bytestream.Stream) (headers, error) {
	var h headers

	dos, err := bytestream.Peek[DOSHeader](s, 0)
	if err != nil {
		return h, ParsingError("parse_headers.dos", err)
	}
	if dos.Magic != dosMagic {
		return h, ParsingError("parse_headers.dos", fmt.Errorf("bad DOS magic 0x%x", dos.Magic))
	}
	h.dos = dos

	sigOffset := int64(dos.PEOffset)
	sig, err := bytestream.Peek[uint32](s, sigOffset)
	if err != nil {
		return h, ParsingError("parse_headers.signature", err)
	}
	if sig != peSignature {
		return h, ParsingError("parse_headers.signature", fmt.Errorf("bad PE signature 0x%x", sig))
	}

	fileHeaderOffset := sigOffset + 4
	file, err := bytestream.Peek[FileHeader](s, fileHeaderOffset)
	if err != nil {
		return h, ParsingError("parse_headers.file_header", err)
	}
	h.file = file

	optOffset := fileHeaderOffset + fileHeaderSize
	magic, err := bytestream.Peek[uint16](s, optOffset)
	if err != nil {
		return h, ParsingError("parse_headers.optional_header_magic", err)
	}

	switch magic {
	case magicPE32Plus:
		h.variant = VariantPE32Plus
		opt, err := bytestream.Peek[OptionalHeader64](s, optOffset)
		if err != nil {
			return h, ParsingError("parse_headers.optional_header", err)
		}
		h.opt64 = opt
		h.optHeaderEnd = optOffset + optionalHeader64Size
	case magicPE32:
		h.variant = VariantPE32
		opt, err := bytestream.Peek[OptionalHeader32](s, optOffset)
		if err != nil {
			return h, ParsingError("parse_headers.optional_header", err)
		}
		h.opt32 = opt
		h.optHeaderEnd = optOffset + optionalHeader32Size
	default:
		return h, ParsingError("parse_headers.optional_header_magic", fmt.Errorf("unknown magic 0x%x", magic))
	}

	return h, nil
}

const (
	fileHeaderSize      = 20
	optionalHeader32Size = 96
	optionalHeader64Size = 112
	sectionHeaderSize    = 40
)
