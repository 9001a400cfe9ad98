package pefmt

import (
	"github.com/gogo2464/LIEF/internal/binconfig"
	"github.com/gogo2464/LIEF/internal/binlog"
	"github.com/gogo2464/LIEF/internal/bytestream"
)

// RichHeaderEntry is one decoded {CompID, Count} pair from the
// undocumented Rich header (§E "Rich header").
type RichHeaderEntry struct {
	CompID uint32
	Count  uint32
}

// RichHeader is the decoded stub-embedded toolchain fingerprint.
type RichHeader struct {
	Checksum uint32
	Entries  []RichHeaderEntry
}

// Overlay records trailing bytes past the last section without
// copying them (§E "Overlay").
type Overlay struct {
	Offset uint32
	Size   uint32
}

// Binary is the read-only parsed object graph §6 exposes to external
// collaborators: headers, sections, directories, and every sub-parser's
// output, each behind a presence flag set only on success (§7).
type Binary struct {
	Variant    Variant
	DOSHeader  DOSHeader
	FileHeader FileHeader

	OptionalHeader32 OptionalHeader32
	OptionalHeader64 OptionalHeader64

	Sections    []SectionHeader
	Directories [numDataDirs]Directory

	RichHeader *RichHeader
	Overlay    *Overlay

	Imports   []ImportedLibrary
	HasImports bool

	Exports    *ExportTable
	HasExports bool

	TLS    *TLSDirectory
	HasTLS bool

	LoadConfig       *LoadConfiguration
	HasConfiguration bool

	Relocations    []BaseRelocation
	HasRelocations bool

	DebugEntries []DebugEntry
	HasDebug     bool

	Resources    *ResourceDirectory
	HasResources bool

	Signature    *SignatureInfo
	HasSignature bool

	// Warnings accumulates every recovered step's log message in order,
	// for callers (e.g. internal/healthcheck) that want the report
	// without re-parsing logrus output.
	Warnings []string

	cfg         *binconfig.Config
	logger      *binlog.Logger
	sectionTags SectionTags
}

// ImageBase returns the optional header's image base regardless of
// variant.
func (b *Binary) ImageBase() uint64 {
	if b.Variant == VariantPE32Plus {
		return b.OptionalHeader64.ImageBase
	}
	return uint64(b.OptionalHeader32.ImageBase)
}

// RVAToOffset maps a virtual address to a file offset via the section
// table (§6).
func (b *Binary) RVAToOffset(rva uint32) (uint32, bool) {
	return rvaToOffset(b.Sections, rva)
}

// SectionFromOffset returns the section whose file range contains
// offset, or nil (§6).
func (b *Binary) SectionFromOffset(offset uint32) *SectionHeader {
	return sectionFromOffset(b.Sections, offset)
}

// warn records a recovered step failure: it logs at Warn level and
// appends a plain-text line to Warnings, implementing the
// warn_and_continue combinator §9 calls for.
func (b *Binary) warn(step string, err error) {
	b.logger.WithComponent(step).Warn(err)
	b.Warnings = append(b.Warnings, step+": "+err.Error())
}

// debugf logs at Debug level without producing a user-visible warning,
// for recoverable conditions that are expected (e.g. the copy of an
// oversize TLS template being skipped).
func (b *Binary) debugf(step, msg string) {
	b.logger.WithComponent(step).Debug(msg)
}

// Parse runs the C6 Parse Driver over data (§4.4). cfg supplies the
// resource caps threaded into the TLS sub-parser; logger receives every recovered step's warning. A nil
// cfg/logger fall back to defaults so callers that don't care can pass
// nil for both.
func Parse(data []byte, cfg *binconfig.Config, logger *binlog.Logger) (*Binary, error) {
	if cfg == nil {
		cfg, _ = binconfig.Default()
	}
	if logger == nil {
		logger = binlog.Discard()
	}

	s := bytestream.New(data)

	// Step 1: mandatory.
	h, err := parseHeaders(s)
	if err != nil {
		return nil, err
	}

	b := &Binary{
		Variant:    h.variant,
		DOSHeader:  h.dos,
		FileHeader: h.file,
		cfg:        cfg,
		logger:     logger,
	}
	if h.variant == VariantPE32Plus {
		b.OptionalHeader64 = h.opt64
	} else {
		b.OptionalHeader32 = h.opt32
	}

	// Step 2: DOS stub. Nothing beyond the header is semantically
	// consumed; a failure here can only be a bounds check on the offset
	// itself, kept as a warning per §4.4.
	if h.dos.PEOffset < 64 {
		b.warn("dos_stub", errShortStub)
	}

	// Step 3: Rich header.
	if rich, err := scanRichHeader(s, int64(h.dos.PEOffset)); err != nil {
		b.warn("rich_header", err)
	} else {
		b.RichHeader = rich
	}

	// Step 4: Sections.
	sectionsOffset := int64(h.dos.PEOffset) + 4 + fileHeaderSize + int64(h.file.SizeOfOptionalHeader)
	sections, err := decodeSections(s, sectionsOffset, h.file.NumberOfSections)
	if err != nil {
		b.warn("sections", err)
	}
	b.Sections = sections

	// Step 5: data directories, then dispatch each present slot.
	table, err := decodeDataDirectories(s, h, b.Sections)
	if err != nil {
		b.warn("data_directories", err)
	}
	b.Directories = table
	b.dispatchDirectories(s, h)

	// Step 6: symbols. The base COFF symbol table is legacy and rarely
	// present in modern PE images; a corrupted pointer/count pair only
	// warns, matching §4.4 step 6.
	if h.file.PointerToSymbolTable != 0 {
		if uint32(len(data)) < h.file.PointerToSymbolTable {
			b.warn("symbols", errSymbolTableOutOfBounds)
		}
	}

	// Step 7: overlay.
	if ov := detectOverlay(b.Sections, int64(len(data))); ov != nil {
		b.Overlay = ov
	}

	return b, nil
}

func decodeSections(s *bytestream.Stream, offset int64, count uint16) ([]SectionHeader, error) {
	sections := make([]SectionHeader, 0, count)
	for i := uint16(0); i < count; i++ {
		raw, err := bytestream.Peek[SectionHeader](s, offset+int64(i)*sectionHeaderSize)
		if err != nil {
			return sections, ReadError("sections", err)
		}
		sections = append(sections, raw)
	}
	return sections, nil
}

func detectOverlay(sections []SectionHeader, fileLen int64) *Overlay {
	var highestEnd int64 = -1
	for _, sec := range sections {
		end := int64(sec.PointerToRawData) + int64(sec.SizeOfRawData)
		if end > highestEnd {
			highestEnd = end
		}
	}
	if highestEnd < 0 || highestEnd >= fileLen {
		return nil
	}
	return &Overlay{Offset: uint32(highestEnd), Size: uint32(fileLen - highestEnd)}
}

const richMarker = 0x68636952  // "Rich" little-endian
const dansMarker = 0x536e6144  // "DanS" little-endian

// scanRichHeader scans forward from offset 0x80 up to the PE header
// offset for the first "Rich" marker, then scans backward from it,
// XORing each DWORD with the checksum that follows the marker, until it
// finds the "DanS" marker, and decodes the
// {CompID, Count} pairs in between (§E).
func scanRichHeader(s *bytestream.Stream, peOffset int64) (*RichHeader, error) {
	var richOffset int64 = -1
	for off := int64(0x80); off+4 <= peOffset; off += 4 {
		v, err := bytestream.Peek[uint32](s, off)
		if err != nil {
			break
		}
		if v == richMarker {
			richOffset = off
			break
		}
	}
	if richOffset < 0 {
		return nil, errNoRichHeader
	}

	checksum, err := bytestream.Peek[uint32](s, richOffset+4)
	if err != nil {
		return nil, err
	}

	var dansOffset int64 = -1
	for off := richOffset - 4; off >= 0x80; off -= 4 {
		raw, err := bytestream.Peek[uint32](s, off)
		if err != nil {
			break
		}
		if raw^checksum == dansMarker {
			dansOffset = off
			break
		}
	}
	if dansOffset < 0 {
		return nil, errNoRichHeader
	}

	rich := &RichHeader{Checksum: checksum}
	for off := dansOffset + 16; off+8 <= richOffset; off += 8 {
		compRaw, err := bytestream.Peek[uint32](s, off)
		if err != nil {
			break
		}
		countRaw, err := bytestream.Peek[uint32](s, off+4)
		if err != nil {
			break
		}
		rich.Entries = append(rich.Entries, RichHeaderEntry{
			CompID: compRaw ^ checksum,
			Count:  countRaw ^ checksum,
		})
	}

	return rich, nil
}

var (
	errShortStub               = shortStubErr{}
	errSymbolTableOutOfBounds  = symbolTableErr{}
	errNoRichHeader            = richHeaderErr{}
)

type shortStubErr struct{}

func (shortStubErr) Error() string { return "DOS stub shorter than the minimum 64-byte header" }

type symbolTableErr struct{}

func (symbolTableErr) Error() string { return "PointerToSymbolTable exceeds file length" }

type richHeaderErr struct{}

func (richHeaderErr) Error() string { return "no Rich header marker found" }
