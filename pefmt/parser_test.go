package pefmt

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogo2464/LIEF/internal/binconfig"
)

func testConfig(t *testing.T) *binconfig.Config {
	t.Helper()
	cfg, err := binconfig.Default()
	require.NoError(t, err)
	return cfg
}

// S4: buffer with a valid DOS header but truncated at the start of the
// optional header must yield a top-level ParsingError.
func TestParseMissingOptionalHeader(t *testing.T) {
	buf := make([]byte, 0x58)
	binary.LittleEndian.PutUint16(buf[0:2], dosMagic)
	binary.LittleEndian.PutUint32(buf[0x3C:0x40], 0x40)
	binary.LittleEndian.PutUint32(buf[0x40:0x44], peSignature)
	// FileHeader (20 bytes) follows at 0x44..0x58; the buffer ends there,
	// leaving no room to even peek the optional header's magic field.

	_, err := Parse(buf, nil, nil)
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, KindParsing, perr.Kind)
}

// S5: a non-null final data directory entry must still be decoded and
// dispatched, not silently dropped because the PE spec says it should
// be zero.
func TestParseNonNullFinalDataDirectory(t *testing.T) {
	f := newFixture64(t)
	f.setDirectory(DirectoryKind(15), 0, 4)
	f.write(uint32(0xdeadbeef))
	buf := f.build()

	bin, err := Parse(buf, testConfig(t), nil)
	require.NoError(t, err)
	require.Len(t, bin.Directories, numDataDirs)
	assert.True(t, bin.Directories[15].present())
	assert.Equal(t, f.rva(0), bin.Directories[15].RVA)
}

// S6: an import descriptor whose DLL name resolves to "ab" (3 bytes on
// disk, NUL-terminated) must be discarded, not included in the import
// list, without aborting the rest of the parse.
func TestParseInvalidImportDLLName(t *testing.T) {
	f := newFixture64(t)

	nameRel := f.write([]byte("ab\x00"))
	f.padTo(0x20)
	descRel := f.write(importDescriptorRaw{NameRVA: f.rva(nameRel), FirstThunk: f.rva(nameRel)})
	f.write(importDescriptorRaw{}) // zero terminator

	f.setDirectory(DirImport, descRel, importDescriptorSize*2)
	buf := f.build()

	bin, err := Parse(buf, testConfig(t), nil)
	require.NoError(t, err)
	assert.True(t, bin.HasImports)
	assert.Empty(t, bin.Imports, "descriptor with an invalid DLL name must be discarded")
	assert.NotEmpty(t, bin.Warnings)
}

// Testable property #11: an import descriptor with name_RVA == 0
// terminates the loop, keeping whatever was already decoded.
func TestImportsTerminateOnZeroNameRVA(t *testing.T) {
	f := newFixture64(t)

	dllNameRel := f.write([]byte("KERNEL32.DLL\x00"))
	f.padTo(0x20)
	hintNameRel := f.write(struct {
		Hint uint16
		Name [12]byte
	}{Hint: 0, Name: [12]byte{'S', 'l', 'e', 'e', 'p'}})
	f.padTo(0x40)
	iltRel := f.write(uint64(f.rva(hintNameRel)))
	f.write(uint64(0)) // ILT terminator
	f.padTo(0x60)
	iatRel := f.write(uint64(f.rva(hintNameRel)))
	f.write(uint64(0)) // IAT terminator
	f.padTo(0x80)

	descRel := f.write(importDescriptorRaw{
		OriginalFirstThunk: f.rva(iltRel),
		NameRVA:            f.rva(dllNameRel),
		FirstThunk:         f.rva(iatRel),
	})
	f.write(importDescriptorRaw{}) // NameRVA == 0 terminates the loop

	f.setDirectory(DirImport, descRel, importDescriptorSize*2)
	buf := f.build()

	bin, err := Parse(buf, testConfig(t), nil)
	require.NoError(t, err)
	require.True(t, bin.HasImports)
	require.Len(t, bin.Imports, 1)
	assert.Equal(t, "KERNEL32.DLL", bin.Imports[0].Name)
	require.Len(t, bin.Imports[0].Entries, 1)
	assert.Equal(t, "Sleep", bin.Imports[0].Entries[0].Name)
}

// Testable property #9: a TLS template larger than MaxDataSize decodes
// with an empty template, no panic.
func TestTLSOversizeTemplateSkipped(t *testing.T) {
	f := newFixture64(t)
	cfg := testConfig(t)
	cfg.MaxDataSize = 8

	templateRel := f.write(make([]byte, 64))
	tlsRel := f.write(tlsDirectoryRaw64{
		RawDataStartVA: f.imageBase + uint64(f.rva(templateRel)),
		RawDataEndVA:   f.imageBase + uint64(f.rva(templateRel)) + 64,
	})
	f.setDirectory(DirTLS, tlsRel, tlsDirectorySize64)
	buf := f.build()

	bin, err := Parse(buf, cfg, nil)
	require.NoError(t, err)
	require.True(t, bin.HasTLS)
	assert.Empty(t, bin.TLS.Template)
}

// Testable property #10: a TLS callback list with no zero terminator
// produces exactly MaxTLSCallbacks callbacks.
func TestTLSCallbacksBoundedByMax(t *testing.T) {
	f := newFixture64(t)
	cfg := testConfig(t)
	cfg.MaxTLSCallbacks = 4

	callbacksRel := f.write(make([]byte, 0))
	for i := 0; i < cfg.MaxTLSCallbacks+20; i++ {
		f.write(uint64(0x1000 + i))
	}
	tlsRel := f.write(tlsDirectoryRaw64{
		AddressOfCallbacks: f.imageBase + uint64(f.rva(callbacksRel)),
	})
	f.setDirectory(DirTLS, tlsRel, tlsDirectorySize64)
	buf := f.build()

	bin, err := Parse(buf, cfg, nil)
	require.NoError(t, err)
	require.True(t, bin.HasTLS)
	assert.Len(t, bin.TLS.Callbacks, cfg.MaxTLSCallbacks)
}

// Testable property #12: a Load Configuration whose declared size is 0
// decodes to the base variant.
func TestLoadConfigZeroSizeDecodesBase(t *testing.T) {
	f := newFixture64(t)
	lcRel := f.write(uint32(0))
	f.setDirectory(DirLoadConfig, lcRel, 4)
	buf := f.build()

	bin, err := Parse(buf, testConfig(t), nil)
	require.NoError(t, err)
	require.True(t, bin.HasConfiguration)
	assert.Equal(t, LoadConfigBase, bin.LoadConfig.Version)
}

// A non-zero declared size must decode the SafeSEH/CFG fields from the
// PE32+ IMAGE_LOAD_CONFIG_DIRECTORY64 offsets, not the base block.
func TestLoadConfigDecodesExtendedFields64(t *testing.T) {
	f := newFixture64(t)

	const size = uint32(0x98)
	lcRel := f.write(size)
	f.write(uint32(0xdeadbeef)) // TimeDateStamp, rel 4
	f.padTo(lcRel + 0xc)
	f.write(uint32(0x1111)) // GlobalFlagsClear, rel 0xc
	f.write(uint32(0x2222)) // GlobalFlagsSet, rel 0x10
	f.write(uint32(0x3333)) // CriticalSectionDefaultTimeout, rel 0x14
	f.padTo(lcRel + 0x58)
	f.write(uint64(0xaaaabbbbccccdddd)) // SecurityCookie, rel 0x58
	f.write(uint64(1))                  // SEHandlerTable, rel 0x60
	f.write(uint64(2))                  // SEHandlerCount, rel 0x68
	f.padTo(lcRel + 0x70)
	f.write(uint64(3)) // GuardCFCheckFunctionPointer, rel 0x70
	f.padTo(lcRel + 0x80)
	f.write(uint64(4)) // GuardCFFunctionTable, rel 0x80
	f.write(uint64(5)) // GuardCFFunctionCount, rel 0x88
	f.write(uint32(6)) // GuardFlags, rel 0x90
	f.padTo(lcRel + size)

	f.setDirectory(DirLoadConfig, lcRel, size)
	buf := f.build()

	bin, err := Parse(buf, testConfig(t), nil)
	require.NoError(t, err)
	require.True(t, bin.HasConfiguration)

	lc := bin.LoadConfig
	assert.Equal(t, LoadConfigV1, lc.Version)
	assert.Equal(t, uint32(0xdeadbeef), lc.TimeDateStamp)
	assert.Equal(t, uint32(0x1111), lc.GlobalFlagsClear)
	assert.Equal(t, uint32(0x2222), lc.GlobalFlagsSet)
	assert.Equal(t, uint32(0x3333), lc.CriticalSectionDefaultTimeout)
	assert.Equal(t, uint64(0xaaaabbbbccccdddd), lc.SecurityCookie)
	assert.Equal(t, uint64(1), lc.SEHandlerTable)
	assert.Equal(t, uint64(2), lc.SEHandlerCount)
	assert.Equal(t, uint64(3), lc.GuardCFCheckFunctionPointer)
	assert.Equal(t, uint64(4), lc.GuardCFFunctionTable)
	assert.Equal(t, uint64(5), lc.GuardCFFunctionCount)
	assert.Equal(t, uint32(6), lc.GuardFlags)
}

func TestOverlayDetected(t *testing.T) {
	f := newFixture64(t)
	f.write(make([]byte, 16))
	buf := f.build()
	buf = append(buf, []byte("trailing overlay bytes")...)

	bin, err := Parse(buf, testConfig(t), nil)
	require.NoError(t, err)
	require.NotNil(t, bin.Overlay)
	assert.Equal(t, uint32(len("trailing overlay bytes")), bin.Overlay.Size)
}

func TestRVAToOffsetAndSectionFromOffset(t *testing.T) {
	f := newFixture64(t)
	f.write(make([]byte, 16))
	buf := f.build()

	bin, err := Parse(buf, testConfig(t), nil)
	require.NoError(t, err)

	offset, ok := bin.RVAToOffset(f.rva(4))
	require.True(t, ok)
	assert.Equal(t, f.sectionPtr+4, offset)

	sec := bin.SectionFromOffset(f.sectionPtr)
	require.NotNil(t, sec)
	assert.Equal(t, ".data", sec.NameString())
}
