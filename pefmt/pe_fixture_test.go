package pefmt

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixture64 builds a minimal but structurally valid PE32+ image with a
// single ".data" section, for exercising the directory dispatch and
// sub-parsers without needing a real compiled binary.
type fixture64 struct {
	t          *testing.T
	imageBase  uint64
	sectionRVA uint32
	sectionPtr uint32
	sectionBuf bytes.Buffer
	dirs       [numDataDirs]DataDirectoryRaw
}

func newFixture64(t *testing.T) *fixture64 {
	t.Helper()
	return &fixture64{
		t:          t,
		imageBase:  0x140000000,
		sectionRVA: 0x1000,
		sectionPtr: 0x400, // filled in at build() once header sizes are final
	}
}

// rva returns the absolute RVA for a byte offset relative to the start
// of the fixture's single section.
func (f *fixture64) rva(rel uint32) uint32 { return f.sectionRVA + rel }

// write appends raw bytes to the section content at the current
// position, returning the relative offset the write started at.
func (f *fixture64) write(v interface{}) uint32 {
	f.t.Helper()
	rel := uint32(f.sectionBuf.Len())
	require.NoError(f.t, binary.Write(&f.sectionBuf, binary.LittleEndian, v))
	return rel
}

func (f *fixture64) padTo(rel uint32) {
	for uint32(f.sectionBuf.Len()) < rel {
		f.sectionBuf.WriteByte(0)
	}
}

func (f *fixture64) setDirectory(kind DirectoryKind, rel, size uint32) {
	f.dirs[kind] = DataDirectoryRaw{RVA: f.rva(rel), Size: size}
}

// build assembles the full file buffer.
func (f *fixture64) build() []byte {
	f.t.Helper()

	const peOffset = 0x40
	const fileHeaderOffset = peOffset + 4
	const optOffset = fileHeaderOffset + fileHeaderSize
	const optHeaderEnd = optOffset + optionalHeader64Size
	const dirTableEnd = optHeaderEnd + numDataDirs*8
	sizeOfOptionalHeader := uint16(optionalHeader64Size + numDataDirs*8)
	sectionsOffset := peOffset + 4 + fileHeaderSize + int(sizeOfOptionalHeader)
	require.Equal(f.t, dirTableEnd, sectionsOffset, "fixture layout drifted from headers.go's offset math")

	sectionPtr := uint32(sectionsOffset + sectionHeaderSize)
	f.sectionPtr = sectionPtr

	var buf bytes.Buffer

	dos := DOSHeader{Magic: dosMagic, PEOffset: peOffset}
	require.NoError(f.t, binary.Write(&buf, binary.LittleEndian, dos))
	buf.Write(make([]byte, peOffset-buf.Len()))

	require.NoError(f.t, binary.Write(&buf, binary.LittleEndian, uint32(peSignature)))

	fh := FileHeader{
		Machine:              0x8664,
		NumberOfSections:     1,
		SizeOfOptionalHeader: sizeOfOptionalHeader,
	}
	require.NoError(f.t, binary.Write(&buf, binary.LittleEndian, fh))

	oh := OptionalHeader64{
		Magic:               magicPE32Plus,
		ImageBase:           f.imageBase,
		SectionAlignment:    0x1000,
		FileAlignment:       0x200,
		SizeOfImage:         0x3000,
		SizeOfHeaders:       uint32(sectionPtr),
		NumberOfRvaAndSizes: numDataDirs,
	}
	require.NoError(f.t, binary.Write(&buf, binary.LittleEndian, oh))

	for _, d := range f.dirs {
		require.NoError(f.t, binary.Write(&buf, binary.LittleEndian, d))
	}

	require.Equal(f.t, dirTableEnd, buf.Len())

	var name [8]byte
	copy(name[:], ".data")
	sh := SectionHeader{
		Name:             name,
		VirtualSize:      uint32(f.sectionBuf.Len()) + 0x1000,
		VirtualAddress:   f.sectionRVA,
		SizeOfRawData:    uint32(f.sectionBuf.Len()),
		PointerToRawData: sectionPtr,
	}
	require.NoError(f.t, binary.Write(&buf, binary.LittleEndian, sh))
	require.Equal(f.t, int(sectionPtr), buf.Len())

	buf.Write(f.sectionBuf.Bytes())

	return buf.Bytes()
}
