// Package machofmt implements the Mach-O segment/section/load-command
// model: an in-memory, mutable representation of a Mach-O segment load
// command and the sections it owns, with editing operations that keep
// file-offset/size/virtual-address bookkeeping consistent.
package machofmt

// Cmd is a Mach-O load command tag (the on-disk `cmd` field).
type Cmd uint32

const (
	CmdSegment   Cmd = 0x1
	CmdSymtab    Cmd = 0x2
	CmdLoadDylib Cmd = 0xc
	CmdSegment64 Cmd = 0x19
	CmdRpath     Cmd = 0x8000001c
)

// IsSegment reports whether a load command tag classifies as a Segment.
func (c Cmd) IsSegment() bool {
	return c == CmdSegment || c == CmdSegment64
}

// segmentCommand32 is the on-disk 32-bit `segment_command` layout.
type segmentCommand32 struct {
	Cmd      uint32
	CmdSize  uint32
	SegName  [16]byte
	VMAddr   uint32
	VMSize   uint32
	FileOff  uint32
	FileSize uint32
	MaxProt  uint32
	InitProt uint32
	NSects   uint32
	Flags    uint32
}

// segmentCommand64 is the on-disk 64-bit `segment_command_64` layout.
type segmentCommand64 struct {
	Cmd      uint32
	CmdSize  uint32
	SegName  [16]byte
	VMAddr   uint64
	VMSize   uint64
	FileOff  uint64
	FileSize uint64
	MaxProt  uint32
	InitProt uint32
	NSects   uint32
	Flags    uint32
}

// section32 is the on-disk 32-bit `section` layout.
type section32 struct {
	SectName  [16]byte
	SegName   [16]byte
	Addr      uint32
	Size      uint32
	Offset    uint32
	Align     uint32
	RelOff    uint32
	NReloc    uint32
	Flags     uint32
	Reserved1 uint32
	Reserved2 uint32
}

// section64 is the on-disk 64-bit `section_64` layout.
type section64 struct {
	SectName  [16]byte
	SegName   [16]byte
	Addr      uint64
	Size      uint64
	Offset    uint32
	Align     uint32
	RelOff    uint32
	NReloc    uint32
	Flags     uint32
	Reserved1 uint32
	Reserved2 uint32
	Reserved3 uint32
}

// stripNull truncates a fixed NUL-padded byte array at the first NUL,
// per §4.2 ("must not interpret semantics beyond what the byte layout
// dictates").
func stripNull(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
