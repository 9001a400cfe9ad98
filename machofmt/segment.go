package machofmt

import (
	"fmt"
	"strings"

	"github.com/mitchellh/copystructure"
)

// Segment is a Load Command specialization owning an ordered list of
// Sections and an ordered set of Relocations. See SPEC_FULL.md §D and
// spec.md §3/§4.3 for the full contract.
type Segment struct {
	command Cmd
	cmdSize uint32

	name               string
	virtualAddress     uint64
	virtualSize        uint64
	fileOffset         uint64
	fileSize           uint64
	maxProtection      uint32
	initProtection     uint32
	flags              uint32
	nbSectionsDeclared uint32

	data []byte

	sections    []*Section
	relocations []Relocation
}

// NewSegment creates an empty, user-constructed Segment with the given
// name and optional initial content (§4.3 "Lifecycle").
func NewSegment(name string, content []byte) *Segment {
	seg := &Segment{name: name}
	if len(content) > 0 {
		seg.data = append([]byte(nil), content...)
		seg.fileSize = uint64(len(seg.data))
	}
	return seg
}

func decodeSegment32(raw segmentCommand32) *Segment {
	return &Segment{
		command:            CmdSegment,
		cmdSize:            raw.CmdSize,
		name:               stripNull(raw.SegName[:]),
		virtualAddress:     uint64(raw.VMAddr),
		virtualSize:        uint64(raw.VMSize),
		fileOffset:         uint64(raw.FileOff),
		fileSize:           uint64(raw.FileSize),
		maxProtection:      raw.MaxProt,
		initProtection:     raw.InitProt,
		flags:              raw.Flags,
		nbSectionsDeclared: raw.NSects,
	}
}

func decodeSegment64(raw segmentCommand64) *Segment {
	return &Segment{
		command:            CmdSegment64,
		cmdSize:            raw.CmdSize,
		name:               stripNull(raw.SegName[:]),
		virtualAddress:     raw.VMAddr,
		virtualSize:        raw.VMSize,
		fileOffset:         raw.FileOff,
		fileSize:           raw.FileSize,
		maxProtection:      raw.MaxProt,
		initProtection:     raw.InitProt,
		flags:              raw.Flags,
		nbSectionsDeclared: raw.NSects,
	}
}

// Accessors.
func (s *Segment) Command() Cmd               { return s.command }
func (s *Segment) CmdSize() uint32            { return s.cmdSize }
func (s *Segment) Name() string               { return s.name }
func (s *Segment) VirtualAddress() uint64     { return s.virtualAddress }
func (s *Segment) VirtualSize() uint64        { return s.virtualSize }
func (s *Segment) FileOffset() uint64         { return s.fileOffset }
func (s *Segment) FileSize() uint64           { return s.fileSize }
func (s *Segment) MaxProtection() uint32      { return s.maxProtection }
func (s *Segment) InitProtection() uint32     { return s.initProtection }
func (s *Segment) Flags() uint32              { return s.flags }
func (s *Segment) NumberOfSectionsDeclared() uint32 { return s.nbSectionsDeclared }
func (s *Segment) Data() []byte               { return s.data }
func (s *Segment) Sections() []*Section       { return s.sections }
func (s *Segment) Relocations() []Relocation  { return s.relocations }
func (s *Segment) IsSegment() bool            { return s.command.IsSegment() }

// Mutators.
func (s *Segment) SetName(name string)                   { s.name = name }
func (s *Segment) SetVirtualAddress(v uint64)             { s.virtualAddress = v }
func (s *Segment) SetVirtualSize(v uint64)                { s.virtualSize = v }
func (s *Segment) SetFileOffset(v uint64)                 { s.fileOffset = v }
func (s *Segment) SetFileSize(v uint64)                   { s.fileSize = v }
func (s *Segment) SetMaxProtection(v uint32)              { s.maxProtection = v }
func (s *Segment) SetInitProtection(v uint32)             { s.initProtection = v }
func (s *Segment) SetFlags(v uint32)                      { s.flags = v }
func (s *Segment) SetNumberOfSectionsDeclared(v uint32)   { s.nbSectionsDeclared = v }
func (s *Segment) SetContent(data []byte) {
	s.data = append([]byte(nil), data...)
}

// SyncDeclaredSectionCount sets NumberOfSectionsDeclared to len(Sections).
// AddSection never calls this itself (§9 Open Question #1): the
// declared count is the on-disk value, set by the caller when
// preparing to write a binary back out.
func (s *Segment) SyncDeclaredSectionCount() {
	s.nbSectionsDeclared = uint32(len(s.sections))
}

// AddSection inserts a copy of section, reconciling offset, size and
// virtual address bookkeeping per spec.md §4.3. It always succeeds.
func (s *Segment) AddSection(section Section) *Section {
	newSection := section.clone()
	newSection.segment = s
	newSection.SegmentName = s.name

	newSection.Size = uint64(len(section.Content))
	newSection.Offset = s.fileOffset + s.fileSize

	if section.VirtualAddr == 0 {
		newSection.VirtualAddr = s.virtualAddress + newSection.Offset
	}

	relative := newSection.Offset - s.fileOffset
	needed := relative + newSection.Size
	if needed >= uint64(len(s.data)) {
		grown := make([]byte, needed)
		copy(grown, s.data)
		s.data = grown
	}

	copy(s.data[relative:relative+newSection.Size], section.Content)

	s.fileSize = uint64(len(s.data))

	s.sections = append(s.sections, newSection)
	return newSection
}

// RemoveAllSections clears the section list and resets the declared
// count. data is left untouched.
func (s *Segment) RemoveAllSections() {
	s.nbSectionsDeclared = 0
	s.sections = nil
}

// Has reports whether some owned section is equal to the argument.
func (s *Segment) Has(section *Section) bool {
	for _, sec := range s.sections {
		if sec.Equal(section) {
			return true
		}
	}
	return false
}

// HasSection reports whether a section with the given name is owned by
// this segment.
func (s *Segment) HasSection(name string) bool {
	for _, sec := range s.sections {
		if sec.Name == name {
			return true
		}
	}
	return false
}

// AddRelocation inserts a relocation, keeping Relocations in the total
// order Relocation.Less defines.
func (s *Segment) AddRelocation(r Relocation) {
	s.relocations = append(s.relocations, r)
	sortRelocations(s.relocations)
}

// Clone returns a deep copy. Every owned Section is duplicated with its
// back-reference pointed at the new Segment; relocations are deep
// cloned too (§9 Open Question #2, resolved in favor of cloning).
func (s *Segment) Clone() *Segment {
	cp := &Segment{
		command:            s.command,
		cmdSize:            s.cmdSize,
		name:               s.name,
		virtualAddress:     s.virtualAddress,
		virtualSize:        s.virtualSize,
		fileOffset:         s.fileOffset,
		fileSize:           s.fileSize,
		maxProtection:      s.maxProtection,
		initProtection:     s.initProtection,
		flags:              s.flags,
		nbSectionsDeclared: s.nbSectionsDeclared,
		data:               append([]byte(nil), s.data...),
	}

	cp.sections = make([]*Section, len(s.sections))
	for i, sec := range s.sections {
		newSec := sec.clone()
		newSec.segment = cp
		newSec.SegmentName = cp.name
		cp.sections[i] = newSec
	}

	if len(s.relocations) > 0 {
		copied, err := copystructure.Copy(s.relocations)
		if err == nil {
			cp.relocations = copied.([]Relocation)
		} else {
			cp.relocations = append([]Relocation(nil), s.relocations...)
		}
	}

	return cp
}

// Equal reports structural equality: two segments are equal iff their
// structural hash matches (§4.3). Equality is reflexive.
func (s *Segment) Equal(other *Segment) bool {
	if s == other {
		return true
	}
	if other == nil {
		return false
	}
	return structuralHash(s) == structuralHash(other)
}

// String renders name plus the eight numeric fields in hex followed by
// one indented line per section, per §4.3's optional printing contract.
func (s *Segment) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-16s vaddr=0x%x vsize=0x%x foff=0x%x fsize=0x%x maxprot=0x%x initprot=0x%x nsects=0x%x flags=0x%x\n",
		s.name, s.virtualAddress, s.virtualSize, s.fileOffset, s.fileSize,
		s.maxProtection, s.initProtection, s.nbSectionsDeclared, s.flags)
	for _, sec := range s.sections {
		fmt.Fprintf(&b, "\t%-16s offset=0x%x size=0x%x vaddr=0x%x\n", sec.Name, sec.Offset, sec.Size, sec.VirtualAddr)
	}
	return b.String()
}
