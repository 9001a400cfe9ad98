package pefmt

import "github.com/gogo2464/LIEF/internal/bytestream"

// ExportEntry is one exported symbol, possibly a forwarder (§E "Exports").
type ExportEntry struct {
	Name      string
	Ordinal   uint16
	RVA       uint32
	Forwarder string
}

// ExportTable is the decoded export directory plus its entries.
type ExportTable struct {
	Name          string
	Base          uint32
	Characteristics uint32
	TimeDateStamp uint32
	Entries       []ExportEntry
}

// exportDirectoryRaw is the on-disk IMAGE_EXPORT_DIRECTORY.
type exportDirectoryRaw struct {
	Characteristics       uint32
	TimeDateStamp         uint32
	MajorVersion          uint16
	MinorVersion          uint16
	Name                  uint32
	Base                  uint32
	NumberOfFunctions     uint32
	NumberOfNames         uint32
	AddressOfFunctions    uint32
	AddressOfNames        uint32
	AddressOfNameOrdinals uint32
}

const exportDirectorySize = 40

// parseExports walks the export directory table (§E). A forwarder
// entry's RVA falls inside the directory's own [RVA, RVA+Size) range
// and is read as a string rather than a code address.
func parseExports(s *bytestream.Stream, b *Binary, dir Directory) (*ExportTable, error) {
	offset, ok := b.RVAToOffset(dir.RVA)
	if !ok {
		return nil, NotFoundError("exports", errRVANotMapped)
	}

	raw, err := bytestream.Peek[exportDirectoryRaw](s, int64(offset))
	if err != nil {
		return nil, ReadError("exports", err)
	}

	table := &ExportTable{
		Characteristics: raw.Characteristics,
		TimeDateStamp:   raw.TimeDateStamp,
		Base:            raw.Base,
	}
	if nameOffset, ok := b.RVAToOffset(raw.Name); ok {
		if name, err := s.PeekStringAt(int64(nameOffset)); err == nil {
			table.Name = name
		}
	}

	funcAddrs := make([]uint32, raw.NumberOfFunctions)
	if funcsOffset, ok := b.RVAToOffset(raw.AddressOfFunctions); ok {
		for i := range funcAddrs {
			v, err := bytestream.Peek[uint32](s, int64(funcsOffset)+int64(i)*4)
			if err != nil {
				break
			}
			funcAddrs[i] = v
		}
	}

	nameRVAs := make([]uint32, raw.NumberOfNames)
	if namesOffset, ok := b.RVAToOffset(raw.AddressOfNames); ok {
		for i := range nameRVAs {
			v, err := bytestream.Peek[uint32](s, int64(namesOffset)+int64(i)*4)
			if err != nil {
				break
			}
			nameRVAs[i] = v
		}
	}

	nameOrdinals := make([]uint16, raw.NumberOfNames)
	if ordOffset, ok := b.RVAToOffset(raw.AddressOfNameOrdinals); ok {
		for i := range nameOrdinals {
			v, err := bytestream.Peek[uint16](s, int64(ordOffset)+int64(i)*2)
			if err != nil {
				break
			}
			nameOrdinals[i] = v
		}
	}

	forwarderLow, forwarderHigh := dir.RVA, dir.RVA+dir.Size

	for i := uint32(0); i < raw.NumberOfNames && i < uint32(len(nameRVAs)) && i < uint32(len(nameOrdinals)); i++ {
		ordinal := nameOrdinals[i]
		if uint32(ordinal) >= raw.NumberOfFunctions {
			continue
		}
		nameOffset, ok := b.RVAToOffset(nameRVAs[i])
		if !ok {
			continue
		}
		name, err := s.PeekStringAt(int64(nameOffset))
		if err != nil {
			continue
		}

		rva := funcAddrs[ordinal]
		entry := ExportEntry{Name: name, Ordinal: ordinal + uint16(raw.Base), RVA: rva}

		if rva >= forwarderLow && rva < forwarderHigh {
			if fwdOffset, ok := b.RVAToOffset(rva); ok {
				if fwd, err := s.PeekStringAt(int64(fwdOffset)); err == nil {
					entry.Forwarder = fwd
				}
			}
		}

		table.Entries = append(table.Entries, entry)
	}

	return table, nil
}
