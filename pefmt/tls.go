package pefmt

import "github.com/gogo2464/LIEF/internal/bytestream"

// TLSDirectory records the embedded data template copied out of the
// file and the callback list, bounded by MaxDataSize and
// MaxTLSCallbacks respectively (§3 "TLS Directory", §4.7).
type TLSDirectory struct {
	RawDataStartVA uint64
	RawDataEndVA   uint64
	Template       []byte
	Callbacks      []uint64
}

type tlsDirectoryRaw32 struct {
	RawDataStartVA     uint32
	RawDataEndVA       uint32
	AddressOfIndex     uint32
	AddressOfCallbacks uint32
	SizeOfZeroFill     uint32
	Characteristics    uint32
}

type tlsDirectoryRaw64 struct {
	RawDataStartVA     uint64
	RawDataEndVA       uint64
	AddressOfIndex     uint64
	AddressOfCallbacks uint64
	SizeOfZeroFill     uint32
	Characteristics    uint32
}

const (
	tlsDirectorySize32 = 24
	tlsDirectorySize64 = 40
)

// parseTLS decodes the TLS directory, copying the template bounded by
// cfg.MaxDataSize and walking callbacks bounded by cfg.MaxTLSCallbacks
// (§4.7).
func parseTLS(s *bytestream.Stream, b *Binary, dir Directory) (*TLSDirectory, error) {
	offset, ok := b.RVAToOffset(dir.RVA)
	if !ok {
		return nil, NotFoundError("tls", errRVANotMapped)
	}

	imageBase := b.ImageBase()
	tls := &TLSDirectory{}

	var addressOfCallbacks uint64

	if b.Variant == VariantPE32Plus {
		raw, err := bytestream.Peek[tlsDirectoryRaw64](s, int64(offset))
		if err != nil {
			return nil, ReadError("tls", err)
		}
		tls.RawDataStartVA = raw.RawDataStartVA
		tls.RawDataEndVA = raw.RawDataEndVA
		addressOfCallbacks = raw.AddressOfCallbacks
	} else {
		raw, err := bytestream.Peek[tlsDirectoryRaw32](s, int64(offset))
		if err != nil {
			return nil, ReadError("tls", err)
		}
		tls.RawDataStartVA = uint64(raw.RawDataStartVA)
		tls.RawDataEndVA = uint64(raw.RawDataEndVA)
		addressOfCallbacks = uint64(raw.AddressOfCallbacks)
	}

	if tls.RawDataStartVA >= imageBase && tls.RawDataEndVA > tls.RawDataStartVA {
		startOffset, startOK := b.RVAToOffset(uint32(tls.RawDataStartVA - imageBase))
		if startOK {
			size := tls.RawDataEndVA - tls.RawDataStartVA
			if int64(size) > b.cfg.MaxDataSize {
				b.debugf("tls", "template exceeds MaxDataSize, skipping copy")
			} else {
				template := make([]byte, size)
				if err := s.PeekData(template, int64(startOffset), int(size)); err == nil {
					tls.Template = template
				}
			}
		}
	}

	if addressOfCallbacks > imageBase {
		cbOffset, ok := b.RVAToOffset(uint32(addressOfCallbacks - imageBase))
		if ok {
			pointerWidth := int64(4)
			if b.Variant == VariantPE32Plus {
				pointerWidth = 8
			}
			for i := 0; i < b.cfg.MaxTLSCallbacks; i++ {
				val, err := readThunk(s, int64(cbOffset)+int64(i)*pointerWidth, b.Variant == VariantPE32Plus)
				if err != nil || val == 0 {
					break
				}
				tls.Callbacks = append(tls.Callbacks, val)
			}
		}
	}

	return tls, nil
}
