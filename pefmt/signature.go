package pefmt

import "github.com/gogo2464/LIEF/internal/bytestream"

// SignatureInfo records presence and the WIN_CERTIFICATE envelope
// fields only; the PKCS#7 payload itself is never parsed or verified
// (explicit Non-goal: "cryptographic signature verification").
type SignatureInfo struct {
	Offset   uint32
	Size     uint32
	Revision uint16
	CertType uint16
}

type winCertificateRaw struct {
	Length          uint32
	Revision        uint16
	CertificateType uint16
}

const winCertificateRawSize = 8

// parseSignature decodes the WIN_CERTIFICATE header at the Certificate
// directory's RVA. Unlike every other directory, this RVA is a direct
// file offset, not a virtual address (per the PE/COFF spec).
func parseSignature(s *bytestream.Stream, dir Directory) (*SignatureInfo, error) {
	raw, err := bytestream.Peek[winCertificateRaw](s, int64(dir.RVA))
	if err != nil {
		return nil, ReadError("signature", err)
	}

	return &SignatureInfo{
		Offset:   dir.RVA,
		Size:     dir.Size,
		Revision: raw.Revision,
		CertType: raw.CertificateType,
	}, nil
}
