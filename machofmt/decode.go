package machofmt

import (
	"fmt"

	"github.com/gogo2464/LIEF/internal/bytestream"
)

// DecodeSegment32 decodes a 32-bit segment_command at offset, along
// with its declared section_32 array and the segment's payload bytes
// copied out of the backing buffer. Sections start attached to the
// returned Segment with their back-reference bound, matching what a
// surrounding binary parser would do after constructing the bare
// Segment (§4.3 "Lifecycle").
func DecodeSegment32(s *bytestream.Stream, offset int64) (*Segment, error) {
	raw, err := bytestream.Peek[segmentCommand32](s, offset)
	if err != nil {
		return nil, fmt.Errorf("machofmt: decode segment_command_32 at 0x%x: %w", offset, err)
	}
	seg := decodeSegment32(raw)
	if err := attachSections32(s, seg, offset+int64(rawSegmentCommand32Size), raw.NSects); err != nil {
		return seg, err
	}
	if err := fillSegmentData(s, seg); err != nil {
		return seg, err
	}
	return seg, nil
}

// DecodeSegment64 is the 64-bit counterpart of DecodeSegment32.
func DecodeSegment64(s *bytestream.Stream, offset int64) (*Segment, error) {
	raw, err := bytestream.Peek[segmentCommand64](s, offset)
	if err != nil {
		return nil, fmt.Errorf("machofmt: decode segment_command_64 at 0x%x: %w", offset, err)
	}
	seg := decodeSegment64(raw)
	if err := attachSections64(s, seg, offset+int64(rawSegmentCommand64Size), raw.NSects); err != nil {
		return seg, err
	}
	if err := fillSegmentData(s, seg); err != nil {
		return seg, err
	}
	return seg, nil
}

const (
	rawSegmentCommand32Size = 56
	rawSegmentCommand64Size = 72
	rawSection32Size        = 68
	rawSection64Size        = 80
)

func attachSections32(s *bytestream.Stream, seg *Segment, offset int64, n uint32) error {
	for i := uint32(0); i < n; i++ {
		raw, err := bytestream.Peek[section32](s, offset+int64(i)*rawSection32Size)
		if err != nil {
			return fmt.Errorf("machofmt: decode section_32 #%d: %w", i, err)
		}
		sec := decodeSection32(raw)
		sec.segment = seg
		sec.SegmentName = seg.name
		seg.sections = append(seg.sections, sec)
	}
	return nil
}

func attachSections64(s *bytestream.Stream, seg *Segment, offset int64, n uint32) error {
	for i := uint32(0); i < n; i++ {
		raw, err := bytestream.Peek[section64](s, offset+int64(i)*rawSection64Size)
		if err != nil {
			return fmt.Errorf("machofmt: decode section_64 #%d: %w", i, err)
		}
		sec := decodeSection64(raw)
		sec.segment = seg
		sec.SegmentName = seg.name
		seg.sections = append(seg.sections, sec)
	}
	return nil
}

// fillSegmentData copies the segment's declared payload window out of
// the backing buffer. A window that runs past the buffer end is
// tolerated (the data that is available is copied); a file_offset at or
// past the buffer end is reported as an error.
func fillSegmentData(s *bytestream.Stream, seg *Segment) error {
	if seg.fileSize == 0 {
		return nil
	}
	avail := s.Len() - int64(seg.fileOffset)
	if avail <= 0 {
		return fmt.Errorf("machofmt: segment %q file_offset 0x%x is out of bounds", seg.name, seg.fileOffset)
	}
	n := seg.fileSize
	if int64(n) > avail {
		n = uint64(avail)
	}
	seg.data = make([]byte, n)
	return s.PeekData(seg.data, int64(seg.fileOffset), int(n))
}
