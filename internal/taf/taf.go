// Package taf reads the header of Tonie audio files (.taf).
//
// A TAF file starts with a 4-byte big-endian header length followed by a
// protobuf-encoded header; the Opus audio stream begins after it. Only the
// header is read here: it carries the payload hash, the audio length, the
// encoding timestamp, and the chapter page table the application uses for
// track extraction. The audio itself is never touched.
package taf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Header field numbers in the TAF protobuf preamble.
const (
	fieldDataHash     = 1
	fieldDataLength   = 2
	fieldTimestamp    = 3
	fieldChapterPages = 4
	fieldPadding      = 5
)

// maxHeaderSize guards against reading arbitrary amounts of a corrupt file
// into memory. Real headers are a few hundred bytes plus padding.
const maxHeaderSize = 0x10000

// ErrMalformedHeader reports a header that cannot be decoded.
var ErrMalformedHeader = errors.New("taf: malformed header")

// Header is the decoded TAF preamble.
type Header struct {
	DataHash     []byte
	DataLength   uint64
	Timestamp    time.Time
	ChapterPages []uint32
}

// TrackCount returns the number of chapters recorded in the page table.
func (h *Header) TrackCount() int {
	return len(h.ChapterPages)
}

// ParseFile reads the header of the TAF file at path.
func ParseFile(path string) (*Header, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open taf file: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse decodes a TAF header from r.
func Parse(r io.Reader) (*Header, error) {
	var sizeBuf [4]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		return nil, fmt.Errorf("read header length: %w", err)
	}
	size := binary.BigEndian.Uint32(sizeBuf[:])
	if size == 0 || size > maxHeaderSize {
		return nil, fmt.Errorf("%w: implausible header length %d", ErrMalformedHeader, size)
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	return decodeHeader(buf)
}

func decodeHeader(buf []byte) (*Header, error) {
	header := &Header{}
	off := 0
	for off < len(buf) {
		key, n := binary.Uvarint(buf[off:])
		if n <= 0 {
			return nil, fmt.Errorf("%w: bad field key at offset %d", ErrMalformedHeader, off)
		}
		off += n
		field := key >> 3
		wire := key & 7

		switch wire {
		case 0: // varint
			value, n := binary.Uvarint(buf[off:])
			if n <= 0 {
				return nil, fmt.Errorf("%w: bad varint in field %d", ErrMalformedHeader, field)
			}
			off += n
			switch field {
			case fieldDataLength:
				header.DataLength = value
			case fieldTimestamp:
				header.Timestamp = time.Unix(int64(value), 0).UTC()
			}
		case 2: // length-delimited
			length, n := binary.Uvarint(buf[off:])
			if n <= 0 || off+n+int(length) > len(buf) {
				return nil, fmt.Errorf("%w: bad length in field %d", ErrMalformedHeader, field)
			}
			off += n
			payload := buf[off : off+int(length)]
			off += int(length)
			switch field {
			case fieldDataHash:
				header.DataHash = append([]byte(nil), payload...)
			case fieldChapterPages:
				pages, err := decodePackedUint32(payload)
				if err != nil {
					return nil, err
				}
				header.ChapterPages = pages
			case fieldPadding:
				// Alignment filler, no content.
			}
		default:
			return nil, fmt.Errorf("%w: unsupported wire type %d in field %d", ErrMalformedHeader, wire, field)
		}
	}
	return header, nil
}

func decodePackedUint32(payload []byte) ([]uint32, error) {
	var pages []uint32
	off := 0
	for off < len(payload) {
		value, n := binary.Uvarint(payload[off:])
		if n <= 0 {
			return nil, fmt.Errorf("%w: bad chapter page entry", ErrMalformedHeader)
		}
		off += n
		pages = append(pages, uint32(value))
	}
	return pages, nil
}
