package format

import (
	"fmt"

	"github.com/joshuapare/anvilfix/internal/buf"
)

// PayloadHeader is the five-byte prefix of every stored chunk.
type PayloadHeader struct {
	Length      uint32 // byte length of compression tag plus data; not trusted
	Compression byte
}

// ParsePayloadHeader decodes the payload header at the start of b.
func ParsePayloadHeader(b []byte) (PayloadHeader, error) {
	if len(b) < PayloadHeaderSize {
		return PayloadHeader{}, fmt.Errorf("payload header: %w", ErrTruncated)
	}
	return PayloadHeader{
		Length:      buf.U32BE(b[PayloadLengthField:]),
		Compression: b[PayloadCompressionField],
	}, nil
}

// Payload returns the sector span addressed by loc within data. Callers are
// expected to have validated loc against len(data).
func Payload(data []byte, loc Location) ([]byte, error) {
	start, end := loc.ByteRange()
	b, ok := buf.Slice(data, start, end-start)
	if !ok {
		return nil, fmt.Errorf("payload %s: %w", loc, ErrOutOfRange)
	}
	return b, nil
}
