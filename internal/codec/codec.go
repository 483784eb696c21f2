// Package codec decompresses chunk payloads according to the one-byte
// compression tag stored in front of them.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Type is the compression tag of a stored chunk. The numeric values are part
// of the file format.
type Type byte

const (
	Gzip Type = 1
	Zlib Type = 2
	None Type = 3
)

var (
	// ErrUnknownCompression is returned for tags other than Gzip, Zlib and None.
	ErrUnknownCompression = errors.New("codec: unknown compression type")
	// ErrDecompressionFailed matches every *DecompressionError.
	ErrDecompressionFailed = errors.New("codec: decompression failed")
)

func (t Type) String() string {
	switch t {
	case Gzip:
		return "gzip"
	case Zlib:
		return "zlib"
	case None:
		return "none"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

// Valid reports whether t is one of the supported tags.
func (t Type) Valid() bool {
	return t == Gzip || t == Zlib || t == None
}

// ParseType converts a raw tag byte into a Type.
func ParseType(b byte) (Type, error) {
	t := Type(b)
	if !t.Valid() {
		return t, fmt.Errorf("tag 0x%02X: %w", b, ErrUnknownCompression)
	}
	return t, nil
}

// DecompressionError wraps any failure of the underlying decompressor.
type DecompressionError struct {
	Type  Type
	Cause error
}

func (e *DecompressionError) Error() string {
	return fmt.Sprintf("codec: %s decompression failed: %v", e.Type, e.Cause)
}

func (e *DecompressionError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, ErrDecompressionFailed) match regardless of cause.
func (e *DecompressionError) Is(target error) bool {
	return target == ErrDecompressionFailed
}

// Decompress returns the decoded form of src. None returns src unchanged.
// Gzip reads a single member so sector padding after the stream is ignored.
func Decompress(t Type, src []byte) ([]byte, error) {
	switch t {
	case None:
		return src, nil
	case Gzip:
		zr, err := gzip.NewReader(bytes.NewReader(src))
		if err != nil {
			return nil, &DecompressionError{Type: t, Cause: err}
		}
		zr.Multistream(false)
		return readAll(t, zr)
	case Zlib:
		zr, err := zlib.NewReader(bytes.NewReader(src))
		if err != nil {
			return nil, &DecompressionError{Type: t, Cause: err}
		}
		return readAll(t, zr)
	default:
		return nil, fmt.Errorf("tag 0x%02X: %w", byte(t), ErrUnknownCompression)
	}
}

func readAll(t Type, rc io.ReadCloser) ([]byte, error) {
	out, err := io.ReadAll(rc)
	if closeErr := rc.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, &DecompressionError{Type: t, Cause: err}
	}
	return out, nil
}

// Compress encodes src with t. It is the inverse of Decompress and is used to
// build region files in tests and fixtures.
func Compress(t Type, src []byte) ([]byte, error) {
	var out bytes.Buffer
	var w io.WriteCloser
	switch t {
	case None:
		return append([]byte(nil), src...), nil
	case Gzip:
		w = gzip.NewWriter(&out)
	case Zlib:
		w = zlib.NewWriter(&out)
	default:
		return nil, fmt.Errorf("tag 0x%02X: %w", byte(t), ErrUnknownCompression)
	}
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
