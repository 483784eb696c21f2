package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe multiplies two non-negative ints, returning ok = false on overflow
// or when either operand is negative.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// CheckSpan validates that count units of unitSize bytes fit in a buffer of
// bufLen bytes starting at unit index start. It returns the byte range on
// success, or an error naming the overflow or bounds failure.
//
// Region payloads are addressed in sectors, so this is the check used before
// slicing a chunk out of a file:
//
//	start, end, err := buf.CheckSpan(len(data), int(off), int(count), 4096)
func CheckSpan(bufLen, start, count, unitSize int) (int, int, error) {
	if start < 0 || count < 0 || unitSize < 0 {
		return 0, 0, fmt.Errorf("negative span: start=%d count=%d unit=%d", start, count, unitSize)
	}
	begin, ok := MulOverflowSafe(start, unitSize)
	if !ok {
		return 0, 0, fmt.Errorf("overflow: start=%d * unit=%d", start, unitSize)
	}
	size, ok := MulOverflowSafe(count, unitSize)
	if !ok {
		return 0, 0, fmt.Errorf("overflow: count=%d * unit=%d", count, unitSize)
	}
	end, ok := AddOverflowSafe(begin, size)
	if !ok {
		return 0, 0, fmt.Errorf("overflow: begin=%d + size=%d", begin, size)
	}
	if end > bufLen {
		return begin, end, fmt.Errorf("bounds: end=%d > len=%d", end, bufLen)
	}
	return begin, end, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}
