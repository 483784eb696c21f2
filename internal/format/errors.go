package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrOutOfRange indicates a location entry addresses bytes outside the file.
	ErrOutOfRange = errors.New("format: location out of range")
	// ErrOverlapsTable indicates a non-empty entry whose payload would start
	// inside the location table.
	ErrOverlapsTable = errors.New("format: payload overlaps location table")
	// ErrBadRegionName indicates a file name without region coordinates.
	ErrBadRegionName = errors.New("format: malformed region file name")
	// ErrBadSlot indicates local coordinates outside the 32x32 grid.
	ErrBadSlot = errors.New("format: slot out of grid")
)
