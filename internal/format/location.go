package format

import (
	"fmt"

	"github.com/joshuapare/anvilfix/internal/buf"
)

// Location is a decoded location table entry.
type Location struct {
	Offset  uint32 `json:"offset"`  // payload start, in sectors
	Sectors uint8  `json:"sectors"` // payload length, in sectors
}

// DecodeLocation decodes the 4-byte entry at the start of b. A short buffer
// decodes as the empty location.
func DecodeLocation(b []byte) Location {
	if len(b) < EntrySize {
		return Location{}
	}
	return Location{
		Offset:  buf.U24BE(b[EntryOffsetField:]),
		Sectors: b[EntryCountField],
	}
}

// EncodeLocation writes loc into the first four bytes of b.
func EncodeLocation(b []byte, loc Location) error {
	if len(b) < EntrySize {
		return fmt.Errorf("location: %w", ErrTruncated)
	}
	if loc.Offset > MaxSectorOffset {
		return fmt.Errorf("location: offset %d exceeds 24 bits", loc.Offset)
	}
	buf.PutU24BE(b[EntryOffsetField:], loc.Offset)
	b[EntryCountField] = loc.Sectors
	return nil
}

// IsEmpty reports whether the entry is all zero, i.e. the slot was never written.
func (l Location) IsEmpty() bool {
	return l.Offset == 0 && l.Sectors == 0
}

// ByteRange returns the half-open file range the entry addresses.
func (l Location) ByteRange() (int, int) {
	start := int(l.Offset) * SectorSize
	return start, start + int(l.Sectors)*SectorSize
}

// Validate checks that the payload addressed by l lies inside a file of
// fileLen bytes and is large enough to carry the payload header.
func (l Location) Validate(fileLen int) error {
	if l.IsEmpty() {
		return nil
	}
	if l.Offset == 0 {
		return fmt.Errorf("location %s: %w", l, ErrOverlapsTable)
	}
	start, end, err := buf.CheckSpan(fileLen, int(l.Offset), int(l.Sectors), SectorSize)
	if err != nil {
		return fmt.Errorf("location %s: %w (%v)", l, ErrOutOfRange, err)
	}
	if end-start < PayloadHeaderSize {
		return fmt.Errorf("location %s: %w (span of %d bytes)", l, ErrTruncated, end-start)
	}
	return nil
}

func (l Location) String() string {
	start, end := l.ByteRange()
	return fmt.Sprintf("%d+%d [0x%X-0x%X)", l.Offset, l.Sectors, start, end)
}

// EntryOffset returns the byte offset of the table entry for local slot (x, z).
func EntryOffset(x, z int) int {
	return (x + z*GridSize) * EntrySize
}

// SlotAt is the inverse of EntryOffset for an entry-aligned byte offset.
func SlotAt(off int) (x, z int) {
	i := off / EntrySize
	return i % GridSize, i / GridSize
}

// CheckSlot validates local grid coordinates.
func CheckSlot(x, z int) error {
	if x < 0 || x >= GridSize || z < 0 || z >= GridSize {
		return fmt.Errorf("slot (%d, %d): %w", x, z, ErrBadSlot)
	}
	return nil
}

// LocalIndex maps an absolute chunk coordinate to its index within a region.
// Negative coordinates wrap the same way as positive ones, so -1 maps to 31.
func LocalIndex(v int32) int {
	m := int(v % GridSize)
	if m < 0 {
		m += GridSize
	}
	return m
}

// RegionIndex returns the region containing absolute chunk coordinate v.
func RegionIndex(v int32) int {
	return (int(v) - LocalIndex(v)) / GridSize
}
