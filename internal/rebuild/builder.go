// Package rebuild derives a fresh location table from a scanned grid.
//
// The table is always built from zero rather than patched: every recoverable
// chunk is written at the slot its own document declares, everything else is
// left out. Running the builder on an already consistent file reproduces the
// same table byte for byte.
package rebuild

import (
	"github.com/joshuapare/anvilfix/internal/format"
	"github.com/joshuapare/anvilfix/internal/scan"
)

// Table is a complete location table.
type Table [format.TableSize]byte

// Entry returns the location stored for local slot (x, z).
func (t *Table) Entry(x, z int) format.Location {
	off := format.EntryOffset(x, z)
	return format.DecodeLocation(t[off : off+format.EntrySize])
}

// Set stores loc for local slot (x, z).
func (t *Table) Set(x, z int, loc format.Location) {
	off := format.EntryOffset(x, z)
	// Offsets come from a 24-bit field, so encoding cannot fail.
	_ = format.EncodeLocation(t[off:off+format.EntrySize], loc)
}

// Bytes returns the table as a slice backed by t.
func (t *Table) Bytes() []byte {
	return t[:]
}

// Stats summarises one build.
type Stats struct {
	Relocated   int `json:"relocated"`   // cells written into the table
	Moved       int `json:"moved"`       // of those, written to a different slot
	Overwritten int `json:"overwritten"` // writes that replaced an earlier cell's entry
	Discarded   int `json:"discarded"`   // non-empty cells left out
	Empty       int `json:"empty"`
}

// Build writes every InPlace and WrongSlotSameRegion cell of g at the slot
// derived from its declared position and relabels it Relocated. Cells are
// visited z-major, x-minor; when two cells target the same slot the later
// one wins and the earlier entry is dropped without error.
func Build(g *scan.Grid) (*Table, Stats) {
	var (
		t       Table
		stats   Stats
		written [format.SlotCount]bool
	)
	g.Each(func(s *scan.Slot) {
		switch {
		case s.Status == scan.Empty:
			stats.Empty++
			return
		case !s.Status.Recoverable():
			stats.Discarded++
			return
		}

		tx, tz := s.Target()
		idx := tx + tz*format.GridSize
		if written[idx] {
			stats.Overwritten++
		}
		written[idx] = true
		t.Set(tx, tz, s.Location)

		if tx != s.X || tz != s.Z {
			stats.Moved++
		}
		stats.Relocated++
		s.Status = scan.Relocated
	})
	return &t, stats
}
