package scan

import (
	"fmt"

	"github.com/joshuapare/anvilfix/internal/chunkdoc"
	"github.com/joshuapare/anvilfix/internal/codec"
	"github.com/joshuapare/anvilfix/internal/format"
)

// Slot is one cell of the 32x32 grid.
type Slot struct {
	X, Z        int
	Location    format.Location
	Compression codec.Type
	Declared    chunkdoc.Position // valid once the document decoded
	Status      Status
	Err         error
}

// Target returns the local slot the payload declares it belongs to.
func (s *Slot) Target() (int, int) {
	return format.LocalIndex(s.Declared.X), format.LocalIndex(s.Declared.Z)
}

// Grid is the classified view of one region file's location table. It is
// indexed [x][z] and lives only for the duration of one repair.
type Grid struct {
	Region      format.RegionPos
	Slots       [format.GridSize][format.GridSize]Slot
	Diagnostics []Diagnostic
}

// At returns the slot at local (x, z).
func (g *Grid) At(x, z int) *Slot {
	return &g.Slots[x][z]
}

// Each visits slots z-major, x-minor: (0,0), (1,0) ... (31,0), (0,1) ...
// This is table order and the order the builder resolves collisions in.
func (g *Grid) Each(fn func(s *Slot)) {
	for z := 0; z < format.GridSize; z++ {
		for x := 0; x < format.GridSize; x++ {
			fn(&g.Slots[x][z])
		}
	}
}

// Counts tallies the current status of every slot.
func (g *Grid) Counts() Counts {
	var c Counts
	g.Each(func(s *Slot) { c.Add(s.Status) })
	return c
}

// Diagnostic records a slot that could not be kept where it is.
type Diagnostic struct {
	X           int                `json:"x"`
	Z           int                `json:"z"`
	Status      Status             `json:"status"`
	Location    format.Location    `json:"-"`
	Start       int                `json:"start"`
	End         int                `json:"end"`
	Compression codec.Type         `json:"compression"`
	Length      uint32             `json:"length"`
	Declared    *chunkdoc.Position `json:"declared,omitempty"`
	Err         error              `json:"-"`
	Message     string             `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("slot (%d, %d) %s: sectors %s, compression %d: %s",
		d.X, d.Z, d.Status, d.Location, byte(d.Compression), d.Message)
}
