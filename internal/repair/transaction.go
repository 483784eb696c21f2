package repair

import (
	"fmt"
	"strings"

	"github.com/joshuapare/anvilfix/internal/format"
	"github.com/joshuapare/anvilfix/internal/rebuild"
)

// Change records one table entry that differs between the file and the
// rebuilt table.
type Change struct {
	X   int             `json:"x"`
	Z   int             `json:"z"`
	Old format.Location `json:"old"`
	New format.Location `json:"new"`
}

// Kind describes the change for humans.
func (c Change) Kind() string {
	switch {
	case c.New.IsEmpty():
		return "cleared"
	case c.Old.IsEmpty():
		return "filled"
	default:
		return "replaced"
	}
}

// ChangeLog is the ordered list of table entries a repair rewrites.
type ChangeLog struct {
	entries []Change
}

// Diff compares the on-disk table old with the rebuilt table.
func Diff(old []byte, table *rebuild.Table) *ChangeLog {
	log := &ChangeLog{entries: make([]Change, 0, 16)}
	for z := 0; z < format.GridSize; z++ {
		for x := 0; x < format.GridSize; x++ {
			off := format.EntryOffset(x, z)
			prev := format.DecodeLocation(old[off:])
			next := table.Entry(x, z)
			if prev != next {
				log.entries = append(log.entries, Change{X: x, Z: z, Old: prev, New: next})
			}
		}
	}
	return log
}

// Len returns the number of changed entries.
func (l *ChangeLog) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the changes in table order.
func (l *ChangeLog) Entries() []Change {
	out := make([]Change, len(l.entries))
	copy(out, l.entries)
	return out
}

// Export generates a human-readable summary of changes, such as the
// Changes of a FileResult.
func Export(changes []Change) string {
	if len(changes) == 0 {
		return "Table changes: none"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Table changes: %d entries\n", len(changes)))
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")
	for _, e := range changes {
		sb.WriteString(fmt.Sprintf("  [%2d,%2d] @0x%03X  %-8s  %-24s -> %s\n",
			e.X, e.Z, format.EntryOffset(e.X, e.Z), e.Kind(), e.Old, e.New))
	}
	return sb.String()
}
