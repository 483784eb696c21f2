// Package render prints scanned grids and location tables for humans.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joshuapare/anvilfix/internal/format"
	"github.com/joshuapare/anvilfix/internal/scan"
)

// Options controls grid rendering.
type Options struct {
	// Color styles each symbol by status.
	Color bool
}

var (
	okColor      = lipgloss.Color("#04B575")
	movedColor   = lipgloss.Color("#00D7FF")
	warningColor = lipgloss.Color("#FFA500")
	errorColor   = lipgloss.Color("#FF4B4B")
	mutedColor   = lipgloss.Color("#666666")

	axisStyle = lipgloss.NewStyle().Foreground(mutedColor)

	statusStyles = map[scan.Status]lipgloss.Style{
		scan.BadCompressionType:  lipgloss.NewStyle().Foreground(errorColor).Bold(true),
		scan.DecodeError:         lipgloss.NewStyle().Foreground(errorColor),
		scan.InPlace:             lipgloss.NewStyle().Foreground(okColor),
		scan.WrongSlotSameRegion: lipgloss.NewStyle().Foreground(warningColor).Bold(true),
		scan.WrongRegion:         lipgloss.NewStyle().Foreground(errorColor).Bold(true),
		scan.Relocated:           lipgloss.NewStyle().Foreground(movedColor),
	}
)

// Symbol returns the single character used for s in the status grid.
func Symbol(s scan.Status) string {
	switch s {
	case scan.Empty:
		return " "
	case scan.BadCompressionType:
		return "V"
	case scan.DecodeError:
		return "."
	case scan.InPlace:
		return "o"
	case scan.WrongSlotSameRegion:
		return "X"
	case scan.WrongRegion:
		return "0"
	case scan.Relocated:
		return "_"
	default:
		return "?"
	}
}

// Legend lists the grid symbols in status order.
func Legend() string {
	statuses := []scan.Status{
		scan.Empty, scan.BadCompressionType, scan.DecodeError, scan.InPlace,
		scan.WrongSlotSameRegion, scan.WrongRegion, scan.Relocated,
	}
	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		parts = append(parts, fmt.Sprintf("'%s' %s", Symbol(s), s))
	}
	return strings.Join(parts, "  ")
}

// Grid writes the 32x32 status map of g: one row per z, one column per x.
func Grid(w io.Writer, g *scan.Grid, opts Options) error {
	var sb strings.Builder

	header := "  "
	for x := 0; x < format.GridSize; x++ {
		header += fmt.Sprintf(" %2d", x)
	}
	sb.WriteString(paint(axisStyle, header, opts.Color))
	sb.WriteByte('\n')

	for z := 0; z < format.GridSize; z++ {
		sb.WriteString(paint(axisStyle, fmt.Sprintf("%-2d", z), opts.Color))
		for x := 0; x < format.GridSize; x++ {
			status := g.At(x, z).Status
			sb.WriteString("  ")
			sb.WriteString(paint(statusStyles[status], Symbol(status), opts.Color))
		}
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func paint(style lipgloss.Style, s string, color bool) string {
	if !color {
		return s
	}
	return style.Render(s)
}

// Slots writes one line per slot for every x in xs and z in zs, z-major.
// Declared coordinates are only shown for slots whose document decoded.
func Slots(w io.Writer, g *scan.Grid, xs, zs []int) error {
	for _, z := range zs {
		for _, x := range xs {
			if err := format.CheckSlot(x, z); err != nil {
				return err
			}
			s := g.At(x, z)
			line := fmt.Sprintf("[%2d, %2d] %-28s %-15s", x, z, s.Location, s.Status)
			if hasDeclared(s.Status) {
				tx, tz := s.Target()
				line += fmt.Sprintf(" declared %-16s -> [%2d, %2d]", s.Declared, tx, tz)
			} else if s.Err != nil {
				line += fmt.Sprintf(" %v", s.Err)
			}
			if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
				return err
			}
		}
	}
	return nil
}

func hasDeclared(s scan.Status) bool {
	switch s {
	case scan.InPlace, scan.WrongSlotSameRegion, scan.WrongRegion, scan.Relocated:
		return true
	default:
		return false
	}
}

// Table writes a hex dump of table, four bytes (one entry) per line. A
// positive limit stops after that many entries.
func Table(w io.Writer, table []byte, limit int) error {
	n := len(table) / format.EntrySize
	if limit > 0 && limit < n {
		n = limit
	}
	for i := 0; i < n; i++ {
		off := i * format.EntrySize
		e := table[off : off+format.EntrySize]
		if _, err := fmt.Fprintf(w, "0x%03X   %02x %02x %02x %02x\n", off, e[0], e[1], e[2], e[3]); err != nil {
			return err
		}
	}
	return nil
}
