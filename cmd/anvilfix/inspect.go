package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/anvilfix/internal/format"
	"github.com/joshuapare/anvilfix/internal/logger"
	"github.com/joshuapare/anvilfix/internal/rebuild"
	"github.com/joshuapare/anvilfix/internal/render"
	"github.com/joshuapare/anvilfix/internal/repair"
	"github.com/joshuapare/anvilfix/internal/scan"
)

var (
	inspectSlots   bool
	inspectRows    string
	inspectRebuilt bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <region-file>",
	Short: "Show the status of every slot of a region file",
	Long: `Scans a region file without modifying it and prints a 32x32 map of slot
statuses, one row per z and one column per x.

Use --slots to list the location, status and declared position of each slot,
limited to the rows given by --rows.`,
	Example: `  anvilfix inspect r.0.0.mca
  anvilfix inspect --slots --rows 0-2 r.-1.3.mca
  anvilfix inspect --rebuilt r.0.0.mca`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(args)
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectSlots, "slots", false, "List slots individually")
	inspectCmd.Flags().StringVar(&inspectRows, "rows", "0-31", "Rows (z) to list with --slots, as N or A-B")
	inspectCmd.Flags().BoolVar(&inspectRebuilt, "rebuilt", false,
		"Show statuses after the table is rebuilt")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("region file not found: %s", path)
	}

	rows, err := parseRows(inspectRows)
	if err != nil {
		return err
	}

	a, err := repair.New(repair.Config{DryRun: true, Logger: logger.L}).Analyze(path)
	if err != nil {
		return err
	}

	grid := a.Scanned
	if inspectRebuilt {
		grid = a.Built
	}

	if jsonOut {
		return printJSON(inspectResult{
			Path:        path,
			Region:      a.Region,
			Counts:      grid.Counts(),
			Stats:       a.Stats,
			Changes:     a.Changes.Len(),
			Diagnostics: a.Scanned.Diagnostics,
		})
	}

	printInfo("Region:  %s (%s)\n", a.Region, path)
	printInfo("Changes: %d table entries would be rewritten\n\n", a.Changes.Len())

	if !quiet {
		if err := render.Grid(os.Stdout, grid, render.Options{Color: useColor()}); err != nil {
			return err
		}
	}
	printInfo("\n%s\n", render.Legend())
	printCounts(grid.Counts())

	if inspectSlots && !quiet {
		printInfo("\n")
		if err := render.Slots(os.Stdout, grid, allColumns(), rows); err != nil {
			return err
		}
	}

	if verbose && len(a.Scanned.Diagnostics) > 0 {
		printInfo("\nDiagnostics:\n")
		for _, d := range a.Scanned.Diagnostics {
			printInfo("  %s\n", d)
		}
	}
	return nil
}

type inspectResult struct {
	Path        string            `json:"path"`
	Region      format.RegionPos  `json:"region"`
	Counts      scan.Counts       `json:"counts"`
	Stats       rebuild.Stats     `json:"stats"`
	Changes     int               `json:"changes"`
	Diagnostics []scan.Diagnostic `json:"diagnostics,omitempty"`
}

func printCounts(c scan.Counts) {
	printInfo("\nEmpty: %d  In place: %d  Wrong slot: %d  Wrong region: %d  Decode error: %d  Bad compression: %d",
		c.Empty, c.InPlace, c.WrongSlot, c.WrongRegion, c.DecodeError, c.BadCompressionType)
	if c.Relocated > 0 {
		printInfo("  Relocated: %d", c.Relocated)
	}
	printInfo("\n")
}

func allColumns() []int {
	cols := make([]int, format.GridSize)
	for i := range cols {
		cols[i] = i
	}
	return cols
}

// parseRows parses "N" or "A-B" into the inclusive list of rows.
func parseRows(s string) ([]int, error) {
	lo, hi, found := strings.Cut(strings.TrimSpace(s), "-")
	first, err := strconv.Atoi(lo)
	if err != nil {
		return nil, fmt.Errorf("invalid rows %q: use N or A-B", s)
	}
	last := first
	if found {
		if last, err = strconv.Atoi(hi); err != nil {
			return nil, fmt.Errorf("invalid rows %q: use N or A-B", s)
		}
	}
	if first < 0 || last >= format.GridSize || first > last {
		return nil, fmt.Errorf("invalid rows %q: must lie within 0-%d", s, format.GridSize-1)
	}
	rows := make([]int, 0, last-first+1)
	for z := first; z <= last; z++ {
		rows = append(rows, z)
	}
	return rows, nil
}
