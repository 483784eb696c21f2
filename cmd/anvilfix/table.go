package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/anvilfix/internal/format"
	"github.com/joshuapare/anvilfix/internal/logger"
	"github.com/joshuapare/anvilfix/internal/render"
	"github.com/joshuapare/anvilfix/internal/repair"
)

var (
	tableLimit   int
	tableRebuilt bool
)

var tableCmd = &cobra.Command{
	Use:   "table <region-file>",
	Short: "Dump the location table of a region file",
	Long: `Prints the location table of a region file as hex, one 4-byte entry per
line with its byte offset. With --rebuilt the table that repair would write is
shown instead of the one on disk.`,
	Example: `  anvilfix table --limit 10 r.0.0.mca
  anvilfix table --rebuilt r.0.0.mca`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTable(args)
	},
}

func init() {
	tableCmd.Flags().IntVarP(&tableLimit, "limit", "l", 0, "Number of entries to print (0 = all)")
	tableCmd.Flags().BoolVar(&tableRebuilt, "rebuilt", false, "Dump the rebuilt table")

	rootCmd.AddCommand(tableCmd)
}

func runTable(args []string) error {
	path := args[0]
	if tableLimit < 0 {
		return fmt.Errorf("invalid limit %d", tableLimit)
	}

	var table []byte
	if tableRebuilt {
		a, err := repair.New(repair.Config{DryRun: true, Logger: logger.L}).Analyze(path)
		if err != nil {
			return err
		}
		table = a.Table.Bytes()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open region file: %w", err)
		}
		defer f.Close()
		table = make([]byte, format.TableSize)
		if _, err := f.ReadAt(table, 0); err != nil {
			return fmt.Errorf("reading location table: %w", err)
		}
	}

	if jsonOut {
		n := format.SlotCount
		if tableLimit > 0 && tableLimit < n {
			n = tableLimit
		}
		entries := make([]tableEntry, n)
		for i := range entries {
			x, z := format.SlotAt(i * format.EntrySize)
			loc := format.DecodeLocation(table[i*format.EntrySize:])
			entries[i] = tableEntry{
				Offset:   i * format.EntrySize,
				X:        x,
				Z:        z,
				Hex:      hex.EncodeToString(table[i*format.EntrySize : (i+1)*format.EntrySize]),
				Location: loc,
			}
		}
		return printJSON(entries)
	}

	if quiet {
		return nil
	}
	return render.Table(os.Stdout, table, tableLimit)
}

type tableEntry struct {
	Offset   int             `json:"offset"`
	X        int             `json:"x"`
	Z        int             `json:"z"`
	Hex      string          `json:"hex"`
	Location format.Location `json:"location"`
}
