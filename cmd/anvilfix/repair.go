package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joshuapare/anvilfix/internal/logger"
	"github.com/joshuapare/anvilfix/internal/regionfs"
	"github.com/joshuapare/anvilfix/internal/repair"
)

var (
	repairExt          string
	repairDryRun       bool
	repairBackup       bool
	repairBackupSuffix string
	repairAtomic       bool
	repairShowChanges  bool
)

var repairCmd = &cobra.Command{
	Use:   "repair <world-or-region-dir>",
	Short: "Rebuild the location table of every region file in a folder",
	Long: `Rebuilds the location table of every region file in a world's region folder.

The repair command:
1. Resolves the region folder (the folder itself or its "region" subfolder)
2. Reads every chunk payload and the position it declares
3. Builds a fresh location table listing each chunk at its declared slot
4. Writes the table over the first 4096 bytes of the file if it changed
5. Reports per-file results

Chunks that cannot be decoded or that belong to another region are dropped
from the table; their bytes stay in the file. Files that cannot be read are
reported and skipped. Use --backup to keep a copy of each file before it is
rewritten.`,
	Example: `  # Preview what would change
  anvilfix repair --dry-run ~/.minecraft/saves/World

  # Repair with a backup of each modified file
  anvilfix repair --backup ~/.minecraft/saves/World/region

  # Replace files atomically instead of patching them in place
  anvilfix repair --atomic --show-changes World`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		go func() {
			// A second interrupt kills the process.
			<-ctx.Done()
			stop()
		}()
		return runRepair(ctx, args)
	},
}

func init() {
	repairCmd.Flags().StringVar(&repairExt, "ext", ".mca", "Extension of region files")
	repairCmd.Flags().BoolVarP(&repairDryRun, "dry-run", "n", false,
		"Compute new tables without writing them")
	repairCmd.Flags().BoolVar(&repairBackup, "backup", false,
		"Copy each file before its table is rewritten")
	repairCmd.Flags().StringVarP(&repairBackupSuffix, "backup-suffix", "b", ".bak",
		"Suffix for backup files")
	repairCmd.Flags().BoolVar(&repairAtomic, "atomic", false,
		"Write a full copy of each file and rename it into place")
	repairCmd.Flags().BoolVar(&repairShowChanges, "show-changes", false,
		"List every table entry that changes")

	rootCmd.AddCommand(repairCmd)
}

func runRepair(ctx context.Context, args []string) error {
	dir, err := regionfs.ResolveRegionDir(args[0])
	if err != nil {
		return err
	}

	listing, err := regionfs.List(dir, repairExt)
	if listing != nil && len(listing.Invalid) > 0 && !jsonOut {
		printInfo("Warning: skipping %d entries in %s:\n", len(listing.Invalid), dir)
		for _, e := range listing.Invalid {
			printInfo("  - %s: %s\n", e.Reason(), e.Name)
		}
		printInfo("\n")
	}
	if err != nil {
		return err
	}

	if !jsonOut {
		printInfo("Found %d region file(s) in %s\n", len(listing.Files), dir)
		if repairDryRun {
			printInfo("Mode: DRY-RUN (no changes will be made)\n")
		}
		printInfo("\n")
	}

	r := repair.New(repair.Config{
		DryRun:       repairDryRun,
		Backup:       repairBackup,
		BackupSuffix: repairBackupSuffix,
		Atomic:       repairAtomic,
		Logger:       logger.L,
	})

	bar := newBatchProgress(len(listing.Files), !quiet && !jsonOut && !verbose)
	batch, err := r.RepairBatch(ctx, listing.Files, func(path string, res *repair.FileResult, err error) {
		bar.Increment()
		if jsonOut {
			return
		}
		if err != nil {
			printVerbose("✗ %s: %v\n", filepath.Base(path), err)
			return
		}
		printVerbose("%s %-16s %-9s %s\n", fileMark(res.Status), filepath.Base(path),
			res.Status, summarizeFile(res))
	})
	bar.Wait()

	interrupted := errors.Is(err, context.Canceled)
	if err != nil && !interrupted {
		return err
	}

	if jsonOut {
		if jerr := printJSON(batch); jerr != nil {
			return jerr
		}
	} else {
		printBatch(batch, len(listing.Files))
	}

	switch {
	case interrupted:
		printError("interrupted after %d of %d file(s)\n",
			len(batch.Files)+batch.Failed(), len(listing.Files))
		return errReported
	case batch.Failed() > 0:
		return errReported
	}
	return nil
}

func printBatch(batch *repair.BatchResult, total int) {
	if repairShowChanges {
		for _, res := range batch.Files {
			if len(res.Changes) == 0 {
				continue
			}
			printInfo("%s\n%s\n", filepath.Base(res.Path), repair.Export(res.Changes))
		}
		printInfo("\n")
	}

	for _, f := range batch.Failures {
		printError("%s: %s\n", filepath.Base(f.Path), f.Error)
	}

	if repairDryRun {
		printInfo("=== DRY-RUN RESULTS ===\n")
		printInfo("Would repair: %d file(s)\n", batch.Planned)
	} else {
		printInfo("=== REPAIR RESULTS ===\n")
		printInfo("Repaired:  %d file(s)\n", batch.Repaired)
	}
	printInfo("Unchanged: %d file(s)\n", batch.Unchanged)
	if batch.Failed() > 0 {
		printInfo("Failed:    %d file(s)\n", batch.Failed())
	}
	if skipped := total - len(batch.Files) - batch.Failed(); skipped > 0 {
		printInfo("Skipped:   %d file(s)\n", skipped)
	}
	printInfo("\n")

	c, s := batch.Counts, batch.Stats
	printInfo("Chunks in place:     %d\n", c.InPlace)
	printInfo("Chunks relocated:    %d\n", s.Moved)
	printInfo("Chunks overwritten:  %d\n", s.Overwritten)
	printInfo("Wrong region:        %d\n", c.WrongRegion)
	printInfo("Decode errors:       %d\n", c.DecodeError)
	printInfo("Bad compression:     %d\n", c.BadCompressionType)
	printInfo("Duration: %v\n", batch.Duration)

	if !repairDryRun && batch.Repaired > 0 && repairBackup {
		printInfo("\nBackups were written next to each repaired file.\n")
	}
}

func summarizeFile(res *repair.FileResult) string {
	return fmt.Sprintf("%d changed, %d moved, %d dropped",
		len(res.Changes), res.Stats.Moved, res.Stats.Discarded)
}

func fileMark(s repair.FileStatus) string {
	switch s {
	case repair.FileRepaired:
		return "✓"
	case repair.FilePlanned:
		return "~"
	default:
		return "○"
	}
}
