// Package repair rewrites the location table of region files from the
// positions their chunks declare.
package repair

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joshuapare/anvilfix/internal/format"
	"github.com/joshuapare/anvilfix/internal/logger"
	"github.com/joshuapare/anvilfix/internal/mmfile"
	"github.com/joshuapare/anvilfix/internal/rebuild"
	"github.com/joshuapare/anvilfix/internal/scan"
)

// Config contains configuration options for the repairer.
type Config struct {
	// DryRun computes the new table without writing anything.
	DryRun bool

	// Backup copies each file before its table is rewritten.
	Backup bool

	// BackupSuffix is appended to the file name of backups. Default: ".bak"
	BackupSuffix string

	// Atomic writes a full copy of the file and renames it into place
	// instead of overwriting the table in place.
	Atomic bool

	// Logger receives slot diagnostics and per-file summaries. Default: logger.L
	Logger *slog.Logger
}

// Repairer orchestrates scan, rebuild and write for region files.
type Repairer struct {
	config Config
	writer *Writer
	log    *slog.Logger
}

// New creates a repairer with the given configuration.
func New(config Config) *Repairer {
	if config.BackupSuffix == "" {
		config.BackupSuffix = ".bak"
	}
	l := config.Logger
	if l == nil {
		l = logger.L
	}
	return &Repairer{config: config, writer: NewWriter(), log: l}
}

// Analysis is the in-memory result of scanning and rebuilding one file.
type Analysis struct {
	Path     string
	Region   format.RegionPos
	Scanned  *scan.Grid // statuses as classified by the scan
	Built    *scan.Grid // statuses after the rebuild (recovered cells are Relocated)
	Original []byte     // table as read from disk
	Table    *rebuild.Table
	Stats    rebuild.Stats
	Changes  *ChangeLog
}

// Analyze scans the file at path and computes its rebuilt table without
// modifying the file.
func (r *Repairer) Analyze(path string) (*Analysis, error) {
	region, err := format.ParseRegionName(path)
	if err != nil {
		return nil, &FileError{Path: path, Op: "name", Err: err}
	}

	data, release, err := mmfile.Map(path)
	if err != nil {
		return nil, &FileError{Path: path, Op: "read", Err: err}
	}
	defer release()

	grid, err := scan.Scan(data, region, scan.WithLogger(r.log), scan.WithFile(filepath.Base(path)))
	if err != nil {
		return nil, &FileError{Path: path, Op: "scan", Err: err}
	}

	scanned := *grid
	table, stats := rebuild.Build(grid)
	original := append([]byte(nil), data[:format.TableSize]...)

	return &Analysis{
		Path:     path,
		Region:   region,
		Scanned:  &scanned,
		Built:    grid,
		Original: original,
		Table:    table,
		Stats:    stats,
		Changes:  Diff(original, table),
	}, nil
}

// RepairFile repairs the location table of one region file. Only bytes
// [0, TableSize) of the file are ever rewritten, and only when the rebuilt
// table differs from the one on disk.
func (r *Repairer) RepairFile(path string) (*FileResult, error) {
	start := time.Now()

	a, err := r.Analyze(path)
	if err != nil {
		return nil, err
	}

	result := &FileResult{
		Path:        path,
		Region:      a.Region,
		Counts:      a.Scanned.Counts(),
		Stats:       a.Stats,
		Changes:     a.Changes.Entries(),
		Diagnostics: a.Scanned.Diagnostics,
	}

	switch {
	case a.Changes.Len() == 0:
		result.Status = FileUnchanged
	case r.config.DryRun:
		result.Status = FilePlanned
	default:
		if r.config.Backup {
			backup, err := r.writer.CreateBackup(path, r.config.BackupSuffix)
			if err != nil {
				return nil, &FileError{Path: path, Op: "backup", Err: err}
			}
			result.BackupPath = backup
		}
		if r.config.Atomic {
			err = r.writer.ReplaceTable(path, a.Table.Bytes())
		} else {
			err = r.writer.WriteTable(path, a.Table.Bytes())
		}
		if err != nil {
			return nil, &FileError{Path: path, Op: "write", Err: err}
		}
		result.Status = FileRepaired
	}

	result.Duration = time.Since(start)
	r.log.Info("region processed",
		"file", filepath.Base(path),
		"status", result.Status.String(),
		"changed", len(result.Changes),
		"relocated", a.Stats.Relocated,
		"moved", a.Stats.Moved,
		"discarded", a.Stats.Discarded,
		"overwritten", a.Stats.Overwritten,
	)
	return result, nil
}

// RepairBatch repairs paths one after another. A file that fails is recorded
// in BatchResult.Failures and the batch moves on. Cancelling ctx stops the
// batch before the next file; a file already started is always finished.
// onFile, if set, is called after every file.
func (r *Repairer) RepairBatch(ctx context.Context, paths []string, onFile func(path string, res *FileResult, err error)) (*BatchResult, error) {
	start := time.Now()
	batch := &BatchResult{Files: make([]*FileResult, 0, len(paths))}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			batch.Duration = time.Since(start)
			return batch, err
		}

		res, err := r.RepairFile(path)
		if err != nil {
			r.log.Error("region failed", "file", filepath.Base(path), "err", err)
			batch.Failures = append(batch.Failures, FileFailure{Path: path, Error: err.Error(), Err: err})
		} else {
			batch.add(res)
		}
		if onFile != nil {
			onFile(path, res, err)
		}
	}

	batch.Duration = time.Since(start)
	return batch, nil
}
