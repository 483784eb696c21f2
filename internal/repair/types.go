package repair

import (
	"time"

	"github.com/joshuapare/anvilfix/internal/format"
	"github.com/joshuapare/anvilfix/internal/rebuild"
	"github.com/joshuapare/anvilfix/internal/scan"
)

// FileStatus is the outcome of repairing one file.
type FileStatus int

const (
	FileUnchanged FileStatus = iota // rebuilt table equals the one on disk
	FileRepaired                    // new table written
	FilePlanned                     // dry run: table would have been written
)

func (s FileStatus) String() string {
	switch s {
	case FileUnchanged:
		return "UNCHANGED"
	case FileRepaired:
		return "REPAIRED"
	case FilePlanned:
		return "PLANNED"
	default:
		return "UNKNOWN"
	}
}

// MarshalText lets statuses appear by name in JSON reports.
func (s FileStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FileResult is the per-file report returned instead of process-wide tallies.
type FileResult struct {
	Path        string            `json:"path"`
	Region      format.RegionPos  `json:"region"`
	Status      FileStatus        `json:"status"`
	Counts      scan.Counts       `json:"counts"` // statuses as scanned, before the rebuild
	Stats       rebuild.Stats     `json:"stats"`
	Changes     []Change          `json:"changes,omitempty"`
	Diagnostics []scan.Diagnostic `json:"diagnostics,omitempty"`
	BackupPath  string            `json:"backup_path,omitempty"`
	Duration    time.Duration     `json:"duration"`
}

// FileFailure records a file the batch could not repair.
type FileFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
	Err   error  `json:"-"`
}

// BatchResult aggregates the results of a batch.
type BatchResult struct {
	Files     []*FileResult `json:"files"`
	Failures  []FileFailure `json:"failures,omitempty"`
	Repaired  int           `json:"repaired"`
	Unchanged int           `json:"unchanged"`
	Planned   int           `json:"planned"`
	Counts    scan.Counts   `json:"counts"`
	Stats     rebuild.Stats `json:"stats"`
	Duration  time.Duration `json:"duration"`
}

// Failed returns the number of files that could not be repaired.
func (b *BatchResult) Failed() int {
	return len(b.Failures)
}

func (b *BatchResult) add(res *FileResult) {
	b.Files = append(b.Files, res)
	b.Counts.Merge(res.Counts)
	b.Stats.Relocated += res.Stats.Relocated
	b.Stats.Moved += res.Stats.Moved
	b.Stats.Overwritten += res.Stats.Overwritten
	b.Stats.Discarded += res.Stats.Discarded
	b.Stats.Empty += res.Stats.Empty
	switch res.Status {
	case FileRepaired:
		b.Repaired++
	case FileUnchanged:
		b.Unchanged++
	case FilePlanned:
		b.Planned++
	}
}
