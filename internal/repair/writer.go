package repair

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joshuapare/anvilfix/internal/format"
)

// Writer performs the file operations of a repair.
type Writer struct{}

// NewWriter creates a new writer with default settings.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteTable overwrites the first TableSize bytes of the file at path with
// table and flushes the data to disk. Every other byte of the file is left
// untouched. The write is a single positioned write and is not atomic: a
// crash part way through can leave a partially written table.
func (w *Writer) WriteTable(path string, table []byte) error {
	if len(table) != format.TableSize {
		return fmt.Errorf("table is %d bytes, want %d", len(table), format.TableSize)
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat: %w", err)
	}
	if info.Size() < format.TableSize {
		f.Close()
		return fmt.Errorf("file is %d bytes: %w", info.Size(), format.ErrTruncated)
	}
	if _, err := f.WriteAt(table, 0); err != nil {
		f.Close()
		return fmt.Errorf("writing table: %w", err)
	}
	if err := datasync(f); err != nil {
		f.Close()
		return fmt.Errorf("syncing file: %w", err)
	}
	return f.Close()
}

// ReplaceTable writes a copy of the file at path with its table replaced by
// table, then renames the copy over the original. Readers see either the old
// or the new file, never a half-written table.
func (w *Writer) ReplaceTable(path string, table []byte) error {
	if len(table) != format.TableSize {
		return fmt.Errorf("table is %d bytes, want %d", len(table), format.TableSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	if len(data) < format.TableSize {
		return fmt.Errorf("file is %d bytes: %w", len(data), format.ErrTruncated)
	}
	copy(data, table)
	return w.WriteAtomic(path, data)
}

// WriteAtomic writes data to a file atomically using temp-file-then-rename.
// The permissions of an existing target are preserved.
//
// Steps:
//  1. Create temporary file in same directory as target
//  2. Write data to temp file
//  3. Fsync temp file to ensure data is on disk
//  4. Rename temp file to target (atomic operation)
//  5. Fsync parent directory to ensure rename is persisted
//
// If any step fails, the temp file is cleaned up and the original target
// file (if it exists) remains unchanged.
func (w *Writer) WriteAtomic(path string, data []byte) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}

	dir := filepath.Dir(absPath)

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(dir, ".anvilfix-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	cleanup := func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}

	if info, statErr := os.Stat(absPath); statErr == nil {
		if chmodErr := tmpFile.Chmod(info.Mode().Perm()); chmodErr != nil {
			cleanup()
			return fmt.Errorf("setting temp file mode: %w", chmodErr)
		}
	}

	if _, writeErr := tmpFile.Write(data); writeErr != nil {
		cleanup()
		return fmt.Errorf("writing to temp file: %w", writeErr)
	}

	if syncErr := tmpFile.Sync(); syncErr != nil {
		cleanup()
		return fmt.Errorf("syncing temp file: %w", syncErr)
	}

	// Close before rename (required on Windows)
	if closeErr := tmpFile.Close(); closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if renameErr := os.Rename(tmpPath, absPath); renameErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", renameErr)
	}

	// The data is already in place; a failed directory sync only weakens
	// durability of the rename.
	_ = syncDir(dir)

	return nil
}

// CreateBackup copies the file to <path><suffix>.<timestamp> and verifies
// the copy. It returns the backup path.
func (w *Writer) CreateBackup(path, suffix string) (string, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("source file not found: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	var backupPath string
	if suffix != "" && suffix[0] == '.' {
		backupPath = fmt.Sprintf("%s%s.%s", path, suffix, timestamp)
	} else {
		backupPath = fmt.Sprintf("%s.%s.%s", path, suffix, timestamp)
	}

	if copyErr := w.CopyFile(path, backupPath); copyErr != nil {
		return "", fmt.Errorf("writing backup: %w", copyErr)
	}

	if verifyErr := verifyBackup(backupPath, stat.Size()); verifyErr != nil {
		os.Remove(backupPath)
		return "", fmt.Errorf("backup verification failed: %w", verifyErr)
	}

	return backupPath, nil
}

// CopyFile copies a file from src to dst atomically.
func (w *Writer) CopyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer srcFile.Close()

	data, err := io.ReadAll(srcFile)
	if err != nil {
		return fmt.Errorf("reading source file: %w", err)
	}

	if writeErr := w.WriteAtomic(dst, data); writeErr != nil {
		return fmt.Errorf("writing destination file: %w", writeErr)
	}

	return nil
}

// syncDir fsyncs a directory so a rename inside it survives a crash.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("opening directory: %w", err)
	}
	defer d.Close()

	if syncErr := d.Sync(); syncErr != nil {
		return fmt.Errorf("syncing directory: %w", syncErr)
	}

	return nil
}

// verifyBackup checks that the backup exists, is readable and has the
// expected size.
func verifyBackup(path string, expectedSize int64) error {
	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("backup file not found: %w", err)
	}

	if stat.Size() != expectedSize {
		return fmt.Errorf("backup size mismatch: expected %d, got %d", expectedSize, stat.Size())
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("backup file not readable: %w", err)
	}
	f.Close()

	return nil
}
