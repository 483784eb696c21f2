package repair

import "fmt"

// FileError reports a failure that stops the repair of one file. Slot-level
// problems never produce a FileError; they are recorded as diagnostics.
type FileError struct {
	Path string // File being repaired
	Op   string // "name", "read", "scan", "backup", "write"
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *FileError) Error() string {
	return fmt.Sprintf("repair %s: %s: %v", e.Path, e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *FileError) Unwrap() error {
	return e.Err
}
