// Package regionfs locates the region folder of a world save and lists the
// files a repair should visit.
package regionfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirName is the folder name a world keeps its region files in.
const DirName = "region"

var (
	// ErrNoRegionDir indicates the path is neither a region folder nor a
	// folder containing one.
	ErrNoRegionDir = errors.New("regionfs: no region folder")

	// ErrNoRegionFiles indicates the region folder holds no file with the
	// requested extension.
	ErrNoRegionFiles = errors.New("regionfs: no region files")
)

// ResolveRegionDir returns path when it is a folder named "region", or
// path/region when that is a folder.
func ResolveRegionDir(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a folder: %w", path, ErrNoRegionDir)
	}
	if filepath.Base(filepath.Clean(path)) == DirName {
		return path, nil
	}
	sub := filepath.Join(path, DirName)
	if info, err := os.Stat(sub); err == nil && info.IsDir() {
		return sub, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrNoRegionDir)
}

// Entry is a folder entry that will not be repaired.
type Entry struct {
	Name string `json:"name"`
	Dir  bool   `json:"dir"`
}

// Reason describes why the entry was skipped.
func (e Entry) Reason() string {
	if e.Dir {
		return "subfolder"
	}
	return "invalid extension"
}

// Listing is the content of a region folder split by eligibility.
type Listing struct {
	Dir     string   `json:"dir"`
	Files   []string `json:"files"`             // full paths, sorted
	Invalid []Entry  `json:"invalid,omitempty"` // sorted by name
}

// List returns the regular files in dir whose extension is ext, along with
// every other entry. ext may be given with or without the leading dot and is
// matched case-sensitively. ErrNoRegionFiles is returned, together with the
// listing, when no file matches.
func List(dir, ext string) (*Listing, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	listing := &Listing{Dir: dir, Files: make([]string, 0, len(entries))}
	for _, entry := range entries {
		name := entry.Name()
		if entry.Type().IsRegular() && filepath.Ext(name) == ext {
			listing.Files = append(listing.Files, filepath.Join(dir, name))
			continue
		}
		listing.Invalid = append(listing.Invalid, Entry{Name: name, Dir: entry.IsDir()})
	}
	sort.Strings(listing.Files)

	if len(listing.Files) == 0 {
		return listing, fmt.Errorf("%s: %w with extension %s", dir, ErrNoRegionFiles, ext)
	}
	return listing, nil
}
