package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joshuapare/anvilfix/internal/chunkdoc"
	"github.com/joshuapare/anvilfix/internal/codec"
	"github.com/joshuapare/anvilfix/internal/testutil"
)

// testWorld writes a world folder with a region folder holding one misplaced
// chunk in r.0.0.mca and one consistent r.-1.0.mca. It returns the world path.
func testWorld(t *testing.T) string {
	t.Helper()
	world := t.TempDir()
	region := filepath.Join(world, "region")
	if err := os.Mkdir(region, 0o755); err != nil {
		t.Fatalf("failed to create region folder: %v", err)
	}

	b := testutil.NewRegion(t)
	b.Chunk(0, 0, chunkdoc.Position{X: 0, Z: 0}, codec.Zlib)
	b.Chunk(10, 4, chunkdoc.Position{X: 3, Z: 5}, codec.Zlib)
	b.Chunk(7, 7, chunkdoc.Position{X: 40, Z: 10}, codec.Gzip)
	b.WriteFile(region, "r.0.0.mca")

	b = testutil.NewRegion(t)
	b.Chunk(31, 0, chunkdoc.Position{X: -1, Z: 0}, codec.Zlib)
	b.WriteFile(region, "r.-1.0.mca")

	return world
}

// resetFlags restores every command flag to its default.
func resetFlags() {
	verbose, quiet, jsonOut, noColor = false, false, false, true
	logLevel = "warn"
	repairExt, repairDryRun, repairBackup = ".mca", false, false
	repairBackupSuffix, repairAtomic, repairShowChanges = ".bak", false, false
	inspectSlots, inspectRows, inspectRebuilt = false, "0-31", false
	tableLimit, tableRebuilt = 0, false
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe
	os.Stdout = w

	// Drain concurrently so large output cannot fill the pipe
	var buf bytes.Buffer
	done := make(chan error, 1)
	go func() {
		_, err := buf.ReadFrom(r)
		done <- err
	}()

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout

	if err := <-done; err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// assertNotContains checks that output doesn't contain unwanted strings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, dont := range unwanted {
		if strings.Contains(output, dont) {
			t.Errorf("output contains unwanted string %q\nGot: %s", dont, output)
		}
	}
}
