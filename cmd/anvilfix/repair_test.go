package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/anvilfix/internal/format"
	"github.com/joshuapare/anvilfix/internal/regionfs"
)

func TestRepairCommand(t *testing.T) {
	tests := []struct {
		name           string
		dryRun         bool
		showChanges    bool
		wantContain    []string
		wantNotContain []string
		wantRewritten  bool
	}{
		{
			name:          "repair",
			wantContain:   []string{"Found 2 region file(s)", "Repaired:  1 file(s)", "Unchanged: 1 file(s)", "Chunks relocated:    1", "Wrong region:        1"},
			wantRewritten: true,
		},
		{
			name:           "dry run",
			dryRun:         true,
			wantContain:    []string{"DRY-RUN", "Would repair: 1 file(s)"},
			wantNotContain: []string{"Repaired:"},
		},
		{
			name:          "show changes",
			showChanges:   true,
			wantContain:   []string{"r.0.0.mca\nTable changes: 3 entries", "[ 3, 5] @0x28C  filled", "[10, 4] @0x228  cleared", "[ 7, 7] @0x39C  cleared"},
			wantRewritten: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			repairDryRun = tt.dryRun
			repairShowChanges = tt.showChanges

			world := testWorld(t)
			path := filepath.Join(world, "region", "r.0.0.mca")
			before, err := os.ReadFile(path)
			require.NoError(t, err)

			output, err := captureOutput(t, func() error {
				return runRepair(context.Background(), []string{world})
			})
			require.NoError(t, err, output)

			assertContains(t, output, tt.wantContain)
			assertNotContains(t, output, tt.wantNotContain)

			after, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, before[format.TableSize:], after[format.TableSize:])
			if tt.wantRewritten {
				assert.NotEqual(t, before[:format.TableSize], after[:format.TableSize])
			} else {
				assert.Equal(t, before, after)
			}
		})
	}
}

func TestRepairCommand_JSON(t *testing.T) {
	resetFlags()
	jsonOut = true

	world := testWorld(t)
	output, err := captureOutput(t, func() error {
		return runRepair(context.Background(), []string{filepath.Join(world, "region")})
	})
	require.NoError(t, err)
	assertJSON(t, output)
	assertContains(t, output, []string{`"status": "REPAIRED"`})

	var batch struct {
		Repaired  int               `json:"repaired"`
		Unchanged int               `json:"unchanged"`
		Files     []json.RawMessage `json:"files"`
		Counts    struct {
			InPlace   int `json:"in_place"`
			WrongSlot int `json:"wrong_slot"`
		} `json:"counts"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &batch))
	assert.Equal(t, 1, batch.Repaired)
	assert.Equal(t, 1, batch.Unchanged)
	assert.Equal(t, 2, batch.Counts.InPlace)
	assert.Equal(t, 1, batch.Counts.WrongSlot)
	assert.Len(t, batch.Files, 2)
}

func TestRepairCommand_InvalidEntries(t *testing.T) {
	resetFlags()

	world := testWorld(t)
	region := filepath.Join(world, "region")
	require.NoError(t, os.WriteFile(filepath.Join(region, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(region, "old"), 0o755))

	output, err := captureOutput(t, func() error {
		return runRepair(context.Background(), []string{world})
	})
	require.NoError(t, err)
	assertContains(t, output, []string{
		"skipping 2 entries",
		"invalid extension: notes.txt",
		"subfolder: old",
		"Found 2 region file(s)",
	})
}

func TestRepairCommand_Errors(t *testing.T) {
	resetFlags()

	t.Run("no region folder", func(t *testing.T) {
		_, err := captureOutput(t, func() error {
			return runRepair(context.Background(), []string{t.TempDir()})
		})
		assert.ErrorIs(t, err, regionfs.ErrNoRegionDir)
	})

	t.Run("no region files", func(t *testing.T) {
		world := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(world, "region"), 0o755))
		_, err := captureOutput(t, func() error {
			return runRepair(context.Background(), []string{world})
		})
		assert.ErrorIs(t, err, regionfs.ErrNoRegionFiles)
	})

	t.Run("failing file", func(t *testing.T) {
		world := testWorld(t)
		broken := filepath.Join(world, "region", "r.5.5.mca")
		require.NoError(t, os.WriteFile(broken, []byte("short"), 0o644))

		output, err := captureOutput(t, func() error {
			return runRepair(context.Background(), []string{world})
		})
		assert.ErrorIs(t, err, errReported)
		assertContains(t, output, []string{"Repaired:  1 file(s)", "Failed:    1 file(s)"})
	})

	t.Run("interrupted", func(t *testing.T) {
		world := testWorld(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		output, err := captureOutput(t, func() error {
			return runRepair(ctx, []string{world})
		})
		assert.ErrorIs(t, err, errReported)
		assertContains(t, output, []string{"Skipped:   2 file(s)"})
	})
}
