package repair

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/anvilfix/internal/chunkdoc"
	"github.com/joshuapare/anvilfix/internal/codec"
	"github.com/joshuapare/anvilfix/internal/format"
	"github.com/joshuapare/anvilfix/internal/testutil"
)

// misplacedRegion holds one chunk in its own slot, one chunk stored under the
// wrong slot, one chunk from another region and one undecodable payload.
func misplacedRegion(t *testing.T) *testutil.RegionBuilder {
	b := testutil.NewRegion(t)
	b.Chunk(0, 0, chunkdoc.Position{X: 0, Z: 0}, codec.Zlib)
	b.Chunk(10, 4, chunkdoc.Position{X: 3, Z: 5}, codec.Gzip)
	b.Chunk(7, 7, chunkdoc.Position{X: 40, Z: 10}, codec.Zlib)
	b.Raw(9, 9, testutil.RawPayload(byte(codec.Zlib), []byte("not zlib")))
	return b
}

func TestRepairFile_RewritesOnlyTheTable(t *testing.T) {
	b := misplacedRegion(t)
	before := b.Bytes()
	path := b.WriteFile(t.TempDir(), "r.0.0.mca")

	res, err := New(Config{}).RepairFile(path)
	require.NoError(t, err)
	assert.Equal(t, FileRepaired, res.Status)
	assert.Equal(t, format.RegionPos{X: 0, Z: 0}, res.Region)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	assert.Equal(t, before[format.TableSize:], after[format.TableSize:], "payload bytes changed")

	entry := func(x, z int) format.Location {
		return format.DecodeLocation(after[format.EntryOffset(x, z):])
	}
	assert.Equal(t, format.DecodeLocation(before[format.EntryOffset(0, 0):]), entry(0, 0))
	assert.Equal(t, format.DecodeLocation(before[format.EntryOffset(10, 4):]), entry(3, 5))
	assert.Equal(t, 652, format.EntryOffset(3, 5))
	assert.True(t, entry(10, 4).IsEmpty())
	assert.True(t, entry(7, 7).IsEmpty())
	assert.True(t, entry(9, 9).IsEmpty())

	assert.Equal(t, 1, res.Counts.InPlace)
	assert.Equal(t, 1, res.Counts.WrongSlot)
	assert.Equal(t, 1, res.Counts.WrongRegion)
	assert.Equal(t, 1, res.Counts.DecodeError)
	assert.Equal(t, 1020, res.Counts.Empty)
	assert.Equal(t, 2, res.Stats.Relocated)
	assert.Equal(t, 1, res.Stats.Moved)
	assert.Equal(t, 2, res.Stats.Discarded)
	assert.Len(t, res.Changes, 4)
	assert.Len(t, res.Diagnostics, 3)
}

func TestRepairFile_SecondRunIsUnchanged(t *testing.T) {
	path := misplacedRegion(t).WriteFile(t.TempDir(), "r.0.0.mca")
	r := New(Config{})

	_, err := r.RepairFile(path)
	require.NoError(t, err)
	repaired, err := os.ReadFile(path)
	require.NoError(t, err)

	res, err := r.RepairFile(path)
	require.NoError(t, err)
	assert.Equal(t, FileUnchanged, res.Status)
	assert.Empty(t, res.Changes)
	assert.Equal(t, 2, res.Counts.InPlace)

	again, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, repaired, again)
}

func TestRepairFile_ConsistentFileNotWritten(t *testing.T) {
	b := testutil.NewRegion(t)
	b.Chunk(1, 2, chunkdoc.Position{X: -31, Z: -30}, codec.None)
	path := b.WriteFile(t.TempDir(), "r.-1.-1.mca")

	modified := mtime(t, path)
	res, err := New(Config{}).RepairFile(path)
	require.NoError(t, err)
	assert.Equal(t, FileUnchanged, res.Status)
	assert.Equal(t, modified, mtime(t, path))
}

func TestRepairFile_DryRun(t *testing.T) {
	b := misplacedRegion(t)
	before := b.Bytes()
	path := b.WriteFile(t.TempDir(), "r.0.0.mca")

	res, err := New(Config{DryRun: true, Backup: true}).RepairFile(path)
	require.NoError(t, err)
	assert.Equal(t, FilePlanned, res.Status)
	assert.Len(t, res.Changes, 4)
	assert.Empty(t, res.BackupPath)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "dry run must not create files")
}

func TestRepairFile_BackupAndAtomic(t *testing.T) {
	b := misplacedRegion(t)
	before := b.Bytes()
	path := b.WriteFile(t.TempDir(), "r.0.0.mca")

	res, err := New(Config{Backup: true, Atomic: true}).RepairFile(path)
	require.NoError(t, err)
	assert.Equal(t, FileRepaired, res.Status)
	require.NotEmpty(t, res.BackupPath)
	assert.True(t, strings.HasPrefix(res.BackupPath, path+".bak."))

	backup, err := os.ReadFile(res.BackupPath)
	require.NoError(t, err)
	assert.Equal(t, before, backup)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before[format.TableSize:], after[format.TableSize:])
	assert.Equal(t, format.DecodeLocation(before[format.EntryOffset(10, 4):]),
		format.DecodeLocation(after[format.EntryOffset(3, 5):]))
}

func TestRepairFile_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := testutil.NewRegion(t).WriteFile(dir, "region.mca")
	_, err := New(Config{}).RepairFile(bad)
	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "name", fe.Op)
	assert.ErrorIs(t, err, format.ErrBadRegionName)

	b := testutil.NewRegion(t)
	b.Chunk(0, 0, chunkdoc.Position{X: math.MinInt32, Z: 0}, codec.Zlib)
	huge := b.WriteFile(dir, "r.67108864.0.mca")
	before, err := os.ReadFile(huge)
	require.NoError(t, err)
	_, err = New(Config{}).RepairFile(huge)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "name", fe.Op)
	assert.ErrorIs(t, err, format.ErrBadRegionName)
	after, err := os.ReadFile(huge)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	short := filepath.Join(dir, "r.0.0.mca")
	require.NoError(t, os.WriteFile(short, make([]byte, 100), 0o644))
	_, err = New(Config{}).RepairFile(short)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "scan", fe.Op)
	assert.ErrorIs(t, err, format.ErrTruncated)

	_, err = New(Config{}).RepairFile(filepath.Join(dir, "r.5.5.mca"))
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "read", fe.Op)
}

func TestRepairBatch_ContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	first := misplacedRegion(t).WriteFile(dir, "r.0.0.mca")
	broken := filepath.Join(dir, "r.1.0.mca")
	require.NoError(t, os.WriteFile(broken, []byte("short"), 0o644))

	b := testutil.NewRegion(t)
	b.Chunk(0, 0, chunkdoc.Position{X: 64, Z: 0}, codec.Zlib)
	last := b.WriteFile(dir, "r.2.0.mca")

	var seen []string
	batch, err := New(Config{}).RepairBatch(context.Background(), []string{first, broken, last},
		func(path string, res *FileResult, err error) {
			seen = append(seen, filepath.Base(path))
			if path == broken {
				assert.Error(t, err)
				assert.Nil(t, res)
			} else {
				assert.NoError(t, err)
			}
		})
	require.NoError(t, err)

	assert.Equal(t, []string{"r.0.0.mca", "r.1.0.mca", "r.2.0.mca"}, seen)
	require.Len(t, batch.Files, 2)
	assert.Equal(t, 1, batch.Failed())
	assert.Equal(t, broken, batch.Failures[0].Path)
	assert.ErrorIs(t, batch.Failures[0].Err, format.ErrTruncated)
	assert.Equal(t, 1, batch.Repaired)
	assert.Equal(t, 1, batch.Unchanged)
	assert.Equal(t, 2, batch.Counts.InPlace)
	assert.Equal(t, 3, batch.Stats.Relocated)
}

func TestRepairBatch_Cancelled(t *testing.T) {
	dir := t.TempDir()
	path := misplacedRegion(t).WriteFile(dir, "r.0.0.mca")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, err := New(Config{}).RepairBatch(ctx, []string{path}, nil)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, batch)
	assert.Empty(t, batch.Files)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAnalyze(t *testing.T) {
	path := misplacedRegion(t).WriteFile(t.TempDir(), "r.0.0.mca")

	a, err := New(Config{}).Analyze(path)
	require.NoError(t, err)
	assert.Equal(t, "WRONG_SLOT", a.Scanned.At(10, 4).Status.String())
	assert.Equal(t, "RELOCATED", a.Built.At(10, 4).Status.String())
	assert.Equal(t, 4, a.Changes.Len())
	assert.Len(t, a.Original, format.TableSize)
}

func mtime(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.ModTime().UnixNano()
}
