// Package testutil builds synthetic region files for tests.
package testutil

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/joshuapare/anvilfix/internal/chunkdoc"
	"github.com/joshuapare/anvilfix/internal/codec"
	"github.com/joshuapare/anvilfix/internal/format"
)

// FirstDataSector is where real region files start storing payloads: sector 0
// holds the location table and sector 1 the timestamp table.
const FirstDataSector = 2

// RegionBuilder assembles a region file in memory.
//
// Example:
//
//	b := testutil.NewRegion(t)
//	b.Chunk(3, 5, chunkdoc.Position{X: 3, Z: 5}, codec.Zlib)
//	path := b.WriteFile(t.TempDir(), "r.0.0.mca")
type RegionBuilder struct {
	t    testing.TB
	data []byte
	next uint32
}

// NewRegion returns a builder holding an empty two-sector header.
func NewRegion(t testing.TB) *RegionBuilder {
	t.Helper()
	return &RegionBuilder{
		t:    t,
		data: make([]byte, FirstDataSector*format.SectorSize),
		next: FirstDataSector,
	}
}

// Chunk stores a document declaring pos, compressed with ct, in the next free
// sectors and points slot (x, z) at it.
func (b *RegionBuilder) Chunk(x, z int, pos chunkdoc.Position, ct codec.Type) format.Location {
	b.t.Helper()
	loc := b.Place(b.next, ChunkPayload(b.t, pos, ct))
	b.SetEntry(x, z, loc)
	return loc
}

// ChunkAt is like Chunk but stores the payload at a fixed sector.
func (b *RegionBuilder) ChunkAt(x, z int, sector uint32, pos chunkdoc.Position, ct codec.Type) format.Location {
	b.t.Helper()
	loc := b.Place(sector, ChunkPayload(b.t, pos, ct))
	b.SetEntry(x, z, loc)
	return loc
}

// Raw stores payload verbatim in the next free sectors and points slot (x, z) at it.
func (b *RegionBuilder) Raw(x, z int, payload []byte) format.Location {
	b.t.Helper()
	loc := b.Place(b.next, payload)
	b.SetEntry(x, z, loc)
	return loc
}

// Place copies payload to sector, padding to whole sectors and growing the
// file as needed. It does not touch the location table.
func (b *RegionBuilder) Place(sector uint32, payload []byte) format.Location {
	b.t.Helper()
	if sector < FirstDataSector {
		b.t.Fatalf("testutil: sector %d overlaps the header", sector)
	}
	count := (len(payload) + format.SectorSize - 1) / format.SectorSize
	if count == 0 {
		count = 1
	}
	if count > 255 {
		b.t.Fatalf("testutil: payload of %d bytes needs %d sectors", len(payload), count)
	}
	end := (int(sector) + count) * format.SectorSize
	if end > len(b.data) {
		b.data = append(b.data, make([]byte, end-len(b.data))...)
	}
	copy(b.data[int(sector)*format.SectorSize:], payload)
	if next := sector + uint32(count); next > b.next {
		b.next = next
	}
	return format.Location{Offset: sector, Sectors: uint8(count)}
}

// SetEntry writes loc into the table entry of slot (x, z).
func (b *RegionBuilder) SetEntry(x, z int, loc format.Location) {
	b.t.Helper()
	if err := format.EncodeLocation(b.data[format.EntryOffset(x, z):], loc); err != nil {
		b.t.Fatalf("testutil: %v", err)
	}
}

// Grow pads the file to at least n sectors.
func (b *RegionBuilder) Grow(n int) {
	if end := n * format.SectorSize; end > len(b.data) {
		b.data = append(b.data, make([]byte, end-len(b.data))...)
	}
}

// Bytes returns a copy of the file contents.
func (b *RegionBuilder) Bytes() []byte {
	return append([]byte(nil), b.data...)
}

// Table returns a copy of the location table.
func (b *RegionBuilder) Table() []byte {
	return append([]byte(nil), b.data[:format.TableSize]...)
}

// WriteFile writes the region to dir/name and returns the path.
func (b *RegionBuilder) WriteFile(dir, name string) string {
	b.t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b.data, 0o644); err != nil {
		b.t.Fatalf("testutil: write %s: %v", path, err)
	}
	return path
}

// ChunkPayload returns a stored payload (length, tag, compressed document)
// declaring pos.
func ChunkPayload(t testing.TB, pos chunkdoc.Position, ct codec.Type) []byte {
	t.Helper()
	doc, err := chunkdoc.Encode(pos, false)
	if err != nil {
		t.Fatalf("testutil: encode document: %v", err)
	}
	body, err := codec.Compress(ct, doc)
	if err != nil {
		t.Fatalf("testutil: compress: %v", err)
	}
	return RawPayload(byte(ct), body)
}

// RawPayload frames body with a payload header carrying tag.
func RawPayload(tag byte, body []byte) []byte {
	out := make([]byte, format.PayloadHeaderSize+len(body))
	binary.BigEndian.PutUint32(out[format.PayloadLengthField:], uint32(len(body)+1))
	out[format.PayloadCompressionField] = tag
	copy(out[format.PayloadHeaderSize:], body)
	return out
}
