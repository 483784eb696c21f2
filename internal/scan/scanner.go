// Package scan classifies every slot of a region file's location table by
// decoding the payload it points at and comparing the payload's declared
// position with the slot it was found in.
package scan

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/anvilfix/internal/chunkdoc"
	"github.com/joshuapare/anvilfix/internal/codec"
	"github.com/joshuapare/anvilfix/internal/format"
	"github.com/joshuapare/anvilfix/internal/logger"
)

// Option configures a scan.
type Option func(*scanner)

// WithLogger sends slot diagnostics to l instead of the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *scanner) { s.log = l }
}

// WithFile names the file in log records.
func WithFile(name string) Option {
	return func(s *scanner) { s.file = name }
}

type scanner struct {
	data   []byte
	region format.RegionPos
	log    *slog.Logger
	file   string
}

// Scan classifies all 1024 slots of data, the full contents of the region
// file at region. A failing slot never aborts the scan; it is recorded in
// Grid.Diagnostics and logged. The only error is a file too short to hold
// the location table.
func Scan(data []byte, region format.RegionPos, opts ...Option) (*Grid, error) {
	if len(data) < format.TableSize {
		return nil, fmt.Errorf("scan: location table: %w (%d bytes)", format.ErrTruncated, len(data))
	}
	s := &scanner{data: data, region: region, log: logger.L}
	for _, opt := range opts {
		opt(s)
	}

	g := &Grid{Region: region}
	for z := 0; z < format.GridSize; z++ {
		for x := 0; x < format.GridSize; x++ {
			slot := g.At(x, z)
			slot.X, slot.Z = x, z
			if d := s.slot(slot); d != nil {
				g.Diagnostics = append(g.Diagnostics, *d)
				s.report(d)
			}
		}
	}
	return g, nil
}

// slot fills in one slot and returns a diagnostic for anything other than
// Empty or InPlace.
func (s *scanner) slot(slot *Slot) *Diagnostic {
	off := format.EntryOffset(slot.X, slot.Z)
	slot.Location = format.DecodeLocation(s.data[off : off+format.EntrySize])
	if slot.Location.IsEmpty() {
		slot.Status = Empty
		return nil
	}

	if err := slot.Location.Validate(len(s.data)); err != nil {
		return s.fail(slot, DecodeError, err, 0)
	}
	payload, err := format.Payload(s.data, slot.Location)
	if err != nil {
		return s.fail(slot, DecodeError, err, 0)
	}
	hdr, err := format.ParsePayloadHeader(payload)
	if err != nil {
		return s.fail(slot, DecodeError, err, 0)
	}

	slot.Compression = codec.Type(hdr.Compression)
	if _, err := codec.ParseType(hdr.Compression); err != nil {
		return s.fail(slot, BadCompressionType, err, hdr.Length)
	}

	doc, err := codec.Decompress(slot.Compression, payload[format.PayloadHeaderSize:])
	if err != nil {
		return s.fail(slot, DecodeError, err, hdr.Length)
	}
	pos, err := chunkdoc.ReadPosition(doc)
	if err != nil {
		return s.fail(slot, DecodeError, err, hdr.Length)
	}
	slot.Declared = pos
	slot.Status = s.classify(slot)
	if slot.Status == InPlace {
		return nil
	}

	d := s.diagnostic(slot, hdr.Length)
	d.Declared = &pos
	tx, tz := slot.Target()
	if slot.Status == WrongSlotSameRegion {
		d.Message = fmt.Sprintf("declares %s, belongs in slot (%d, %d)", pos, tx, tz)
	} else {
		d.Message = fmt.Sprintf("declares %s, belongs in region r.%d.%d",
			pos, format.RegionIndex(pos.X), format.RegionIndex(pos.Z))
	}
	return d
}

func (s *scanner) classify(slot *Slot) Status {
	bx, bz := s.region.ChunkBase()
	want := chunkdoc.Position{X: bx + int32(slot.X), Z: bz + int32(slot.Z)}
	switch {
	case slot.Declared == want:
		return InPlace
	case s.region.Contains(slot.Declared.X, slot.Declared.Z):
		return WrongSlotSameRegion
	default:
		return WrongRegion
	}
}

func (s *scanner) fail(slot *Slot, status Status, err error, length uint32) *Diagnostic {
	slot.Status = status
	slot.Err = err
	d := s.diagnostic(slot, length)
	d.Err = err
	d.Message = err.Error()
	return d
}

func (s *scanner) diagnostic(slot *Slot, length uint32) *Diagnostic {
	start, end := slot.Location.ByteRange()
	return &Diagnostic{
		X:           slot.X,
		Z:           slot.Z,
		Status:      slot.Status,
		Location:    slot.Location,
		Start:       start,
		End:         end,
		Compression: slot.Compression,
		Length:      length,
	}
}

func (s *scanner) report(d *Diagnostic) {
	attrs := []any{
		"x", d.X,
		"z", d.Z,
		"status", d.Status.String(),
		"range", fmt.Sprintf("[0x%X, 0x%X)", d.Start, d.End),
		"sectors", d.Location.Sectors,
		"compression", byte(d.Compression),
	}
	if s.file != "" {
		attrs = append([]any{"file", s.file}, attrs...)
	}
	switch {
	case d.Err != nil:
		s.log.Warn("slot dropped", append(attrs, "err", d.Err)...)
	case d.Status.Fault():
		s.log.Warn("slot dropped", append(attrs, "detail", d.Message)...)
	default:
		s.log.Debug("slot misplaced", append(attrs, "detail", d.Message)...)
	}
}
