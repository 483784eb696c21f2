package format

import (
	"errors"
	"math"
	"testing"
)

func TestParseRegionName(t *testing.T) {
	tests := []struct {
		name string
		want RegionPos
	}{
		{"r.0.0.mca", RegionPos{0, 0}},
		{"r.-1.3.mca", RegionPos{-1, 3}},
		{"/worlds/a/region/r.12.-40.mca", RegionPos{12, -40}},
		{"r.2.5", RegionPos{2, 5}},
		{"r.67108863.-67108864.mca", RegionPos{MaxRegionCoord, MinRegionCoord}},
	}
	for _, tt := range tests {
		got, err := ParseRegionName(tt.name)
		if err != nil {
			t.Fatalf("ParseRegionName(%q): %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("ParseRegionName(%q) = %+v, want %+v", tt.name, got, tt.want)
		}
	}

	for _, bad := range []string{"level.dat", "r.a.0.mca", "r.0.b.mca", "r.0",
		"r.67108864.0.mca", "r.0.-67108865.mca"} {
		if _, err := ParseRegionName(bad); !errors.Is(err, ErrBadRegionName) {
			t.Fatalf("ParseRegionName(%q) = %v, want ErrBadRegionName", bad, err)
		}
	}
}

func TestRegionPosContains(t *testing.T) {
	p := RegionPos{X: -1, Z: 1}
	bx, bz := p.ChunkBase()
	if bx != -32 || bz != 32 {
		t.Fatalf("ChunkBase = (%d,%d)", bx, bz)
	}
	if !p.Contains(-1, 63) || !p.Contains(-32, 32) {
		t.Fatalf("expected region to contain its corner chunks")
	}
	if p.Contains(0, 40) || p.Contains(-10, 64) {
		t.Fatalf("region should not contain neighbouring chunks")
	}
	if p.String() != "r.-1.1" {
		t.Fatalf("String = %q", p.String())
	}
}

func TestRegionPosContains_Edges(t *testing.T) {
	top := RegionPos{X: MaxRegionCoord, Z: MinRegionCoord}
	bx, bz := top.ChunkBase()
	if bx != math.MaxInt32-31 || bz != math.MinInt32 {
		t.Fatalf("ChunkBase = (%d,%d)", bx, bz)
	}
	if !top.Contains(math.MaxInt32, math.MinInt32) || !top.Contains(bx, bz+31) {
		t.Fatalf("expected edge region to contain its corner chunks")
	}
	if top.Contains(math.MinInt32, math.MinInt32) || top.Contains(bx-1, bz) {
		t.Fatalf("edge region should not contain wrapped or neighbouring chunks")
	}
	if (RegionPos{}).Contains(math.MinInt32, 0) {
		t.Fatalf("origin region should not contain chunk %d", math.MinInt32)
	}
}
