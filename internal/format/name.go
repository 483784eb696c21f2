package format

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

// Region coordinates whose chunk base fits in an int32, the type of the
// positions chunks declare.
const (
	MinRegionCoord = math.MinInt32 / GridSize
	MaxRegionCoord = math.MaxInt32 / GridSize
)

// RegionPos identifies a region by its grid coordinates.
type RegionPos struct {
	X int
	Z int
}

// ChunkBase returns the absolute chunk coordinates of the region's (0, 0) slot.
func (p RegionPos) ChunkBase() (int32, int32) {
	return int32(p.X * GridSize), int32(p.Z * GridSize)
}

// Contains reports whether absolute chunk coordinates (x, z) belong to this region.
func (p RegionPos) Contains(x, z int32) bool {
	return RegionIndex(x) == p.X && RegionIndex(z) == p.Z
}

func (p RegionPos) String() string {
	return fmt.Sprintf("r.%d.%d", p.X, p.Z)
}

// ParseRegionName extracts region coordinates from a file name of the form
// <prefix>.<x>.<z>.<ext>, for example "r.-1.3.mca". Directory components are
// ignored. Coordinates outside [MinRegionCoord, MaxRegionCoord] are rejected.
func ParseRegionName(name string) (RegionPos, error) {
	base := filepath.Base(name)
	parts := strings.Split(base, ".")
	if len(parts) < 3 {
		return RegionPos{}, fmt.Errorf("%q: %w", base, ErrBadRegionName)
	}
	x, err := strconv.Atoi(parts[1])
	if err != nil {
		return RegionPos{}, fmt.Errorf("%q: region x: %w", base, ErrBadRegionName)
	}
	z, err := strconv.Atoi(parts[2])
	if err != nil {
		return RegionPos{}, fmt.Errorf("%q: region z: %w", base, ErrBadRegionName)
	}
	if x < MinRegionCoord || x > MaxRegionCoord || z < MinRegionCoord || z > MaxRegionCoord {
		return RegionPos{}, fmt.Errorf("%q: region out of range: %w", base, ErrBadRegionName)
	}
	return RegionPos{X: x, Z: z}, nil
}
