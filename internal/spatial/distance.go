package spatial

import (
	"math"
	"strings"

	dnderr "github.com/dmforge/encounter-engine/internal/errors"
)

// DistanceMode selects the measurement rule
type DistanceMode string

const (
	// ModeGrid5E is the simplified rule: diagonals cost the same as straight
	// moves (Chebyshev distance)
	ModeGrid5E DistanceMode = "grid_5e"

	// ModeEuclidean is true 3D geometric distance
	ModeEuclidean DistanceMode = "euclidean"

	// ModeGridAlt is the optional variant where every second diagonal costs
	// double
	ModeGridAlt DistanceMode = "grid_alt"
)

// ParseDistanceMode validates a mode string, defaulting empty to grid_5e
func ParseDistanceMode(name string) (DistanceMode, error) {
	normalized := DistanceMode(strings.ToLower(strings.TrimSpace(name)))
	switch normalized {
	case "":
		return ModeGrid5E, nil
	case ModeGrid5E, ModeEuclidean, ModeGridAlt:
		return normalized, nil
	}
	return "", dnderr.InvalidArgumentf("unknown distance mode: %q", name)
}

// DistanceResult reports a measurement in both feet and grid squares
type DistanceResult struct {
	Feet    float64      `json:"feet"`
	Squares float64      `json:"squares"`
	Mode    DistanceMode `json:"mode"`
}

// Distance measures between two positions under the given mode. The grid
// modes ignore elevation unless includeElevation is set; euclidean distance
// is inherently 3D.
func Distance(from, to Position, mode DistanceMode, includeElevation bool) (*DistanceResult, error) {
	dx := abs(to.X - from.X)
	dy := abs(to.Y - from.Y)
	dz := abs(to.Z - from.Z)

	var squares float64
	switch mode {
	case ModeGrid5E:
		squares = maxf(dx, dy)
		if includeElevation {
			squares = maxf(squares, dz)
		}
	case ModeEuclidean:
		squares = math.Sqrt(dx*dx + dy*dy + dz*dz)
	case ModeGridAlt:
		squares = alternatingDiagonals(dx, dy)
		if includeElevation {
			squares = maxf(squares, dz)
		}
	default:
		return nil, errInvalidMode(mode)
	}

	return &DistanceResult{
		Feet:    squares * FeetPerSquare,
		Squares: squares,
		Mode:    mode,
	}, nil
}

// alternatingDiagonals prices diagonal steps 5-10-5-10: the first diagonal
// costs one square, the second two, and so on.
func alternatingDiagonals(dx, dy float64) float64 {
	diagonals := math.Round(minf(dx, dy))
	straights := math.Round(maxf(dx, dy)) - diagonals
	return straights + diagonals + math.Floor(diagonals/2)
}

func errInvalidMode(mode DistanceMode) error {
	return dnderr.InvalidArgumentf("unknown distance mode: %q", mode)
}
