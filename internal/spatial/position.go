package spatial

import "fmt"

// FeetPerSquare is the scale of the grid: one unit is 5 feet
const FeetPerSquare = 5.0

// Position is a point on the battle grid. Z is elevation in grid units and
// covers both height and flight.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

func (p Position) String() string {
	if p.Z != 0 {
		return fmt.Sprintf("(%g, %g, %g)", p.X, p.Y, p.Z)
	}
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
