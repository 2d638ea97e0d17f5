package spatial

import (
	"strings"

	"github.com/dmforge/encounter-engine/internal/domain/shared"
	dnderr "github.com/dmforge/encounter-engine/internal/errors"
)

// ObstacleType categorizes a point obstacle on the grid
type ObstacleType string

const (
	ObstacleWall               ObstacleType = "wall"
	ObstaclePillar             ObstacleType = "pillar"
	ObstacleHalfCover          ObstacleType = "half_cover"
	ObstacleThreeQuartersCover ObstacleType = "three_quarters_cover"
	ObstacleTotalCover         ObstacleType = "total_cover"
	ObstacleDifficultTerrain   ObstacleType = "difficult_terrain"
	ObstacleWater              ObstacleType = "water"
	ObstacleHazard             ObstacleType = "hazard"
)

// ParseObstacleType validates an obstacle category
func ParseObstacleType(name string) (ObstacleType, error) {
	normalized := ObstacleType(strings.ToLower(strings.TrimSpace(name)))
	switch normalized {
	case ObstacleWall, ObstaclePillar, ObstacleHalfCover, ObstacleThreeQuartersCover,
		ObstacleTotalCover, ObstacleDifficultTerrain, ObstacleWater, ObstacleHazard:
		return normalized, nil
	}
	return "", dnderr.InvalidArgumentf("unknown obstacle type: %q", name)
}

// Obstacle is a point feature that may interrupt sight lines. Height is in
// feet; nil means unbounded (a full wall rather than a parapet).
type Obstacle struct {
	Position Position     `json:"position"`
	Type     ObstacleType `json:"type"`
	Height   *float64     `json:"height,omitempty"`
}

// Creature is a battlefield occupant that may block sight or grant cover
type Creature struct {
	ID       string              `json:"id"`
	Position Position            `json:"position"`
	Size     shared.SizeCategory `json:"size"`
}

// lateralTolerance is how far (in grid units) a blocker may sit off the
// traced line and still intersect it
const lateralTolerance = 1.0

// Blocker describes one obstruction found along a sight line
type Blocker struct {
	Kind       string              `json:"kind"` // "obstacle" or "creature"
	Position   Position            `json:"position"`
	Obstacle   ObstacleType        `json:"obstacle,omitempty"`
	CreatureID string              `json:"creature_id,omitempty"`
	Size       shared.SizeCategory `json:"size,omitempty"`
}

// LineOfSightResult reports whether the target is visible and everything that
// intersected the traced line
type LineOfSightResult struct {
	Clear     bool      `json:"clear"`
	BlockedBy []Blocker `json:"blocked_by,omitempty"`
	Distance  float64   `json:"distance_feet"`
}

// sightBlocking reports whether an obstacle type stops sight entirely.
// Partial cover obstructs targeting bonuses, not vision.
func sightBlocking(t ObstacleType) bool {
	switch t {
	case ObstacleWall, ObstaclePillar, ObstacleTotalCover:
		return true
	}
	return false
}

// onSegment finds the fraction t of the closest approach of point to the 2D
// segment from->to and the lateral distance at that point. Endpoints are
// excluded so the observer and target never block themselves.
func onSegment(from, to, point Position) (t, lateral float64, hit bool) {
	dx := to.X - from.X
	dy := to.Y - from.Y
	lengthSq := dx*dx + dy*dy
	if lengthSq == 0 {
		return 0, 0, false
	}

	t = ((point.X-from.X)*dx + (point.Y-from.Y)*dy) / lengthSq
	if t <= 0.01 || t >= 0.99 {
		return t, 0, false
	}

	closestX := from.X + t*dx
	closestY := from.Y + t*dy
	offX := point.X - closestX
	offY := point.Y - closestY
	lateral = offX*offX + offY*offY

	return t, lateral, lateral <= lateralTolerance*lateralTolerance
}

// heightReaches reports whether a blocker standing at base with the given
// top elevation (grid units) intersects the sight line's z at fraction t
func heightReaches(from, to Position, t, baseZ float64, topZ *float64) bool {
	lineZ := from.Z + t*(to.Z-from.Z)
	if lineZ < baseZ {
		return false
	}
	if topZ == nil {
		return true
	}
	return lineZ <= *topZ
}

// LineOfSight traces from observer to target against point obstacles and,
// when creaturesBlock is set, creatures. Creatures matching the observer or
// target position are skipped.
func LineOfSight(from, to Position, obstacles []Obstacle, creatures []Creature, creaturesBlock bool) *LineOfSightResult {
	result := &LineOfSightResult{Clear: true}

	if dist, err := Distance(from, to, ModeEuclidean, true); err == nil {
		result.Distance = dist.Feet
	}

	for _, obstacle := range obstacles {
		if !sightBlocking(obstacle.Type) {
			continue
		}
		t, _, hit := onSegment(from, to, obstacle.Position)
		if !hit {
			continue
		}
		var topZ *float64
		if obstacle.Height != nil {
			top := obstacle.Position.Z + *obstacle.Height/FeetPerSquare
			topZ = &top
		}
		if heightReaches(from, to, t, obstacle.Position.Z, topZ) {
			result.Clear = false
			result.BlockedBy = append(result.BlockedBy, Blocker{
				Kind:     "obstacle",
				Position: obstacle.Position,
				Obstacle: obstacle.Type,
			})
		}
	}

	if creaturesBlock {
		for _, creature := range creatures {
			if creature.Position == from || creature.Position == to {
				continue
			}
			t, _, hit := onSegment(from, to, creature.Position)
			if !hit {
				continue
			}
			top := creature.Position.Z + creature.Size.Height()/FeetPerSquare
			if heightReaches(from, to, t, creature.Position.Z, &top) {
				result.Clear = false
				result.BlockedBy = append(result.BlockedBy, Blocker{
					Kind:       "creature",
					Position:   creature.Position,
					CreatureID: creature.ID,
					Size:       creature.Size,
				})
			}
		}
	}

	return result
}
