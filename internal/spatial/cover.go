package spatial

import (
	"fmt"

	"github.com/dmforge/encounter-engine/internal/domain/shared"
)

// CoverLevel classifies the obstruction between attacker and target
type CoverLevel string

const (
	CoverNone          CoverLevel = "none"
	CoverHalf          CoverLevel = "half"
	CoverThreeQuarters CoverLevel = "three_quarters"
	CoverTotal         CoverLevel = "total"
)

var coverRank = map[CoverLevel]int{
	CoverNone:          0,
	CoverHalf:          1,
	CoverThreeQuarters: 2,
	CoverTotal:         3,
}

// Bonus returns the AC and Dexterity-save bonus the cover grants
func (c CoverLevel) Bonus() int {
	switch c {
	case CoverHalf:
		return 2
	case CoverThreeQuarters:
		return 5
	default:
		return 0
	}
}

// CoverResult is the cover classification for one attacker/target pair
type CoverResult struct {
	Level        CoverLevel `json:"level"`
	ACBonus      int        `json:"ac_bonus"`
	DexSaveBonus int        `json:"dex_save_bonus"`
	CanTarget    bool       `json:"can_target"`
	Sources      []string   `json:"sources,omitempty"`
}

// obstacleCover maps an obstacle category to the cover it grants
func obstacleCover(t ObstacleType) CoverLevel {
	switch t {
	case ObstacleHalfCover:
		return CoverHalf
	case ObstacleThreeQuartersCover:
		return CoverThreeQuarters
	case ObstacleWall, ObstaclePillar, ObstacleTotalCover:
		return CoverTotal
	default:
		return CoverNone
	}
}

// creatureCover maps a creature's size to the cover it grants when standing
// in the line of fire. Small creatures grant none.
func creatureCover(size shared.SizeCategory) CoverLevel {
	switch size {
	case shared.SizeMedium:
		return CoverHalf
	case shared.SizeLarge, shared.SizeHuge:
		return CoverThreeQuarters
	case shared.SizeGargantuan:
		return CoverTotal
	default:
		return CoverNone
	}
}

// Cover traces attacker to target and classifies the best cover the target
// enjoys. When multiple blockers intersect the line the highest level wins.
func Cover(attacker, target Position, obstacles []Obstacle, creatures []Creature, creaturesProvideCover bool) *CoverResult {
	best := CoverNone
	var sources []string

	consider := func(level CoverLevel, source string) {
		if level == CoverNone {
			return
		}
		sources = append(sources, source)
		if coverRank[level] > coverRank[best] {
			best = level
		}
	}

	for _, obstacle := range obstacles {
		t, _, hit := onSegment(attacker, target, obstacle.Position)
		if !hit {
			continue
		}
		var topZ *float64
		if obstacle.Height != nil {
			top := obstacle.Position.Z + *obstacle.Height/FeetPerSquare
			topZ = &top
		}
		if !heightReaches(attacker, target, t, obstacle.Position.Z, topZ) {
			continue
		}
		level := obstacleCover(obstacle.Type)
		consider(level, fmt.Sprintf("%s at %s", obstacle.Type, obstacle.Position))
	}

	if creaturesProvideCover {
		for _, creature := range creatures {
			if creature.Position == attacker || creature.Position == target {
				continue
			}
			t, _, hit := onSegment(attacker, target, creature.Position)
			if !hit {
				continue
			}
			top := creature.Position.Z + creature.Size.Height()/FeetPerSquare
			if !heightReaches(attacker, target, t, creature.Position.Z, &top) {
				continue
			}
			level := creatureCover(creature.Size)
			consider(level, fmt.Sprintf("%s creature at %s", creature.Size, creature.Position))
		}
	}

	return &CoverResult{
		Level:        best,
		ACBonus:      best.Bonus(),
		DexSaveBonus: best.Bonus(),
		CanTarget:    best != CoverTotal,
		Sources:      sources,
	}
}
