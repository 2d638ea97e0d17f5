package conditions

import "fmt"

// StatValue is a single derived stat: the base value, the value after active
// conditions, and whether anything changed
type StatValue struct {
	Base      int  `json:"base"`
	Effective int  `json:"effective"`
	Modified  bool `json:"modified"`
}

// EffectiveStats is the projection of base stats through active conditions.
// It is recomputed on demand and never stored.
type EffectiveStats struct {
	HP      StatValue `json:"hp"`
	MaxHP   StatValue `json:"max_hp"`
	Speed   StatValue `json:"speed"`
	AC      StatValue `json:"ac"`
	Dead    bool      `json:"dead"`    // Exhaustion 6
	Effects []string  `json:"effects"` // Human-readable modifier explanations
}

func newStat(base int) StatValue {
	return StatValue{Base: base, Effective: base}
}

func (v *StatValue) set(effective int) {
	if effective < 0 {
		effective = 0
	}
	if effective != v.Effective {
		v.Effective = effective
		v.Modified = true
	}
}

// ComputeEffectiveStats projects base stats through the active condition set.
// Conditions that zero or halve speed stack by taking the most restrictive
// result; exhaustion penalties stack cumulatively per level.
func ComputeEffectiveStats(baseHP, baseMaxHP, baseSpeed, baseAC int, set *Set) *EffectiveStats {
	stats := &EffectiveStats{
		HP:    newStat(baseHP),
		MaxHP: newStat(baseMaxHP),
		Speed: newStat(baseSpeed),
		AC:    newStat(baseAC),
	}
	if set == nil {
		return stats
	}

	for _, cond := range set.List() {
		switch cond.Type {
		case Grappled:
			stats.Speed.set(0)
			stats.note("Grappled: speed 0")
		case Restrained:
			stats.Speed.set(0)
			stats.note("Restrained: speed 0")
		case Paralyzed:
			stats.Speed.set(0)
			stats.note("Paralyzed: speed 0, auto-fails Str/Dex saves, attacks within 5 ft crit")
		case Stunned:
			stats.Speed.set(0)
			stats.note("Stunned: speed 0, incapacitated, auto-fails Str/Dex saves")
		case Unconscious:
			stats.Speed.set(0)
			stats.note("Unconscious: speed 0, prone, auto-fails Str/Dex saves, attacks within 5 ft crit")
		case Petrified:
			stats.Speed.set(0)
			stats.note("Petrified: speed 0, incapacitated, resistance to all damage")
		case Prone:
			stats.Speed.set(stats.Speed.Effective / 2)
			stats.note("Prone: crawling, speed halved")
		case Blinded:
			stats.note("Blinded: attack rolls have disadvantage, attacks against have advantage")
		case Charmed:
			stats.note("Charmed: can't attack the charmer")
		case Deafened:
			stats.note("Deafened: automatically fails hearing checks")
		case Frightened:
			stats.note("Frightened: disadvantage on checks and attacks while source is in sight")
		case Incapacitated:
			stats.note("Incapacitated: no actions or reactions")
		case Invisible:
			stats.note("Invisible: attack rolls have advantage, attacks against have disadvantage")
		case Poisoned:
			stats.note("Poisoned: disadvantage on attack rolls and ability checks")
		case Exhaustion:
			applyExhaustion(stats, cond.Level)
		}
	}

	// Effective HP never exceeds the effective maximum
	if stats.HP.Effective > stats.MaxHP.Effective {
		stats.HP.set(stats.MaxHP.Effective)
	}

	return stats
}

// applyExhaustion stacks every penalty at or below the current level
func applyExhaustion(stats *EffectiveStats, level int) {
	if level >= 1 {
		stats.note("Exhaustion 1: disadvantage on ability checks")
	}
	if level >= 2 {
		stats.Speed.set(stats.Speed.Effective / 2)
		stats.note("Exhaustion 2: speed halved")
	}
	if level >= 3 {
		stats.note("Exhaustion 3: disadvantage on attack rolls and saving throws")
	}
	if level >= 4 {
		stats.MaxHP.set(stats.MaxHP.Effective / 2)
		stats.note("Exhaustion 4: hit point maximum halved")
	}
	if level >= 5 {
		stats.Speed.set(0)
		stats.note("Exhaustion 5: speed 0")
	}
	if level >= MaxExhaustionLevel {
		stats.Dead = true
		stats.HP.set(0)
		stats.note(fmt.Sprintf("Exhaustion %d: death", MaxExhaustionLevel))
	}
}

func (e *EffectiveStats) note(text string) {
	e.Effects = append(e.Effects, text)
}
