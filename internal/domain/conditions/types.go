package conditions

import (
	"sort"
	"strings"

	dnderr "github.com/dmforge/encounter-engine/internal/errors"
)

// ConditionType represents a type of condition
type ConditionType string

// Standard D&D 5e conditions
const (
	Blinded       ConditionType = "blinded"
	Charmed       ConditionType = "charmed"
	Deafened      ConditionType = "deafened"
	Frightened    ConditionType = "frightened"
	Grappled      ConditionType = "grappled"
	Incapacitated ConditionType = "incapacitated"
	Invisible     ConditionType = "invisible"
	Paralyzed     ConditionType = "paralyzed"
	Petrified     ConditionType = "petrified"
	Poisoned      ConditionType = "poisoned"
	Prone         ConditionType = "prone"
	Restrained    ConditionType = "restrained"
	Stunned       ConditionType = "stunned"
	Unconscious   ConditionType = "unconscious"
	Exhaustion    ConditionType = "exhaustion" // Has levels 1-6
)

// MaxExhaustionLevel is the level at which exhaustion kills
const MaxExhaustionLevel = 6

var allConditions = map[ConditionType]bool{
	Blinded:       true,
	Charmed:       true,
	Deafened:      true,
	Frightened:    true,
	Grappled:      true,
	Incapacitated: true,
	Invisible:     true,
	Paralyzed:     true,
	Petrified:     true,
	Poisoned:      true,
	Prone:         true,
	Restrained:    true,
	Stunned:       true,
	Unconscious:   true,
	Exhaustion:    true,
}

// Parse validates a condition name against the fixed enumeration
func Parse(name string) (ConditionType, error) {
	cond := ConditionType(strings.ToLower(strings.TrimSpace(name)))
	if !allConditions[cond] {
		return "", dnderr.InvalidArgumentf("unknown condition: %q", name)
	}
	return cond, nil
}

// Condition represents an active condition on a creature
type Condition struct {
	Type      ConditionType `json:"type"`
	Source    string        `json:"source,omitempty"`    // What caused it (spell, ability, etc)
	Remaining int           `json:"remaining,omitempty"` // Rounds remaining, 0 = until removed
	Level     int           `json:"level,omitempty"`     // For exhaustion (1-6)
}

// Set holds the active conditions for one creature, keyed by type so a
// condition never appears twice
type Set struct {
	active map[ConditionType]*Condition
}

// NewSet creates an empty condition set
func NewSet() *Set {
	return &Set{active: make(map[ConditionType]*Condition)}
}

// Add applies a condition. Re-adding refreshes the duration (and exhaustion
// level) rather than duplicating. Returns the stored condition.
func (s *Set) Add(cond Condition) (*Condition, error) {
	if !allConditions[cond.Type] {
		return nil, dnderr.InvalidArgumentf("unknown condition: %q", cond.Type)
	}
	if cond.Type == Exhaustion {
		if cond.Level == 0 {
			cond.Level = 1
		}
		if cond.Level < 1 || cond.Level > MaxExhaustionLevel {
			return nil, dnderr.InvalidArgumentf("exhaustion level %d out of range 1-%d", cond.Level, MaxExhaustionLevel)
		}
	} else if cond.Level != 0 {
		return nil, dnderr.InvalidArgumentf("condition %q does not have levels", cond.Type)
	}

	stored := cond
	s.active[cond.Type] = &stored
	return &stored, nil
}

// Remove drops a condition. Removing an absent condition is a no-op and
// reports false.
func (s *Set) Remove(condType ConditionType) bool {
	if _, ok := s.active[condType]; !ok {
		return false
	}
	delete(s.active, condType)
	return true
}

// Has reports whether the condition is active
func (s *Set) Has(condType ConditionType) bool {
	_, ok := s.active[condType]
	return ok
}

// Get returns the active condition of the given type, or nil
func (s *Set) Get(condType ConditionType) *Condition {
	return s.active[condType]
}

// ExhaustionLevel returns the current exhaustion level, 0 when not exhausted
func (s *Set) ExhaustionLevel() int {
	if cond, ok := s.active[Exhaustion]; ok {
		return cond.Level
	}
	return 0
}

// List returns active conditions sorted by type for stable output
func (s *Set) List() []*Condition {
	out := make([]*Condition, 0, len(s.active))
	for _, cond := range s.active {
		out = append(out, cond)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// TickRound decrements round-based durations and returns the conditions that
// expired. Conditions with no duration are untouched.
func (s *Set) TickRound() []ConditionType {
	var expired []ConditionType
	for condType, cond := range s.active {
		if cond.Remaining <= 0 {
			continue
		}
		cond.Remaining--
		if cond.Remaining == 0 {
			delete(s.active, condType)
			expired = append(expired, condType)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i] < expired[j] })
	return expired
}

// Len returns the number of active conditions
func (s *Set) Len() int {
	return len(s.active)
}
