package combat

import (
	"github.com/dmforge/encounter-engine/internal/domain/conditions"
	"github.com/dmforge/encounter-engine/internal/domain/shared"
	"github.com/dmforge/encounter-engine/internal/spatial"
)

// Participant is one combatant inside an encounter. It is a point-in-time
// copy: damage and healing never write back to the character record it may
// have been resolved from.
type Participant struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	CurrentHP       int                 `json:"current_hp"`
	MaxHP           int                 `json:"max_hp"`
	AC              int                 `json:"ac"`
	Speed           int                 `json:"speed"`
	InitiativeBonus int                 `json:"initiative_bonus"`
	Initiative      int                 `json:"initiative"`
	Position        spatial.Position    `json:"position"`
	Ally            bool                `json:"ally"`
	Size            shared.SizeCategory `json:"size"`
	Defenses        shared.Defenses     `json:"defenses"`
	Conditions      *conditions.Set     `json:"-"`
	DeathSaves      *DeathSaveTracker   `json:"death_saves,omitempty"`

	// CharacterID links back to the persisted record this participant was
	// resolved from, when any
	CharacterID string `json:"character_id,omitempty"`
}

// EnsureConditions returns the participant's condition set, creating it on
// first use
func (p *Participant) EnsureConditions() *conditions.Set {
	if p.Conditions == nil {
		p.Conditions = conditions.NewSet()
	}
	return p.Conditions
}

// IsAlive reports whether the participant has hit points remaining
func (p *Participant) IsAlive() bool {
	return p.CurrentHP > 0
}

// IsDead reports whether the participant has failed out of their death saves
func (p *Participant) IsDead() bool {
	return p.DeathSaves != nil && p.DeathSaves.Dead
}

// IsStable reports whether the participant is unconscious but no longer dying
func (p *Participant) IsStable() bool {
	return p.CurrentHP == 0 && p.DeathSaves != nil && p.DeathSaves.Stable
}

// TakesTurns reports whether the turn order should stop on this participant.
// Dying participants still act (they roll death saves); the stable and the
// dead are skipped.
func (p *Participant) TakesTurns() bool {
	return !p.IsDead() && !p.IsStable()
}

// IsBloodied reports whether the participant is at or below half hit points
func (p *Participant) IsBloodied() bool {
	return p.MaxHP > 0 && p.CurrentHP*2 <= p.MaxHP
}

// ApplyDamage reduces hit points, flooring at zero. It reports whether this
// damage dropped the participant to zero.
func (p *Participant) ApplyDamage(amount int) (dropped bool) {
	wasUp := p.CurrentHP > 0
	p.CurrentHP -= amount
	if p.CurrentHP < 0 {
		p.CurrentHP = 0
	}
	return wasUp && p.CurrentHP == 0
}

// Heal restores hit points, capped at max. It reports whether the
// participant came back from zero.
func (p *Participant) Heal(amount int) (revived bool) {
	wasDown := p.CurrentHP == 0
	p.CurrentHP += amount
	if p.CurrentHP > p.MaxHP {
		p.CurrentHP = p.MaxHP
	}
	return wasDown && p.CurrentHP > 0
}
