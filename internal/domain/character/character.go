package character

import (
	"time"

	"github.com/dmforge/encounter-engine/internal/domain/shared"
)

// Character is the persisted character record. The engine reads it when
// resolving encounter participants and checks, and writes it back only for
// spell slot changes; encounter damage never touches it.
type Character struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`

	// Class resolves once at creation; Progression is the normalized result
	Class       ClassRef    `json:"class"`
	Progression Progression `json:"progression"`

	Race  string              `json:"race,omitempty"` // Accepted as data, homebrew included
	Size  shared.SizeCategory `json:"size,omitempty"`
	Speed int                 `json:"speed"`
	AC    int                 `json:"ac"`

	MaxHP     int `json:"max_hp"`
	CurrentHP int `json:"current_hp"`

	Attributes map[shared.Attribute]shared.AbilityScore `json:"attributes"`

	SkillProficiencies []shared.Skill     `json:"skill_proficiencies,omitempty"`
	SaveProficiencies  []shared.Attribute `json:"save_proficiencies,omitempty"`

	Defenses shared.Defenses `json:"defenses,omitempty"`

	// Spell slot state lives on the record so it survives across encounters
	SpellSlots SlotPool  `json:"spell_slots,omitempty"`
	PactMagic  *PactPool `json:"pact_magic,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AbilityModifier returns the modifier for an ability, 0 when the score is
// not recorded
func (c *Character) AbilityModifier(attr shared.Attribute) int {
	if score, ok := c.Attributes[attr]; ok {
		return score.Bonus
	}
	return 0
}

// ProficiencyBonus returns the level-derived proficiency bonus
func (c *Character) ProficiencyBonus() int {
	return shared.ProficiencyBonus(c.Level)
}

// HasSkillProficiency checks if the character is trained in a skill
func (c *Character) HasSkillProficiency(skill shared.Skill) bool {
	for _, trained := range c.SkillProficiencies {
		if trained == skill {
			return true
		}
	}
	return false
}

// HasSaveProficiency checks if the character is proficient in a saving throw
func (c *Character) HasSaveProficiency(attr shared.Attribute) bool {
	for _, trained := range c.SaveProficiencies {
		if trained == attr {
			return true
		}
	}
	return false
}

// InitiativeBonus is the dexterity modifier
func (c *Character) InitiativeBonus() int {
	return c.AbilityModifier(shared.AttributeDexterity)
}

// InitializeSlots derives fresh spell slot pools from the resolved
// progression. Called at creation and on long rest.
func (c *Character) InitializeSlots() error {
	pool, pact, err := SlotsForLevel(c.Progression, c.Level)
	if err != nil {
		return err
	}
	c.SpellSlots = pool
	c.PactMagic = pact
	return nil
}
