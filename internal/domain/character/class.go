package character

import (
	"strings"

	"github.com/dmforge/encounter-engine/internal/domain/shared"
	dnderr "github.com/dmforge/encounter-engine/internal/errors"
)

// CasterTier determines which progression table governs spell slots
type CasterTier string

const (
	TierNone  CasterTier = "none"
	TierFull  CasterTier = "full"
	TierHalf  CasterTier = "half"
	TierThird CasterTier = "third"
	TierPact  CasterTier = "pact"
)

// KnownClass is one of the standard class tags
type KnownClass string

const (
	ClassBarbarian       KnownClass = "barbarian"
	ClassBard            KnownClass = "bard"
	ClassCleric          KnownClass = "cleric"
	ClassDruid           KnownClass = "druid"
	ClassFighter         KnownClass = "fighter"
	ClassMonk            KnownClass = "monk"
	ClassPaladin         KnownClass = "paladin"
	ClassRanger          KnownClass = "ranger"
	ClassRogue           KnownClass = "rogue"
	ClassSorcerer        KnownClass = "sorcerer"
	ClassWarlock         KnownClass = "warlock"
	ClassWizard          KnownClass = "wizard"
	ClassEldritchKnight  KnownClass = "eldritch_knight"
	ClassArcaneTrickster KnownClass = "arcane_trickster"
)

// knownClassInfo holds the fixed progression facts per standard class
var knownClassInfo = map[KnownClass]Progression{
	ClassBarbarian:       {Name: "Barbarian", HitDie: 12, Tier: TierNone},
	ClassBard:            {Name: "Bard", HitDie: 8, Tier: TierFull, SpellAbility: shared.AttributeCharisma},
	ClassCleric:          {Name: "Cleric", HitDie: 8, Tier: TierFull, SpellAbility: shared.AttributeWisdom},
	ClassDruid:           {Name: "Druid", HitDie: 8, Tier: TierFull, SpellAbility: shared.AttributeWisdom},
	ClassFighter:         {Name: "Fighter", HitDie: 10, Tier: TierNone},
	ClassMonk:            {Name: "Monk", HitDie: 8, Tier: TierNone},
	ClassPaladin:         {Name: "Paladin", HitDie: 10, Tier: TierHalf, SpellAbility: shared.AttributeCharisma},
	ClassRanger:          {Name: "Ranger", HitDie: 10, Tier: TierHalf, SpellAbility: shared.AttributeWisdom},
	ClassRogue:           {Name: "Rogue", HitDie: 8, Tier: TierNone},
	ClassSorcerer:        {Name: "Sorcerer", HitDie: 6, Tier: TierFull, SpellAbility: shared.AttributeCharisma},
	ClassWarlock:         {Name: "Warlock", HitDie: 8, Tier: TierPact, SpellAbility: shared.AttributeCharisma},
	ClassWizard:          {Name: "Wizard", HitDie: 6, Tier: TierFull, SpellAbility: shared.AttributeIntelligence},
	ClassEldritchKnight:  {Name: "Eldritch Knight", HitDie: 10, Tier: TierThird, SpellAbility: shared.AttributeIntelligence},
	ClassArcaneTrickster: {Name: "Arcane Trickster", HitDie: 8, Tier: TierThird, SpellAbility: shared.AttributeIntelligence},
}

// CustomClass is a homebrew class descriptor supplied at character creation.
// It is accepted as data, not validated against any canon.
type CustomClass struct {
	Name             string           `json:"name"`
	HitDie           int              `json:"hit_die"`
	SpellcastingTier CasterTier       `json:"spellcasting_tier"`
	SpellAbility     shared.Attribute `json:"spell_ability,omitempty"`
	ResourceName     string           `json:"resource_name,omitempty"`
	ResourceMax      int              `json:"resource_max,omitempty"`
	ResourceScaling  string           `json:"resource_scaling,omitempty"` // "per_level" or "flat"
}

// ClassRef is the sum of a known class tag and a custom class descriptor.
// Exactly one side is set; it resolves once into a Progression at character
// creation instead of re-branching on class name per calculation.
type ClassRef struct {
	Known  KnownClass   `json:"known,omitempty"`
	Custom *CustomClass `json:"custom,omitempty"`
}

// Progression is the normalized record every class resolves to
type Progression struct {
	Name            string           `json:"name"`
	HitDie          int              `json:"hit_die"`
	Tier            CasterTier       `json:"tier"`
	SpellAbility    shared.Attribute `json:"spell_ability,omitempty"`
	ResourceName    string           `json:"resource_name,omitempty"`
	ResourceMax     int              `json:"resource_max,omitempty"`
	ResourceScaling string           `json:"resource_scaling,omitempty"`
}

// ParseKnownClass matches a class name against the standard tags
func ParseKnownClass(name string) (KnownClass, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	class := KnownClass(normalized)
	if _, ok := knownClassInfo[class]; !ok {
		return "", dnderr.InvalidArgumentf("unknown class: %q", name)
	}
	return class, nil
}

// Resolve collapses the sum type into a normalized progression record
func (r ClassRef) Resolve() (Progression, error) {
	switch {
	case r.Custom != nil:
		custom := r.Custom
		if custom.Name == "" {
			return Progression{}, dnderr.InvalidArgument("custom class requires a name")
		}
		if custom.HitDie < 4 {
			return Progression{}, dnderr.InvalidArgumentf("custom class %q has invalid hit die d%d", custom.Name, custom.HitDie)
		}
		tier := custom.SpellcastingTier
		if tier == "" {
			tier = TierNone
		}
		switch tier {
		case TierNone, TierFull, TierHalf, TierThird, TierPact:
		default:
			return Progression{}, dnderr.InvalidArgumentf("unknown spellcasting tier: %q", custom.SpellcastingTier)
		}
		return Progression{
			Name:            custom.Name,
			HitDie:          custom.HitDie,
			Tier:            tier,
			SpellAbility:    custom.SpellAbility,
			ResourceName:    custom.ResourceName,
			ResourceMax:     custom.ResourceMax,
			ResourceScaling: custom.ResourceScaling,
		}, nil
	case r.Known != "":
		info, ok := knownClassInfo[r.Known]
		if !ok {
			return Progression{}, dnderr.InvalidArgumentf("unknown class: %q", r.Known)
		}
		return info, nil
	default:
		return Progression{}, dnderr.InvalidArgument("class reference is empty")
	}
}
