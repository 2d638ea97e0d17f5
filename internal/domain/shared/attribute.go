package shared

import (
	"strings"

	dnderr "github.com/dmforge/encounter-engine/internal/errors"
)

type Attribute string

var Attributes = []Attribute{AttributeStrength, AttributeDexterity, AttributeConstitution, AttributeIntelligence, AttributeWisdom, AttributeCharisma}

const (
	AttributeNone         Attribute = ""
	AttributeStrength     Attribute = "Str"
	AttributeDexterity    Attribute = "Dex"
	AttributeConstitution Attribute = "Con"
	AttributeIntelligence Attribute = "Int"
	AttributeWisdom       Attribute = "Wis"
	AttributeCharisma     Attribute = "Cha"
)

// ParseAttribute accepts full names and three-letter abbreviations in any
// case ("strength", "STR", "Str").
func ParseAttribute(name string) (Attribute, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "str", "strength":
		return AttributeStrength, nil
	case "dex", "dexterity":
		return AttributeDexterity, nil
	case "con", "constitution":
		return AttributeConstitution, nil
	case "int", "intelligence":
		return AttributeIntelligence, nil
	case "wis", "wisdom":
		return AttributeWisdom, nil
	case "cha", "charisma":
		return AttributeCharisma, nil
	}
	return AttributeNone, dnderr.InvalidArgumentf("unknown ability: %q", name)
}

// AbilityScore pairs a raw score with its derived modifier
type AbilityScore struct {
	Score int `json:"score"`
	Bonus int `json:"bonus"`
}

// NewAbilityScore computes the modifier from the raw score
func NewAbilityScore(score int) AbilityScore {
	return AbilityScore{Score: score, Bonus: Modifier(score)}
}

// Modifier converts a raw ability score to its modifier, rounding toward
// negative infinity so a score of 8 yields -1
func Modifier(score int) int {
	if score >= 10 {
		return (score - 10) / 2
	}
	return -((11 - score) / 2)
}

// ProficiencyBonus returns the level-derived proficiency bonus
func ProficiencyBonus(level int) int {
	if level < 1 {
		return 2
	}
	return 2 + ((level - 1) / 4)
}
