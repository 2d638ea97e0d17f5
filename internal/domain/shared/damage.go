package shared

import "strings"

// DamageType represents a damage flavor for resistance bookkeeping. Unknown
// types pass through untouched so homebrew damage works without registration.
type DamageType string

const (
	DamageAcid        DamageType = "acid"
	DamageBludgeoning DamageType = "bludgeoning"
	DamageCold        DamageType = "cold"
	DamageFire        DamageType = "fire"
	DamageForce       DamageType = "force"
	DamageLightning   DamageType = "lightning"
	DamageNecrotic    DamageType = "necrotic"
	DamagePiercing    DamageType = "piercing"
	DamagePoison      DamageType = "poison"
	DamagePsychic     DamageType = "psychic"
	DamageRadiant     DamageType = "radiant"
	DamageSlashing    DamageType = "slashing"
	DamageThunder     DamageType = "thunder"
)

// NormalizeDamageType lowercases a damage type for set membership checks
func NormalizeDamageType(name string) DamageType {
	return DamageType(strings.ToLower(strings.TrimSpace(name)))
}

// Defenses groups a creature's damage resistances, immunities and
// vulnerabilities
type Defenses struct {
	Resistances     []DamageType `json:"resistances,omitempty"`
	Immunities      []DamageType `json:"immunities,omitempty"`
	Vulnerabilities []DamageType `json:"vulnerabilities,omitempty"`
}

func contains(list []DamageType, dt DamageType) bool {
	for _, entry := range list {
		if entry == dt {
			return true
		}
	}
	return false
}

// Apply adjusts incoming damage for the creature's defenses: immunity zeroes
// it, resistance halves (round down), vulnerability doubles.
func (d Defenses) Apply(amount int, damageType DamageType) (int, string) {
	if damageType == "" {
		return amount, ""
	}
	switch {
	case contains(d.Immunities, damageType):
		return 0, "immune"
	case contains(d.Resistances, damageType):
		return amount / 2, "resisted"
	case contains(d.Vulnerabilities, damageType):
		return amount * 2, "vulnerable"
	}
	return amount, ""
}
