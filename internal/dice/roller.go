package dice

// Roller provides an interface for rolling dice
// This allows us to inject different implementations for testing
type Roller interface {
	// Roll rolls a number of dice with the given sides and adds a bonus
	Roll(count, sides, bonus int) (*RollResult, error)

	// RollWithAdvantage rolls with advantage (roll twice, take higher)
	RollWithAdvantage(sides, bonus int) (*RollResult, error)

	// RollWithDisadvantage rolls with disadvantage (roll twice, take lower)
	RollWithDisadvantage(sides, bonus int) (*RollResult, error)
}

// RollResult holds the outcome of a dice roll
type RollResult struct {
	Total    int   `json:"total"`
	Rolls    []int `json:"rolls"` // Every die rolled, including dropped ones
	Kept     []int `json:"kept"`  // Dice that counted toward the total
	Bonus    int   `json:"bonus"`
	Count    int   `json:"count"`
	Sides    int   `json:"sides"`
	RawTotal int   `json:"raw_total"` // Total before the bonus
	IsCrit   bool  `json:"is_crit"`   // Natural 20 on a d20
	IsFumble bool  `json:"is_fumble"` // Natural 1 on a d20
}
