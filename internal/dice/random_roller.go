package dice

import (
	"math/rand"
	"time"
)

// randomRoller implements Roller backed by a private rand source so seeded
// rollers stay reproducible regardless of what else the process rolls
type randomRoller struct {
	rng *rand.Rand
}

// NewRandomRoller creates a new random dice roller
func NewRandomRoller() Roller {
	return &randomRoller{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededRoller creates a roller with a deterministic sequence.
// Identical seeds produce identical roll sequences.
func NewSeededRoller(seed int64) Roller {
	return &randomRoller{rng: rand.New(rand.NewSource(seed))}
}

// Roll implements Roller.Roll
func (r *randomRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	return roll(r.rng, count, sides, bonus)
}

// RollWithAdvantage implements Roller.RollWithAdvantage
func (r *randomRoller) RollWithAdvantage(sides, bonus int) (*RollResult, error) {
	return rollPair(r.rng, sides, bonus, true)
}

// RollWithDisadvantage implements Roller.RollWithDisadvantage
func (r *randomRoller) RollWithDisadvantage(sides, bonus int) (*RollResult, error) {
	return rollPair(r.rng, sides, bonus, false)
}

func roll(rng *rand.Rand, count, sides, bonus int) (*RollResult, error) {
	if err := validateDice(count, sides); err != nil {
		return nil, err
	}

	rolls := make([]int, count)
	total := 0
	for i := 0; i < count; i++ {
		rolls[i] = rng.Intn(sides) + 1
		total += rolls[i]
	}

	result := &RollResult{
		Total:    total + bonus,
		Rolls:    rolls,
		Kept:     rolls,
		Bonus:    bonus,
		Count:    count,
		Sides:    sides,
		RawTotal: total,
	}

	// Check for crit/fumble on d20
	if count == 1 && sides == 20 {
		result.IsCrit = rolls[0] == 20
		result.IsFumble = rolls[0] == 1
	}

	return result, nil
}

func rollPair(rng *rand.Rand, sides, bonus int, keepHigher bool) (*RollResult, error) {
	if err := validateDice(1, sides); err != nil {
		return nil, err
	}

	roll1 := rng.Intn(sides) + 1
	roll2 := rng.Intn(sides) + 1

	kept := roll1
	if keepHigher && roll2 > roll1 {
		kept = roll2
	}
	if !keepHigher && roll2 < roll1 {
		kept = roll2
	}

	result := &RollResult{
		Total:    kept + bonus,
		Rolls:    []int{roll1, roll2}, // Show both rolls
		Kept:     []int{kept},
		Bonus:    bonus,
		Count:    1,
		Sides:    sides,
		RawTotal: kept,
	}

	// Check for crit/fumble on d20
	if sides == 20 {
		result.IsCrit = kept == 20
		result.IsFumble = kept == 1
	}

	return result, nil
}
