package dice

import (
	"fmt"
	"sync"
)

// ManualRoller implements Roller with predetermined results. It backs the
// manual-roll overrides on tool inputs and doubles as the deterministic
// roller in tests.
type ManualRoller struct {
	mu        sync.Mutex
	rolls     []int
	rollIndex int
}

// NewManualRoller creates a manual roller with the given predetermined rolls
func NewManualRoller(rolls ...int) *ManualRoller {
	return &ManualRoller{rolls: rolls}
}

// SetNextRoll appends the next roll result
func (m *ManualRoller) SetNextRoll(roll int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = append(m.rolls, roll)
}

// SetRolls replaces the queued roll results
func (m *ManualRoller) SetRolls(rolls []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = rolls
	m.rollIndex = 0
}

// Reset clears all rolls and resets the index
func (m *ManualRoller) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = []int{}
	m.rollIndex = 0
}

// getNextRoll returns the next predetermined roll
func (m *ManualRoller) getNextRoll() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rollIndex >= len(m.rolls) {
		return 0, fmt.Errorf("no more predetermined rolls available (used %d of %d)", m.rollIndex, len(m.rolls))
	}

	roll := m.rolls[m.rollIndex]
	m.rollIndex++
	return roll, nil
}

// Roll implements Roller.Roll using queued values
func (m *ManualRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	if err := validateDice(count, sides); err != nil {
		return nil, err
	}

	rolls := make([]int, count)
	total := 0
	for i := 0; i < count; i++ {
		next, err := m.getNextRoll()
		if err != nil {
			return nil, err
		}
		rolls[i] = next
		total += next
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

	if count == 1 && sides == 20 {
		result.IsCrit = rolls[0] == 20
		result.IsFumble = rolls[0] == 1
	}

	return result, nil
}

// RollWithAdvantage implements Roller.RollWithAdvantage using two queued values
func (m *ManualRoller) RollWithAdvantage(sides, bonus int) (*RollResult, error) {
	return m.rollPair(sides, bonus, true)
}

// RollWithDisadvantage implements Roller.RollWithDisadvantage using two queued values
func (m *ManualRoller) RollWithDisadvantage(sides, bonus int) (*RollResult, error) {
	return m.rollPair(sides, bonus, false)
}

func (m *ManualRoller) rollPair(sides, bonus int, keepHigher bool) (*RollResult, error) {
	if err := validateDice(1, sides); err != nil {
		return nil, err
	}

	roll1, err := m.getNextRoll()
	if err != nil {
		return nil, err
	}
	roll2, err := m.getNextRoll()
	if err != nil {
		return nil, err
	}

	kept := roll1
	if keepHigher && roll2 > roll1 {
		kept = roll2
	}
	if !keepHigher && roll2 < roll1 {
		kept = roll2
	}

	result := &RollResult{
		Total:    kept + bonus,
		Rolls:    []int{roll1, roll2},
		Kept:     []int{kept},
		Bonus:    bonus,
		Count:    1,
		Sides:    sides,
		RawTotal: kept,
	}

	if sides == 20 {
		result.IsCrit = kept == 20
		result.IsFumble = kept == 1
	}

	return result, nil
}
