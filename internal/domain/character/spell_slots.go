package character

import (
	dnderr "github.com/dmforge/encounter-engine/internal/errors"
)

// MaxSlotLevel is the highest spell slot level
const MaxSlotLevel = 9

// SlotInfo tracks spell slots at a specific level
type SlotInfo struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// SlotPool maps slot level (1-9) to remaining/maximum counts
type SlotPool map[int]SlotInfo

// PactPool is a warlock-style pool: a uniform slot level, restored on either
// rest type
type PactPool struct {
	Current   int `json:"current"`
	Max       int `json:"max"`
	SlotLevel int `json:"slot_level"`
}

// fullCasterSlots indexes slots-per-spell-level by character level (1-20)
var fullCasterSlots = [21][MaxSlotLevel]int{
	1:  {2},
	2:  {3},
	3:  {4, 2},
	4:  {4, 3},
	5:  {4, 3, 2},
	6:  {4, 3, 3},
	7:  {4, 3, 3, 1},
	8:  {4, 3, 3, 2},
	9:  {4, 3, 3, 3, 1},
	10: {4, 3, 3, 3, 2},
	11: {4, 3, 3, 3, 2, 1},
	12: {4, 3, 3, 3, 2, 1},
	13: {4, 3, 3, 3, 2, 1, 1},
	14: {4, 3, 3, 3, 2, 1, 1},
	15: {4, 3, 3, 3, 2, 1, 1, 1},
	16: {4, 3, 3, 3, 2, 1, 1, 1},
	17: {4, 3, 3, 3, 2, 1, 1, 1, 1},
	18: {4, 3, 3, 3, 3, 1, 1, 1, 1},
	19: {4, 3, 3, 3, 3, 2, 1, 1, 1},
	20: {4, 3, 3, 3, 3, 2, 2, 1, 1},
}

var halfCasterSlots = [21][MaxSlotLevel]int{
	2:  {2},
	3:  {3},
	4:  {3},
	5:  {4, 2},
	6:  {4, 2},
	7:  {4, 3},
	8:  {4, 3},
	9:  {4, 3, 2},
	10: {4, 3, 2},
	11: {4, 3, 3},
	12: {4, 3, 3},
	13: {4, 3, 3, 1},
	14: {4, 3, 3, 1},
	15: {4, 3, 3, 2},
	16: {4, 3, 3, 2},
	17: {4, 3, 3, 3, 1},
	18: {4, 3, 3, 3, 1},
	19: {4, 3, 3, 3, 2},
	20: {4, 3, 3, 3, 2},
}

var thirdCasterSlots = [21][MaxSlotLevel]int{
	3:  {2},
	4:  {3},
	5:  {3},
	6:  {3},
	7:  {4, 2},
	8:  {4, 2},
	9:  {4, 2},
	10: {4, 3},
	11: {4, 3},
	12: {4, 3},
	13: {4, 3, 2},
	14: {4, 3, 2},
	15: {4, 3, 2},
	16: {4, 3, 3},
	17: {4, 3, 3},
	18: {4, 3, 3},
	19: {4, 3, 3, 1},
	20: {4, 3, 3, 1},
}

// pactProgression indexes pact slots and their uniform level by character level
var pactProgression = [21]struct {
	Slots     int
	SlotLevel int
}{
	1:  {1, 1},
	2:  {2, 1},
	3:  {2, 2},
	4:  {2, 2},
	5:  {2, 3},
	6:  {2, 3},
	7:  {2, 4},
	8:  {2, 4},
	9:  {2, 5},
	10: {2, 5},
	11: {3, 5},
	12: {3, 5},
	13: {3, 5},
	14: {3, 5},
	15: {3, 5},
	16: {3, 5},
	17: {4, 5},
	18: {4, 5},
	19: {4, 5},
	20: {4, 5},
}

// SlotsForLevel derives the fresh slot pools for a class progression at the
// given character level. Pact casters get a pact pool and no standard slots.
func SlotsForLevel(prog Progression, level int) (SlotPool, *PactPool, error) {
	if level < 1 || level > 20 {
		return nil, nil, dnderr.InvalidArgumentf("character level %d out of range 1-20", level)
	}

	pool := make(SlotPool)

	var table *[21][MaxSlotLevel]int
	switch prog.Tier {
	case TierFull:
		table = &fullCasterSlots
	case TierHalf:
		table = &halfCasterSlots
	case TierThird:
		table = &thirdCasterSlots
	case TierPact:
		entry := pactProgression[level]
		return pool, &PactPool{Current: entry.Slots, Max: entry.Slots, SlotLevel: entry.SlotLevel}, nil
	case TierNone:
		return pool, nil, nil
	default:
		return nil, nil, dnderr.InvalidArgumentf("unknown spellcasting tier: %q", prog.Tier)
	}

	for slotLevel := 1; slotLevel <= MaxSlotLevel; slotLevel++ {
		count := table[level][slotLevel-1]
		if count > 0 {
			pool[slotLevel] = SlotInfo{Current: count, Max: count}
		}
	}
	return pool, nil, nil
}

// Expend decrements slots at the level, failing atomically when not enough
// remain
func (p SlotPool) Expend(level, count int) error {
	if level < 1 || level > MaxSlotLevel {
		return dnderr.InvalidArgumentf("slot level %d out of range 1-%d", level, MaxSlotLevel)
	}
	if count < 1 {
		return dnderr.InvalidArgumentf("expend count must be positive, got %d", count)
	}
	slot, ok := p[level]
	if !ok || slot.Current < count {
		return dnderr.ResourceExhaustedf("no level %d spell slots remaining (%d of %d available)", level, slot.Current, slot.Max)
	}
	slot.Current -= count
	p[level] = slot
	return nil
}

// Restore increments slots at the level up to max. A zero level restores
// every level to max. Returns the number of slots actually restored.
func (p SlotPool) Restore(level, count int) (int, error) {
	if level == 0 {
		restored := 0
		for slotLevel, slot := range p {
			restored += slot.Max - slot.Current
			p[slotLevel] = SlotInfo{Current: slot.Max, Max: slot.Max}
		}
		return restored, nil
	}
	if level < 1 || level > MaxSlotLevel {
		return 0, dnderr.InvalidArgumentf("slot level %d out of range 1-%d", level, MaxSlotLevel)
	}
	slot, ok := p[level]
	if !ok {
		return 0, dnderr.InvalidArgumentf("no level %d slots to restore", level)
	}
	if count <= 0 {
		count = slot.Max - slot.Current
	}
	restored := count
	if slot.Current+restored > slot.Max {
		restored = slot.Max - slot.Current
	}
	slot.Current += restored
	p[level] = slot
	return restored, nil
}

// Override replaces current counts with the supplied map. This is the DM
// escape hatch: values may exceed the computed maximum, in which case max is
// raised to match.
func (p SlotPool) Override(levels map[int]int) error {
	for level, current := range levels {
		if level < 1 || level > MaxSlotLevel {
			return dnderr.InvalidArgumentf("slot level %d out of range 1-%d", level, MaxSlotLevel)
		}
		if current < 0 {
			return dnderr.InvalidArgumentf("slot count for level %d must not be negative", level)
		}
		slot := p[level]
		slot.Current = current
		if current > slot.Max {
			slot.Max = current
		}
		p[level] = slot
	}
	return nil
}

// Expend decrements the pact pool, failing atomically when not enough remain
func (p *PactPool) Expend(count int) error {
	if p == nil {
		return dnderr.FailedPrecondition("character has no pact magic")
	}
	if count < 1 {
		return dnderr.InvalidArgumentf("expend count must be positive, got %d", count)
	}
	if p.Current < count {
		return dnderr.ResourceExhaustedf("no pact slots remaining (%d of %d available)", p.Current, p.Max)
	}
	p.Current -= count
	return nil
}

// Restore refills the pact pool up to max and returns the slots restored
func (p *PactPool) Restore(count int) int {
	if p == nil {
		return 0
	}
	if count <= 0 {
		count = p.Max - p.Current
	}
	if p.Current+count > p.Max {
		count = p.Max - p.Current
	}
	p.Current += count
	return count
}
