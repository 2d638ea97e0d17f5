package character

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dnderr "github.com/dmforge/encounter-engine/internal/errors"
)

func resolveKnown(t *testing.T, class KnownClass) Progression {
	t.Helper()
	prog, err := ClassRef{Known: class}.Resolve()
	require.NoError(t, err)
	return prog
}

func TestSlotsForLevel_FullCaster(t *testing.T) {
	pool, pact, err := SlotsForLevel(resolveKnown(t, ClassWizard), 5)
	require.NoError(t, err)
	require.Nil(t, pact)

	assert.Equal(t, SlotPool{
		1: {Current: 4, Max: 4},
		2: {Current: 3, Max: 3},
		3: {Current: 2, Max: 2},
	}, pool)
}

func TestSlotsForLevel_HalfCaster(t *testing.T) {
	pool, pact, err := SlotsForLevel(resolveKnown(t, ClassPaladin), 5)
	require.NoError(t, err)
	require.Nil(t, pact)

	assert.Equal(t, SlotPool{
		1: {Current: 4, Max: 4},
		2: {Current: 2, Max: 2},
	}, pool)
	_, has3rd := pool[3]
	assert.False(t, has3rd, "half casters get no 3rd-level slots at level 5")
}

func TestSlotsForLevel_PactCaster(t *testing.T) {
	pool, pact, err := SlotsForLevel(resolveKnown(t, ClassWarlock), 5)
	require.NoError(t, err)
	require.NotNil(t, pact)

	assert.Empty(t, pool, "pact casters have no standard slots")
	assert.Equal(t, &PactPool{Current: 2, Max: 2, SlotLevel: 3}, pact)
}

func TestSlotsForLevel_ThirdCaster(t *testing.T) {
	pool, _, err := SlotsForLevel(resolveKnown(t, ClassEldritchKnight), 3)
	require.NoError(t, err)
	assert.Equal(t, SlotPool{1: {Current: 2, Max: 2}}, pool)

	pool, _, err = SlotsForLevel(resolveKnown(t, ClassEldritchKnight), 7)
	require.NoError(t, err)
	assert.Equal(t, SlotPool{
		1: {Current: 4, Max: 4},
		2: {Current: 2, Max: 2},
	}, pool)
}

func TestSlotsForLevel_NonCaster(t *testing.T) {
	pool, pact, err := SlotsForLevel(resolveKnown(t, ClassBarbarian), 10)
	require.NoError(t, err)
	assert.Empty(t, pool)
	assert.Nil(t, pact)
}

func TestSlotsForLevel_InvalidLevel(t *testing.T) {
	_, _, err := SlotsForLevel(resolveKnown(t, ClassWizard), 0)
	assert.Error(t, err)
	_, _, err = SlotsForLevel(resolveKnown(t, ClassWizard), 21)
	assert.Error(t, err)
}

func TestSlotPool_ExpendUntilExhausted(t *testing.T) {
	// Level-1 wizard has two 1st-level slots
	pool, _, err := SlotsForLevel(resolveKnown(t, ClassWizard), 1)
	require.NoError(t, err)

	require.NoError(t, pool.Expend(1, 1))
	require.NoError(t, pool.Expend(1, 1))

	err = pool.Expend(1, 1)
	require.Error(t, err)
	assert.True(t, dnderr.IsResourceExhausted(err))
	assert.Equal(t, 0, pool[1].Current, "failed expend changes nothing")

	restored, err := pool.Restore(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, restored)
	assert.Equal(t, SlotInfo{Current: 1, Max: 2}, pool[1])
}

func TestSlotPool_ExpendIsAtomic(t *testing.T) {
	pool := SlotPool{1: {Current: 1, Max: 2}}

	err := pool.Expend(1, 2)
	require.Error(t, err)
	assert.Equal(t, 1, pool[1].Current, "partial expend must not happen")
}

func TestSlotPool_RestoreAllLevels(t *testing.T) {
	pool := SlotPool{
		1: {Current: 0, Max: 4},
		2: {Current: 1, Max: 3},
	}

	restored, err := pool.Restore(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, restored)
	assert.Equal(t, 4, pool[1].Current)
	assert.Equal(t, 3, pool[2].Current)
}

func TestSlotPool_RestoreCapsAtMax(t *testing.T) {
	pool := SlotPool{1: {Current: 3, Max: 4}}

	restored, err := pool.Restore(1, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, restored)
	assert.Equal(t, 4, pool[1].Current)
}

func TestSlotPool_OverrideMayExceedMax(t *testing.T) {
	pool := SlotPool{1: {Current: 2, Max: 2}}

	require.NoError(t, pool.Override(map[int]int{1: 6, 4: 2}))
	assert.Equal(t, SlotInfo{Current: 6, Max: 6}, pool[1])
	assert.Equal(t, SlotInfo{Current: 2, Max: 2}, pool[4])
}

func TestPactPool_ExpendAndRestore(t *testing.T) {
	pact := &PactPool{Current: 2, Max: 2, SlotLevel: 3}

	require.NoError(t, pact.Expend(1))
	require.NoError(t, pact.Expend(1))

	err := pact.Expend(1)
	require.Error(t, err)
	assert.True(t, dnderr.IsResourceExhausted(err))

	restored := pact.Restore(0)
	assert.Equal(t, 2, restored)
	assert.Equal(t, 2, pact.Current)
}

func TestClassRef_ResolveCustom(t *testing.T) {
	ref := ClassRef{Custom: &CustomClass{
		Name:             "Bloodweaver",
		HitDie:           8,
		SpellcastingTier: TierFull,
		ResourceName:     "Blood Points",
		ResourceMax:      10,
	}}

	prog, err := ref.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "Bloodweaver", prog.Name)
	assert.Equal(t, TierFull, prog.Tier)

	pool, _, err := SlotsForLevel(prog, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, pool[3].Current, "custom full caster follows the full table")
}

func TestClassRef_ResolveErrors(t *testing.T) {
	_, err := ClassRef{}.Resolve()
	assert.Error(t, err)

	_, err = ClassRef{Custom: &CustomClass{Name: "X", HitDie: 8, SpellcastingTier: "extreme"}}.Resolve()
	assert.Error(t, err)

	_, err = ClassRef{Custom: &CustomClass{Name: "X", HitDie: 2}}.Resolve()
	assert.Error(t, err)
}

func TestCharacter_InitializeSlots(t *testing.T) {
	char := &Character{
		Name:  "Saria",
		Level: 5,
		Class: ClassRef{Known: ClassWarlock},
	}
	prog, err := char.Class.Resolve()
	require.NoError(t, err)
	char.Progression = prog

	require.NoError(t, char.InitializeSlots())
	require.NotNil(t, char.PactMagic)
	assert.Equal(t, 3, char.PactMagic.SlotLevel)
	assert.Empty(t, char.SpellSlots)
}
