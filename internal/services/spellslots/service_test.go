package spellslots

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmforge/encounter-engine/internal/domain/character"
	dnderr "github.com/dmforge/encounter-engine/internal/errors"
	"github.com/dmforge/encounter-engine/internal/repositories/characters"
)

func setup(t *testing.T, class character.KnownClass, level int) (Service, characters.Repository) {
	t.Helper()

	repo := characters.NewInMemoryRepository()
	ref := character.ClassRef{Known: class}
	prog, err := ref.Resolve()
	require.NoError(t, err)

	char := &character.Character{
		ID:          "caster-1",
		Name:        "Mira",
		Level:       level,
		Class:       ref,
		Progression: prog,
	}
	require.NoError(t, char.InitializeSlots())
	require.NoError(t, repo.Create(context.Background(), char))

	return NewService(&ServiceConfig{CharacterRepo: repo}), repo
}

func TestManageSlots_View(t *testing.T) {
	svc, _ := setup(t, character.ClassWizard, 5)

	result, err := svc.ManageSlots(context.Background(), &ManageInput{
		CharacterID: "caster-1",
		Operation:   OpView,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Slots[1].Max)
	assert.Equal(t, 3, result.Slots[2].Max)
	assert.Equal(t, 2, result.Slots[3].Max)
	assert.Nil(t, result.Pact)
}

func TestManageSlots_ExpendToExhaustion(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t, character.ClassWizard, 1) // two level-1 slots

	for i := 0; i < 2; i++ {
		_, err := svc.ManageSlots(ctx, &ManageInput{
			CharacterID: "caster-1",
			Operation:   OpExpend,
			SlotLevel:   1,
		})
		require.NoError(t, err)
	}

	_, err := svc.ManageSlots(ctx, &ManageInput{
		CharacterID: "caster-1",
		Operation:   OpExpend,
		SlotLevel:   1,
	})
	require.Error(t, err)
	assert.True(t, dnderr.IsResourceExhausted(err))

	// Exhaustion persisted through the repository
	char, err := repo.Get(ctx, "caster-1")
	require.NoError(t, err)
	assert.Equal(t, 0, char.SpellSlots[1].Current)

	// A single restore brings one back
	result, err := svc.ManageSlots(ctx, &ManageInput{
		CharacterID: "caster-1",
		Operation:   OpRestore,
		SlotLevel:   1,
		Count:       1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Restored)
	assert.Equal(t, 1, result.Slots[1].Current)
}

func TestManageSlots_RestoreAll(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, character.ClassWizard, 5)

	for _, level := range []int{1, 2, 3} {
		_, err := svc.ManageSlots(ctx, &ManageInput{
			CharacterID: "caster-1", Operation: OpExpend, SlotLevel: level,
		})
		require.NoError(t, err)
	}

	result, err := svc.ManageSlots(ctx, &ManageInput{
		CharacterID: "caster-1",
		Operation:   OpRestore, // level 0 = everything
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Restored)
	assert.Equal(t, 4, result.Slots[1].Current)
}

func TestManageSlots_PactMagic(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, character.ClassWarlock, 5) // 2 pact slots at 3rd

	result, err := svc.ManageSlots(ctx, &ManageInput{
		CharacterID: "caster-1",
		Operation:   OpExpend,
		PactMagic:   true,
		Count:       2,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Pact)
	assert.Equal(t, 0, result.Pact.Current)
	assert.Equal(t, 3, result.Pact.SlotLevel)

	_, err = svc.ManageSlots(ctx, &ManageInput{
		CharacterID: "caster-1", Operation: OpExpend, PactMagic: true,
	})
	assert.True(t, dnderr.IsResourceExhausted(err))

	restored, err := svc.ManageSlots(ctx, &ManageInput{
		CharacterID: "caster-1", Operation: OpRestore, PactMagic: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, restored.Restored)
}

func TestManageSlots_SetOverride(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, character.ClassFighter, 5) // no caster slots at all

	result, err := svc.ManageSlots(ctx, &ManageInput{
		CharacterID: "caster-1",
		Operation:   OpSet,
		Slots:       map[int]int{1: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Slots[1].Current)
}

func TestManageSlots_Lookup(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, character.ClassWizard, 5)

	t.Run("by name", func(t *testing.T) {
		result, err := svc.ManageSlots(ctx, &ManageInput{
			CharacterName: "mira",
			Operation:     OpView,
		})
		require.NoError(t, err)
		assert.Equal(t, "caster-1", result.CharacterID)
	})

	t.Run("neither id nor name", func(t *testing.T) {
		_, err := svc.ManageSlots(ctx, &ManageInput{Operation: OpView})
		assert.True(t, dnderr.IsInvalidArgument(err))
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.ManageSlots(ctx, &ManageInput{CharacterID: "ghost", Operation: OpView})
		assert.True(t, dnderr.IsNotFound(err))
	})
}

func TestManageBatch(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, character.ClassWizard, 1) // two level-1 slots

	inputs := []*ManageInput{
		{CharacterID: "caster-1", Operation: OpExpend, SlotLevel: 1},
		{CharacterID: "caster-1", Operation: OpExpend, SlotLevel: 1},
		{CharacterID: "caster-1", Operation: OpExpend, SlotLevel: 1}, // exhausted
		{CharacterID: "caster-1", Operation: OpView},
	}

	entries, err := svc.ManageBatch(ctx, inputs)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.True(t, entries[0].OK)
	assert.True(t, entries[1].OK)
	assert.False(t, entries[2].OK)
	assert.Contains(t, entries[2].Error, "no level 1 spell slots")
	assert.True(t, entries[3].OK)
	assert.Equal(t, 0, entries[3].Result.Slots[1].Current)
}

func TestManageBatch_Limits(t *testing.T) {
	svc, _ := setup(t, character.ClassWizard, 1)

	_, err := svc.ManageBatch(context.Background(), nil)
	assert.True(t, dnderr.IsInvalidArgument(err))

	big := make([]*ManageInput, maxBatchSize+1)
	for i := range big {
		big[i] = &ManageInput{CharacterID: "caster-1", Operation: OpView}
	}
	_, err = svc.ManageBatch(context.Background(), big)
	assert.True(t, dnderr.IsInvalidArgument(err))
}
