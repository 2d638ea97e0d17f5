package aura

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmforge/encounter-engine/internal/dice"
	dnderr "github.com/dmforge/encounter-engine/internal/errors"
	"github.com/dmforge/encounter-engine/internal/spatial"
	"github.com/dmforge/encounter-engine/internal/uuid"
)

func setup(t *testing.T, rolls ...int) Service {
	t.Helper()
	return NewService(&ServiceConfig{
		Roller:        dice.NewManualRoller(rolls...),
		UUIDGenerator: &uuid.PrefixedGenerator{Prefix: "aura"},
	})
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	cases := []struct {
		name  string
		input *CreateInput
	}{
		{"missing owner", &CreateInput{Spell: "spirit guardians", Radius: 15}},
		{"missing spell", &CreateInput{OwnerID: "cleric-1", Radius: 15}},
		{"zero radius", &CreateInput{OwnerID: "cleric-1", Spell: "spirit guardians"}},
		{"bad damage expression", &CreateInput{OwnerID: "cleric-1", Spell: "x", Radius: 15, Damage: "lots"}},
		{"damage and heal together", &CreateInput{OwnerID: "cleric-1", Spell: "x", Radius: 15, Damage: "3d8", Heal: "1d4"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input)
			assert.True(t, dnderr.IsInvalidArgument(err))
		})
	}
}

func TestProcess_DamageWithSaves(t *testing.T) {
	ctx := context.Background()
	// Rolls: 3d8 damage = 5+6+7, then saves 18 and 4
	svc := setup(t, 5, 6, 7, 18, 4)

	aura, err := svc.Create(ctx, &CreateInput{
		OwnerID:     "cleric-1",
		Spell:       "spirit guardians",
		Center:      spatial.Position{X: 10, Y: 10},
		Radius:      15,
		Damage:      "3d8",
		SaveDC:      14,
		SaveAbility: "wis",
		HalfOnSave:  true,
		Condition:   "frightened",
	})
	require.NoError(t, err)

	result, err := svc.Process(ctx, aura.ID, []Target{
		{ID: "saver", Position: spatial.Position{X: 12, Y: 10}},
		{ID: "failer", Position: spatial.Position{X: 10, Y: 12}},
		{ID: "outside", Position: spatial.Position{X: 30, Y: 10}},
	})
	require.NoError(t, err)
	require.Len(t, result.Targets, 3)

	saver := result.Targets[0]
	assert.True(t, saver.InRange)
	assert.True(t, saver.Saved)
	assert.Equal(t, 9, saver.Damage) // half of 18
	assert.Empty(t, saver.Condition)

	failer := result.Targets[1]
	assert.False(t, failer.Saved)
	assert.Equal(t, 18, failer.Damage)
	assert.Equal(t, "frightened", failer.Condition)

	outside := result.Targets[2]
	assert.False(t, outside.InRange)
	assert.Zero(t, outside.Damage)
	assert.Nil(t, outside.Save)
}

func TestProcess_Healing(t *testing.T) {
	ctx := context.Background()
	svc := setup(t, 4, 3) // 2d4 heal

	aura, err := svc.Create(ctx, &CreateInput{
		OwnerID: "paladin-1",
		Spell:   "aura of vitality",
		Center:  spatial.Position{X: 0, Y: 0},
		Radius:  30,
		Heal:    "2d4",
	})
	require.NoError(t, err)

	result, err := svc.Process(ctx, aura.ID, []Target{
		{ID: "ally", Position: spatial.Position{X: 2, Y: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 7, result.Targets[0].Heal)
}

func TestProcess_DurationExpiry(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	aura, err := svc.Create(ctx, &CreateInput{
		OwnerID:  "cleric-1",
		Spell:    "cloud of daggers",
		Center:   spatial.Position{X: 0, Y: 0},
		Radius:   5,
		Duration: 2,
	})
	require.NoError(t, err)

	first, err := svc.Process(ctx, aura.ID, nil)
	require.NoError(t, err)
	assert.False(t, first.Expired)

	second, err := svc.Process(ctx, aura.ID, nil)
	require.NoError(t, err)
	assert.True(t, second.Expired)

	_, err = svc.Process(ctx, aura.ID, nil)
	assert.True(t, dnderr.IsNotFound(err))
}

func TestRemoveAndList(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	first, err := svc.Create(ctx, &CreateInput{
		OwnerID: "a", Spell: "one", Center: spatial.Position{}, Radius: 10,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &CreateInput{
		OwnerID: "b", Spell: "two", Center: spatial.Position{}, Radius: 10,
	})
	require.NoError(t, err)

	assert.Len(t, svc.List(ctx), 2)

	require.NoError(t, svc.Remove(ctx, first.ID))
	remaining := svc.List(ctx)
	require.Len(t, remaining, 1)
	assert.Equal(t, "two", remaining[0].Spell)

	err = svc.Remove(ctx, first.ID)
	assert.True(t, dnderr.IsNotFound(err))
}

func TestParseAction(t *testing.T) {
	action, err := ParseAction("Create")
	require.NoError(t, err)
	assert.Equal(t, ActionCreate, action)

	_, err = ParseAction("dispel")
	assert.True(t, dnderr.IsInvalidArgument(err))
}
