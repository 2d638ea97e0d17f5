package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmforge/encounter-engine/internal/dice"
	dnderr "github.com/dmforge/encounter-engine/internal/errors"
	"github.com/dmforge/encounter-engine/internal/services"
)

func newTestProvider(rolls ...int) *services.Provider {
	return services.NewProvider(&services.ProviderConfig{
		Roller: dice.NewManualRoller(rolls...),
	})
}

func TestNewServerRegistersTools(t *testing.T) {
	server := NewServer(&ServerConfig{ServiceProvider: newTestProvider()})
	require.NotNil(t, server)
}

func TestEncounterToolFlow(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(17, 4)

	create := CreateEncounterHandler(provider.EncounterService)
	_, enc, err := create(ctx, nil, CreateEncounterInput{
		Name: "Bridge Fight",
		Participants: []ParticipantSpec{
			{Name: "Thorin", MaxHP: 30, AC: 16, Speed: 25, Ally: true, Position: Point{X: 1, Y: 1}},
			{Name: "Orc", MaxHP: 15, AC: 13, Speed: 30, Position: Point{X: 4, Y: 4}},
		},
	})
	require.NoError(t, err)
	require.Len(t, enc.Participants, 2)
	assert.Equal(t, "Thorin", enc.Participants[0].Name) // initiative 17 beats 4
	assert.Equal(t, "Thorin", enc.Current)

	damage := ApplyDamageHandler(provider.EncounterService)
	_, hit, err := damage(ctx, nil, ApplyDamageInput{
		EncounterID: enc.ID,
		Participant: "Orc",
		Amount:      9,
		DamageType:  "slashing",
	})
	require.NoError(t, err)
	assert.Equal(t, 9, hit.Applied)
	assert.True(t, hit.Bloodied)

	advance := AdvanceTurnHandler(provider.EncounterService)
	_, turn, err := advance(ctx, nil, AdvanceTurnInput{EncounterID: enc.ID})
	require.NoError(t, err)
	require.NotNil(t, turn.Current)
	assert.Equal(t, "Orc", turn.Current.Name)

	render := RenderBattlefieldHandler(provider.EncounterService)
	_, grid, err := render(ctx, nil, RenderBattlefieldInput{
		EncounterID: enc.ID,
		ShowLegend:  true,
	})
	require.NoError(t, err)
	assert.Contains(t, grid.Map, "Thorin")

	end := EndEncounterHandler(provider.EncounterService)
	_, ended, err := end(ctx, nil, EndEncounterInput{EncounterID: enc.ID})
	require.NoError(t, err)
	assert.True(t, ended.Ended)
}

func TestCreateEncounterNamedHazards(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(12, 7)

	create := CreateEncounterHandler(provider.EncounterService)
	_, enc, err := create(ctx, nil, CreateEncounterInput{
		Name: "Lava Crossing",
		Participants: []ParticipantSpec{
			{Name: "Thorin", MaxHP: 30, AC: 16, Speed: 25, Ally: true, Position: Point{X: 0, Y: 0}},
			{Name: "Orc", MaxHP: 15, AC: 13, Speed: 30, Position: Point{X: 4, Y: 4}},
		},
		Terrain: &TerrainSpec{
			Width:  10,
			Height: 10,
			Hazards: []HazardSpec{
				{Position: Point{X: 2, Y: 2}, Name: "lava"},
				{Position: Point{X: 3, Y: 3}},
			},
		},
	})
	require.NoError(t, err)

	render := RenderBattlefieldHandler(provider.EncounterService)
	_, grid, err := render(ctx, nil, RenderBattlefieldInput{
		EncounterID: enc.ID,
		ShowLegend:  true,
	})
	require.NoError(t, err)
	assert.Contains(t, grid.Map, "lava at (2, 2)")
	assert.Contains(t, grid.Map, "hazard at (3, 3)") // unnamed hazards keep the generic label
}

func TestMeasureDistanceTool(t *testing.T) {
	handler := MeasureDistanceHandler()

	_, result, err := handler(context.Background(), nil, MeasureDistanceInput{
		From: Point{X: 0, Y: 0},
		To:   Point{X: 5, Y: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 25.0, result.Feet)
	assert.Equal(t, 5.0, result.Squares)

	_, _, err = handler(context.Background(), nil, MeasureDistanceInput{Mode: "parsecs"})
	assert.Error(t, err)
}

func TestLineOfSightTool(t *testing.T) {
	handler := LineOfSightHandler()

	_, result, err := handler(context.Background(), nil, LineOfSightInput{
		From: Point{X: 0, Y: 0},
		To:   Point{X: 6, Y: 0},
		Obstacles: []ObstacleSpec{
			{Position: Point{X: 3, Y: 0}, Type: "wall"},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.Clear)
	require.Len(t, result.BlockedBy, 1)
	assert.Equal(t, "obstacle", result.BlockedBy[0].Kind)
}

func TestCoverTool(t *testing.T) {
	handler := CoverHandler()

	_, result, err := handler(context.Background(), nil, CoverInput{
		Attacker: Point{X: 0, Y: 0},
		Target:   Point{X: 6, Y: 0},
		Obstacles: []ObstacleSpec{
			{Position: Point{X: 3, Y: 0}, Type: "half_cover"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.ACBonus)
	assert.True(t, result.CanTarget)
}

func TestManageConcentrationToolActions(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(12)
	handler := ManageConcentrationHandler(provider.ConcentrationService)

	_, set, err := handler(ctx, nil, ManageConcentrationInput{
		Action:   "set",
		CasterID: "cleric-1",
		Spell:    "bless",
	})
	require.NoError(t, err)
	assert.True(t, set.Concentrating)

	// 12 + 3 = 15 against DC 11 (22 damage / 2)
	_, check, err := handler(ctx, nil, ManageConcentrationInput{
		Action:   "check",
		CasterID: "cleric-1",
		Damage:   22,
		Modifier: 3,
	})
	require.NoError(t, err)
	require.NotNil(t, check.Check)
	assert.True(t, check.Check.Held)

	_, broke, err := handler(ctx, nil, ManageConcentrationInput{
		Action:   "break",
		CasterID: "cleric-1",
		Reason:   "fell unconscious",
	})
	require.NoError(t, err)
	assert.Equal(t, "bless", broke.Broken)

	// action names are case-insensitive
	_, got, err := handler(ctx, nil, ManageConcentrationInput{Action: "GET", CasterID: "cleric-1"})
	require.NoError(t, err)
	assert.False(t, got.Concentrating)

	_, _, err = handler(ctx, nil, ManageConcentrationInput{Action: "juggle"})
	assert.True(t, dnderr.IsInvalidArgument(err))
}

func TestManageAuraToolFlow(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider(4, 4, 4, 11) // 3d8 damage then one save
	handler := ManageAuraHandler(provider.AuraService)

	_, created, err := handler(ctx, nil, ManageAuraInput{
		Action:      "create",
		OwnerID:     "cleric-1",
		Spell:       "spirit guardians",
		Center:      Point{X: 5, Y: 5},
		Radius:      15,
		Damage:      "3d8",
		SaveDC:      15,
		SaveAbility: "wis",
		HalfOnSave:  true,
	})
	require.NoError(t, err)
	require.NotNil(t, created.Aura)

	_, processed, err := handler(ctx, nil, ManageAuraInput{
		Action: "process",
		AuraID: created.Aura.ID,
		Targets: []AuraTargetSpec{
			{ID: "orc", Position: Point{X: 6, Y: 6}, SaveModifier: 1},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, processed.Process)
	require.Len(t, processed.Process.Targets, 1)
	assert.True(t, processed.Process.Targets[0].InRange)

	_, removed, err := handler(ctx, nil, ManageAuraInput{Action: "remove", AuraID: created.Aura.ID})
	require.NoError(t, err)
	assert.True(t, removed.Removed)

	_, _, err = handler(ctx, nil, ManageAuraInput{Action: "dispel"})
	assert.True(t, dnderr.IsInvalidArgument(err))
}
