package conditions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_AddIsIdempotent(t *testing.T) {
	set := NewSet()

	_, err := set.Add(Condition{Type: Poisoned, Remaining: 2})
	require.NoError(t, err)
	_, err = set.Add(Condition{Type: Poisoned, Remaining: 5})
	require.NoError(t, err)

	assert.Equal(t, 1, set.Len())
	assert.Equal(t, 5, set.Get(Poisoned).Remaining, "re-add refreshes duration")
}

func TestSet_RemoveAbsentIsNoOp(t *testing.T) {
	set := NewSet()

	removed := set.Remove(Stunned)
	assert.False(t, removed)

	_, err := set.Add(Condition{Type: Stunned})
	require.NoError(t, err)
	assert.True(t, set.Remove(Stunned))
	assert.False(t, set.Has(Stunned))
}

func TestSet_UnknownConditionRejected(t *testing.T) {
	set := NewSet()

	_, err := set.Add(Condition{Type: "confused"})
	assert.Error(t, err)

	_, err = Parse("on fire")
	assert.Error(t, err)
}

func TestSet_ExhaustionLevels(t *testing.T) {
	set := NewSet()

	cond, err := set.Add(Condition{Type: Exhaustion})
	require.NoError(t, err)
	assert.Equal(t, 1, cond.Level, "exhaustion defaults to level 1")

	_, err = set.Add(Condition{Type: Exhaustion, Level: 7})
	assert.Error(t, err)

	_, err = set.Add(Condition{Type: Poisoned, Level: 2})
	assert.Error(t, err, "levels only apply to exhaustion")
}

func TestSet_TickRound(t *testing.T) {
	set := NewSet()

	_, err := set.Add(Condition{Type: Blinded, Remaining: 1})
	require.NoError(t, err)
	_, err = set.Add(Condition{Type: Prone})
	require.NoError(t, err)

	expired := set.TickRound()
	assert.Equal(t, []ConditionType{Blinded}, expired)
	assert.False(t, set.Has(Blinded))
	assert.True(t, set.Has(Prone), "durationless conditions persist")
}

func TestComputeEffectiveStats_RestrainedZeroesSpeed(t *testing.T) {
	set := NewSet()
	_, err := set.Add(Condition{Type: Restrained})
	require.NoError(t, err)

	stats := ComputeEffectiveStats(20, 20, 30, 15, set)
	assert.Equal(t, 0, stats.Speed.Effective)
	assert.True(t, stats.Speed.Modified)
	assert.Contains(t, stats.Effects, "Restrained: speed 0")

	// Removing the condition restores the base value exactly
	set.Remove(Restrained)
	restored := ComputeEffectiveStats(20, 20, 30, 15, set)
	assert.Equal(t, 30, restored.Speed.Effective)
	assert.False(t, restored.Speed.Modified)
}

func TestComputeEffectiveStats_ParalyzedZeroesSpeed(t *testing.T) {
	set := NewSet()
	_, err := set.Add(Condition{Type: Paralyzed})
	require.NoError(t, err)

	stats := ComputeEffectiveStats(10, 10, 25, 12, set)
	assert.Equal(t, 0, stats.Speed.Effective)
}

func TestComputeEffectiveStats_ProneHalvesSpeed(t *testing.T) {
	set := NewSet()
	_, err := set.Add(Condition{Type: Prone})
	require.NoError(t, err)

	stats := ComputeEffectiveStats(10, 10, 30, 12, set)
	assert.Equal(t, 15, stats.Speed.Effective)
}

func TestComputeEffectiveStats_Exhaustion(t *testing.T) {
	tests := []struct {
		level     int
		wantSpeed int
		wantMaxHP int
		wantDead  bool
	}{
		{level: 1, wantSpeed: 30, wantMaxHP: 40},
		{level: 2, wantSpeed: 15, wantMaxHP: 40},
		{level: 3, wantSpeed: 15, wantMaxHP: 40},
		{level: 4, wantSpeed: 15, wantMaxHP: 20},
		{level: 5, wantSpeed: 0, wantMaxHP: 20},
		{level: 6, wantSpeed: 0, wantMaxHP: 20, wantDead: true},
	}

	for _, tt := range tests {
		set := NewSet()
		_, err := set.Add(Condition{Type: Exhaustion, Level: tt.level})
		require.NoError(t, err)

		stats := ComputeEffectiveStats(40, 40, 30, 14, set)
		assert.Equal(t, tt.wantSpeed, stats.Speed.Effective, "level %d speed", tt.level)
		assert.Equal(t, tt.wantMaxHP, stats.MaxHP.Effective, "level %d max hp", tt.level)
		assert.Equal(t, tt.wantDead, stats.Dead, "level %d death", tt.level)
	}
}

func TestComputeEffectiveStats_HPCappedByMax(t *testing.T) {
	set := NewSet()
	_, err := set.Add(Condition{Type: Exhaustion, Level: 4})
	require.NoError(t, err)

	stats := ComputeEffectiveStats(40, 40, 30, 14, set)
	assert.Equal(t, 20, stats.HP.Effective, "current hp capped at halved max")
}

func TestComputeEffectiveStats_NoConditions(t *testing.T) {
	stats := ComputeEffectiveStats(18, 20, 30, 16, NewSet())

	assert.Equal(t, 18, stats.HP.Effective)
	assert.Equal(t, 30, stats.Speed.Effective)
	assert.Equal(t, 16, stats.AC.Effective)
	assert.False(t, stats.Speed.Modified)
	assert.Empty(t, stats.Effects)
}
