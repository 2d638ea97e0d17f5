package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParticipant(id, name string, initiative int) *Participant {
	return &Participant{
		ID:         id,
		Name:       name,
		CurrentHP:  10,
		MaxHP:      10,
		AC:         14,
		Speed:      30,
		Initiative: initiative,
	}
}

func TestEncounter_SortInitiative(t *testing.T) {
	enc := NewEncounter("enc-1", "Ambush")
	enc.AddParticipant(testParticipant("a", "Aldric", 12))
	enc.AddParticipant(testParticipant("b", "Bandit", 18))
	enc.AddParticipant(testParticipant("c", "Cleric", 12))

	enc.SortInitiative()

	// Descending, with the tie between a and c kept in insertion order
	assert.Equal(t, []string{"b", "a", "c"}, enc.TurnOrder)
	assert.Equal(t, "Bandit", enc.CurrentParticipant().Name)
}

func TestEncounter_AdvanceTurn(t *testing.T) {
	t.Run("wraps into a new round", func(t *testing.T) {
		enc := NewEncounter("enc-1", "Ambush")
		enc.AddParticipant(testParticipant("a", "Aldric", 20))
		enc.AddParticipant(testParticipant("b", "Bandit", 10))
		enc.SortInitiative()

		newRound := enc.AdvanceTurn()
		assert.False(t, newRound)
		assert.Equal(t, "b", enc.CurrentParticipant().ID)

		newRound = enc.AdvanceTurn()
		assert.True(t, newRound)
		assert.Equal(t, 2, enc.Round)
		assert.Equal(t, "a", enc.CurrentParticipant().ID)
	})

	t.Run("skips dead and stable, stops on dying", func(t *testing.T) {
		enc := NewEncounter("enc-1", "Ambush")
		enc.AddParticipant(testParticipant("a", "Aldric", 20))

		dying := testParticipant("b", "Bandit", 15)
		dying.CurrentHP = 0
		dying.DeathSaves = &DeathSaveTracker{}
		enc.AddParticipant(dying)

		stable := testParticipant("c", "Cleric", 12)
		stable.CurrentHP = 0
		stable.DeathSaves = &DeathSaveTracker{Successes: 3, Stable: true}
		enc.AddParticipant(stable)

		dead := testParticipant("d", "Drow", 8)
		dead.CurrentHP = 0
		dead.DeathSaves = &DeathSaveTracker{Failures: 3, Dead: true}
		enc.AddParticipant(dead)

		enc.SortInitiative()
		require.Equal(t, "a", enc.CurrentParticipant().ID)

		// Dying participants still act so they can roll death saves
		enc.AdvanceTurn()
		assert.Equal(t, "b", enc.CurrentParticipant().ID)

		// Stable and dead are skipped; the wrap starts round two
		newRound := enc.AdvanceTurn()
		assert.True(t, newRound)
		assert.Equal(t, "a", enc.CurrentParticipant().ID)
	})
}

func TestEncounter_FindParticipant(t *testing.T) {
	enc := NewEncounter("enc-1", "Ambush")
	enc.AddParticipant(testParticipant("a", "Goblin", 18))
	enc.AddParticipant(testParticipant("b", "Goblin", 5))
	enc.SortInitiative()

	t.Run("by id", func(t *testing.T) {
		p, ok := enc.FindParticipant("b")
		require.True(t, ok)
		assert.Equal(t, "b", p.ID)
	})

	t.Run("by name, first in initiative order wins", func(t *testing.T) {
		p, ok := enc.FindParticipant("goblin")
		require.True(t, ok)
		assert.Equal(t, "a", p.ID)
	})

	t.Run("unknown", func(t *testing.T) {
		_, ok := enc.FindParticipant("dragon")
		assert.False(t, ok)
	})
}

func TestParticipant_DamageAndHealing(t *testing.T) {
	t.Run("damage floors at zero and reports the drop", func(t *testing.T) {
		p := testParticipant("a", "Aldric", 10)
		dropped := p.ApplyDamage(4)
		assert.False(t, dropped)
		assert.Equal(t, 6, p.CurrentHP)

		dropped = p.ApplyDamage(20)
		assert.True(t, dropped)
		assert.Equal(t, 0, p.CurrentHP)

		// Already at zero: no second drop event
		dropped = p.ApplyDamage(5)
		assert.False(t, dropped)
	})

	t.Run("healing caps at max and reports revival", func(t *testing.T) {
		p := testParticipant("a", "Aldric", 10)
		p.CurrentHP = 0

		revived := p.Heal(25)
		assert.True(t, revived)
		assert.Equal(t, 10, p.CurrentHP)

		revived = p.Heal(5)
		assert.False(t, revived)
	})

	t.Run("bloodied at half", func(t *testing.T) {
		p := testParticipant("a", "Aldric", 10)
		assert.False(t, p.IsBloodied())
		p.ApplyDamage(5)
		assert.True(t, p.IsBloodied())
	})
}

func TestDeathSaveTracker(t *testing.T) {
	t.Run("three successes stabilize", func(t *testing.T) {
		tracker := &DeathSaveTracker{}
		tracker.RecordSuccess()
		tracker.RecordSuccess()
		assert.False(t, tracker.Settled())
		tracker.RecordSuccess()
		assert.True(t, tracker.Stable)
		assert.False(t, tracker.Dead)
	})

	t.Run("three failures kill", func(t *testing.T) {
		tracker := &DeathSaveTracker{}
		tracker.RecordFailure(2)
		assert.False(t, tracker.Settled())
		tracker.RecordFailure(1)
		assert.True(t, tracker.Dead)
	})

	t.Run("settled trackers ignore further results", func(t *testing.T) {
		tracker := &DeathSaveTracker{Successes: 3, Stable: true}
		tracker.RecordFailure(3)
		assert.False(t, tracker.Dead)
		assert.Equal(t, 0, tracker.Failures)
	})
}

func TestEncounter_DyingParticipants(t *testing.T) {
	enc := NewEncounter("enc-1", "Ambush")
	healthy := testParticipant("a", "Aldric", 20)
	enc.AddParticipant(healthy)

	dying := testParticipant("b", "Bandit", 10)
	dying.CurrentHP = 0
	dying.DeathSaves = &DeathSaveTracker{Failures: 1}
	enc.AddParticipant(dying)

	enc.SortInitiative()

	list := enc.DyingParticipants()
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].ID)
}

func TestEncounter_Log(t *testing.T) {
	enc := NewEncounter("enc-1", "Ambush")
	enc.Log("%s takes %d damage", "Aldric", 7)
	require.Len(t, enc.CombatLog, 1)
	assert.Equal(t, "Round 1: Aldric takes 7 damage", enc.CombatLog[0])

	for i := 0; i < combatLogLimit+10; i++ {
		enc.Log("tick %d", i)
	}
	assert.Len(t, enc.CombatLog, combatLogLimit)
}
