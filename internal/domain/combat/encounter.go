package combat

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// EncounterStatus represents the current state of an encounter
type EncounterStatus string

const (
	EncounterStatusActive    EncounterStatus = "active"
	EncounterStatusCompleted EncounterStatus = "completed"
)

// combatLogLimit caps the retained combat log length
const combatLogLimit = 50

// Encounter is a combat encounter: participants in initiative order plus the
// battlefield they fight on
type Encounter struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name"`
	Status       EncounterStatus         `json:"status"`
	Round        int                     `json:"round"`
	Turn         int                     `json:"turn"` // index into TurnOrder
	Participants map[string]*Participant `json:"participants"`
	TurnOrder    []string                `json:"turn_order"`
	Terrain      *TerrainGrid            `json:"terrain"`
	Seed         *int64                  `json:"seed,omitempty"`
	CombatLog    []string                `json:"combat_log"`
	CreatedAt    time.Time               `json:"created_at"`
}

// NewEncounter creates an empty active encounter
func NewEncounter(id, name string) *Encounter {
	return &Encounter{
		ID:           id,
		Name:         name,
		Status:       EncounterStatusActive,
		Round:        1,
		Turn:         0,
		Participants: make(map[string]*Participant),
		TurnOrder:    []string{},
		Terrain:      DefaultTerrain(),
		CombatLog:    []string{},
		CreatedAt:    time.Now(),
	}
}

// AddParticipant registers a participant. Initiative order is not updated
// until SortInitiative runs.
func (e *Encounter) AddParticipant(p *Participant) {
	e.Participants[p.ID] = p
	e.TurnOrder = append(e.TurnOrder, p.ID)
}

// SortInitiative orders the turn list by rolled initiative, descending.
// Ties keep insertion order.
func (e *Encounter) SortInitiative() {
	sort.SliceStable(e.TurnOrder, func(i, j int) bool {
		return e.Participants[e.TurnOrder[i]].Initiative > e.Participants[e.TurnOrder[j]].Initiative
	})
}

// GetParticipant finds a participant by id
func (e *Encounter) GetParticipant(id string) (*Participant, bool) {
	p, ok := e.Participants[id]
	return p, ok
}

// FindParticipant finds a participant by id or, failing that, by
// case-insensitive name in initiative order. First match wins.
func (e *Encounter) FindParticipant(idOrName string) (*Participant, bool) {
	if p, ok := e.Participants[idOrName]; ok {
		return p, true
	}
	for _, id := range e.TurnOrder {
		if p := e.Participants[id]; p != nil && strings.EqualFold(p.Name, idOrName) {
			return p, true
		}
	}
	return nil, false
}

// CurrentParticipant returns whoever's turn it is
func (e *Encounter) CurrentParticipant() *Participant {
	if e.Turn >= 0 && e.Turn < len(e.TurnOrder) {
		return e.Participants[e.TurnOrder[e.Turn]]
	}
	return nil
}

// AdvanceTurn moves to the next participant who takes turns, wrapping into a
// new round when the order is exhausted. It reports whether a new round
// started. Dying participants are stopped on so they can roll death saves;
// the stable and the dead are skipped.
func (e *Encounter) AdvanceTurn() (newRound bool) {
	if len(e.TurnOrder) == 0 {
		return false
	}

	// Bounded by one full wrap: if nobody takes turns we stop where we began
	for range e.TurnOrder {
		e.Turn++
		if e.Turn >= len(e.TurnOrder) {
			e.Turn = 0
			e.Round++
			newRound = true
		}
		if p := e.Participants[e.TurnOrder[e.Turn]]; p != nil && p.TakesTurns() {
			return newRound
		}
	}
	return newRound
}

// DyingParticipants lists participants at zero hit points who still need
// death saves
func (e *Encounter) DyingParticipants() []*Participant {
	var dying []*Participant
	for _, id := range e.TurnOrder {
		p := e.Participants[id]
		if p != nil && p.CurrentHP == 0 && !p.IsDead() && !p.IsStable() {
			dying = append(dying, p)
		}
	}
	return dying
}

// End concludes the encounter
func (e *Encounter) End() {
	e.Status = EncounterStatusCompleted
}

// Log appends a round-stamped entry to the combat log
func (e *Encounter) Log(format string, args ...interface{}) {
	entry := fmt.Sprintf("Round %d: %s", e.Round, fmt.Sprintf(format, args...))
	e.CombatLog = append(e.CombatLog, entry)
	if len(e.CombatLog) > combatLogLimit {
		e.CombatLog = e.CombatLog[len(e.CombatLog)-combatLogLimit:]
	}
}
