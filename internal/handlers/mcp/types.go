package mcp

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dmforge/encounter-engine/internal/domain/combat"
	"github.com/dmforge/encounter-engine/internal/spatial"
)

// summary wraps a human-readable line for the tool result alongside the
// structured payload.
func summary(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
	}
}

// Point is a grid coordinate. Z is elevation in grid squares (5 ft each).
type Point struct {
	X float64 `json:"x" jsonschema:"grid column"`
	Y float64 `json:"y" jsonschema:"grid row"`
	Z float64 `json:"z,omitempty" jsonschema:"elevation in grid squares, 0 = ground"`
}

func (p Point) position() spatial.Position {
	return spatial.Position{X: p.X, Y: p.Y, Z: p.Z}
}

func fromPosition(pos spatial.Position) Point {
	return Point{X: pos.X, Y: pos.Y, Z: pos.Z}
}

// ParticipantSummary is the MCP view of one encounter participant.
type ParticipantSummary struct {
	ID         string                   `json:"id"`
	Name       string                   `json:"name"`
	CurrentHP  int                      `json:"current_hp"`
	MaxHP      int                      `json:"max_hp"`
	AC         int                      `json:"ac"`
	Speed      int                      `json:"speed"`
	Initiative int                      `json:"initiative"`
	Position   Point                    `json:"position"`
	Ally       bool                     `json:"ally"`
	Size       string                   `json:"size,omitempty"`
	Conditions []string                 `json:"conditions,omitempty"`
	DeathSaves *combat.DeathSaveTracker `json:"death_saves,omitempty"`
	Bloodied   bool                     `json:"bloodied"`
	Dead       bool                     `json:"dead"`
	Stable     bool                     `json:"stable"`
}

func summarizeParticipant(p *combat.Participant) ParticipantSummary {
	summary := ParticipantSummary{
		ID:         p.ID,
		Name:       p.Name,
		CurrentHP:  p.CurrentHP,
		MaxHP:      p.MaxHP,
		AC:         p.AC,
		Speed:      p.Speed,
		Initiative: p.Initiative,
		Position:   fromPosition(p.Position),
		Ally:       p.Ally,
		Size:       string(p.Size),
		DeathSaves: p.DeathSaves,
		Bloodied:   p.IsBloodied(),
		Dead:       p.IsDead(),
		Stable:     p.IsStable(),
	}
	if p.Conditions != nil {
		for _, cond := range p.Conditions.List() {
			summary.Conditions = append(summary.Conditions, string(cond.Type))
		}
	}
	return summary
}

// EncounterSummary is the MCP view of an encounter snapshot.
type EncounterSummary struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Status       string               `json:"status"`
	Round        int                  `json:"round"`
	Turn         int                  `json:"turn"`
	Current      string               `json:"current,omitempty" jsonschema:"name of the participant whose turn it is"`
	Participants []ParticipantSummary `json:"participants" jsonschema:"participants in initiative order"`
	CombatLog    []string             `json:"combat_log,omitempty" jsonschema:"most recent combat log entries"`
}

const combatLogTail = 10

func summarizeEncounter(enc *combat.Encounter) EncounterSummary {
	summary := EncounterSummary{
		ID:     enc.ID,
		Name:   enc.Name,
		Status: string(enc.Status),
		Round:  enc.Round,
		Turn:   enc.Turn,
	}
	if current := enc.CurrentParticipant(); current != nil {
		summary.Current = current.Name
	}
	for _, id := range enc.TurnOrder {
		if p := enc.Participants[id]; p != nil {
			summary.Participants = append(summary.Participants, summarizeParticipant(p))
		}
	}
	log := enc.CombatLog
	if len(log) > combatLogTail {
		log = log[len(log)-combatLogTail:]
	}
	summary.CombatLog = append(summary.CombatLog, log...)
	return summary
}
