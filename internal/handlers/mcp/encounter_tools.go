package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dmforge/encounter-engine/internal/domain/combat"
	"github.com/dmforge/encounter-engine/internal/domain/shared"
	encounterService "github.com/dmforge/encounter-engine/internal/services/encounter"
	"github.com/dmforge/encounter-engine/internal/spatial"
)

// ParticipantSpec describes one combatant at encounter creation. Reference a
// stored character, or give explicit stats for ad-hoc monsters.
type ParticipantSpec struct {
	CharacterID   string `json:"character_id,omitempty" jsonschema:"stored character id to pull stats from"`
	CharacterName string `json:"character_name,omitempty" jsonschema:"stored character name to pull stats from"`

	Name            string   `json:"name,omitempty" jsonschema:"display name for an explicit participant"`
	MaxHP           int      `json:"max_hp,omitempty" jsonschema:"maximum hit points for an explicit participant"`
	AC              int      `json:"ac,omitempty" jsonschema:"armor class"`
	Speed           int      `json:"speed,omitempty" jsonschema:"walking speed in feet"`
	Size            string   `json:"size,omitempty" jsonschema:"creature size (tiny/small/medium/large/huge/gargantuan)"`
	InitiativeBonus int      `json:"initiative_bonus,omitempty" jsonschema:"bonus added to the initiative roll"`
	Resistances     []string `json:"resistances,omitempty" jsonschema:"damage types taken at half"`
	Immunities      []string `json:"immunities,omitempty" jsonschema:"damage types ignored"`
	Vulnerabilities []string `json:"vulnerabilities,omitempty" jsonschema:"damage types taken double"`

	Position Point `json:"position,omitempty" jsonschema:"starting grid position"`
	Ally     bool  `json:"ally,omitempty" jsonschema:"true for the party's side"`
}

// TerrainSpec describes the battle grid.
type TerrainSpec struct {
	Width            int          `json:"width" jsonschema:"grid width in squares"`
	Height           int          `json:"height" jsonschema:"grid height in squares"`
	Obstacles        []Point      `json:"obstacles,omitempty" jsonschema:"impassable cells"`
	DifficultTerrain []Point      `json:"difficult_terrain,omitempty" jsonschema:"half-speed cells"`
	Water            []Point      `json:"water,omitempty" jsonschema:"water cells"`
	Hazards          []HazardSpec `json:"hazards,omitempty" jsonschema:"hazardous cells"`
}

// HazardSpec is one hazardous cell. The name shows up in the battlefield
// legend.
type HazardSpec struct {
	Position Point  `json:"position" jsonschema:"hazard cell"`
	Name     string `json:"name,omitempty" jsonschema:"what the hazard is (lava, spikes, ...), defaults to hazard"`
}

// CreateEncounterInput starts a new encounter.
type CreateEncounterInput struct {
	Name         string            `json:"name,omitempty" jsonschema:"encounter name"`
	Participants []ParticipantSpec `json:"participants" jsonschema:"combatants on both sides"`
	Terrain      *TerrainSpec      `json:"terrain,omitempty" jsonschema:"battle grid, defaults to 20x20"`
	Seed         *int64            `json:"seed,omitempty" jsonschema:"optional seed for deterministic initiative"`
}

func damageTypes(names []string) []shared.DamageType {
	if len(names) == 0 {
		return nil
	}
	types := make([]shared.DamageType, 0, len(names))
	for _, name := range names {
		types = append(types, shared.NormalizeDamageType(name))
	}
	return types
}

func cells(points []Point) []spatial.Cell {
	if len(points) == 0 {
		return nil
	}
	out := make([]spatial.Cell, 0, len(points))
	for _, p := range points {
		out = append(out, spatial.Cell{X: int(p.X), Y: int(p.Y)})
	}
	return out
}

// CreateEncounterTool defines the MCP tool schema for starting encounters.
func CreateEncounterTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "create_encounter",
		Description: "Starts a combat encounter: resolves participants, rolls initiative, and returns the turn order",
	}
}

// CreateEncounterHandler builds the create_encounter handler.
func CreateEncounterHandler(svc encounterService.Service) mcp.ToolHandlerFor[CreateEncounterInput, EncounterSummary] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CreateEncounterInput) (*mcp.CallToolResult, EncounterSummary, error) {
		create := &encounterService.CreateInput{
			Name: input.Name,
			Seed: input.Seed,
		}
		for _, spec := range input.Participants {
			create.Participants = append(create.Participants, encounterService.ParticipantInput{
				CharacterID:   spec.CharacterID,
				CharacterName: spec.CharacterName,
				Name:          spec.Name,
				MaxHP:         spec.MaxHP,
				AC:            spec.AC,
				Speed:         spec.Speed,
				Size:          spec.Size,
				InitBonus:     spec.InitiativeBonus,
				Defenses: shared.Defenses{
					Resistances:     damageTypes(spec.Resistances),
					Immunities:      damageTypes(spec.Immunities),
					Vulnerabilities: damageTypes(spec.Vulnerabilities),
				},
				Position: spec.Position.position(),
				Ally:     spec.Ally,
			})
		}
		if input.Terrain != nil {
			create.Terrain = &combat.TerrainGrid{
				Width:            input.Terrain.Width,
				Height:           input.Terrain.Height,
				Obstacles:        cells(input.Terrain.Obstacles),
				DifficultTerrain: cells(input.Terrain.DifficultTerrain),
				Water:            cells(input.Terrain.Water),
			}
			for _, h := range input.Terrain.Hazards {
				name := h.Name
				if name == "" {
					name = "hazard"
				}
				create.Terrain.Hazards = append(create.Terrain.Hazards, spatial.Hazard{
					Cell: spatial.Cell{X: int(h.Position.X), Y: int(h.Position.Y)},
					Name: name,
				})
			}
		}

		enc, err := svc.CreateEncounter(ctx, create)
		if err != nil {
			return nil, EncounterSummary{}, err
		}
		result := summarizeEncounter(enc)
		return summary("Encounter %s started with %d participants; %s acts first",
			enc.ID, len(result.Participants), result.Current), result, nil
	}
}

// GetEncounterInput identifies an encounter.
type GetEncounterInput struct {
	EncounterID string `json:"encounter_id" jsonschema:"encounter to fetch"`
}

// GetEncounterTool defines the MCP tool schema for reading encounter state.
func GetEncounterTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_encounter",
		Description: "Returns the current state of an encounter: round, turn order, hit points, and conditions",
	}
}

// GetEncounterHandler builds the get_encounter handler.
func GetEncounterHandler(svc encounterService.Service) mcp.ToolHandlerFor[GetEncounterInput, EncounterSummary] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetEncounterInput) (*mcp.CallToolResult, EncounterSummary, error) {
		enc, err := svc.GetEncounter(ctx, input.EncounterID)
		if err != nil {
			return nil, EncounterSummary{}, err
		}
		result := summarizeEncounter(enc)
		return summary("%s: round %d, %s to act", enc.Name, enc.Round, result.Current), result, nil
	}
}

// EndEncounterInput identifies the encounter to finish.
type EndEncounterInput struct {
	EncounterID string `json:"encounter_id" jsonschema:"encounter to end"`
}

// EndEncounterResult confirms completion.
type EndEncounterResult struct {
	Ended bool `json:"ended"`
}

// EndEncounterTool defines the MCP tool schema for finishing encounters.
func EndEncounterTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "end_encounter",
		Description: "Ends an encounter and discards its state",
	}
}

// EndEncounterHandler builds the end_encounter handler.
func EndEncounterHandler(svc encounterService.Service) mcp.ToolHandlerFor[EndEncounterInput, EndEncounterResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EndEncounterInput) (*mcp.CallToolResult, EndEncounterResult, error) {
		if err := svc.EndEncounter(ctx, input.EncounterID); err != nil {
			return nil, EndEncounterResult{}, err
		}
		return summary("Encounter %s ended", input.EncounterID), EndEncounterResult{Ended: true}, nil
	}
}

// AdvanceTurnInput identifies the encounter to advance.
type AdvanceTurnInput struct {
	EncounterID string `json:"encounter_id" jsonschema:"encounter to advance"`
}

// AdvanceTurnResult reports whose turn it is now.
type AdvanceTurnResult struct {
	Round              int                 `json:"round"`
	Turn               int                 `json:"turn"`
	NewRound           bool                `json:"new_round" jsonschema:"true when the turn order wrapped"`
	Current            *ParticipantSummary `json:"current,omitempty" jsonschema:"the participant now acting"`
	DeathSaveReminders []string            `json:"death_save_reminders,omitempty" jsonschema:"dying participants who owe a death save"`
	ExpiredConditions  []string            `json:"expired_conditions,omitempty" jsonschema:"conditions that ran out this round"`
}

// AdvanceTurnTool defines the MCP tool schema for turn advancement.
func AdvanceTurnTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "advance_turn",
		Description: "Advances to the next acting participant, ticking round-based condition durations on a new round",
	}
}

// AdvanceTurnHandler builds the advance_turn handler.
func AdvanceTurnHandler(svc encounterService.Service) mcp.ToolHandlerFor[AdvanceTurnInput, AdvanceTurnResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AdvanceTurnInput) (*mcp.CallToolResult, AdvanceTurnResult, error) {
		advance, err := svc.AdvanceTurn(ctx, input.EncounterID)
		if err != nil {
			return nil, AdvanceTurnResult{}, err
		}
		result := AdvanceTurnResult{
			Round:              advance.Round,
			Turn:               advance.Turn,
			NewRound:           advance.NewRound,
			DeathSaveReminders: advance.DeathSaveReminders,
			ExpiredConditions:  advance.ExpiredConditions,
		}
		if advance.Current != nil {
			current := summarizeParticipant(advance.Current)
			result.Current = &current
		}
		acting := "nobody"
		if result.Current != nil {
			acting = result.Current.Name
		}
		return summary("Round %d: %s's turn", result.Round, acting), result, nil
	}
}

// ApplyDamageInput damages a participant.
type ApplyDamageInput struct {
	EncounterID string `json:"encounter_id" jsonschema:"encounter holding the target"`
	Participant string `json:"participant" jsonschema:"target participant id or name"`
	Amount      int    `json:"amount" jsonschema:"damage before resistances"`
	DamageType  string `json:"damage_type,omitempty" jsonschema:"damage type for resistance checks (fire, slashing, ...)"`
	Critical    bool   `json:"critical,omitempty" jsonschema:"true for a critical hit, which doubles the death save failure dealt at 0 hp"`
}

// ApplyDamageResult reports the adjusted damage and its consequences.
type ApplyDamageResult struct {
	Participant       ParticipantSummary `json:"participant"`
	Requested         int                `json:"requested"`
	Applied           int                `json:"applied" jsonschema:"damage after resistance adjustment"`
	Adjustment        string             `json:"adjustment,omitempty" jsonschema:"immune, resisted, or vulnerable"`
	Dropped           bool               `json:"dropped" jsonschema:"true when the target fell to 0 hp"`
	Bloodied          bool               `json:"bloodied"`
	DeathSaveFailures int                `json:"death_save_failures,omitempty" jsonschema:"failures added by damage taken at 0 hp"`
}

// ApplyDamageTool defines the MCP tool schema for dealing damage.
func ApplyDamageTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "apply_damage",
		Description: "Deals damage to a participant, applying resistances and death save failures for damage at 0 hp",
	}
}

// ApplyDamageHandler builds the apply_damage handler.
func ApplyDamageHandler(svc encounterService.Service) mcp.ToolHandlerFor[ApplyDamageInput, ApplyDamageResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ApplyDamageInput) (*mcp.CallToolResult, ApplyDamageResult, error) {
		damage, err := svc.ApplyDamage(ctx, &encounterService.DamageInput{
			EncounterID:   input.EncounterID,
			ParticipantID: input.Participant,
			Amount:        input.Amount,
			DamageType:    input.DamageType,
			Critical:      input.Critical,
		})
		if err != nil {
			return nil, ApplyDamageResult{}, err
		}
		result := ApplyDamageResult{
			Participant:       summarizeParticipant(damage.Participant),
			Requested:         damage.Requested,
			Applied:           damage.Applied,
			Adjustment:        damage.Adjustment,
			Dropped:           damage.Dropped,
			Bloodied:          damage.Bloodied,
			DeathSaveFailures: damage.DeathSaveFailures,
		}
		p := damage.Participant
		switch {
		case result.DeathSaveFailures > 0:
			return summary("%s takes damage while dying: %d death save failure(s)",
				p.Name, result.DeathSaveFailures), result, nil
		case result.Dropped:
			return summary("%s takes %d damage and falls unconscious", p.Name, result.Applied), result, nil
		}
		return summary("%s takes %d damage (%d/%d hp)",
			p.Name, result.Applied, p.CurrentHP, p.MaxHP), result, nil
	}
}

// ApplyHealingInput restores hit points.
type ApplyHealingInput struct {
	EncounterID string `json:"encounter_id" jsonschema:"encounter holding the target"`
	Participant string `json:"participant" jsonschema:"target participant id or name"`
	Amount      int    `json:"amount" jsonschema:"hit points to restore"`
}

// ApplyHealingResult reports the healing outcome.
type ApplyHealingResult struct {
	Participant ParticipantSummary `json:"participant"`
	Healed      int                `json:"healed" jsonschema:"hit points actually restored"`
	Revived     bool               `json:"revived" jsonschema:"true when the target came back from 0 hp"`
}

// ApplyHealingTool defines the MCP tool schema for healing.
func ApplyHealingTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "apply_healing",
		Description: "Heals a participant, reviving the dying and clearing their death save tracker",
	}
}

// ApplyHealingHandler builds the apply_healing handler.
func ApplyHealingHandler(svc encounterService.Service) mcp.ToolHandlerFor[ApplyHealingInput, ApplyHealingResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ApplyHealingInput) (*mcp.CallToolResult, ApplyHealingResult, error) {
		heal, err := svc.ApplyHealing(ctx, &encounterService.HealInput{
			EncounterID:   input.EncounterID,
			ParticipantID: input.Participant,
			Amount:        input.Amount,
		})
		if err != nil {
			return nil, ApplyHealingResult{}, err
		}
		result := ApplyHealingResult{
			Participant: summarizeParticipant(heal.Participant),
			Healed:      heal.Healed,
			Revived:     heal.Revived,
		}
		p := heal.Participant
		if result.Revived {
			return summary("%s regains consciousness at %d hp", p.Name, p.CurrentHP), result, nil
		}
		return summary("%s heals %d (%d/%d hp)", p.Name, result.Healed, p.CurrentHP, p.MaxHP), result, nil
	}
}

// RenderBattlefieldInput selects rendering options.
type RenderBattlefieldInput struct {
	EncounterID     string `json:"encounter_id" jsonschema:"encounter to render"`
	FocusOn         string `json:"focus_on,omitempty" jsonschema:"participant id or name to center an 11x11 viewport on"`
	ViewportX       *int   `json:"viewport_x,omitempty" jsonschema:"explicit viewport origin column"`
	ViewportY       *int   `json:"viewport_y,omitempty" jsonschema:"explicit viewport origin row"`
	ViewportWidth   int    `json:"viewport_width,omitempty" jsonschema:"explicit viewport width in squares"`
	ViewportHeight  int    `json:"viewport_height,omitempty" jsonschema:"explicit viewport height in squares"`
	ShowLegend      bool   `json:"show_legend,omitempty" jsonschema:"append a per-token legend"`
	ShowCoordinates bool   `json:"show_coordinates,omitempty" jsonschema:"print row and column numbers"`
	ShowElevation   bool   `json:"show_elevation,omitempty" jsonschema:"note elevation in the legend"`
	LegendDetail    string `json:"legend_detail,omitempty" jsonschema:"legend verbosity: minimal, standard, or detailed"`
}

// RenderBattlefieldResult carries the rendered grid.
type RenderBattlefieldResult struct {
	Map string `json:"map" jsonschema:"ASCII battlefield, one symbol per occupied square"`
}

// RenderBattlefieldTool defines the MCP tool schema for map rendering.
func RenderBattlefieldTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "render_battlefield",
		Description: "Renders the encounter grid as ASCII art with terrain glyphs and an optional legend",
	}
}

// RenderBattlefieldHandler builds the render_battlefield handler.
func RenderBattlefieldHandler(svc encounterService.Service) mcp.ToolHandlerFor[RenderBattlefieldInput, RenderBattlefieldResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RenderBattlefieldInput) (*mcp.CallToolResult, RenderBattlefieldResult, error) {
		detail, err := spatial.ParseLegendDetail(input.LegendDetail)
		if err != nil {
			return nil, RenderBattlefieldResult{}, err
		}

		render := &encounterService.RenderInput{
			EncounterID:     input.EncounterID,
			FocusOn:         input.FocusOn,
			ShowLegend:      input.ShowLegend,
			ShowCoordinates: input.ShowCoordinates,
			ShowElevation:   input.ShowElevation,
			LegendDetail:    detail,
		}
		if input.ViewportX != nil && input.ViewportY != nil {
			render.Viewport = &spatial.Viewport{
				MinX:   *input.ViewportX,
				MinY:   *input.ViewportY,
				Width:  input.ViewportWidth,
				Height: input.ViewportHeight,
			}
		}

		out, err := svc.RenderBattlefield(ctx, render)
		if err != nil {
			return nil, RenderBattlefieldResult{}, err
		}
		return summary("%s", out), RenderBattlefieldResult{Map: out}, nil
	}
}
