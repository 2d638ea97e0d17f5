package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	dnderr "github.com/dmforge/encounter-engine/internal/errors"
	auraService "github.com/dmforge/encounter-engine/internal/services/aura"
	concentrationService "github.com/dmforge/encounter-engine/internal/services/concentration"
	conditionService "github.com/dmforge/encounter-engine/internal/services/condition"
	spellslotsService "github.com/dmforge/encounter-engine/internal/services/spellslots"
)

// ManageConditionInput adds, removes, or queries conditions on a target.
type ManageConditionInput struct {
	Target      string `json:"target" jsonschema:"target id, or participant id or name when encounter_id is set"`
	EncounterID string `json:"encounter_id,omitempty" jsonschema:"encounter holding the target, omit for standalone targets"`
	Operation   string `json:"operation" jsonschema:"add, remove, or query"`

	Condition       string `json:"condition,omitempty" jsonschema:"condition name for add/remove (poisoned, restrained, ...)"`
	Duration        int    `json:"duration,omitempty" jsonschema:"rounds before the condition expires, 0 = until removed"`
	Source          string `json:"source,omitempty" jsonschema:"what inflicted the condition"`
	ExhaustionLevel int    `json:"exhaustion_level,omitempty" jsonschema:"level 1-6 when the condition is exhaustion"`

	BaseHP    int `json:"base_hp,omitempty" jsonschema:"standalone target hp for the effective stats projection"`
	BaseMaxHP int `json:"base_max_hp,omitempty" jsonschema:"standalone target max hp"`
	BaseSpeed int `json:"base_speed,omitempty" jsonschema:"standalone target speed in feet"`
	BaseAC    int `json:"base_ac,omitempty" jsonschema:"standalone target armor class"`
}

// ManageConditionTool defines the MCP tool schema for condition management.
func ManageConditionTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "manage_condition",
		Description: "Adds, removes, or lists conditions on a creature and reports its effective stats under them",
	}
}

// ManageConditionHandler builds the manage_condition handler.
func ManageConditionHandler(svc conditionService.Service) mcp.ToolHandlerFor[ManageConditionInput, conditionService.ManageResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ManageConditionInput) (*mcp.CallToolResult, conditionService.ManageResult, error) {
		op, err := conditionService.ParseOperation(input.Operation)
		if err != nil {
			return nil, conditionService.ManageResult{}, err
		}

		manage := &conditionService.ManageInput{
			TargetID:        input.Target,
			EncounterID:     input.EncounterID,
			Operation:       op,
			Condition:       input.Condition,
			Duration:        input.Duration,
			Source:          input.Source,
			ExhaustionLevel: input.ExhaustionLevel,
		}
		if input.BaseMaxHP > 0 || input.BaseSpeed > 0 || input.BaseAC > 0 {
			manage.BaseStats = &conditionService.BaseStats{
				HP:    input.BaseHP,
				MaxHP: input.BaseMaxHP,
				Speed: input.BaseSpeed,
				AC:    input.BaseAC,
			}
		}

		result, err := svc.ManageCondition(ctx, manage)
		if err != nil {
			return nil, conditionService.ManageResult{}, err
		}
		names := make([]string, 0, len(result.Conditions))
		for _, cond := range result.Conditions {
			names = append(names, string(cond.Type))
		}
		active := "none"
		if len(names) > 0 {
			active = strings.Join(names, ", ")
		}
		return summary("%s conditions: %s", result.TargetID, active), *result, nil
	}
}

// ManageConcentrationInput drives the per-caster concentration tracker.
type ManageConcentrationInput struct {
	Action   string `json:"action" jsonschema:"set, get, check, or break"`
	CasterID string `json:"caster_id" jsonschema:"the concentrating character"`

	Spell    string   `json:"spell,omitempty" jsonschema:"spell name for set"`
	Targets  []string `json:"targets,omitempty" jsonschema:"creatures affected by the spell"`
	Duration int      `json:"duration,omitempty" jsonschema:"rounds the spell lasts, 0 = untracked"`
	Reason   string   `json:"reason,omitempty" jsonschema:"why concentration breaks, for break"`

	Damage       int   `json:"damage,omitempty" jsonschema:"damage taken, for check; DC is max(10, damage/2)"`
	Modifier     int   `json:"modifier,omitempty" jsonschema:"CON save modifier, for check"`
	Advantage    bool  `json:"advantage,omitempty"`
	Disadvantage bool  `json:"disadvantage,omitempty"`
	ManualRoll   *int  `json:"manual_roll,omitempty" jsonschema:"use this d20 value instead of rolling"`
	ManualRolls  []int `json:"manual_rolls,omitempty" jsonschema:"two d20 values for a manual advantage or disadvantage roll"`
}

// ManageConcentrationResult is the union of the concentration operations'
// outputs; only the fields relevant to the action are set.
type ManageConcentrationResult struct {
	Concentrating bool                              `json:"concentrating"`
	State         *concentrationService.State       `json:"state,omitempty"`
	Broken        string                            `json:"broken,omitempty" jsonschema:"spell that stopped"`
	Check         *concentrationService.CheckResult `json:"check,omitempty" jsonschema:"save details, for check"`
}

// ManageConcentrationTool defines the MCP tool schema for concentration.
func ManageConcentrationTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "manage_concentration",
		Description: "Tracks one concentration spell per caster: set it, query it, roll the save after damage, or break it",
	}
}

// ManageConcentrationHandler builds the manage_concentration handler.
func ManageConcentrationHandler(svc concentrationService.Service) mcp.ToolHandlerFor[ManageConcentrationInput, ManageConcentrationResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ManageConcentrationInput) (*mcp.CallToolResult, ManageConcentrationResult, error) {
		action, err := concentrationService.ParseAction(input.Action)
		if err != nil {
			return nil, ManageConcentrationResult{}, err
		}

		switch action {
		case concentrationService.ActionSet:
			set, err := svc.Set(ctx, &concentrationService.SetInput{
				CasterID: input.CasterID,
				Spell:    input.Spell,
				Targets:  input.Targets,
				Duration: input.Duration,
			})
			if err != nil {
				return nil, ManageConcentrationResult{}, err
			}
			result := ManageConcentrationResult{
				Concentrating: true,
				State:         set.State,
				Broken:        set.Broken,
			}
			if set.Broken != "" {
				return summary("%s now concentrates on %s, dropping %s",
					input.CasterID, input.Spell, set.Broken), result, nil
			}
			return summary("%s now concentrates on %s", input.CasterID, input.Spell), result, nil

		case concentrationService.ActionGet:
			state, err := svc.Get(ctx, input.CasterID)
			if err != nil {
				return nil, ManageConcentrationResult{}, err
			}
			result := ManageConcentrationResult{
				Concentrating: state != nil,
				State:         state,
			}
			if state == nil {
				return summary("%s is not concentrating", input.CasterID), result, nil
			}
			return summary("%s is concentrating on %s", input.CasterID, state.Spell), result, nil

		case concentrationService.ActionCheck:
			check, err := svc.Check(ctx, &concentrationService.CheckInput{
				CasterID:     input.CasterID,
				Damage:       input.Damage,
				Modifier:     input.Modifier,
				Advantage:    input.Advantage,
				Disadvantage: input.Disadvantage,
				ManualRoll:   input.ManualRoll,
				ManualRolls:  input.ManualRolls,
			})
			if err != nil {
				return nil, ManageConcentrationResult{}, err
			}
			result := ManageConcentrationResult{
				Concentrating: check.Concentrating && check.Held,
				Broken:        check.Dropped,
				Check:         check,
			}
			switch {
			case !check.Concentrating:
				return summary("%s is not concentrating", input.CasterID), result, nil
			case check.Held:
				return summary("%s holds concentration on %s (rolled %d vs DC %d)",
					input.CasterID, check.Spell, check.Roll.Total, check.DC), result, nil
			}
			return summary("%s loses concentration on %s (rolled %d vs DC %d)",
				input.CasterID, check.Dropped, check.Roll.Total, check.DC), result, nil

		case concentrationService.ActionBreak:
			broke, err := svc.Break(ctx, input.CasterID, input.Reason)
			if err != nil {
				return nil, ManageConcentrationResult{}, err
			}
			if broke.Broken == "" {
				return summary("%s was not concentrating", input.CasterID),
					ManageConcentrationResult{}, nil
			}
			return summary("%s stops concentrating on %s", input.CasterID, broke.Broken),
				ManageConcentrationResult{Broken: broke.Broken}, nil
		}

		return nil, ManageConcentrationResult{}, dnderr.InvalidArgumentf("unknown concentration action: %q", input.Action)
	}
}

// SpellSlotOp is one spell slot operation.
type SpellSlotOp struct {
	CharacterID   string `json:"character_id,omitempty" jsonschema:"stored character id"`
	CharacterName string `json:"character_name,omitempty" jsonschema:"stored character name"`
	Operation     string `json:"operation" jsonschema:"view, expend, restore, or set"`

	SlotLevel int  `json:"slot_level,omitempty" jsonschema:"spell level for expend/restore; 0 on restore = all levels"`
	Count     int  `json:"count,omitempty" jsonschema:"slots to expend or restore, defaults to 1 on expend"`
	PactMagic bool `json:"pact_magic,omitempty" jsonschema:"operate on the pact magic pool instead"`

	Slots map[string]int `json:"slots,omitempty" jsonschema:"for set: spell level to remaining slot count"`
}

func (op *SpellSlotOp) toService() (*spellslotsService.ManageInput, error) {
	parsed, err := spellslotsService.ParseOperation(op.Operation)
	if err != nil {
		return nil, err
	}
	manage := &spellslotsService.ManageInput{
		CharacterID:   op.CharacterID,
		CharacterName: op.CharacterName,
		Operation:     parsed,
		SlotLevel:     op.SlotLevel,
		Count:         op.Count,
		PactMagic:     op.PactMagic,
	}
	if len(op.Slots) > 0 {
		manage.Slots = make(map[int]int, len(op.Slots))
		for level, count := range op.Slots {
			n, err := strconv.Atoi(level)
			if err != nil {
				return nil, dnderr.InvalidArgumentf("invalid slot level: %q", level)
			}
			manage.Slots[n] = count
		}
	}
	return manage, nil
}

// ManageSpellSlotsInput runs one operation, or a batch when batch is set.
type ManageSpellSlotsInput struct {
	CharacterID   string `json:"character_id,omitempty" jsonschema:"stored character id"`
	CharacterName string `json:"character_name,omitempty" jsonschema:"stored character name"`
	Operation     string `json:"operation,omitempty" jsonschema:"view, expend, restore, or set"`

	SlotLevel int  `json:"slot_level,omitempty" jsonschema:"spell level for expend/restore; 0 on restore = all levels"`
	Count     int  `json:"count,omitempty" jsonschema:"slots to expend or restore, defaults to 1 on expend"`
	PactMagic bool `json:"pact_magic,omitempty" jsonschema:"operate on the pact magic pool instead"`

	Slots map[string]int `json:"slots,omitempty" jsonschema:"for set: spell level to remaining slot count"`

	Batch []SpellSlotOp `json:"batch,omitempty" jsonschema:"ordered operations to run instead, each reported independently (max 20)"`
}

// ManageSpellSlotsResult reports either a single outcome or the batch.
type ManageSpellSlotsResult struct {
	Result *spellslotsService.ManageResult `json:"result,omitempty" jsonschema:"single operation outcome"`
	Batch  []spellslotsService.BatchEntry  `json:"batch,omitempty" jsonschema:"per-operation outcomes for a batch"`
}

// ManageSpellSlotsTool defines the MCP tool schema for spell slot tracking.
func ManageSpellSlotsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "manage_spell_slots",
		Description: "Views, expends, restores, or overrides a character's spell slots and pact magic, singly or in a batch",
	}
}

// ManageSpellSlotsHandler builds the manage_spell_slots handler.
func ManageSpellSlotsHandler(svc spellslotsService.Service) mcp.ToolHandlerFor[ManageSpellSlotsInput, ManageSpellSlotsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ManageSpellSlotsInput) (*mcp.CallToolResult, ManageSpellSlotsResult, error) {
		if len(input.Batch) > 0 {
			ops := make([]*spellslotsService.ManageInput, 0, len(input.Batch))
			for i := range input.Batch {
				op, err := input.Batch[i].toService()
				if err != nil {
					return nil, ManageSpellSlotsResult{}, err
				}
				ops = append(ops, op)
			}
			entries, err := svc.ManageBatch(ctx, ops)
			if err != nil {
				return nil, ManageSpellSlotsResult{}, err
			}
			succeeded := 0
			for _, entry := range entries {
				if entry.OK {
					succeeded++
				}
			}
			return summary("Batch of %d slot operations: %d succeeded", len(entries), succeeded),
				ManageSpellSlotsResult{Batch: entries}, nil
		}

		single := SpellSlotOp{
			CharacterID:   input.CharacterID,
			CharacterName: input.CharacterName,
			Operation:     input.Operation,
			SlotLevel:     input.SlotLevel,
			Count:         input.Count,
			PactMagic:     input.PactMagic,
			Slots:         input.Slots,
		}
		op, err := single.toService()
		if err != nil {
			return nil, ManageSpellSlotsResult{}, err
		}
		result, err := svc.ManageSlots(ctx, op)
		if err != nil {
			return nil, ManageSpellSlotsResult{}, err
		}
		return summary("%s: %s spell slots", result.Name, result.Operation),
			ManageSpellSlotsResult{Result: result}, nil
	}
}

// AuraTargetSpec is one creature evaluated against an aura.
type AuraTargetSpec struct {
	ID           string `json:"id" jsonschema:"creature id or name"`
	Position     Point  `json:"position" jsonschema:"creature position"`
	SaveModifier int    `json:"save_modifier,omitempty" jsonschema:"the creature's saving throw modifier"`
}

// ManageAuraInput drives persistent area effects.
type ManageAuraInput struct {
	Action string `json:"action" jsonschema:"create, process, remove, or list"`
	AuraID string `json:"aura_id,omitempty" jsonschema:"aura to process or remove"`

	OwnerID     string  `json:"owner_id,omitempty" jsonschema:"creature the aura belongs to, for create"`
	Spell       string  `json:"spell,omitempty" jsonschema:"spell producing the aura (spirit guardians, ...)"`
	Center      Point   `json:"center,omitempty" jsonschema:"aura center position"`
	Radius      float64 `json:"radius,omitempty" jsonschema:"aura radius in feet"`
	Damage      string  `json:"damage,omitempty" jsonschema:"damage dice expression rolled per pass"`
	Heal        string  `json:"heal,omitempty" jsonschema:"healing dice expression rolled per pass"`
	SaveDC      int     `json:"save_dc,omitempty" jsonschema:"saving throw DC, 0 = no save"`
	SaveAbility string  `json:"save_ability,omitempty" jsonschema:"ability for the save (wis, dex, ...)"`
	HalfOnSave  bool    `json:"half_on_save,omitempty" jsonschema:"successful saves take half damage instead of none"`
	Condition   string  `json:"condition,omitempty" jsonschema:"condition applied on a failed save"`
	Duration    int     `json:"duration,omitempty" jsonschema:"processing passes before the aura expires, 0 = until removed"`

	Targets []AuraTargetSpec `json:"targets,omitempty" jsonschema:"creatures to evaluate, for process"`
}

// ManageAuraResult is the union of the aura operations' outputs.
type ManageAuraResult struct {
	Aura    *auraService.Aura          `json:"aura,omitempty" jsonschema:"the created aura"`
	Process *auraService.ProcessResult `json:"process,omitempty" jsonschema:"per-target outcomes of a processing pass"`
	Removed bool                       `json:"removed,omitempty"`
	Auras   []*auraService.Aura        `json:"auras,omitempty" jsonschema:"all active auras, for list"`
}

// ManageAuraTool defines the MCP tool schema for area effects.
func ManageAuraTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "manage_aura",
		Description: "Creates, processes, removes, or lists persistent area effects like spirit guardians, rolling saves and damage per pass",
	}
}

// ManageAuraHandler builds the manage_aura handler.
func ManageAuraHandler(svc auraService.Service) mcp.ToolHandlerFor[ManageAuraInput, ManageAuraResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ManageAuraInput) (*mcp.CallToolResult, ManageAuraResult, error) {
		action, err := auraService.ParseAction(input.Action)
		if err != nil {
			return nil, ManageAuraResult{}, err
		}

		switch action {
		case auraService.ActionCreate:
			aura, err := svc.Create(ctx, &auraService.CreateInput{
				OwnerID:     input.OwnerID,
				Spell:       input.Spell,
				Center:      input.Center.position(),
				Radius:      input.Radius,
				Damage:      input.Damage,
				Heal:        input.Heal,
				SaveDC:      input.SaveDC,
				SaveAbility: input.SaveAbility,
				HalfOnSave:  input.HalfOnSave,
				Condition:   input.Condition,
				Duration:    input.Duration,
			})
			if err != nil {
				return nil, ManageAuraResult{}, err
			}
			return summary("Aura %s created: %s, %g ft radius", aura.ID, aura.Spell, aura.Radius),
				ManageAuraResult{Aura: aura}, nil

		case auraService.ActionProcess:
			targets := make([]auraService.Target, 0, len(input.Targets))
			for _, t := range input.Targets {
				targets = append(targets, auraService.Target{
					ID:           t.ID,
					Position:     t.Position.position(),
					SaveModifier: t.SaveModifier,
				})
			}
			process, err := svc.Process(ctx, input.AuraID, targets)
			if err != nil {
				return nil, ManageAuraResult{}, err
			}
			affected := 0
			for _, target := range process.Targets {
				if target.InRange {
					affected++
				}
			}
			line := fmt.Sprintf("%s affects %d of %d targets", process.Aura.Spell, affected, len(process.Targets))
			if process.Expired {
				line += "; the aura has expired"
			}
			return summary("%s", line), ManageAuraResult{Process: process}, nil

		case auraService.ActionRemove:
			if err := svc.Remove(ctx, input.AuraID); err != nil {
				return nil, ManageAuraResult{}, err
			}
			return summary("Aura %s removed", input.AuraID), ManageAuraResult{Removed: true}, nil

		case auraService.ActionList:
			auras := svc.List(ctx)
			return summary("%d active aura(s)", len(auras)), ManageAuraResult{Auras: auras}, nil
		}

		return nil, ManageAuraResult{}, dnderr.InvalidArgumentf("unknown aura action: %q", input.Action)
	}
}
