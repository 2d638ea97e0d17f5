package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dmforge/encounter-engine/internal/dice"
	checkService "github.com/dmforge/encounter-engine/internal/services/check"
	deathsaveService "github.com/dmforge/encounter-engine/internal/services/deathsave"
)

// CheckSpec is one side of a d20 check.
type CheckSpec struct {
	CheckType string `json:"check_type" jsonschema:"skill, ability, save, attack, or initiative"`
	Skill     string `json:"skill,omitempty" jsonschema:"skill name for skill checks (stealth, athletics, ...)"`
	Ability   string `json:"ability,omitempty" jsonschema:"ability for ability checks, saves, and attacks (str, dex, ...)"`

	CharacterID   string `json:"character_id,omitempty" jsonschema:"stored character id supplying modifiers"`
	CharacterName string `json:"character_name,omitempty" jsonschema:"stored character name supplying modifiers"`

	Advantage    bool  `json:"advantage,omitempty"`
	Disadvantage bool  `json:"disadvantage,omitempty"`
	Bonus        int   `json:"bonus,omitempty" jsonschema:"situational bonus on top of the computed modifier"`
	DC           *int  `json:"dc,omitempty" jsonschema:"difficulty class to compare against"`
	ManualRoll   *int  `json:"manual_roll,omitempty" jsonschema:"use this d20 value instead of rolling"`
	ManualRolls  []int `json:"manual_rolls,omitempty" jsonschema:"two d20 values for a manual advantage or disadvantage roll"`
}

// RollCheckInput describes a check, optionally contested by another roller.
type RollCheckInput struct {
	Check          CheckSpec  `json:"check" jsonschema:"the check to roll"`
	ContestedBy    string     `json:"contested_by,omitempty" jsonschema:"opposing character id or name"`
	ContestedCheck *CheckSpec `json:"contested_check,omitempty" jsonschema:"the opposing side's check"`
}

func (s *CheckSpec) toService() (*checkService.RollCheckInput, error) {
	checkType, err := checkService.ParseCheckType(s.CheckType)
	if err != nil {
		return nil, err
	}
	return &checkService.RollCheckInput{
		CheckType:     checkType,
		Skill:         s.Skill,
		Ability:       s.Ability,
		CharacterID:   s.CharacterID,
		CharacterName: s.CharacterName,
		Advantage:     s.Advantage,
		Disadvantage:  s.Disadvantage,
		Bonus:         s.Bonus,
		DC:            s.DC,
		ManualRoll:    s.ManualRoll,
		ManualRolls:   s.ManualRolls,
	}, nil
}

// RollCheckTool defines the MCP tool schema for d20 checks.
func RollCheckTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll_check",
		Description: "Rolls a skill check, ability check, saving throw, attack roll, or initiative, with advantage and DC comparison",
	}
}

// RollCheckHandler builds the roll_check handler.
func RollCheckHandler(svc checkService.Service) mcp.ToolHandlerFor[RollCheckInput, checkService.RollCheckResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollCheckInput) (*mcp.CallToolResult, checkService.RollCheckResult, error) {
		roll, err := input.Check.toService()
		if err != nil {
			return nil, checkService.RollCheckResult{}, err
		}
		if input.ContestedCheck != nil {
			contested, err := input.ContestedCheck.toService()
			if err != nil {
				return nil, checkService.RollCheckResult{}, err
			}
			roll.ContestedBy = input.ContestedBy
			roll.ContestedCheck = contested
		}

		result, err := svc.RollCheck(ctx, roll)
		if err != nil {
			return nil, checkService.RollCheckResult{}, err
		}
		line := fmt.Sprintf("%s check: total %d", result.CheckType, result.Total)
		if result.Success != nil {
			verdict := "failure"
			if *result.Success {
				verdict = "success"
			}
			line += fmt.Sprintf(" vs DC %d (%s)", *result.DC, verdict)
		}
		if result.Contested != nil {
			line += fmt.Sprintf("; contested winner: %s", result.Contested.Winner)
		}
		return summary("%s", line), *result, nil
	}
}

// RollDiceInput is a raw dice expression.
type RollDiceInput struct {
	Expression string `json:"expression" jsonschema:"dice expression like 2d6+3 or 4d6kh3"`
}

// RollDiceTool defines the MCP tool schema for raw dice rolls.
func RollDiceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll_dice",
		Description: "Rolls a dice expression such as 2d6+3, 1d20, or 4d6kh3 (keep highest 3)",
	}
}

// RollDiceHandler builds the roll_dice handler.
func RollDiceHandler(svc checkService.Service) mcp.ToolHandlerFor[RollDiceInput, dice.RollResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollDiceInput) (*mcp.CallToolResult, dice.RollResult, error) {
		result, err := svc.RollExpression(ctx, input.Expression)
		if err != nil {
			return nil, dice.RollResult{}, err
		}
		return summary("%s = %d %v", input.Expression, result.Total, result.Rolls), *result, nil
	}
}

// RollDeathSaveInput rolls a death saving throw for a dying participant.
type RollDeathSaveInput struct {
	EncounterID  string `json:"encounter_id" jsonschema:"encounter holding the participant"`
	Participant  string `json:"participant" jsonschema:"dying participant id or name"`
	Modifier     int    `json:"modifier,omitempty" jsonschema:"bonus applied to the throw (bless, etc.)"`
	Advantage    bool   `json:"advantage,omitempty"`
	Disadvantage bool   `json:"disadvantage,omitempty"`
	ManualRoll   *int   `json:"manual_roll,omitempty" jsonschema:"use this d20 value instead of rolling"`
	ManualRolls  []int  `json:"manual_rolls,omitempty" jsonschema:"two d20 values for a manual advantage or disadvantage roll"`
}

// RollDeathSaveTool defines the MCP tool schema for death saves.
func RollDeathSaveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll_death_save",
		Description: "Rolls a death saving throw: DC 10, nat 1 counts two failures, nat 20 revives at 1 hp",
	}
}

// RollDeathSaveHandler builds the roll_death_save handler.
func RollDeathSaveHandler(svc deathsaveService.Service) mcp.ToolHandlerFor[RollDeathSaveInput, deathsaveService.RollResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollDeathSaveInput) (*mcp.CallToolResult, deathsaveService.RollResult, error) {
		result, err := svc.RollDeathSave(ctx, &deathsaveService.RollInput{
			EncounterID:   input.EncounterID,
			ParticipantID: input.Participant,
			Modifier:      input.Modifier,
			Advantage:     input.Advantage,
			Disadvantage:  input.Disadvantage,
			ManualRoll:    input.ManualRoll,
			ManualRolls:   input.ManualRolls,
		})
		if err != nil {
			return nil, deathsaveService.RollResult{}, err
		}
		return summary("%s death save: %d (%s, %d successes / %d failures)",
			result.Name, result.Roll.Total, result.Outcome, result.Successes, result.Failures), *result, nil
	}
}
