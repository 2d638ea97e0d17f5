package check

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmforge/encounter-engine/internal/dice"
	"github.com/dmforge/encounter-engine/internal/domain/character"
	"github.com/dmforge/encounter-engine/internal/domain/shared"
	dnderr "github.com/dmforge/encounter-engine/internal/errors"
	"github.com/dmforge/encounter-engine/internal/repositories/characters"
)

// CheckType classifies a d20 check
type CheckType string

const (
	CheckSkill      CheckType = "skill"
	CheckAbility    CheckType = "ability"
	CheckSave       CheckType = "save"
	CheckAttack     CheckType = "attack"
	CheckInitiative CheckType = "initiative"
)

// ParseCheckType validates a check type name
func ParseCheckType(name string) (CheckType, error) {
	ct := CheckType(strings.ToLower(strings.TrimSpace(name)))
	switch ct {
	case CheckSkill, CheckAbility, CheckSave, CheckAttack, CheckInitiative:
		return ct, nil
	}
	return "", dnderr.InvalidArgumentf("unknown check type: %q", name)
}

// RollMode selects normal, advantage, or disadvantage rolling
type RollMode string

const (
	ModeNormal       RollMode = "normal"
	ModeAdvantage    RollMode = "advantage"
	ModeDisadvantage RollMode = "disadvantage"
)

// ResolveRollMode folds the advantage and disadvantage flags into one mode.
// Both set cancel to normal.
func ResolveRollMode(advantage, disadvantage bool) RollMode {
	switch {
	case advantage && !disadvantage:
		return ModeAdvantage
	case disadvantage && !advantage:
		return ModeDisadvantage
	}
	return ModeNormal
}

// ParseRollMode validates a roll mode name, defaulting to normal
func ParseRollMode(name string) (RollMode, error) {
	mode := RollMode(strings.ToLower(strings.TrimSpace(name)))
	switch mode {
	case "":
		return ModeNormal, nil
	case ModeNormal, ModeAdvantage, ModeDisadvantage:
		return mode, nil
	}
	return "", dnderr.InvalidArgumentf("unknown roll mode: %q", name)
}

// RollCheckInput describes one d20 check
type RollCheckInput struct {
	CheckType CheckType
	Skill     string // for skill checks
	Ability   string // for ability checks, saves, attacks

	// Either may be set; ID wins when both are. Checks without a character
	// use the situational bonus alone.
	CharacterID   string
	CharacterName string

	Advantage    bool
	Disadvantage bool
	Bonus        int  // situational bonus on top of the computed modifier
	DC           *int // optional difficulty class

	// Manual overrides. One value for normal rolls, a pair for
	// advantage/disadvantage.
	ManualRoll  *int
	ManualRolls []int

	// Contested checks: the opposing side rolls ContestedCheck
	ContestedBy    string // opposing character id or name
	ContestedCheck *RollCheckInput
}

// RollCheckResult is a resolved check
type RollCheckResult struct {
	CheckType CheckType        `json:"check_type"`
	Mode      RollMode         `json:"mode"`
	Roll      *dice.RollResult `json:"roll"`
	Modifier  int              `json:"modifier"`
	Breakdown []string         `json:"breakdown,omitempty"`
	Total     int              `json:"total"`

	DC      *int  `json:"dc,omitempty"`
	Success *bool `json:"success,omitempty"`

	Critical bool `json:"critical"`
	Fumble   bool `json:"fumble"`

	// AutoOutcome notes a nat 20 / nat 1 on a save, which succeeds or fails
	// regardless of the total
	AutoOutcome string `json:"auto_outcome,omitempty"`

	CharacterName string `json:"character_name,omitempty"`

	Contested *ContestedResult `json:"contested,omitempty"`
}

// OpponentResult is the opposing side of a contested check. It mirrors
// RollCheckResult minus the contest nesting, keeping the result type
// acyclic for schema derivation.
type OpponentResult struct {
	CheckType     CheckType        `json:"check_type"`
	Mode          RollMode         `json:"mode"`
	Roll          *dice.RollResult `json:"roll"`
	Modifier      int              `json:"modifier"`
	Breakdown     []string         `json:"breakdown,omitempty"`
	Total         int              `json:"total"`
	Critical      bool             `json:"critical"`
	Fumble        bool             `json:"fumble"`
	CharacterName string           `json:"character_name,omitempty"`
}

// ContestedResult holds both sides of a contested check
type ContestedResult struct {
	Opponent *OpponentResult `json:"opponent"`
	Winner   string          `json:"winner"` // "roller", "opponent", or "tie"
}

// Service resolves d20 checks and raw dice expressions
type Service interface {
	// RollCheck resolves a skill/ability/save/attack/initiative check
	RollCheck(ctx context.Context, input *RollCheckInput) (*RollCheckResult, error)

	// RollExpression rolls a dice expression like "2d6+3" or "4d6kh3"
	RollExpression(ctx context.Context, expression string) (*dice.RollResult, error)
}

type service struct {
	roller        dice.Roller
	characterRepo characters.Repository
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Roller        dice.Roller
	CharacterRepo characters.Repository
}

// NewService creates a new check service
func NewService(cfg *ServiceConfig) Service {
	if cfg.CharacterRepo == nil {
		panic("character repository is required")
	}

	svc := &service{characterRepo: cfg.CharacterRepo}
	if cfg.Roller != nil {
		svc.roller = cfg.Roller
	} else {
		svc.roller = dice.NewRandomRoller()
	}
	return svc
}

func (s *service) RollExpression(ctx context.Context, expression string) (*dice.RollResult, error) {
	return dice.RollExpression(s.roller, expression)
}

func (s *service) RollCheck(ctx context.Context, input *RollCheckInput) (*RollCheckResult, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input cannot be nil")
	}

	result, err := s.rollOneSide(ctx, input)
	if err != nil {
		return nil, err
	}

	if input.ContestedBy != "" || input.ContestedCheck != nil {
		if input.ContestedCheck == nil {
			return nil, dnderr.InvalidArgument("contestedCheck is required when contestedBy is set")
		}
		opposing := *input.ContestedCheck
		if opposing.CharacterID == "" && opposing.CharacterName == "" {
			opposing.CharacterName = input.ContestedBy
		}
		opposing.ContestedBy = ""
		opposing.ContestedCheck = nil

		opponent, err := s.rollOneSide(ctx, &opposing)
		if err != nil {
			return nil, err
		}

		winner := "tie"
		if result.Total > opponent.Total {
			winner = "roller"
		} else if opponent.Total > result.Total {
			winner = "opponent"
		}
		result.Contested = &ContestedResult{
			Opponent: &OpponentResult{
				CheckType:     opponent.CheckType,
				Mode:          opponent.Mode,
				Roll:          opponent.Roll,
				Modifier:      opponent.Modifier,
				Breakdown:     opponent.Breakdown,
				Total:         opponent.Total,
				Critical:      opponent.Critical,
				Fumble:        opponent.Fumble,
				CharacterName: opponent.CharacterName,
			},
			Winner: winner,
		}
	}

	return result, nil
}

func (s *service) rollOneSide(ctx context.Context, input *RollCheckInput) (*RollCheckResult, error) {
	mode := ResolveRollMode(input.Advantage, input.Disadvantage)

	modifier, breakdown, charName, err := s.resolveModifier(ctx, input)
	if err != nil {
		return nil, err
	}
	if input.Bonus != 0 {
		modifier += input.Bonus
		breakdown = append(breakdown, fmt.Sprintf("situational %+d", input.Bonus))
	}

	roller, err := pickRoller(s.roller, mode, input.ManualRoll, input.ManualRolls)
	if err != nil {
		return nil, err
	}

	roll, err := rollD20(roller, mode, modifier)
	if err != nil {
		return nil, err
	}

	result := &RollCheckResult{
		CheckType:     input.CheckType,
		Mode:          mode,
		Roll:          roll,
		Modifier:      modifier,
		Breakdown:     breakdown,
		Total:         roll.Total,
		Critical:      roll.IsCrit,
		Fumble:        roll.IsFumble,
		CharacterName: charName,
	}

	if input.DC != nil {
		dc := *input.DC
		result.DC = &dc
		success := roll.Total >= dc
		if input.CheckType == CheckSave {
			// Natural 20 and 1 override the arithmetic on saves
			if roll.IsCrit {
				success = true
				result.AutoOutcome = "natural 20: automatic success"
			} else if roll.IsFumble {
				success = false
				result.AutoOutcome = "natural 1: automatic failure"
			}
		}
		result.Success = &success
	} else if input.CheckType == CheckSave {
		if roll.IsCrit {
			result.AutoOutcome = "natural 20: automatic success"
		} else if roll.IsFumble {
			result.AutoOutcome = "natural 1: automatic failure"
		}
	}

	return result, nil
}

// resolveModifier computes the check modifier from the character record, when
// one is referenced
func (s *service) resolveModifier(ctx context.Context, input *RollCheckInput) (int, []string, string, error) {
	char, err := s.lookupCharacter(ctx, input.CharacterID, input.CharacterName)
	if err != nil {
		return 0, nil, "", err
	}
	if char == nil {
		return 0, nil, "", nil
	}

	var (
		modifier  int
		breakdown []string
	)

	switch input.CheckType {
	case CheckSkill:
		skill, err := shared.ParseSkill(input.Skill)
		if err != nil {
			return 0, nil, "", err
		}
		attr := skill.Ability()
		modifier = char.AbilityModifier(attr)
		breakdown = append(breakdown, fmt.Sprintf("%s %+d", attr, modifier))
		if char.HasSkillProficiency(skill) {
			prof := char.ProficiencyBonus()
			modifier += prof
			breakdown = append(breakdown, fmt.Sprintf("proficiency %+d", prof))
		}

	case CheckAbility:
		attr, err := shared.ParseAttribute(input.Ability)
		if err != nil {
			return 0, nil, "", err
		}
		modifier = char.AbilityModifier(attr)
		breakdown = append(breakdown, fmt.Sprintf("%s %+d", attr, modifier))

	case CheckSave:
		attr, err := shared.ParseAttribute(input.Ability)
		if err != nil {
			return 0, nil, "", err
		}
		modifier = char.AbilityModifier(attr)
		breakdown = append(breakdown, fmt.Sprintf("%s %+d", attr, modifier))
		if char.HasSaveProficiency(attr) {
			prof := char.ProficiencyBonus()
			modifier += prof
			breakdown = append(breakdown, fmt.Sprintf("proficiency %+d", prof))
		}

	case CheckAttack:
		attr := shared.AttributeStrength
		if input.Ability != "" {
			parsed, err := shared.ParseAttribute(input.Ability)
			if err != nil {
				return 0, nil, "", err
			}
			attr = parsed
		}
		modifier = char.AbilityModifier(attr)
		prof := char.ProficiencyBonus()
		modifier += prof
		breakdown = append(breakdown,
			fmt.Sprintf("%s %+d", attr, char.AbilityModifier(attr)),
			fmt.Sprintf("proficiency %+d", prof))

	case CheckInitiative:
		modifier = char.InitiativeBonus()
		breakdown = append(breakdown, fmt.Sprintf("Dex %+d", modifier))

	default:
		return 0, nil, "", dnderr.InvalidArgumentf("unknown check type: %q", input.CheckType)
	}

	return modifier, breakdown, char.Name, nil
}

// lookupCharacter resolves id-or-name; a check with neither has no character
func (s *service) lookupCharacter(ctx context.Context, id, name string) (*character.Character, error) {
	if id != "" {
		return s.characterRepo.Get(ctx, id)
	}
	if name != "" {
		return s.characterRepo.GetByName(ctx, name)
	}
	return nil, nil
}

// pickRoller substitutes a manual roller when override values are supplied.
// Manual rolls flow through the same resolution as random ones.
func pickRoller(base dice.Roller, mode RollMode, manual *int, manualPair []int) (dice.Roller, error) {
	switch {
	case len(manualPair) > 0:
		if mode == ModeNormal {
			return nil, dnderr.InvalidArgument("manualRolls requires advantage or disadvantage")
		}
		if len(manualPair) != 2 {
			return nil, dnderr.InvalidArgumentf("manualRolls needs exactly 2 values, got %d", len(manualPair))
		}
		return dice.NewManualRoller(manualPair...), nil
	case manual != nil:
		if mode != ModeNormal {
			// A single override under advantage is used for both dice
			return dice.NewManualRoller(*manual, *manual), nil
		}
		return dice.NewManualRoller(*manual), nil
	}
	return base, nil
}

func rollD20(roller dice.Roller, mode RollMode, modifier int) (*dice.RollResult, error) {
	switch mode {
	case ModeAdvantage:
		return roller.RollWithAdvantage(20, modifier)
	case ModeDisadvantage:
		return roller.RollWithDisadvantage(20, modifier)
	default:
		return roller.Roll(1, 20, modifier)
	}
}
