package deathsave

import (
	"context"

	"github.com/dmforge/encounter-engine/internal/dice"
	"github.com/dmforge/encounter-engine/internal/domain/combat"
	"github.com/dmforge/encounter-engine/internal/domain/conditions"
	dnderr "github.com/dmforge/encounter-engine/internal/errors"
	"github.com/dmforge/encounter-engine/internal/repositories/encounters"
	"github.com/dmforge/encounter-engine/internal/services/check"
)

// deathSaveDC is the fixed target for a death saving throw
const deathSaveDC = 10

// RollInput describes one death saving throw
type RollInput struct {
	EncounterID   string
	ParticipantID string // participant id or name
	Modifier      int

	Advantage    bool
	Disadvantage bool
	ManualRoll   *int
	ManualRolls  []int
}

// RollResult reports the throw and the tracker state after it
type RollResult struct {
	ParticipantID string           `json:"participant_id"`
	Name          string           `json:"name"`
	Roll          *dice.RollResult `json:"roll"`
	Success       bool             `json:"success"`
	Successes     int              `json:"successes"`
	Failures      int              `json:"failures"`

	// Outcome is "ongoing", "revived", "stable", or "dead"
	Outcome string `json:"outcome"`
}

// Service runs the death save state machine for encounter participants
type Service interface {
	// RollDeathSave rolls a death saving throw for a dying participant
	RollDeathSave(ctx context.Context, input *RollInput) (*RollResult, error)
}

type service struct {
	roller        dice.Roller
	encounterRepo encounters.Repository
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Roller        dice.Roller
	EncounterRepo encounters.Repository
}

// NewService creates a new death save service
func NewService(cfg *ServiceConfig) Service {
	if cfg.EncounterRepo == nil {
		panic("encounter repository is required")
	}

	svc := &service{encounterRepo: cfg.EncounterRepo}
	if cfg.Roller != nil {
		svc.roller = cfg.Roller
	} else {
		svc.roller = dice.NewRandomRoller()
	}
	return svc
}

func (s *service) RollDeathSave(ctx context.Context, input *RollInput) (*RollResult, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input cannot be nil")
	}
	if input.EncounterID == "" {
		return nil, dnderr.InvalidArgument("encounter ID is required")
	}
	if input.ParticipantID == "" {
		return nil, dnderr.InvalidArgument("participant ID is required")
	}

	enc, err := s.encounterRepo.Get(ctx, input.EncounterID)
	if err != nil {
		return nil, err
	}
	participant, ok := enc.FindParticipant(input.ParticipantID)
	if !ok {
		return nil, dnderr.NotFoundf("participant '%s' not found in encounter '%s'", input.ParticipantID, input.EncounterID).
			WithMeta("participant_id", input.ParticipantID)
	}

	if participant.CurrentHP > 0 {
		return nil, dnderr.FailedPreconditionf("%s is at %d hp and does not roll death saves", participant.Name, participant.CurrentHP)
	}
	if participant.IsDead() {
		return nil, dnderr.FailedPreconditionf("%s is dead", participant.Name)
	}
	if participant.IsStable() {
		return nil, dnderr.FailedPreconditionf("%s is stable and does not roll death saves", participant.Name)
	}

	if participant.DeathSaves == nil {
		participant.DeathSaves = &combat.DeathSaveTracker{}
	}
	tracker := participant.DeathSaves

	roll, err := s.rollD20(input)
	if err != nil {
		return nil, err
	}

	result := &RollResult{
		ParticipantID: participant.ID,
		Name:          participant.Name,
		Roll:          roll,
	}

	switch {
	case roll.IsCrit:
		// Natural 20: back on your feet at 1 hp
		participant.CurrentHP = 1
		participant.DeathSaves = nil
		participant.EnsureConditions().Remove(conditions.Unconscious)
		result.Success = true
		result.Outcome = "revived"
		enc.Log("%s rolls a natural 20 on a death save and regains consciousness at 1 hp", participant.Name)

	case roll.IsFumble:
		tracker.RecordFailure(2)
		result.Outcome = trackerOutcome(tracker)
		enc.Log("%s rolls a natural 1 on a death save: two failures (%d/3)", participant.Name, tracker.Failures)

	case roll.Total >= deathSaveDC:
		tracker.RecordSuccess()
		result.Success = true
		result.Outcome = trackerOutcome(tracker)
		enc.Log("%s succeeds a death save (%d/3)", participant.Name, tracker.Successes)

	default:
		tracker.RecordFailure(1)
		result.Outcome = trackerOutcome(tracker)
		enc.Log("%s fails a death save (%d/3)", participant.Name, tracker.Failures)
	}

	if participant.DeathSaves != nil {
		result.Successes = tracker.Successes
		result.Failures = tracker.Failures
		if tracker.Dead {
			enc.Log("%s has died", participant.Name)
		} else if tracker.Stable {
			enc.Log("%s is stable at 0 hp", participant.Name)
		}
	}

	return result, nil
}

func trackerOutcome(tracker *combat.DeathSaveTracker) string {
	switch {
	case tracker.Dead:
		return "dead"
	case tracker.Stable:
		return "stable"
	}
	return "ongoing"
}

func (s *service) rollD20(input *RollInput) (*dice.RollResult, error) {
	mode := check.ResolveRollMode(input.Advantage, input.Disadvantage)

	roller := s.roller
	switch {
	case len(input.ManualRolls) > 0:
		if mode == check.ModeNormal {
			return nil, dnderr.InvalidArgument("manualRolls requires advantage or disadvantage")
		}
		if len(input.ManualRolls) != 2 {
			return nil, dnderr.InvalidArgumentf("manualRolls needs exactly 2 values, got %d", len(input.ManualRolls))
		}
		roller = dice.NewManualRoller(input.ManualRolls...)
	case input.ManualRoll != nil:
		if mode != check.ModeNormal {
			roller = dice.NewManualRoller(*input.ManualRoll, *input.ManualRoll)
		} else {
			roller = dice.NewManualRoller(*input.ManualRoll)
		}
	}

	switch mode {
	case check.ModeAdvantage:
		return roller.RollWithAdvantage(20, input.Modifier)
	case check.ModeDisadvantage:
		return roller.RollWithDisadvantage(20, input.Modifier)
	default:
		return roller.Roll(1, 20, input.Modifier)
	}
}
