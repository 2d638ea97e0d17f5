package concentration

import (
	"context"
	"strings"
	"sync"

	"github.com/dmforge/encounter-engine/internal/dice"
	dnderr "github.com/dmforge/encounter-engine/internal/errors"
	"github.com/dmforge/encounter-engine/internal/services/check"
)

// Action selects what a manage-concentration call does
type Action string

const (
	ActionSet   Action = "set"
	ActionGet   Action = "get"
	ActionCheck Action = "check"
	ActionBreak Action = "break"
)

// ParseAction validates an action name
func ParseAction(name string) (Action, error) {
	action := Action(strings.ToLower(strings.TrimSpace(name)))
	switch action {
	case ActionSet, ActionGet, ActionCheck, ActionBreak:
		return action, nil
	}
	return "", dnderr.InvalidArgumentf("unknown concentration action: %q", name)
}

// State is what a caster is currently concentrating on
type State struct {
	Spell    string   `json:"spell"`
	Targets  []string `json:"targets,omitempty"`
	Duration int      `json:"duration,omitempty"` // rounds remaining, 0 = untracked
}

// SetInput starts concentrating on a spell
type SetInput struct {
	CasterID string
	Spell    string
	Targets  []string
	Duration int
}

// SetResult reports the new state and any spell it displaced
type SetResult struct {
	State  *State `json:"state"`
	Broken string `json:"broken,omitempty"` // spell dropped by this set
}

// CheckInput is a concentration check after taking damage
type CheckInput struct {
	CasterID string
	Damage   int
	Modifier int // CON save modifier

	Advantage    bool
	Disadvantage bool
	ManualRoll   *int
	ManualRolls  []int
}

// CheckResult reports the save and whether concentration held
type CheckResult struct {
	Concentrating bool             `json:"concentrating"`
	Spell         string           `json:"spell,omitempty"`
	DC            int              `json:"dc,omitempty"`
	Roll          *dice.RollResult `json:"roll,omitempty"`
	Held          bool             `json:"held"`
	Dropped       string           `json:"dropped,omitempty"` // spell lost on a failed save
}

// BreakResult reports a forced end of concentration
type BreakResult struct {
	Broken string `json:"broken,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Service tracks at most one concentration spell per caster
type Service interface {
	// Set starts concentrating, implicitly breaking any previous spell
	Set(ctx context.Context, input *SetInput) (*SetResult, error)

	// Get returns the current state, nil when not concentrating
	Get(ctx context.Context, casterID string) (*State, error)

	// Check rolls a CON save against DC max(10, damage/2). A failure drops
	// the spell. Checking while not concentrating is reported, not an error.
	Check(ctx context.Context, input *CheckInput) (*CheckResult, error)

	// Break forces concentration to end
	Break(ctx context.Context, casterID, reason string) (*BreakResult, error)
}

type service struct {
	mu     sync.Mutex
	states map[string]*State // casterID -> concentration
	roller dice.Roller
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Roller dice.Roller
}

// NewService creates a new concentration service
func NewService(cfg *ServiceConfig) Service {
	svc := &service{states: make(map[string]*State)}
	if cfg != nil && cfg.Roller != nil {
		svc.roller = cfg.Roller
	} else {
		svc.roller = dice.NewRandomRoller()
	}
	return svc
}

func (s *service) Set(ctx context.Context, input *SetInput) (*SetResult, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input cannot be nil")
	}
	if input.CasterID == "" {
		return nil, dnderr.InvalidArgument("caster ID is required")
	}
	if input.Spell == "" {
		return nil, dnderr.InvalidArgument("spell name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := &SetResult{}
	if previous, ok := s.states[input.CasterID]; ok {
		result.Broken = previous.Spell
	}

	state := &State{Spell: input.Spell, Targets: input.Targets, Duration: input.Duration}
	s.states[input.CasterID] = state
	result.State = state
	return result, nil
}

func (s *service) Get(ctx context.Context, casterID string) (*State, error) {
	if casterID == "" {
		return nil, dnderr.InvalidArgument("caster ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[casterID], nil
}

func (s *service) Check(ctx context.Context, input *CheckInput) (*CheckResult, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input cannot be nil")
	}
	if input.CasterID == "" {
		return nil, dnderr.InvalidArgument("caster ID is required")
	}
	if input.Damage < 0 {
		return nil, dnderr.InvalidArgument("damage cannot be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[input.CasterID]
	if !ok {
		return &CheckResult{Concentrating: false}, nil
	}

	dc := input.Damage / 2
	if dc < 10 {
		dc = 10
	}

	roll, err := s.rollSave(input)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{
		Concentrating: true,
		Spell:         state.Spell,
		DC:            dc,
		Roll:          roll,
	}

	// Ties hold; naturals override the arithmetic as on any save
	held := roll.Total >= dc
	if roll.IsCrit {
		held = true
	} else if roll.IsFumble {
		held = false
	}

	if held {
		result.Held = true
	} else {
		result.Dropped = state.Spell
		delete(s.states, input.CasterID)
	}
	return result, nil
}

func (s *service) Break(ctx context.Context, casterID, reason string) (*BreakResult, error) {
	if casterID == "" {
		return nil, dnderr.InvalidArgument("caster ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := &BreakResult{Reason: reason}
	if state, ok := s.states[casterID]; ok {
		result.Broken = state.Spell
		delete(s.states, casterID)
	}
	return result, nil
}

func (s *service) rollSave(input *CheckInput) (*dice.RollResult, error) {
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
