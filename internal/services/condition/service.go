package condition

import (
	"context"
	"strings"
	"sync"

	"github.com/dmforge/encounter-engine/internal/domain/conditions"
	dnderr "github.com/dmforge/encounter-engine/internal/errors"
	"github.com/dmforge/encounter-engine/internal/repositories/encounters"
)

// Operation selects what a manage-condition call does
type Operation string

const (
	OpAdd    Operation = "add"
	OpRemove Operation = "remove"
	OpQuery  Operation = "query"
)

// ParseOperation validates an operation name
func ParseOperation(name string) (Operation, error) {
	op := Operation(strings.ToLower(strings.TrimSpace(name)))
	switch op {
	case OpAdd, OpRemove, OpQuery:
		return op, nil
	}
	return "", dnderr.InvalidArgumentf("unknown condition operation: %q", name)
}

// BaseStats supplies the base values for an effective-stat projection when
// the target is not an encounter participant
type BaseStats struct {
	HP    int
	MaxHP int
	Speed int
	AC    int
}

// ManageInput describes one condition operation
type ManageInput struct {
	TargetID    string
	EncounterID string // when set, the target is an encounter participant
	Operation   Operation

	Condition       string // required for add/remove
	Duration        int    // rounds, 0 = until removed
	Source          string
	ExhaustionLevel int

	BaseStats *BaseStats // optional projection inputs for standalone targets
}

// ManageResult reports the outcome and the target's current condition state
type ManageResult struct {
	TargetID   string                     `json:"target_id"`
	Applied    *conditions.Condition      `json:"applied,omitempty"`
	Removed    bool                       `json:"removed"`
	Conditions []*conditions.Condition    `json:"conditions"`
	Stats      *conditions.EffectiveStats `json:"stats,omitempty"`
}

// Service manages conditions for encounter participants and standalone targets
type Service interface {
	// ManageCondition adds, removes, or queries conditions on a target
	ManageCondition(ctx context.Context, input *ManageInput) (*ManageResult, error)
}

type service struct {
	mu            sync.Mutex
	standalone    map[string]*conditions.Set // targetID -> conditions, outside encounters
	encounterRepo encounters.Repository
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	EncounterRepo encounters.Repository
}

// NewService creates a new condition service
func NewService(cfg *ServiceConfig) Service {
	if cfg.EncounterRepo == nil {
		panic("encounter repository is required")
	}
	return &service{
		standalone:    make(map[string]*conditions.Set),
		encounterRepo: cfg.EncounterRepo,
	}
}

func (s *service) ManageCondition(ctx context.Context, input *ManageInput) (*ManageResult, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input cannot be nil")
	}
	if input.TargetID == "" {
		return nil, dnderr.InvalidArgument("target ID is required")
	}

	set, base, err := s.resolveTarget(ctx, input)
	if err != nil {
		return nil, err
	}

	result := &ManageResult{TargetID: input.TargetID}

	switch input.Operation {
	case OpAdd:
		condType, err := conditions.Parse(input.Condition)
		if err != nil {
			return nil, err
		}
		applied, err := set.Add(conditions.Condition{
			Type:      condType,
			Source:    input.Source,
			Remaining: input.Duration,
			Level:     input.ExhaustionLevel,
		})
		if err != nil {
			return nil, err
		}
		result.Applied = applied

	case OpRemove:
		condType, err := conditions.Parse(input.Condition)
		if err != nil {
			return nil, err
		}
		result.Removed = set.Remove(condType)

	case OpQuery:
		// fall through to the shared state snapshot

	default:
		return nil, dnderr.InvalidArgumentf("unknown condition operation: %q", input.Operation)
	}

	result.Conditions = set.List()
	if base != nil {
		result.Stats = conditions.ComputeEffectiveStats(base.HP, base.MaxHP, base.Speed, base.AC, set)
	}
	return result, nil
}

// resolveTarget finds the condition set to operate on: an encounter
// participant's when an encounter is named, otherwise a service-held set
// keyed by target id. The returned base stats drive the effective-stat
// projection and may be nil.
func (s *service) resolveTarget(ctx context.Context, input *ManageInput) (*conditions.Set, *BaseStats, error) {
	if input.EncounterID != "" {
		enc, err := s.encounterRepo.Get(ctx, input.EncounterID)
		if err != nil {
			return nil, nil, err
		}
		participant, ok := enc.FindParticipant(input.TargetID)
		if !ok {
			return nil, nil, dnderr.NotFoundf("participant '%s' not found in encounter '%s'", input.TargetID, input.EncounterID).
				WithMeta("participant_id", input.TargetID)
		}
		base := &BaseStats{
			HP:    participant.CurrentHP,
			MaxHP: participant.MaxHP,
			Speed: participant.Speed,
			AC:    participant.AC,
		}
		return participant.EnsureConditions(), base, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.standalone[input.TargetID]
	if !ok {
		set = conditions.NewSet()
		s.standalone[input.TargetID] = set
	}
	return set, input.BaseStats, nil
}
