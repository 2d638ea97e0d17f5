package spellslots

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmforge/encounter-engine/internal/domain/character"
	dnderr "github.com/dmforge/encounter-engine/internal/errors"
	"github.com/dmforge/encounter-engine/internal/repositories/characters"
)

// maxBatchSize caps the number of operations in one batch
const maxBatchSize = 20

// Operation selects what a manage-slots call does
type Operation string

const (
	OpView    Operation = "view"
	OpExpend  Operation = "expend"
	OpRestore Operation = "restore"
	OpSet     Operation = "set"
)

// ParseOperation validates an operation name
func ParseOperation(name string) (Operation, error) {
	op := Operation(strings.ToLower(strings.TrimSpace(name)))
	switch op {
	case OpView, OpExpend, OpRestore, OpSet:
		return op, nil
	}
	return "", dnderr.InvalidArgumentf("unknown spell slot operation: %q", name)
}

// ManageInput describes one spell slot operation
type ManageInput struct {
	CharacterID   string
	CharacterName string
	Operation     Operation

	SlotLevel int  // for expend/restore; 0 on restore = all levels
	Count     int  // defaults to 1 on expend, "to max" on restore
	PactMagic bool // route expend/restore to the pact pool

	Slots map[int]int // for set: level -> current override
}

// ManageResult reports the pools after the operation
type ManageResult struct {
	CharacterID string              `json:"character_id"`
	Name        string              `json:"name"`
	Operation   Operation           `json:"operation"`
	Slots       character.SlotPool  `json:"slots"`
	Pact        *character.PactPool `json:"pact,omitempty"`
	Restored    int                 `json:"restored,omitempty"`
}

// BatchEntry tags one batch operation with its outcome
type BatchEntry struct {
	Index  int           `json:"index"`
	OK     bool          `json:"ok"`
	Result *ManageResult `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// Service manages spell slot pools, persisting changes on the character record
type Service interface {
	// ManageSlots runs a single view/expend/restore/set operation
	ManageSlots(ctx context.Context, input *ManageInput) (*ManageResult, error)

	// ManageBatch runs an ordered sequence of operations, each tagged
	// success or failure independently. At most 20 per batch.
	ManageBatch(ctx context.Context, inputs []*ManageInput) ([]BatchEntry, error)
}

type service struct {
	characterRepo characters.Repository
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	CharacterRepo characters.Repository
}

// NewService creates a new spell slot service
func NewService(cfg *ServiceConfig) Service {
	if cfg.CharacterRepo == nil {
		panic("character repository is required")
	}
	return &service{characterRepo: cfg.CharacterRepo}
}

func (s *service) ManageSlots(ctx context.Context, input *ManageInput) (*ManageResult, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input cannot be nil")
	}

	char, err := s.lookupCharacter(ctx, input)
	if err != nil {
		return nil, err
	}

	mutated := false
	result := &ManageResult{
		CharacterID: char.ID,
		Name:        char.Name,
		Operation:   input.Operation,
	}

	switch input.Operation {
	case OpView:
		// nothing to do, snapshot below

	case OpExpend:
		count := input.Count
		if count == 0 {
			count = 1
		}
		if input.PactMagic {
			if err := char.PactMagic.Expend(count); err != nil {
				return nil, err
			}
		} else {
			if err := char.SpellSlots.Expend(input.SlotLevel, count); err != nil {
				return nil, err
			}
		}
		mutated = true

	case OpRestore:
		if input.PactMagic {
			if char.PactMagic == nil {
				return nil, dnderr.FailedPreconditionf("%s has no pact magic", char.Name)
			}
			result.Restored = char.PactMagic.Restore(input.Count)
		} else {
			restored, err := char.SpellSlots.Restore(input.SlotLevel, input.Count)
			if err != nil {
				return nil, err
			}
			result.Restored = restored
		}
		mutated = true

	case OpSet:
		if len(input.Slots) == 0 {
			return nil, dnderr.InvalidArgument("set requires a slots map")
		}
		if char.SpellSlots == nil {
			char.SpellSlots = character.SlotPool{}
		}
		if err := char.SpellSlots.Override(input.Slots); err != nil {
			return nil, err
		}
		mutated = true

	default:
		return nil, dnderr.InvalidArgumentf("unknown spell slot operation: %q", input.Operation)
	}

	if mutated {
		if err := s.characterRepo.Update(ctx, char); err != nil {
			return nil, fmt.Errorf("failed to persist slot state: %w", err)
		}
	}

	result.Slots = char.SpellSlots
	result.Pact = char.PactMagic
	return result, nil
}

func (s *service) ManageBatch(ctx context.Context, inputs []*ManageInput) ([]BatchEntry, error) {
	if len(inputs) == 0 {
		return nil, dnderr.InvalidArgument("batch cannot be empty")
	}
	if len(inputs) > maxBatchSize {
		return nil, dnderr.InvalidArgumentf("batch size %d exceeds the maximum of %d", len(inputs), maxBatchSize)
	}

	entries := make([]BatchEntry, 0, len(inputs))
	for i, input := range inputs {
		entry := BatchEntry{Index: i}
		result, err := s.ManageSlots(ctx, input)
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.OK = true
			entry.Result = result
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *service) lookupCharacter(ctx context.Context, input *ManageInput) (*character.Character, error) {
	if input.CharacterID != "" {
		return s.characterRepo.Get(ctx, input.CharacterID)
	}
	if input.CharacterName != "" {
		return s.characterRepo.GetByName(ctx, input.CharacterName)
	}
	return nil, dnderr.InvalidArgument("character ID or name is required")
}
