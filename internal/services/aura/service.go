package aura

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/dmforge/encounter-engine/internal/dice"
	dnderr "github.com/dmforge/encounter-engine/internal/errors"
	"github.com/dmforge/encounter-engine/internal/spatial"
	"github.com/dmforge/encounter-engine/internal/uuid"
)

// Action selects what a manage-aura call does
type Action string

const (
	ActionCreate  Action = "create"
	ActionProcess Action = "process"
	ActionRemove  Action = "remove"
	ActionList    Action = "list"
)

// ParseAction validates an action name
func ParseAction(name string) (Action, error) {
	action := Action(strings.ToLower(strings.TrimSpace(name)))
	switch action {
	case ActionCreate, ActionProcess, ActionRemove, ActionList:
		return action, nil
	}
	return "", dnderr.InvalidArgumentf("unknown aura action: %q", name)
}

// Aura is a persistent area effect centered on a point
type Aura struct {
	ID      string           `json:"id"`
	OwnerID string           `json:"owner_id"`
	Spell   string           `json:"spell"`
	Center  spatial.Position `json:"center"`
	Radius  float64          `json:"radius"` // feet

	Damage      string `json:"damage,omitempty"` // dice expression
	Heal        string `json:"heal,omitempty"`   // dice expression
	SaveDC      int    `json:"save_dc,omitempty"`
	SaveAbility string `json:"save_ability,omitempty"`
	HalfOnSave  bool   `json:"half_on_save,omitempty"`
	Condition   string `json:"condition,omitempty"` // applied on a failed save

	// Duration is the number of remaining processing passes; 0 = until removed
	Duration int `json:"duration,omitempty"`
}

// CreateInput describes a new aura
type CreateInput struct {
	OwnerID     string
	Spell       string
	Center      spatial.Position
	Radius      float64
	Damage      string
	Heal        string
	SaveDC      int
	SaveAbility string
	HalfOnSave  bool
	Condition   string
	Duration    int
}

// Target is one creature evaluated against the aura
type Target struct {
	ID           string
	Position     spatial.Position
	SaveModifier int
}

// TargetResult reports what the aura did to one target
type TargetResult struct {
	ID        string           `json:"id"`
	Distance  float64          `json:"distance_feet"`
	InRange   bool             `json:"in_range"`
	Save      *dice.RollResult `json:"save,omitempty"`
	Saved     bool             `json:"saved,omitempty"`
	Damage    int              `json:"damage,omitempty"`
	Heal      int              `json:"heal,omitempty"`
	Condition string           `json:"condition,omitempty"`
}

// ProcessResult reports one processing pass over an aura
type ProcessResult struct {
	Aura    *Aura            `json:"aura"`
	Roll    *dice.RollResult `json:"roll,omitempty"` // shared damage/heal roll
	Targets []TargetResult   `json:"targets"`
	Expired bool             `json:"expired"` // duration hit zero, aura removed
}

// Service holds active auras and applies them to targets
type Service interface {
	// Create registers a new aura
	Create(ctx context.Context, input *CreateInput) (*Aura, error)

	// Process applies the aura to targets inside its radius and ticks the
	// duration down
	Process(ctx context.Context, auraID string, targets []Target) (*ProcessResult, error)

	// Remove deletes an aura
	Remove(ctx context.Context, auraID string) error

	// List returns all active auras sorted by id
	List(ctx context.Context) []*Aura
}

type service struct {
	mu     sync.Mutex
	auras  map[string]*Aura
	roller dice.Roller
	uuid   uuid.Generator
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Roller        dice.Roller
	UUIDGenerator uuid.Generator
}

// NewService creates a new aura service
func NewService(cfg *ServiceConfig) Service {
	svc := &service{auras: make(map[string]*Aura)}
	if cfg != nil && cfg.Roller != nil {
		svc.roller = cfg.Roller
	} else {
		svc.roller = dice.NewRandomRoller()
	}
	if cfg != nil && cfg.UUIDGenerator != nil {
		svc.uuid = cfg.UUIDGenerator
	} else {
		svc.uuid = uuid.NewGoogleUUIDGenerator()
	}
	return svc
}

func (s *service) Create(ctx context.Context, input *CreateInput) (*Aura, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input cannot be nil")
	}
	if input.OwnerID == "" {
		return nil, dnderr.InvalidArgument("owner ID is required")
	}
	if input.Spell == "" {
		return nil, dnderr.InvalidArgument("spell name is required")
	}
	if input.Radius <= 0 {
		return nil, dnderr.InvalidArgument("radius must be positive")
	}
	if input.Damage != "" {
		if _, err := dice.ParseExpression(input.Damage); err != nil {
			return nil, err
		}
	}
	if input.Heal != "" {
		if _, err := dice.ParseExpression(input.Heal); err != nil {
			return nil, err
		}
	}
	if input.Damage != "" && input.Heal != "" {
		return nil, dnderr.InvalidArgument("an aura deals damage or heals, not both")
	}

	aura := &Aura{
		ID:          s.uuid.New(),
		OwnerID:     input.OwnerID,
		Spell:       input.Spell,
		Center:      input.Center,
		Radius:      input.Radius,
		Damage:      input.Damage,
		Heal:        input.Heal,
		SaveDC:      input.SaveDC,
		SaveAbility: input.SaveAbility,
		HalfOnSave:  input.HalfOnSave,
		Condition:   input.Condition,
		Duration:    input.Duration,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.auras[aura.ID] = aura
	return aura, nil
}

func (s *service) Process(ctx context.Context, auraID string, targets []Target) (*ProcessResult, error) {
	if auraID == "" {
		return nil, dnderr.InvalidArgument("aura ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	aura, ok := s.auras[auraID]
	if !ok {
		return nil, dnderr.NotFoundf("aura with ID '%s' not found", auraID).
			WithMeta("aura_id", auraID)
	}

	result := &ProcessResult{Aura: aura}

	// One shared roll per pass, halved per target on a successful save
	var amount int
	if aura.Damage != "" {
		roll, err := dice.RollExpression(s.roller, aura.Damage)
		if err != nil {
			return nil, err
		}
		result.Roll = roll
		amount = roll.Total
	} else if aura.Heal != "" {
		roll, err := dice.RollExpression(s.roller, aura.Heal)
		if err != nil {
			return nil, err
		}
		result.Roll = roll
		amount = roll.Total
	}

	for _, target := range targets {
		tr := TargetResult{ID: target.ID}

		dist, err := spatial.Distance(aura.Center, target.Position, spatial.ModeEuclidean, true)
		if err != nil {
			return nil, err
		}
		tr.Distance = dist.Feet
		tr.InRange = dist.Feet <= aura.Radius

		if tr.InRange {
			saved := false
			if aura.SaveDC > 0 {
				save, err := s.roller.Roll(1, 20, target.SaveModifier)
				if err != nil {
					return nil, err
				}
				tr.Save = save
				saved = save.Total >= aura.SaveDC || save.IsCrit
				if save.IsFumble {
					saved = false
				}
				tr.Saved = saved
			}

			switch {
			case aura.Damage != "":
				damage := amount
				if saved {
					if aura.HalfOnSave {
						damage = amount / 2
					} else {
						damage = 0
					}
				}
				tr.Damage = damage
			case aura.Heal != "":
				tr.Heal = amount
			}

			if aura.Condition != "" && !saved {
				tr.Condition = aura.Condition
			}
		}

		result.Targets = append(result.Targets, tr)
	}

	if aura.Duration > 0 {
		aura.Duration--
		if aura.Duration == 0 {
			delete(s.auras, aura.ID)
			result.Expired = true
		}
	}

	return result, nil
}

func (s *service) Remove(ctx context.Context, auraID string) error {
	if auraID == "" {
		return dnderr.InvalidArgument("aura ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.auras[auraID]; !ok {
		return dnderr.NotFoundf("aura with ID '%s' not found", auraID).
			WithMeta("aura_id", auraID)
	}
	delete(s.auras, auraID)
	return nil
}

func (s *service) List(ctx context.Context) []*Aura {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Aura, 0, len(s.auras))
	for _, aura := range s.auras {
		out = append(out, aura)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
