package encounter

import (
	"context"
	"log"

	"github.com/dmforge/encounter-engine/internal/dice"
	"github.com/dmforge/encounter-engine/internal/domain/character"
	"github.com/dmforge/encounter-engine/internal/domain/combat"
	"github.com/dmforge/encounter-engine/internal/domain/conditions"
	"github.com/dmforge/encounter-engine/internal/domain/shared"
	dnderr "github.com/dmforge/encounter-engine/internal/errors"
	"github.com/dmforge/encounter-engine/internal/repositories/characters"
	"github.com/dmforge/encounter-engine/internal/repositories/encounters"
	"github.com/dmforge/encounter-engine/internal/spatial"
	"github.com/dmforge/encounter-engine/internal/uuid"
)

// ParticipantInput is one participant at encounter creation: either explicit
// data, or a character reference that auto-populates the rest
type ParticipantInput struct {
	CharacterID   string
	CharacterName string

	Name      string
	MaxHP     int
	AC        int
	Speed     int
	Size      string
	InitBonus int
	Defenses  shared.Defenses

	Position spatial.Position
	Ally     bool
}

// CreateInput describes a new encounter
type CreateInput struct {
	Name         string
	Participants []ParticipantInput
	Terrain      *combat.TerrainGrid
	Seed         *int64 // deterministic initiative when set
}

// AdvanceResult reports the state after a turn advance
type AdvanceResult struct {
	Round    int                 `json:"round"`
	Turn     int                 `json:"turn"`
	NewRound bool                `json:"new_round"`
	Current  *combat.Participant `json:"current"`

	// DeathSaveReminders names dying participants who owe a death save
	DeathSaveReminders []string `json:"death_save_reminders,omitempty"`

	// ExpiredConditions lists conditions that ran out this round
	ExpiredConditions []string `json:"expired_conditions,omitempty"`
}

// DamageInput applies damage to a participant
type DamageInput struct {
	EncounterID   string
	ParticipantID string
	Amount        int
	DamageType    string
	Critical      bool // doubles the death-save failure when dealt at 0 hp
}

// DamageResult reports the adjusted damage and its consequences
type DamageResult struct {
	Participant       *combat.Participant `json:"participant"`
	Requested         int                 `json:"requested"`
	Applied           int                 `json:"applied"`
	Adjustment        string              `json:"adjustment,omitempty"` // immune/resisted/vulnerable
	Dropped           bool                `json:"dropped"`              // fell to 0 hp
	Bloodied          bool                `json:"bloodied"`
	DeathSaveFailures int                 `json:"death_save_failures,omitempty"` // added by damage at 0 hp
}

// HealInput restores a participant's hit points
type HealInput struct {
	EncounterID   string
	ParticipantID string
	Amount        int
}

// HealResult reports the healing outcome
type HealResult struct {
	Participant *combat.Participant `json:"participant"`
	Healed      int                 `json:"healed"`
	Revived     bool                `json:"revived"`
}

// RenderInput selects battlefield rendering options
type RenderInput struct {
	EncounterID     string
	Viewport        *spatial.Viewport
	FocusOn         string
	ShowLegend      bool
	ShowCoordinates bool
	ShowElevation   bool
	LegendDetail    spatial.LegendDetail
}

// Service orchestrates encounters: creation, turns, damage, healing, rendering
type Service interface {
	// CreateEncounter resolves participants, rolls initiative, and stores
	// the encounter
	CreateEncounter(ctx context.Context, input *CreateInput) (*combat.Encounter, error)

	// GetEncounter retrieves an encounter by ID
	GetEncounter(ctx context.Context, encounterID string) (*combat.Encounter, error)

	// EndEncounter completes and removes an encounter
	EndEncounter(ctx context.Context, encounterID string) error

	// AdvanceTurn moves to the next acting participant
	AdvanceTurn(ctx context.Context, encounterID string) (*AdvanceResult, error)

	// ApplyDamage damages a participant inside the encounter snapshot
	ApplyDamage(ctx context.Context, input *DamageInput) (*DamageResult, error)

	// ApplyHealing heals a participant
	ApplyHealing(ctx context.Context, input *HealInput) (*HealResult, error)

	// RenderBattlefield projects the encounter grid to text
	RenderBattlefield(ctx context.Context, input *RenderInput) (string, error)
}

type service struct {
	encounterRepo encounters.Repository
	characterRepo characters.Repository
	roller        dice.Roller
	uuidGenerator uuid.Generator
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	EncounterRepo encounters.Repository
	CharacterRepo characters.Repository
	Roller        dice.Roller
	UUIDGenerator uuid.Generator
}

// NewService creates a new encounter service
func NewService(cfg *ServiceConfig) Service {
	if cfg.EncounterRepo == nil {
		panic("encounter repository is required")
	}
	if cfg.CharacterRepo == nil {
		panic("character repository is required")
	}

	svc := &service{
		encounterRepo: cfg.EncounterRepo,
		characterRepo: cfg.CharacterRepo,
	}
	if cfg.Roller != nil {
		svc.roller = cfg.Roller
	} else {
		svc.roller = dice.NewRandomRoller()
	}
	if cfg.UUIDGenerator != nil {
		svc.uuidGenerator = cfg.UUIDGenerator
	} else {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	return svc
}

func (s *service) CreateEncounter(ctx context.Context, input *CreateInput) (*combat.Encounter, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input cannot be nil")
	}
	if len(input.Participants) == 0 {
		return nil, dnderr.InvalidArgument("at least one participant is required")
	}

	name := input.Name
	if name == "" {
		name = "Encounter"
	}

	enc := combat.NewEncounter(s.uuidGenerator.New(), name)
	if input.Terrain != nil {
		if input.Terrain.Width < 1 || input.Terrain.Height < 1 {
			return nil, dnderr.InvalidArgument("terrain dimensions must be positive")
		}
		enc.Terrain = input.Terrain
	}

	roller := s.roller
	if input.Seed != nil {
		seed := *input.Seed
		enc.Seed = &seed
		roller = dice.NewSeededRoller(seed)
	}

	for i := range input.Participants {
		participant, err := s.resolveParticipant(ctx, &input.Participants[i])
		if err != nil {
			return nil, err
		}

		roll, err := roller.Roll(1, 20, participant.InitiativeBonus)
		if err != nil {
			return nil, err
		}
		participant.Initiative = roll.Total

		enc.AddParticipant(participant)
	}
	enc.SortInitiative()

	if err := s.encounterRepo.Create(ctx, enc); err != nil {
		return nil, err
	}

	log.Printf("Created encounter %s with %d participants", enc.ID, len(enc.Participants))
	return enc, nil
}

// resolveParticipant builds a point-in-time participant copy, from a
// character record when one is referenced
func (s *service) resolveParticipant(ctx context.Context, input *ParticipantInput) (*combat.Participant, error) {
	participant := &combat.Participant{
		ID:       s.uuidGenerator.New(),
		Position: input.Position,
		Ally:     input.Ally,
	}

	if input.CharacterID != "" || input.CharacterName != "" {
		char, err := s.lookupCharacter(ctx, input.CharacterID, input.CharacterName)
		if err != nil {
			return nil, err
		}
		participant.Name = char.Name
		participant.MaxHP = char.MaxHP
		participant.CurrentHP = char.CurrentHP
		participant.AC = char.AC
		participant.Speed = char.Speed
		participant.Size = char.Size
		participant.Defenses = char.Defenses
		participant.InitiativeBonus = char.InitiativeBonus()
		participant.CharacterID = char.ID
		if participant.Size == "" {
			participant.Size = shared.SizeMedium
		}
		return participant, nil
	}

	if input.Name == "" {
		return nil, dnderr.InvalidArgument("participant name is required")
	}
	if input.MaxHP < 1 {
		return nil, dnderr.InvalidArgumentf("participant %q needs positive max hp", input.Name)
	}

	size, err := shared.ParseSize(input.Size)
	if err != nil {
		return nil, err
	}

	participant.Name = input.Name
	participant.MaxHP = input.MaxHP
	participant.CurrentHP = input.MaxHP
	participant.AC = input.AC
	participant.Speed = input.Speed
	participant.Size = size
	participant.Defenses = input.Defenses
	participant.InitiativeBonus = input.InitBonus
	return participant, nil
}

func (s *service) lookupCharacter(ctx context.Context, id, name string) (*character.Character, error) {
	if id != "" {
		return s.characterRepo.Get(ctx, id)
	}
	return s.characterRepo.GetByName(ctx, name)
}

func (s *service) GetEncounter(ctx context.Context, encounterID string) (*combat.Encounter, error) {
	return s.encounterRepo.Get(ctx, encounterID)
}

func (s *service) EndEncounter(ctx context.Context, encounterID string) error {
	enc, err := s.encounterRepo.Get(ctx, encounterID)
	if err != nil {
		return err
	}
	enc.End()
	return s.encounterRepo.Delete(ctx, encounterID)
}

func (s *service) AdvanceTurn(ctx context.Context, encounterID string) (*AdvanceResult, error) {
	enc, err := s.encounterRepo.Get(ctx, encounterID)
	if err != nil {
		return nil, err
	}
	if len(enc.TurnOrder) == 0 {
		return nil, dnderr.FailedPrecondition("encounter has no participants")
	}

	result := &AdvanceResult{}
	result.NewRound = enc.AdvanceTurn()

	if result.NewRound {
		// Round-based durations burn down once per round
		for _, id := range enc.TurnOrder {
			p := enc.Participants[id]
			if p == nil || p.Conditions == nil {
				continue
			}
			for _, expired := range p.Conditions.TickRound() {
				note := p.Name + " is no longer " + string(expired)
				result.ExpiredConditions = append(result.ExpiredConditions, note)
				enc.Log("%s", note)
			}
		}
	}

	for _, dying := range enc.DyingParticipants() {
		result.DeathSaveReminders = append(result.DeathSaveReminders,
			dying.Name+" is dying and must roll a death save")
	}

	result.Round = enc.Round
	result.Turn = enc.Turn
	result.Current = enc.CurrentParticipant()
	return result, nil
}

func (s *service) ApplyDamage(ctx context.Context, input *DamageInput) (*DamageResult, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input cannot be nil")
	}
	if input.Amount < 0 {
		return nil, dnderr.InvalidArgument("damage cannot be negative")
	}

	enc, participant, err := s.findParticipant(ctx, input.EncounterID, input.ParticipantID)
	if err != nil {
		return nil, err
	}
	if participant.IsDead() {
		return nil, dnderr.FailedPreconditionf("%s is dead", participant.Name)
	}

	damageType := shared.NormalizeDamageType(input.DamageType)
	applied, adjustment := participant.Defenses.Apply(input.Amount, damageType)

	result := &DamageResult{
		Participant: participant,
		Requested:   input.Amount,
		Applied:     applied,
		Adjustment:  adjustment,
	}

	if participant.CurrentHP == 0 {
		// Damage while dying marks death save failures instead of hp loss
		if applied > 0 {
			failures := 1
			if input.Critical {
				failures = 2
			}
			if participant.DeathSaves == nil {
				participant.DeathSaves = &combat.DeathSaveTracker{}
			}
			participant.DeathSaves.RecordFailure(failures)
			result.DeathSaveFailures = failures
			enc.Log("%s takes damage while dying: %d death save failure(s)", participant.Name, failures)
			if participant.DeathSaves.Dead {
				enc.Log("%s has died", participant.Name)
			}
		}
		return result, nil
	}

	result.Dropped = participant.ApplyDamage(applied)
	result.Bloodied = participant.IsBloodied()

	if adjustment != "" {
		enc.Log("%s is %s: %d damage becomes %d", participant.Name, adjustment, input.Amount, applied)
	}
	enc.Log("%s takes %d damage (%d/%d hp)", participant.Name, applied, participant.CurrentHP, participant.MaxHP)

	if result.Dropped {
		participant.DeathSaves = &combat.DeathSaveTracker{}
		if _, err := participant.EnsureConditions().Add(conditions.Condition{
			Type:   conditions.Unconscious,
			Source: "dropped to 0 hp",
		}); err != nil {
			return nil, err
		}
		enc.Log("%s falls unconscious and is dying", participant.Name)
	}

	return result, nil
}

func (s *service) ApplyHealing(ctx context.Context, input *HealInput) (*HealResult, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input cannot be nil")
	}
	if input.Amount < 1 {
		return nil, dnderr.InvalidArgument("healing must be positive")
	}

	enc, participant, err := s.findParticipant(ctx, input.EncounterID, input.ParticipantID)
	if err != nil {
		return nil, err
	}
	if participant.IsDead() {
		return nil, dnderr.FailedPreconditionf("%s is dead and cannot be healed", participant.Name)
	}

	before := participant.CurrentHP
	revived := participant.Heal(input.Amount)

	if revived {
		// Back above zero: the death save tracker and unconsciousness clear
		participant.DeathSaves = nil
		participant.EnsureConditions().Remove(conditions.Unconscious)
		enc.Log("%s regains consciousness", participant.Name)
	}
	enc.Log("%s heals %d (%d/%d hp)", participant.Name, participant.CurrentHP-before, participant.CurrentHP, participant.MaxHP)

	return &HealResult{
		Participant: participant,
		Healed:      participant.CurrentHP - before,
		Revived:     revived,
	}, nil
}

func (s *service) RenderBattlefield(ctx context.Context, input *RenderInput) (string, error) {
	if input == nil {
		return "", dnderr.InvalidArgument("input cannot be nil")
	}

	enc, err := s.encounterRepo.Get(ctx, input.EncounterID)
	if err != nil {
		return "", err
	}

	tokens := make([]spatial.Token, 0, len(enc.TurnOrder))
	for _, id := range enc.TurnOrder {
		p := enc.Participants[id]
		if p == nil {
			continue
		}
		token := spatial.Token{
			ID:       p.ID,
			Name:     p.Name,
			Ally:     p.Ally,
			Position: p.Position,
			HP:       p.CurrentHP,
			MaxHP:    p.MaxHP,
		}
		if p.Conditions != nil {
			for _, cond := range p.Conditions.List() {
				token.Conditions = append(token.Conditions, string(cond.Type))
			}
		}
		tokens = append(tokens, token)
	}

	return spatial.RenderBattlefield(&spatial.RenderInput{
		Width:            enc.Terrain.Width,
		Height:           enc.Terrain.Height,
		Tokens:           tokens,
		Obstacles:        enc.Terrain.Obstacles,
		DifficultTerrain: enc.Terrain.DifficultTerrain,
		Water:            enc.Terrain.Water,
		Hazards:          enc.Terrain.Hazards,
		Viewport:         input.Viewport,
		FocusOn:          input.FocusOn,
		ShowLegend:       input.ShowLegend,
		ShowCoordinates:  input.ShowCoordinates,
		ShowElevation:    input.ShowElevation,
		LegendDetail:     input.LegendDetail,
	})
}

func (s *service) findParticipant(ctx context.Context, encounterID, participantID string) (*combat.Encounter, *combat.Participant, error) {
	if encounterID == "" {
		return nil, nil, dnderr.InvalidArgument("encounter ID is required")
	}
	if participantID == "" {
		return nil, nil, dnderr.InvalidArgument("participant ID is required")
	}

	enc, err := s.encounterRepo.Get(ctx, encounterID)
	if err != nil {
		return nil, nil, err
	}
	participant, ok := enc.FindParticipant(participantID)
	if !ok {
		return nil, nil, dnderr.NotFoundf("participant '%s' not found in encounter '%s'", participantID, encounterID).
			WithMeta("participant_id", participantID)
	}
	return enc, participant, nil
}
