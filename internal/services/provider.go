package services

import (
	"github.com/dmforge/encounter-engine/internal/dice"
	"github.com/dmforge/encounter-engine/internal/repositories/characters"
	"github.com/dmforge/encounter-engine/internal/repositories/encounters"
	auraService "github.com/dmforge/encounter-engine/internal/services/aura"
	checkService "github.com/dmforge/encounter-engine/internal/services/check"
	concentrationService "github.com/dmforge/encounter-engine/internal/services/concentration"
	conditionService "github.com/dmforge/encounter-engine/internal/services/condition"
	deathsaveService "github.com/dmforge/encounter-engine/internal/services/deathsave"
	encounterService "github.com/dmforge/encounter-engine/internal/services/encounter"
	spellslotsService "github.com/dmforge/encounter-engine/internal/services/spellslots"
)

// Provider holds all service instances
type Provider struct {
	EncounterService     encounterService.Service
	ConditionService     conditionService.Service
	CheckService         checkService.Service
	DeathSaveService     deathsaveService.Service
	ConcentrationService concentrationService.Service
	SpellSlotService     spellslotsService.Service
	AuraService          auraService.Service
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	CharacterRepository characters.Repository
	EncounterRepository encounters.Repository
	Roller              dice.Roller
}

// NewProvider creates a new service provider with all services initialized
func NewProvider(cfg *ProviderConfig) *Provider {
	// Use in-memory repositories if none provided
	charRepo := cfg.CharacterRepository
	if charRepo == nil {
		charRepo = characters.NewInMemoryRepository()
	}

	encRepo := cfg.EncounterRepository
	if encRepo == nil {
		encRepo = encounters.NewInMemoryRepository()
	}

	roller := cfg.Roller
	if roller == nil {
		roller = dice.NewRandomRoller()
	}

	return &Provider{
		EncounterService: encounterService.NewService(&encounterService.ServiceConfig{
			EncounterRepo: encRepo,
			CharacterRepo: charRepo,
			Roller:        roller,
		}),
		ConditionService: conditionService.NewService(&conditionService.ServiceConfig{
			EncounterRepo: encRepo,
		}),
		CheckService: checkService.NewService(&checkService.ServiceConfig{
			CharacterRepo: charRepo,
			Roller:        roller,
		}),
		DeathSaveService: deathsaveService.NewService(&deathsaveService.ServiceConfig{
			EncounterRepo: encRepo,
			Roller:        roller,
		}),
		ConcentrationService: concentrationService.NewService(&concentrationService.ServiceConfig{
			Roller: roller,
		}),
		SpellSlotService: spellslotsService.NewService(&spellslotsService.ServiceConfig{
			CharacterRepo: charRepo,
		}),
		AuraService: auraService.NewService(&auraService.ServiceConfig{
			Roller: roller,
		}),
	}
}
