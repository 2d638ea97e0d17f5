// Package mcp exposes the rules engine as Model Context Protocol tools so an
// automated game master can drive combat over a single stdio or HTTP session.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dmforge/encounter-engine/internal/services"
)

const (
	defaultServerName    = "encounter-engine"
	defaultServerVersion = "0.1.0"
)

// ServerConfig holds configuration for the MCP server
type ServerConfig struct {
	ServiceProvider *services.Provider
	Name            string
	Version         string
}

// NewServer builds an MCP server with every combat tool registered against
// the given service provider.
func NewServer(cfg *ServerConfig) *mcp.Server {
	if cfg.ServiceProvider == nil {
		panic("service provider is required")
	}

	name := cfg.Name
	if name == "" {
		name = defaultServerName
	}
	version := cfg.Version
	if version == "" {
		version = defaultServerVersion
	}

	provider := cfg.ServiceProvider
	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	mcp.AddTool(server, CreateEncounterTool(), CreateEncounterHandler(provider.EncounterService))
	mcp.AddTool(server, GetEncounterTool(), GetEncounterHandler(provider.EncounterService))
	mcp.AddTool(server, EndEncounterTool(), EndEncounterHandler(provider.EncounterService))
	mcp.AddTool(server, AdvanceTurnTool(), AdvanceTurnHandler(provider.EncounterService))
	mcp.AddTool(server, ApplyDamageTool(), ApplyDamageHandler(provider.EncounterService))
	mcp.AddTool(server, ApplyHealingTool(), ApplyHealingHandler(provider.EncounterService))
	mcp.AddTool(server, RenderBattlefieldTool(), RenderBattlefieldHandler(provider.EncounterService))

	mcp.AddTool(server, ManageConditionTool(), ManageConditionHandler(provider.ConditionService))

	mcp.AddTool(server, RollCheckTool(), RollCheckHandler(provider.CheckService))
	mcp.AddTool(server, RollDiceTool(), RollDiceHandler(provider.CheckService))
	mcp.AddTool(server, RollDeathSaveTool(), RollDeathSaveHandler(provider.DeathSaveService))

	mcp.AddTool(server, ManageConcentrationTool(), ManageConcentrationHandler(provider.ConcentrationService))
	mcp.AddTool(server, ManageSpellSlotsTool(), ManageSpellSlotsHandler(provider.SpellSlotService))
	mcp.AddTool(server, ManageAuraTool(), ManageAuraHandler(provider.AuraService))

	mcp.AddTool(server, MeasureDistanceTool(), MeasureDistanceHandler())
	mcp.AddTool(server, LineOfSightTool(), LineOfSightHandler())
	mcp.AddTool(server, CoverTool(), CoverHandler())

	return server
}
