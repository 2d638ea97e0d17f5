package combat

import "github.com/dmforge/encounter-engine/internal/spatial"

// TerrainGrid is the encounter's battlefield layout
type TerrainGrid struct {
	Width            int              `json:"width"`
	Height           int              `json:"height"`
	Obstacles        []spatial.Cell   `json:"obstacles,omitempty"`
	DifficultTerrain []spatial.Cell   `json:"difficult_terrain,omitempty"`
	Water            []spatial.Cell   `json:"water,omitempty"`
	Hazards          []spatial.Hazard `json:"hazards,omitempty"`
}

// DefaultTerrain is the grid used when an encounter is created without one
func DefaultTerrain() *TerrainGrid {
	return &TerrainGrid{Width: 20, Height: 20}
}
