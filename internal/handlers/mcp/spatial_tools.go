package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dmforge/encounter-engine/internal/domain/shared"
	"github.com/dmforge/encounter-engine/internal/spatial"
)

// ObstacleSpec is a point feature that can block sight or grant cover.
type ObstacleSpec struct {
	Position Point    `json:"position"`
	Type     string   `json:"type" jsonschema:"wall, pillar, half_cover, three_quarters_cover, total_cover, difficult_terrain, water, or hazard"`
	Height   *float64 `json:"height,omitempty" jsonschema:"obstacle height in feet; omit for a full-height wall"`
}

// CreatureSpec is a battlefield occupant for sight and cover checks.
type CreatureSpec struct {
	ID       string `json:"id" jsonschema:"creature id or name"`
	Position Point  `json:"position"`
	Size     string `json:"size,omitempty" jsonschema:"creature size, defaults to medium"`
}

func parseObstacles(specs []ObstacleSpec) ([]spatial.Obstacle, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	obstacles := make([]spatial.Obstacle, 0, len(specs))
	for _, spec := range specs {
		kind, err := spatial.ParseObstacleType(spec.Type)
		if err != nil {
			return nil, err
		}
		obstacles = append(obstacles, spatial.Obstacle{
			Position: spec.Position.position(),
			Type:     kind,
			Height:   spec.Height,
		})
	}
	return obstacles, nil
}

func parseCreatures(specs []CreatureSpec) ([]spatial.Creature, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	creatures := make([]spatial.Creature, 0, len(specs))
	for _, spec := range specs {
		size, err := shared.ParseSize(spec.Size)
		if err != nil {
			return nil, err
		}
		creatures = append(creatures, spatial.Creature{
			ID:       spec.ID,
			Position: spec.Position.position(),
			Size:     size,
		})
	}
	return creatures, nil
}

// MeasureDistanceInput measures between two grid positions.
type MeasureDistanceInput struct {
	From             Point  `json:"from"`
	To               Point  `json:"to"`
	Mode             string `json:"mode,omitempty" jsonschema:"grid_5e (diagonals cost 1), euclidean, or grid_alt (every second diagonal costs 2); defaults to grid_5e"`
	IncludeElevation bool   `json:"include_elevation,omitempty" jsonschema:"account for the z difference in grid modes"`
}

// MeasureDistanceTool defines the MCP tool schema for distance measurement.
func MeasureDistanceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "measure_distance",
		Description: "Measures the distance between two positions in feet and grid squares under the chosen movement rule",
	}
}

// MeasureDistanceHandler builds the measure_distance handler.
func MeasureDistanceHandler() mcp.ToolHandlerFor[MeasureDistanceInput, spatial.DistanceResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MeasureDistanceInput) (*mcp.CallToolResult, spatial.DistanceResult, error) {
		mode, err := spatial.ParseDistanceMode(input.Mode)
		if err != nil {
			return nil, spatial.DistanceResult{}, err
		}
		result, err := spatial.Distance(input.From.position(), input.To.position(), mode, input.IncludeElevation)
		if err != nil {
			return nil, spatial.DistanceResult{}, err
		}
		return summary("%g ft (%g squares, %s)", result.Feet, result.Squares, result.Mode), *result, nil
	}
}

// LineOfSightInput traces sight between two positions.
type LineOfSightInput struct {
	From           Point          `json:"from"`
	To             Point          `json:"to"`
	Obstacles      []ObstacleSpec `json:"obstacles,omitempty"`
	Creatures      []CreatureSpec `json:"creatures,omitempty"`
	CreaturesBlock bool           `json:"creatures_block,omitempty" jsonschema:"treat creatures as sight blockers"`
}

// LineOfSightTool defines the MCP tool schema for sight checks.
func LineOfSightTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "check_line_of_sight",
		Description: "Traces a sight line between two positions, reporting blockers; low obstacles are passed over by elevated viewers",
	}
}

// LineOfSightHandler builds the check_line_of_sight handler.
func LineOfSightHandler() mcp.ToolHandlerFor[LineOfSightInput, spatial.LineOfSightResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LineOfSightInput) (*mcp.CallToolResult, spatial.LineOfSightResult, error) {
		obstacles, err := parseObstacles(input.Obstacles)
		if err != nil {
			return nil, spatial.LineOfSightResult{}, err
		}
		creatures, err := parseCreatures(input.Creatures)
		if err != nil {
			return nil, spatial.LineOfSightResult{}, err
		}
		result := spatial.LineOfSight(input.From.position(), input.To.position(), obstacles, creatures, input.CreaturesBlock)
		if result.Clear {
			return summary("Line of sight is clear (%g ft)", result.Distance), *result, nil
		}
		return summary("Line of sight is blocked by %d obstruction(s)", len(result.BlockedBy)), *result, nil
	}
}

// CoverInput classifies cover between an attacker and a target.
type CoverInput struct {
	Attacker              Point          `json:"attacker"`
	Target                Point          `json:"target"`
	Obstacles             []ObstacleSpec `json:"obstacles,omitempty"`
	Creatures             []CreatureSpec `json:"creatures,omitempty"`
	CreaturesProvideCover bool           `json:"creatures_provide_cover,omitempty" jsonschema:"intervening creatures grant cover by size"`
}

// CoverTool defines the MCP tool schema for cover checks.
func CoverTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "check_cover",
		Description: "Classifies the cover a target has against an attacker: none, half (+2 AC), three-quarters (+5 AC), or total",
	}
}

// CoverHandler builds the check_cover handler.
func CoverHandler() mcp.ToolHandlerFor[CoverInput, spatial.CoverResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CoverInput) (*mcp.CallToolResult, spatial.CoverResult, error) {
		obstacles, err := parseObstacles(input.Obstacles)
		if err != nil {
			return nil, spatial.CoverResult{}, err
		}
		creatures, err := parseCreatures(input.Creatures)
		if err != nil {
			return nil, spatial.CoverResult{}, err
		}
		result := spatial.Cover(input.Attacker.position(), input.Target.position(), obstacles, creatures, input.CreaturesProvideCover)
		if !result.CanTarget {
			return summary("Target has total cover and cannot be targeted"), *result, nil
		}
		return summary("Cover: %s (+%d AC)", result.Level, result.ACBonus), *result, nil
	}
}
