package spatial

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmforge/encounter-engine/internal/domain/shared"
)

func TestDistance_ModeComparison(t *testing.T) {
	// Same pair of points measured under all three movement models
	from := Position{X: 0, Y: 0}
	to := Position{X: 5, Y: 3}

	t.Run("grid_5e uses the longest axis", func(t *testing.T) {
		result, err := Distance(from, to, ModeGrid5E, false)
		require.NoError(t, err)
		assert.Equal(t, 5.0, result.Squares)
		assert.InDelta(t, 25.0, result.Feet, 0.001)
	})

	t.Run("euclidean is the straight line", func(t *testing.T) {
		result, err := Distance(from, to, ModeEuclidean, false)
		require.NoError(t, err)
		assert.InDelta(t, math.Sqrt(34)*5, result.Feet, 0.001)
	})

	t.Run("grid_alt charges every second diagonal double", func(t *testing.T) {
		result, err := Distance(from, to, ModeGridAlt, false)
		require.NoError(t, err)
		// 3 diagonals cost 1+2+1, plus 2 straight squares
		assert.Equal(t, 6.0, result.Squares)
		assert.InDelta(t, 30.0, result.Feet, 0.001)
	})
}

func TestDistance_Elevation(t *testing.T) {
	from := Position{X: 0, Y: 0, Z: 0}
	to := Position{X: 3, Y: 0, Z: 4}

	t.Run("grid ignores z unless asked", func(t *testing.T) {
		flat, err := Distance(from, to, ModeGrid5E, false)
		require.NoError(t, err)
		assert.Equal(t, 3.0, flat.Squares)

		withZ, err := Distance(from, to, ModeGrid5E, true)
		require.NoError(t, err)
		assert.Equal(t, 4.0, withZ.Squares)
	})

	t.Run("euclidean always includes z", func(t *testing.T) {
		result, err := Distance(from, to, ModeEuclidean, false)
		require.NoError(t, err)
		assert.InDelta(t, 25.0, result.Feet, 0.001) // 3-4-5 triangle
	})
}

func TestDistance_UnknownMode(t *testing.T) {
	_, err := Distance(Position{}, Position{X: 1}, DistanceMode("manhattan"), false)
	require.Error(t, err)
}

func TestParseDistanceMode(t *testing.T) {
	mode, err := ParseDistanceMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeGrid5E, mode)

	_, err = ParseDistanceMode("hexes")
	require.Error(t, err)
}

func TestLineOfSight(t *testing.T) {
	from := Position{X: 0, Y: 5}
	to := Position{X: 10, Y: 5}

	t.Run("clear path", func(t *testing.T) {
		result := LineOfSight(from, to, nil, nil, false)
		assert.True(t, result.Clear)
		assert.Empty(t, result.BlockedBy)
	})

	t.Run("wall on the line blocks", func(t *testing.T) {
		wall := Obstacle{Position: Position{X: 5, Y: 5}, Type: ObstacleWall}
		result := LineOfSight(from, to, []Obstacle{wall}, nil, false)
		assert.False(t, result.Clear)
		require.Len(t, result.BlockedBy, 1)
		assert.Equal(t, "obstacle", result.BlockedBy[0].Kind)
		assert.Equal(t, ObstacleWall, result.BlockedBy[0].Obstacle)
	})

	t.Run("half cover does not block sight", func(t *testing.T) {
		crate := Obstacle{Position: Position{X: 5, Y: 5}, Type: ObstacleHalfCover}
		result := LineOfSight(from, to, []Obstacle{crate}, nil, false)
		assert.True(t, result.Clear)
	})

	t.Run("obstacle off the line is ignored", func(t *testing.T) {
		wall := Obstacle{Position: Position{X: 5, Y: 8}, Type: ObstacleWall}
		result := LineOfSight(from, to, []Obstacle{wall}, nil, false)
		assert.True(t, result.Clear)
	})

	t.Run("endpoints never block themselves", func(t *testing.T) {
		atFrom := Obstacle{Position: from, Type: ObstacleWall}
		result := LineOfSight(from, to, []Obstacle{atFrom}, nil, false)
		assert.True(t, result.Clear)
	})

	t.Run("sight passes over a low wall", func(t *testing.T) {
		height := 5.0 // one square tall
		lowWall := Obstacle{Position: Position{X: 5, Y: 5}, Type: ObstacleWall, Height: &height}
		elevated := Position{X: 0, Y: 5, Z: 4}

		result := LineOfSight(elevated, Position{X: 10, Y: 5, Z: 4}, []Obstacle{lowWall}, nil, false)
		assert.True(t, result.Clear)

		ground := LineOfSight(from, to, []Obstacle{lowWall}, nil, false)
		assert.False(t, ground.Clear)
	})

	t.Run("creatures block only when asked", func(t *testing.T) {
		ogre := Creature{ID: "ogre", Position: Position{X: 5, Y: 5}, Size: shared.SizeLarge}

		off := LineOfSight(from, to, nil, []Creature{ogre}, false)
		assert.True(t, off.Clear)

		on := LineOfSight(from, to, nil, []Creature{ogre}, true)
		assert.False(t, on.Clear)
		require.Len(t, on.BlockedBy, 1)
		assert.Equal(t, "ogre", on.BlockedBy[0].CreatureID)
	})
}

func TestCover(t *testing.T) {
	attacker := Position{X: 0, Y: 5}
	target := Position{X: 10, Y: 5}

	t.Run("no intervening terrain means no cover", func(t *testing.T) {
		result := Cover(attacker, target, nil, nil, false)
		assert.Equal(t, CoverNone, result.Level)
		assert.Equal(t, 0, result.ACBonus)
		assert.True(t, result.CanTarget)
	})

	t.Run("half cover grants plus two to AC and Dex saves", func(t *testing.T) {
		crate := Obstacle{Position: Position{X: 5, Y: 5}, Type: ObstacleHalfCover}
		result := Cover(attacker, target, []Obstacle{crate}, nil, false)
		assert.Equal(t, CoverHalf, result.Level)
		assert.Equal(t, 2, result.ACBonus)
		assert.Equal(t, 2, result.DexSaveBonus)
		assert.True(t, result.CanTarget)
	})

	t.Run("highest cover level wins", func(t *testing.T) {
		obstacles := []Obstacle{
			{Position: Position{X: 3, Y: 5}, Type: ObstacleHalfCover},
			{Position: Position{X: 7, Y: 5}, Type: ObstacleThreeQuartersCover},
		}
		result := Cover(attacker, target, obstacles, nil, false)
		assert.Equal(t, CoverThreeQuarters, result.Level)
		assert.Equal(t, 5, result.ACBonus)
	})

	t.Run("wall gives total cover and forbids targeting", func(t *testing.T) {
		wall := Obstacle{Position: Position{X: 5, Y: 5}, Type: ObstacleWall}
		result := Cover(attacker, target, []Obstacle{wall}, nil, false)
		assert.Equal(t, CoverTotal, result.Level)
		assert.False(t, result.CanTarget)
	})

	t.Run("cover source off the firing line is ignored", func(t *testing.T) {
		crate := Obstacle{Position: Position{X: 5, Y: 9}, Type: ObstacleHalfCover}
		result := Cover(attacker, target, []Obstacle{crate}, nil, false)
		assert.Equal(t, CoverNone, result.Level)
	})

	t.Run("intervening creatures grant cover by size when enabled", func(t *testing.T) {
		ogre := Creature{ID: "ogre", Position: Position{X: 5, Y: 5}, Size: shared.SizeLarge}

		off := Cover(attacker, target, nil, []Creature{ogre}, false)
		assert.Equal(t, CoverNone, off.Level)

		on := Cover(attacker, target, nil, []Creature{ogre}, true)
		assert.Equal(t, CoverThreeQuarters, on.Level)
	})
}

func TestRenderBattlefield(t *testing.T) {
	tokens := []Token{
		{ID: "pc-1", Name: "Aldric", Ally: true, Position: Position{X: 1, Y: 1}, HP: 20, MaxHP: 30},
		{ID: "npc-1", Name: "Goblin", Ally: false, Position: Position{X: 4, Y: 2}, HP: 7, MaxHP: 7},
	}

	t.Run("allies uppercase, enemies lowercase", func(t *testing.T) {
		out, err := RenderBattlefield(&RenderInput{
			Width: 6, Height: 4,
			Tokens:     tokens,
			ShowLegend: true,
		})
		require.NoError(t, err)
		assert.Contains(t, out, "A")
		assert.Contains(t, out, "g")
		assert.Contains(t, out, "Aldric")
		assert.Contains(t, out, "HP 20/30")
	})

	t.Run("duplicate initials fall back to digits", func(t *testing.T) {
		dupes := []Token{
			{ID: "g1", Name: "Goblin", Position: Position{X: 0, Y: 0}, HP: 7, MaxHP: 7},
			{ID: "g2", Name: "Goblin", Position: Position{X: 1, Y: 0}, HP: 7, MaxHP: 7},
		}
		out, err := RenderBattlefield(&RenderInput{Width: 3, Height: 1, Tokens: dupes, ShowLegend: true})
		require.NoError(t, err)
		assert.Contains(t, out, "g")
		assert.Contains(t, out, "1")
	})

	t.Run("terrain glyphs", func(t *testing.T) {
		out, err := RenderBattlefield(&RenderInput{
			Width: 4, Height: 4,
			Obstacles:        []Cell{{X: 0, Y: 0}},
			Water:            []Cell{{X: 1, Y: 1}},
			DifficultTerrain: []Cell{{X: 2, Y: 2}},
			Hazards:          []Hazard{{Cell: Cell{X: 3, Y: 3}, Name: "spike pit"}},
		})
		require.NoError(t, err)
		assert.Contains(t, out, "#")
		assert.Contains(t, out, "~")
		assert.Contains(t, out, "^")
		assert.Contains(t, out, "!")
	})

	t.Run("elevation appears in legend when any z is nonzero", func(t *testing.T) {
		flying := []Token{
			{ID: "h-1", Name: "Harpy", Position: Position{X: 2, Y: 2, Z: 4}, HP: 12, MaxHP: 12},
		}
		out, err := RenderBattlefield(&RenderInput{Width: 5, Height: 5, Tokens: flying, ShowLegend: true})
		require.NoError(t, err)
		assert.Contains(t, out, "elevation 20 ft")
	})

	t.Run("minimal legend omits positions", func(t *testing.T) {
		out, err := RenderBattlefield(&RenderInput{
			Width: 6, Height: 4,
			Tokens:       tokens,
			ShowLegend:   true,
			LegendDetail: LegendMinimal,
		})
		require.NoError(t, err)
		assert.Contains(t, out, "Aldric")
		assert.NotContains(t, out, "HP 20/30")
	})

	t.Run("detailed legend flags bloodied", func(t *testing.T) {
		hurt := []Token{
			{ID: "pc-1", Name: "Aldric", Ally: true, Position: Position{X: 1, Y: 1}, HP: 10, MaxHP: 30, Conditions: []string{"poisoned"}},
		}
		out, err := RenderBattlefield(&RenderInput{
			Width: 6, Height: 4,
			Tokens:       hurt,
			ShowLegend:   true,
			LegendDetail: LegendDetailed,
		})
		require.NoError(t, err)
		assert.Contains(t, out, "[bloodied]")
		assert.Contains(t, out, "poisoned")
	})

	t.Run("viewport crops to focus", func(t *testing.T) {
		out, err := RenderBattlefield(&RenderInput{
			Width: 40, Height: 40,
			Tokens:  []Token{{ID: "pc-1", Name: "Aldric", Ally: true, Position: Position{X: 20, Y: 20}, HP: 1, MaxHP: 1}},
			FocusOn: "Aldric",
		})
		require.NoError(t, err)
		lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
		assert.Len(t, lines, 2*focusRadius+1)
	})

	t.Run("unknown focus target errors", func(t *testing.T) {
		_, err := RenderBattlefield(&RenderInput{
			Width: 10, Height: 10,
			FocusOn: "nobody",
		})
		require.Error(t, err)
	})

	t.Run("invalid dimensions rejected", func(t *testing.T) {
		_, err := RenderBattlefield(&RenderInput{Width: 0, Height: 5})
		require.Error(t, err)
	})
}
