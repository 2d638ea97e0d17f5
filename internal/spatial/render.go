package spatial

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	dnderr "github.com/dmforge/encounter-engine/internal/errors"
)

// LegendDetail controls how much the battlefield legend says per token
type LegendDetail string

const (
	LegendMinimal  LegendDetail = "minimal"
	LegendStandard LegendDetail = "standard"
	LegendDetailed LegendDetail = "detailed"
)

// ParseLegendDetail validates a legend detail level, defaulting to standard
func ParseLegendDetail(name string) (LegendDetail, error) {
	normalized := LegendDetail(strings.ToLower(strings.TrimSpace(name)))
	switch normalized {
	case "":
		return LegendStandard, nil
	case LegendMinimal, LegendStandard, LegendDetailed:
		return normalized, nil
	}
	return "", dnderr.InvalidArgumentf("unknown legend detail: %q", name)
}

// Token is one renderable battlefield occupant
type Token struct {
	ID         string
	Name       string
	Ally       bool
	Position   Position
	HP         int
	MaxHP      int
	Conditions []string
}

// Cell addresses one terrain square
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Hazard is a named terrain danger
type Hazard struct {
	Cell Cell   `json:"cell"`
	Name string `json:"name"`
}

// Viewport crops the rendered region
type Viewport struct {
	MinX   int `json:"min_x"`
	MinY   int `json:"min_y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RenderInput describes a battlefield to project to text
type RenderInput struct {
	Width  int
	Height int

	Tokens           []Token
	Obstacles        []Cell
	DifficultTerrain []Cell
	Water            []Cell
	Hazards          []Hazard

	Viewport        *Viewport
	FocusOn         string // token id or name to center the viewport on
	ShowLegend      bool
	ShowCoordinates bool
	ShowElevation   bool
	LegendDetail    LegendDetail
}

// focusRadius is the half-width of the viewport created around a focus token
const focusRadius = 5

const (
	glyphEmpty     = '.'
	glyphObstacle  = '#'
	glyphDifficult = '^'
	glyphWater     = '~'
	glyphHazard    = '!'
)

// assignSymbols gives each token a unique map symbol: uppercase initials for
// allies, lowercase for enemies, digits when initials collide
func assignSymbols(tokens []Token) map[string]rune {
	symbols := make(map[string]rune, len(tokens))
	used := make(map[rune]bool)
	nextDigit := '1'

	for _, token := range tokens {
		initial := 'x'
		for _, r := range token.Name {
			initial = unicode.ToLower(r)
			break
		}
		if token.Ally {
			initial = unicode.ToUpper(initial)
		}

		symbol := initial
		if used[symbol] {
			symbol = nextDigit
			for used[symbol] && symbol < '9' {
				symbol++
			}
			nextDigit = symbol + 1
		}
		used[symbol] = true
		symbols[token.ID] = symbol
	}
	return symbols
}

// resolveViewport picks the rendered window: an explicit viewport wins, then
// a window centered on the focus token, then the whole grid
func resolveViewport(in *RenderInput) (minX, minY, maxX, maxY int, err error) {
	if in.Viewport != nil {
		vp := in.Viewport
		if vp.Width < 1 || vp.Height < 1 {
			return 0, 0, 0, 0, dnderr.InvalidArgument("viewport width and height must be positive")
		}
		return vp.MinX, vp.MinY, vp.MinX + vp.Width - 1, vp.MinY + vp.Height - 1, nil
	}

	if in.FocusOn != "" {
		for _, token := range in.Tokens {
			if token.ID == in.FocusOn || strings.EqualFold(token.Name, in.FocusOn) {
				cx := int(token.Position.X)
				cy := int(token.Position.Y)
				return cx - focusRadius, cy - focusRadius, cx + focusRadius, cy + focusRadius, nil
			}
		}
		return 0, 0, 0, 0, dnderr.NotFoundf("focus target %q is not on the battlefield", in.FocusOn)
	}

	return 0, 0, in.Width - 1, in.Height - 1, nil
}

// RenderBattlefield projects the grid to text: one symbol per occupied cell,
// terrain glyphs, and a per-token legend
func RenderBattlefield(in *RenderInput) (string, error) {
	if in.Width < 1 || in.Height < 1 {
		return "", dnderr.InvalidArgument("battlefield dimensions must be positive")
	}

	minX, minY, maxX, maxY, err := resolveViewport(in)
	if err != nil {
		return "", err
	}

	type cellKey struct{ x, y int }
	terrain := make(map[cellKey]rune)
	for _, c := range in.Water {
		terrain[cellKey{c.X, c.Y}] = glyphWater
	}
	for _, c := range in.DifficultTerrain {
		terrain[cellKey{c.X, c.Y}] = glyphDifficult
	}
	for _, h := range in.Hazards {
		terrain[cellKey{h.Cell.X, h.Cell.Y}] = glyphHazard
	}
	for _, c := range in.Obstacles {
		terrain[cellKey{c.X, c.Y}] = glyphObstacle
	}

	symbols := assignSymbols(in.Tokens)
	occupied := make(map[cellKey]rune)
	for _, token := range in.Tokens {
		occupied[cellKey{int(token.Position.X), int(token.Position.Y)}] = symbols[token.ID]
	}

	var sb strings.Builder

	if in.ShowCoordinates {
		sb.WriteString("    ")
		for x := minX; x <= maxX; x++ {
			sb.WriteString(fmt.Sprintf("%2d", x%100))
		}
		sb.WriteByte('\n')
	}

	for y := minY; y <= maxY; y++ {
		if in.ShowCoordinates {
			sb.WriteString(fmt.Sprintf("%3d ", y))
		}
		for x := minX; x <= maxX; x++ {
			glyph := glyphEmpty
			if x < 0 || y < 0 || x >= in.Width || y >= in.Height {
				glyph = ' '
			} else if g, ok := terrain[cellKey{x, y}]; ok {
				glyph = g
			}
			if s, ok := occupied[cellKey{x, y}]; ok {
				glyph = s
			}
			sb.WriteByte(' ')
			sb.WriteRune(glyph)
		}
		sb.WriteByte('\n')
	}

	if in.ShowLegend {
		sb.WriteString(renderLegend(in, symbols))
	}

	return sb.String(), nil
}

// anyElevated reports whether any token is off ground level
func anyElevated(tokens []Token) bool {
	for _, token := range tokens {
		if token.Position.Z != 0 {
			return true
		}
	}
	return false
}

func renderLegend(in *RenderInput, symbols map[string]rune) string {
	detail := in.LegendDetail
	if detail == "" {
		detail = LegendStandard
	}

	tokens := append([]Token(nil), in.Tokens...)
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].Name < tokens[j].Name })

	showElevation := in.ShowElevation || anyElevated(in.Tokens)

	var sb strings.Builder
	sb.WriteString("\nLegend:\n")
	for _, token := range tokens {
		sb.WriteString(fmt.Sprintf("  %c  %s", symbols[token.ID], token.Name))

		if detail != LegendMinimal {
			sb.WriteString(fmt.Sprintf("  %s  HP %d/%d", token.Position, token.HP, token.MaxHP))
			if showElevation && token.Position.Z != 0 {
				sb.WriteString(fmt.Sprintf("  elevation %g ft", token.Position.Z*FeetPerSquare))
			}
		}

		if detail == LegendDetailed {
			if token.MaxHP > 0 && token.HP*2 <= token.MaxHP {
				sb.WriteString("  [bloodied]")
			}
			if len(token.Conditions) > 0 {
				sb.WriteString("  (" + strings.Join(token.Conditions, ", ") + ")")
			}
		} else if detail == LegendStandard && len(token.Conditions) > 0 {
			sb.WriteString("  (" + strings.Join(token.Conditions, ", ") + ")")
		}

		sb.WriteByte('\n')
	}

	if len(in.Hazards) > 0 && detail != LegendMinimal {
		for _, h := range in.Hazards {
			sb.WriteString(fmt.Sprintf("  %c  %s at (%d, %d)\n", glyphHazard, h.Name, h.Cell.X, h.Cell.Y))
		}
	}

	return sb.String()
}
