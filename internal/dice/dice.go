package dice

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	dnderr "github.com/dmforge/encounter-engine/internal/errors"
)

// Expression is a parsed compact dice expression like "4d6kh3+2":
// count, sides, an optional keep-highest/keep-lowest clause, and a flat
// modifier.
type Expression struct {
	Count    int
	Sides    int
	KeepHigh int // keep the N highest dice, 0 = keep all
	KeepLow  int // keep the N lowest dice, 0 = keep all
	Modifier int
}

var exprPattern = regexp.MustCompile(`^(\d+)d(\d+)(?:(kh|kl)(\d+))?([+-]\d+)?$`)

// ParseExpression parses a compact dice expression. The accepted grammar is
// NdS[khX|klX][+M|-M], e.g. "1d20", "2d6+3", "4d6kh3", "2d20kl1-1".
func ParseExpression(expr string) (*Expression, error) {
	trimmed := strings.ToLower(strings.ReplaceAll(expr, " ", ""))
	matches := exprPattern.FindStringSubmatch(trimmed)
	if matches == nil {
		return nil, dnderr.InvalidArgumentf("invalid dice expression: %q", expr)
	}

	count, _ := strconv.Atoi(matches[1])
	sides, _ := strconv.Atoi(matches[2])

	parsed := &Expression{Count: count, Sides: sides}

	if matches[3] != "" {
		keep, _ := strconv.Atoi(matches[4])
		if keep < 1 || keep > count {
			return nil, dnderr.InvalidArgumentf("keep count %d out of range for %d dice", keep, count)
		}
		if matches[3] == "kh" {
			parsed.KeepHigh = keep
		} else {
			parsed.KeepLow = keep
		}
	}

	if matches[5] != "" {
		parsed.Modifier, _ = strconv.Atoi(matches[5])
	}

	if err := validateDice(parsed.Count, parsed.Sides); err != nil {
		return nil, err
	}

	return parsed, nil
}

// Roll evaluates the expression with the given roller.
func (e *Expression) Roll(roller Roller) (*RollResult, error) {
	raw, err := roller.Roll(e.Count, e.Sides, 0)
	if err != nil {
		return nil, err
	}

	kept := raw.Rolls
	if e.KeepHigh > 0 || e.KeepLow > 0 {
		sorted := append([]int(nil), raw.Rolls...)
		sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
		if e.KeepHigh > 0 {
			kept = sorted[:e.KeepHigh]
		} else {
			kept = sorted[len(sorted)-e.KeepLow:]
		}
	}

	total := 0
	for _, die := range kept {
		total += die
	}

	result := &RollResult{
		Total:    total + e.Modifier,
		Rolls:    raw.Rolls,
		Kept:     kept,
		Bonus:    e.Modifier,
		Count:    e.Count,
		Sides:    e.Sides,
		RawTotal: total,
	}

	if e.Sides == 20 && len(kept) == 1 {
		result.IsCrit = kept[0] == 20
		result.IsFumble = kept[0] == 1
	}

	return result, nil
}

// RollExpression parses and rolls a compact dice expression in one call.
func RollExpression(roller Roller, expr string) (*RollResult, error) {
	parsed, err := ParseExpression(expr)
	if err != nil {
		return nil, err
	}
	return parsed.Roll(roller)
}

func validateDice(count, sides int) error {
	if count < 1 {
		return dnderr.InvalidArgumentf("invalid dice count: %d", count)
	}
	if count > 100 {
		return dnderr.InvalidArgumentf("dice count %d exceeds the limit of 100", count)
	}
	if sides < 2 {
		return dnderr.InvalidArgumentf("invalid dice size: d%d", sides)
	}
	return nil
}

// String renders the result for combat logs, e.g. "**14** : [6,5]+3".
func (r *RollResult) String() string {
	compact := strings.ReplaceAll(fmt.Sprintf("%v", r.Kept), " ", ",")
	if r.Bonus != 0 {
		return fmt.Sprintf("**%d** : %s%+d", r.Total, compact, r.Bonus)
	}
	return fmt.Sprintf("**%d** : %s", r.Total, compact)
}
