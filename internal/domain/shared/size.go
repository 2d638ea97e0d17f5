package shared

import (
	"strings"

	dnderr "github.com/dmforge/encounter-engine/internal/errors"
)

// SizeCategory represents creature size
type SizeCategory string

const (
	SizeTiny       SizeCategory = "tiny"
	SizeSmall      SizeCategory = "small"
	SizeMedium     SizeCategory = "medium"
	SizeLarge      SizeCategory = "large"
	SizeHuge       SizeCategory = "huge"
	SizeGargantuan SizeCategory = "gargantuan"
)

// ParseSize normalizes a size string, defaulting empty input to medium
func ParseSize(name string) (SizeCategory, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return SizeMedium, nil
	}
	switch SizeCategory(normalized) {
	case SizeTiny, SizeSmall, SizeMedium, SizeLarge, SizeHuge, SizeGargantuan:
		return SizeCategory(normalized), nil
	}
	return "", dnderr.InvalidArgumentf("unknown size category: %q", name)
}

// Height returns an approximate occupied height in feet, used when creatures
// block line of sight
func (s SizeCategory) Height() float64 {
	switch s {
	case SizeTiny:
		return 2
	case SizeSmall:
		return 4
	case SizeMedium:
		return 6
	case SizeLarge:
		return 10
	case SizeHuge:
		return 15
	case SizeGargantuan:
		return 20
	default:
		return 6
	}
}
