// uuid simple generator that allows mocking
package uuid

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator is an interface for generating UUIDs
type Generator interface {
	New() string
}

// GoogleUUIDGenerator implements the Generator interface using Google's UUID package
type GoogleUUIDGenerator struct{}

// New generates a new UUID string
func (g *GoogleUUIDGenerator) New() string {
	return uuid.New().String()
}

// NewGoogleUUIDGenerator creates a new GoogleUUIDGenerator
func NewGoogleUUIDGenerator() *GoogleUUIDGenerator {
	return &GoogleUUIDGenerator{}
}

// PrefixedGenerator generates sequential ids with a fixed prefix, for tests
// where stable ids matter.
type PrefixedGenerator struct {
	Prefix string
	next   int
}

// New returns the next id in the sequence.
func (g *PrefixedGenerator) New() string {
	g.next++
	return fmt.Sprintf("%s-%d", g.Prefix, g.next)
}
