package encounters

import (
	"context"

	"github.com/dmforge/encounter-engine/internal/domain/combat"
)

// Repository defines the interface for encounter storage. Encounters are
// process-lifetime state; there is no durable backend.
type Repository interface {
	// Create stores a new encounter
	Create(ctx context.Context, encounter *combat.Encounter) error

	// Get retrieves an encounter by ID
	Get(ctx context.Context, id string) (*combat.Encounter, error)

	// Update replaces a stored encounter
	Update(ctx context.Context, encounter *combat.Encounter) error

	// Delete removes an encounter
	Delete(ctx context.Context, id string) error
}
