package characters

import (
	"context"

	"github.com/dmforge/encounter-engine/internal/domain/character"
)

// Repository defines the interface for character persistence
type Repository interface {
	// Create stores a new character
	Create(ctx context.Context, char *character.Character) error

	// Get retrieves a character by ID
	Get(ctx context.Context, id string) (*character.Character, error)

	// GetByName retrieves a character by display name, case-insensitive.
	// When several characters share a name the first match in a
	// deterministic order is returned; multiple matches are not an error.
	GetByName(ctx context.Context, name string) (*character.Character, error)

	// Update updates an existing character
	Update(ctx context.Context, char *character.Character) error

	// Delete removes a character
	Delete(ctx context.Context, id string) error
}
