package encounters

import (
	"context"
	"sync"

	"github.com/dmforge/encounter-engine/internal/domain/combat"
	dnderr "github.com/dmforge/encounter-engine/internal/errors"
)

// inMemoryRepository stores encounters in a process-local map. Encounter
// pointers are shared with callers; the single-threaded operation model means
// nobody observes a half-applied mutation.
type inMemoryRepository struct {
	mu         sync.RWMutex
	encounters map[string]*combat.Encounter
}

// NewInMemoryRepository creates a new in-memory encounter repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		encounters: make(map[string]*combat.Encounter),
	}
}

// Create stores a new encounter
func (r *inMemoryRepository) Create(ctx context.Context, encounter *combat.Encounter) error {
	if encounter == nil {
		return dnderr.InvalidArgument("encounter cannot be nil")
	}
	if encounter.ID == "" {
		return dnderr.InvalidArgument("encounter ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.encounters[encounter.ID]; exists {
		return dnderr.AlreadyExistsf("encounter with ID '%s' already exists", encounter.ID).
			WithMeta("encounter_id", encounter.ID)
	}

	r.encounters[encounter.ID] = encounter
	return nil
}

// Get retrieves an encounter by ID
func (r *inMemoryRepository) Get(ctx context.Context, id string) (*combat.Encounter, error) {
	if id == "" {
		return nil, dnderr.InvalidArgument("encounter ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	encounter, exists := r.encounters[id]
	if !exists {
		return nil, dnderr.NotFoundf("encounter with ID '%s' not found", id).
			WithMeta("encounter_id", id)
	}

	return encounter, nil
}

// Update replaces a stored encounter
func (r *inMemoryRepository) Update(ctx context.Context, encounter *combat.Encounter) error {
	if encounter == nil {
		return dnderr.InvalidArgument("encounter cannot be nil")
	}
	if encounter.ID == "" {
		return dnderr.InvalidArgument("encounter ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.encounters[encounter.ID]; !exists {
		return dnderr.NotFoundf("encounter with ID '%s' not found", encounter.ID).
			WithMeta("encounter_id", encounter.ID)
	}

	r.encounters[encounter.ID] = encounter
	return nil
}

// Delete removes an encounter
func (r *inMemoryRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dnderr.InvalidArgument("encounter ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.encounters[id]; !exists {
		return dnderr.NotFoundf("encounter with ID '%s' not found", id).
			WithMeta("encounter_id", id)
	}

	delete(r.encounters, id)
	return nil
}
