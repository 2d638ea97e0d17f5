package characters

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmforge/encounter-engine/internal/domain/character"
	dnderr "github.com/dmforge/encounter-engine/internal/errors"
)

func newTestCharacter(t *testing.T, id, name string) *character.Character {
	t.Helper()

	ref := character.ClassRef{Known: character.ClassWizard}
	prog, err := ref.Resolve()
	require.NoError(t, err)

	char := &character.Character{
		ID:          id,
		Name:        name,
		Level:       5,
		Class:       ref,
		Progression: prog,
		Speed:       30,
		AC:          12,
		MaxHP:       28,
		CurrentHP:   28,
	}
	require.NoError(t, char.InitializeSlots())
	return char
}

// both implementations must behave identically
func runRepositorySuite(t *testing.T, newRepo func(t *testing.T) Repository) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		repo := newRepo(t)
		char := newTestCharacter(t, "char-1", "Aldric")
		require.NoError(t, repo.Create(ctx, char))

		got, err := repo.Get(ctx, "char-1")
		require.NoError(t, err)
		assert.Equal(t, "Aldric", got.Name)
		assert.Equal(t, 5, got.Level)
		assert.Equal(t, 4, got.SpellSlots[1].Max)
	})

	t.Run("duplicate create rejected", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, newTestCharacter(t, "char-1", "Aldric")))
		err := repo.Create(ctx, newTestCharacter(t, "char-1", "Impostor"))
		require.Error(t, err)
		assert.Equal(t, dnderr.CodeAlreadyExists, dnderr.GetCode(err))
	})

	t.Run("get unknown id", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Get(ctx, "ghost")
		require.Error(t, err)
		assert.True(t, dnderr.IsNotFound(err))
	})

	t.Run("get by name is case-insensitive", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, newTestCharacter(t, "char-1", "Aldric")))

		got, err := repo.GetByName(ctx, "aldric")
		require.NoError(t, err)
		assert.Equal(t, "char-1", got.ID)
	})

	t.Run("get by name resolves duplicates deterministically", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, newTestCharacter(t, "char-1", "Goblin")))
		require.NoError(t, repo.Create(ctx, newTestCharacter(t, "char-2", "Goblin")))

		first, err := repo.GetByName(ctx, "Goblin")
		require.NoError(t, err)
		second, err := repo.GetByName(ctx, "Goblin")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("get by name miss", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetByName(ctx, "Nobody")
		require.Error(t, err)
		assert.True(t, dnderr.IsNotFound(err))
	})

	t.Run("update round-trips slot state", func(t *testing.T) {
		repo := newRepo(t)
		char := newTestCharacter(t, "char-1", "Aldric")
		require.NoError(t, repo.Create(ctx, char))

		require.NoError(t, char.SpellSlots.Expend(1, 2))
		require.NoError(t, repo.Update(ctx, char))

		got, err := repo.Get(ctx, "char-1")
		require.NoError(t, err)
		assert.Equal(t, 2, got.SpellSlots[1].Current)
	})

	t.Run("update unknown id", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.Update(ctx, newTestCharacter(t, "ghost", "Ghost"))
		require.Error(t, err)
		assert.True(t, dnderr.IsNotFound(err))
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, newTestCharacter(t, "char-1", "Aldric")))
		require.NoError(t, repo.Delete(ctx, "char-1"))

		_, err := repo.Get(ctx, "char-1")
		assert.True(t, dnderr.IsNotFound(err))

		_, err = repo.GetByName(ctx, "Aldric")
		assert.True(t, dnderr.IsNotFound(err))
	})

	t.Run("stored record is isolated from the caller's copy", func(t *testing.T) {
		repo := newRepo(t)
		char := newTestCharacter(t, "char-1", "Aldric")
		require.NoError(t, repo.Create(ctx, char))

		char.Name = "Mutated"

		got, err := repo.Get(ctx, "char-1")
		require.NoError(t, err)
		assert.Equal(t, "Aldric", got.Name)
	})
}

func TestInMemoryRepository(t *testing.T) {
	runRepositorySuite(t, func(t *testing.T) Repository {
		return NewInMemoryRepository()
	})
}

func TestRedisRepository(t *testing.T) {
	runRepositorySuite(t, func(t *testing.T) Repository {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return NewRedisRepository(&RedisRepoConfig{Client: client})
	})
}
