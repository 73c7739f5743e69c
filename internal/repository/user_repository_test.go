package repository

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/recipe-sharing-api/internal/model"
)

func TestUserRepo_CreateNormalizes(t *testing.T) {
	db, ctx := setup(t)
	fixed := time.Date(2025, 6, 26, 23, 32, 47, 0, time.UTC)
	repo := NewUserRepo(db).WithClock(func() time.Time { return fixed })

	u := model.User{Username: "  Chef1 ", Email: "Chef1@Example.COM", PasswordHash: "h", FullName: "Chef One"}
	require.NoError(t, repo.Create(ctx, &u))
	assert.NotZero(t, u.ID)
	assert.Equal(t, "chef1", u.Username)
	assert.Equal(t, "chef1@example.com", u.Email)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "chef1", got.Username)
	assert.True(t, got.IsActive)
	assert.True(t, fixed.Equal(got.CreatedAt))

	byName, err := repo.GetByLogin(ctx, "CHEF1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)
	byEmail, err := repo.GetByLogin(ctx, "chef1@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = repo.GetByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_DuplicatesAreCaseInsensitive(t *testing.T) {
	db, ctx := setup(t)
	repo := NewUserRepo(db)
	require.NoError(t, repo.Create(ctx, &model.User{Username: "chef1", Email: "a@example.com", PasswordHash: "h"}))

	err := repo.Create(ctx, &model.User{Username: "CHEF1", Email: "b@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.ErrorIs(t, err, ErrConflict)

	err = repo.Create(ctx, &model.User{Username: "other", Email: "A@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserRepo_ConcurrentRegistrationOneWins(t *testing.T) {
	db, ctx := setup(t)
	repo := NewUserRepo(db)

	const n = 8
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = repo.Create(ctx, &model.User{
				Username:     "Chef1",
				Email:        fmt.Sprintf("chef1+%d@example.com", i),
				PasswordHash: "h",
			})
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM users"))
}

func TestUserRepo_PasswordAndActive(t *testing.T) {
	db, ctx := setup(t)
	repo := NewUserRepo(db)
	id := newUser(t, db, "chef1")

	require.NoError(t, repo.UpdatePasswordHash(ctx, id.ID, "new-hash"))
	u, err := repo.GetByID(ctx, id.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", u.PasswordHash)
	assert.ErrorIs(t, repo.UpdatePasswordHash(ctx, 999, "x"), ErrNotFound)

	require.NoError(t, repo.SetActive(ctx, "CHEF1", false))
	u, err = repo.GetByID(ctx, id.ID)
	require.NoError(t, err)
	assert.False(t, u.IsActive)
	assert.ErrorIs(t, repo.SetActive(ctx, "ghost", false), ErrNotFound)
}

func TestUserRepo_CountActiveRecipes(t *testing.T) {
	db, ctx := setup(t)
	chef := newUser(t, db, "chef1")
	recipes := NewRecipeRepo(db)

	a, err := recipes.Create(ctx, chef.ID, soup())
	require.NoError(t, err)
	_, err = recipes.Create(ctx, chef.ID, soup())
	require.NoError(t, err)
	require.NoError(t, recipes.Deactivate(ctx, a.ID, chef))

	n, err := NewUserRepo(db).CountActiveRecipes(ctx, chef.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
