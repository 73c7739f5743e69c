package repository

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/recipe-sharing-api/internal/auth"
	"github.com/iliyamo/recipe-sharing-api/internal/database/dbtest"
	"github.com/iliyamo/recipe-sharing-api/internal/model"
)

func ptr[T any](v T) *T { return &v }

func newUser(t *testing.T, db *sqlx.DB, name string) auth.Identity {
	t.Helper()
	u := model.User{Username: name, Email: name + "@example.com", PasswordHash: "hash"}
	require.NoError(t, NewUserRepo(db).Create(context.Background(), &u))
	return auth.Identity{ID: u.ID, Username: u.Username, Email: u.Email}
}

func soup() model.RecipeFields {
	return model.RecipeFields{
		Title:        ptr("Soup"),
		Instructions: ptr("Boil"),
		Ingredients:  ptr("Water"),
		CategoryID:   ptr(uint64(1)),
	}
}

func count(t *testing.T, db *sqlx.DB, q string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, q, args...))
	return n
}

func setup(t *testing.T) (*sqlx.DB, context.Context) {
	t.Helper()
	return dbtest.New(t), context.Background()
}
