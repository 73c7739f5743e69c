// Package dbtest opens throwaway SQLite databases carrying the real schema.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/recipe-sharing-api/internal/config"
	"github.com/iliyamo/recipe-sharing-api/internal/database"
)

// New returns a migrated database in t's temp dir, closed on cleanup.
func New(t testing.TB) *sqlx.DB {
	t.Helper()
	cfg := config.Config{
		DBDriver: "sqlite3",
		DBPath:   filepath.Join(t.TempDir(), "recipes.db"),
	}
	db, err := database.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.MigrateUp(db))
	return db
}
