package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/warehousedash/internal/database/repository"
)

func TestOpenAndMigrateIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wh.db")
	db, err := OpenAndMigrate(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenAndMigrate(path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('view_prefs','mutation_journal')`).Scan(&n))
	require.Equal(t, 2, n)
}

func TestSeedDefaultsKeepsUserChoices(t *testing.T) {
	ctx := context.Background()
	db, err := OpenAndMigrate(filepath.Join(t.TempDir(), "wh.db"))
	require.NoError(t, err)
	defer db.Close()

	prefs := repository.NewViewPrefRepo(db)
	require.NoError(t, prefs.Upsert(ctx, repository.ViewPref{Screen: "employees", SortKey: "email", Filter: "admin"}))
	require.NoError(t, SeedDefaults(ctx, db))
	require.NoError(t, SeedDefaults(ctx, db))

	all, err := prefs.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(DefaultViewPrefs))

	got, err := prefs.Get(ctx, "employees")
	require.NoError(t, err)
	require.Equal(t, "email", got.SortKey)
	require.Equal(t, "admin", got.Filter)
}
