package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/warehousedash/internal/database"
	"github.com/jask/warehousedash/internal/database/repository"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenAndMigrate(filepath.Join(t.TempDir(), "wh.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestViewPrefs(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewViewPrefRepo(openDB(t))

	got, err := repo.Get(ctx, "inventory")
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, repo.Upsert(ctx, repository.ViewPref{Screen: "inventory", SortKey: "sku"}))
	got, err = repo.Get(ctx, "inventory")
	require.NoError(t, err)
	require.Equal(t, "sku", got.SortKey)
	require.Equal(t, "all", got.Filter)

	require.NoError(t, repo.Upsert(ctx, repository.ViewPref{Screen: "inventory", SortKey: "stock", Filter: "bolt"}))
	require.NoError(t, repo.InsertIfMissing(ctx, repository.ViewPref{Screen: "inventory", SortKey: "name"}))
	got, err = repo.Get(ctx, "inventory")
	require.NoError(t, err)
	require.Equal(t, "stock", got.SortKey)
	require.Equal(t, "bolt", got.Filter)
}

func TestJournal(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewJournalRepo(openDB(t))
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, outcome := range []string{"applied", "failed", "applied"} {
		e, err := repo.Record(ctx, repository.JournalEntry{
			Screen:    "employees",
			EntityID:  "7",
			Kind:      "edit",
			Outcome:   outcome,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		require.NotEmpty(t, e.ID)
	}

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.True(t, recent[0].CreatedAt.After(recent[1].CreatedAt))
	require.Equal(t, "failed", recent[1].Outcome)

	n, err := repo.Prune(ctx, base.Add(90*time.Second))
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	recent, err = repo.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
}
