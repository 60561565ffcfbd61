package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/warehousedash/internal/database/repository"
)

// DefaultViewPrefs are the initial sort and filter of each screen.
var DefaultViewPrefs = []repository.ViewPref{
	{Screen: "employees", SortKey: "empId", Filter: "all"},
	{Screen: "inventory", SortKey: "name", Filter: "all"},
	{Screen: "orders", SortKey: "date", Filter: "all"},
}

// SeedDefaults ensures every screen has a stored view preference.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	return WithTx(ctx, db, func(tx *sql.Tx) error {
		prefs := repository.NewViewPrefRepo(tx)
		for _, p := range DefaultViewPrefs {
			if err := prefs.InsertIfMissing(ctx, p); err != nil {
				return fmt.Errorf("seed %s prefs: %w", p.Screen, err)
			}
		}
		return nil
	})
}
