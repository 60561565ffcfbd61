package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ViewPref is the remembered sort key and filter of one screen.
type ViewPref struct {
	Screen    string
	SortKey   string
	Filter    string
	UpdatedAt time.Time
}

// ViewPrefRepo handles view preferences.
type ViewPrefRepo struct {
	db DBTX
}

func NewViewPrefRepo(db DBTX) *ViewPrefRepo { return &ViewPrefRepo{db: db} }

func (r *ViewPrefRepo) Upsert(ctx context.Context, p ViewPref) error {
	if p.Filter == "" {
		p.Filter = "all"
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO view_prefs(screen, sort_key, filter, updated_at) VALUES (?, ?, ?, ?)
	ON CONFLICT(screen) DO UPDATE SET sort_key=excluded.sort_key, filter=excluded.filter, updated_at=excluded.updated_at;
	`, p.Screen, p.SortKey, p.Filter, p.UpdatedAt)
	return err
}

// InsertIfMissing stores p unless the screen already has a preference.
func (r *ViewPrefRepo) InsertIfMissing(ctx context.Context, p ViewPref) error {
	if p.Filter == "" {
		p.Filter = "all"
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO view_prefs(screen, sort_key, filter, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(screen) DO NOTHING;
	`, p.Screen, p.SortKey, p.Filter)
	return err
}

// Get returns nil when the screen has no stored preference.
func (r *ViewPrefRepo) Get(ctx context.Context, screen string) (*ViewPref, error) {
	row := r.db.QueryRowContext(ctx, `SELECT screen, sort_key, filter, updated_at FROM view_prefs WHERE screen = ?`, screen)
	var p ViewPref
	if err := row.Scan(&p.Screen, &p.SortKey, &p.Filter, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ViewPrefRepo) List(ctx context.Context) ([]ViewPref, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT screen, sort_key, filter, updated_at FROM view_prefs ORDER BY screen`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ViewPref
	for rows.Next() {
		var p ViewPref
		if err := rows.Scan(&p.Screen, &p.SortKey, &p.Filter, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
