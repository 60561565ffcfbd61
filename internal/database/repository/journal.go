package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JournalEntry records the outcome of one remote mutation attempt.
type JournalEntry struct {
	ID        string
	Screen    string
	EntityID  string
	Kind      string // edit, delete, password, create
	Outcome   string // applied, failed, rejected
	Message   string
	CreatedAt time.Time
}

// JournalRepo handles the mutation journal.
type JournalRepo struct {
	db DBTX
}

func NewJournalRepo(db DBTX) *JournalRepo { return &JournalRepo{db: db} }

// Record stores e, filling in the id and timestamp when missing.
func (r *JournalRepo) Record(ctx context.Context, e JournalEntry) (JournalEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO mutation_journal(id, screen, entity_id, kind, outcome, message, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Screen, e.EntityID, e.Kind, e.Outcome, e.Message, e.CreatedAt)
	if err != nil {
		return JournalEntry{}, err
	}
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (r *JournalRepo) Recent(ctx context.Context, limit int) ([]JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, screen, entity_id, kind, outcome, message, created_at
	FROM mutation_journal
	ORDER BY created_at DESC, rowid DESC
	LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.ID, &e.Screen, &e.EntityID, &e.Kind, &e.Outcome, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Prune deletes entries older than before and reports how many went.
func (r *JournalRepo) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mutation_journal WHERE created_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
