// Package workflow wraps a single remote edit or delete of a cached entity.
//
// A Workflow is driven from one goroutine. Submissions hand back a call value
// whose Run method may execute elsewhere; its result is applied back on the
// driving goroutine with ApplyEdit or ApplyDelete. Each submission carries a
// token, and results whose token no longer matches are ignored.
package workflow

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jask/warehousedash/internal/api"
	"github.com/jask/warehousedash/internal/session"
)

var (
	ErrNotOpen  = errors.New("workflow: no entity is being edited")
	ErrBusy     = errors.New("workflow: a submission is already in flight")
	ErrNotFound = errors.New("workflow: entity not in cache")
	ErrNotArmed = errors.New("workflow: delete has not been requested")
)

// Stage is the delete confirmation stage.
type Stage int

const (
	StageNone Stage = iota
	StageAwaitingConfirm
)

func (s Stage) String() string {
	if s == StageAwaitingConfirm {
		return "awaiting-confirm"
	}
	return "none"
}

// Outcome reports what applying a result did.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeFailed
	OutcomeStale
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeFailed:
		return "failed"
	default:
		return "stale"
	}
}

// Cache is the slice of the table engine a workflow mutates.
type Cache[K comparable, E any] interface {
	Get(id K) (E, bool)
	Upsert(e E)
	Remove(id K) bool
}

type (
	UpdateFunc[K comparable, E any, D any] func(ctx context.Context, sess session.Session, id K, draft D) (E, error)
	DeleteFunc[K comparable]               func(ctx context.Context, sess session.Session, id K) error
)

type Config[K comparable, E any, D any] struct {
	Cache   Cache[K, E]
	Draft   func(E) D
	Update  UpdateFunc[K, E, D]
	Delete  DeleteFunc[K]
	Session session.Session
	// Describe turns a remote failure into the inline message. Defaults to api.Message.
	Describe func(error) string
	Logger   zerolog.Logger
}

// Workflow is the pending mutation of one entity.
type Workflow[K comparable, E any, D any] struct {
	cfg Config[K, E, D]

	open     bool
	id       K
	draft    D
	stage    Stage
	updating bool
	deleting bool
	err      string
	token    uuid.UUID
}

func New[K comparable, E any, D any](cfg Config[K, E, D]) *Workflow[K, E, D] {
	if cfg.Describe == nil {
		cfg.Describe = api.Message
	}
	return &Workflow[K, E, D]{cfg: cfg}
}

func (w *Workflow[K, E, D]) SetSession(sess session.Session) { w.cfg.Session = sess }

func (w *Workflow[K, E, D]) Open() bool { return w.open }
func (w *Workflow[K, E, D]) ID() K { return w.id }
func (w *Workflow[K, E, D]) Draft() D { return w.draft }
func (w *Workflow[K, E, D]) Stage() Stage { return w.stage }
func (w *Workflow[K, E, D]) Updating() bool { return w.updating }
func (w *Workflow[K, E, D]) Deleting() bool { return w.deleting }
func (w *Workflow[K, E, D]) Busy() bool { return w.updating || w.deleting }
func (w *Workflow[K, E, D]) Err() string { return w.err }
func (w *Workflow[K, E, D]) DismissError() { w.err = "" }
func (w *Workflow[K, E, D]) Armed() bool { return w.stage == StageAwaitingConfirm }

// BeginEdit opens the workflow on id, snapshotting its editable fields.
// Any previous workflow state, including an armed delete, is discarded.
func (w *Workflow[K, E, D]) BeginEdit(id K) error {
	ent, ok := w.cfg.Cache.Get(id)
	if !ok {
		return ErrNotFound
	}
	w.reset()
	w.open = true
	w.id = id
	w.draft = w.cfg.Draft(ent)
	return nil
}

// SetDraft replaces the draft. It is ignored while a submission is in flight.
func (w *Workflow[K, E, D]) SetDraft(d D) {
	if !w.open || w.Busy() {
		return
	}
	w.draft = d
}

// EditCall is a pending update submission.
type EditCall[K comparable, E any, D any] struct {
	Token   uuid.UUID
	ID      K
	Draft   D
	update  UpdateFunc[K, E, D]
	session session.Session
}

type EditResult[K comparable, E any] struct {
	Token  uuid.UUID
	ID     K
	Entity E
	Err    error
}

func (c *EditCall[K, E, D]) Run(ctx context.Context) EditResult[K, E] {
	ent, err := c.update(ctx, c.session, c.ID, c.Draft)
	return EditResult[K, E]{Token: c.Token, ID: c.ID, Entity: ent, Err: err}
}

// SubmitEdit starts an update of the open entity with draft d.
func (w *Workflow[K, E, D]) SubmitEdit(d D) (*EditCall[K, E, D], error) {
	if !w.open {
		return nil, ErrNotOpen
	}
	if w.Busy() || w.stage == StageAwaitingConfirm {
		return nil, ErrBusy
	}
	w.draft = d
	w.updating = true
	w.err = ""
	w.token = uuid.New()
	w.cfg.Logger.Debug().Interface("entity_id", w.id).Str("token", w.token.String()).Msg("edit submitted")
	return &EditCall[K, E, D]{
		Token:   w.token,
		ID:      w.id,
		Draft:   d,
		update:  w.cfg.Update,
		session: w.cfg.Session,
	}, nil
}

// ApplyEdit reconciles an update result. On success the server's entity
// replaces the cached one in place and the workflow closes. On failure the
// draft stays and Err is set.
func (w *Workflow[K, E, D]) ApplyEdit(res EditResult[K, E]) Outcome {
	if !w.current(res.Token) {
		w.cfg.Logger.Debug().Interface("entity_id", res.ID).Str("token", res.Token.String()).Msg("stale edit result ignored")
		return OutcomeStale
	}
	w.updating = false
	w.token = uuid.Nil
	if res.Err != nil {
		w.err = w.cfg.Describe(res.Err)
		w.cfg.Logger.Warn().Err(res.Err).Interface("entity_id", res.ID).Msg("edit failed")
		return OutcomeFailed
	}
	w.cfg.Cache.Upsert(res.Entity)
	w.cfg.Logger.Info().Interface("entity_id", res.ID).Msg("edit applied")
	w.reset()
	return OutcomeApplied
}

// DeleteCall is a pending delete submission.
type DeleteCall[K comparable] struct {
	Token   uuid.UUID
	ID      K
	remove  DeleteFunc[K]
	session session.Session
}

type DeleteResult[K comparable] struct {
	Token uuid.UUID
	ID    K
	Err   error
}

func (c *DeleteCall[K]) Run(ctx context.Context) DeleteResult[K] {
	return DeleteResult[K]{Token: c.Token, ID: c.ID, Err: c.remove(ctx, c.session, c.ID)}
}

// RequestDelete is the delete gesture. The first request arms the delete and
// returns a nil call; a request while armed fires it.
func (w *Workflow[K, E, D]) RequestDelete() (*DeleteCall[K], error) {
	if !w.open {
		return nil, ErrNotOpen
	}
	if w.Busy() {
		return nil, ErrBusy
	}
	if w.stage == StageNone {
		w.stage = StageAwaitingConfirm
		return nil, nil
	}
	return w.fireDelete(), nil
}

// ConfirmDelete fires an armed delete.
func (w *Workflow[K, E, D]) ConfirmDelete() (*DeleteCall[K], error) {
	if !w.open {
		return nil, ErrNotOpen
	}
	if w.Busy() {
		return nil, ErrBusy
	}
	if w.stage != StageAwaitingConfirm {
		return nil, ErrNotArmed
	}
	return w.fireDelete(), nil
}

// CancelDelete disarms the delete. It has no effect once the delete is in flight.
func (w *Workflow[K, E, D]) CancelDelete() {
	if w.deleting {
		return
	}
	w.stage = StageNone
}

func (w *Workflow[K, E, D]) fireDelete() *DeleteCall[K] {
	w.deleting = true
	w.err = ""
	w.token = uuid.New()
	w.cfg.Logger.Debug().Interface("entity_id", w.id).Str("token", w.token.String()).Msg("delete submitted")
	return &DeleteCall[K]{Token: w.token, ID: w.id, remove: w.cfg.Delete, session: w.cfg.Session}
}

// ApplyDelete reconciles a delete result. Success removes the entity from the
// cache (and with it any selection) and closes the workflow. Failure disarms
// the delete and sets Err.
func (w *Workflow[K, E, D]) ApplyDelete(res DeleteResult[K]) Outcome {
	if !w.current(res.Token) {
		w.cfg.Logger.Debug().Interface("entity_id", res.ID).Str("token", res.Token.String()).Msg("stale delete result ignored")
		return OutcomeStale
	}
	w.deleting = false
	w.token = uuid.Nil
	w.stage = StageNone
	if res.Err != nil {
		w.err = w.cfg.Describe(res.Err)
		w.cfg.Logger.Warn().Err(res.Err).Interface("entity_id", res.ID).Msg("delete failed")
		return OutcomeFailed
	}
	w.cfg.Cache.Remove(res.ID)
	w.cfg.Logger.Info().Interface("entity_id", res.ID).Msg("delete applied")
	w.reset()
	return OutcomeApplied
}

// Close abandons the workflow. Results of calls still in flight become stale.
func (w *Workflow[K, E, D]) Close() {
	w.reset()
}

// Edit submits d, waits for the update and applies it.
func (w *Workflow[K, E, D]) Edit(ctx context.Context, d D) (Outcome, error) {
	call, err := w.SubmitEdit(d)
	if err != nil {
		return OutcomeFailed, err
	}
	return w.ApplyEdit(call.Run(ctx)), nil
}

// Delete fires an armed delete, waits for it and applies it.
func (w *Workflow[K, E, D]) Delete(ctx context.Context) (Outcome, error) {
	call, err := w.ConfirmDelete()
	if err != nil {
		return OutcomeFailed, err
	}
	return w.ApplyDelete(call.Run(ctx)), nil
}

func (w *Workflow[K, E, D]) current(token uuid.UUID) bool {
	return w.open && token != uuid.Nil && token == w.token
}

func (w *Workflow[K, E, D]) reset() {
	var zeroK K
	var zeroD D
	w.open = false
	w.id = zeroK
	w.draft = zeroD
	w.stage = StageNone
	w.updating = false
	w.deleting = false
	w.err = ""
	w.token = uuid.Nil
}
