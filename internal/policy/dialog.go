package policy

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jask/warehousedash/internal/api"
	"github.com/jask/warehousedash/internal/session"
)

// DefaultCloseDelay is how long a successful dialog stays up before closing.
const DefaultCloseDelay = 2 * time.Second

var errNotEditable = errors.New("policy: dialog is not accepting input")

const MsgChanged = "Password updated successfully"

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseEditing
	PhaseSubmitting
	PhaseSuccess
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseEditing:
		return "editing"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeFailed
	OutcomeStale
)

// ChangeFunc performs the remote password change.
type ChangeFunc func(ctx context.Context, sess session.Session, current, next string) error

type DialogConfig struct {
	Change     ChangeFunc
	Session    session.Session
	CloseDelay time.Duration
	// Describe maps a remote failure to the banner. Defaults to api.PasswordMessage.
	Describe func(error) string
	Logger   zerolog.Logger
}

// Dialog is the change-password dialog state machine.
type Dialog struct {
	cfg   DialogConfig
	phase Phase
	state State
	err   string
	token uuid.UUID
}

func NewDialog(cfg DialogConfig) *Dialog {
	if cfg.CloseDelay <= 0 {
		cfg.CloseDelay = DefaultCloseDelay
	}
	if cfg.Describe == nil {
		cfg.Describe = api.PasswordMessage
	}
	return &Dialog{cfg: cfg, state: blank()}
}

func blank() State { return State{Results: Evaluate("")} }

func (d *Dialog) Phase() Phase { return d.phase }
func (d *Dialog) State() State { return d.state }
func (d *Dialog) Err() string { return d.err }
func (d *Dialog) CloseDelay() time.Duration { return d.cfg.CloseDelay }
func (d *Dialog) SetSession(s session.Session) { d.cfg.Session = s }
func (d *Dialog) Visible() bool { return d.phase != PhaseIdle }
func (d *Dialog) CanSubmit() bool { return d.editable() && CanSubmit(d.state) }

// Open shows an empty dialog. Opening an open dialog is a no-op.
func (d *Dialog) Open() {
	if d.phase != PhaseIdle {
		return
	}
	d.phase = PhaseEditing
	d.state = blank()
	d.err = ""
}

func (d *Dialog) SetCurrent(v string) { d.edit(func(s *State) { s.Current = v }) }
func (d *Dialog) SetNew(v string) { d.edit(func(s *State) { s.New = v }) }
func (d *Dialog) SetConfirm(v string) { d.edit(func(s *State) { s.Confirm = v }) }

func (d *Dialog) editable() bool {
	return d.phase == PhaseEditing || d.phase == PhaseFailed
}

func (d *Dialog) edit(apply func(*State)) {
	if !d.editable() {
		return
	}
	if d.phase == PhaseFailed {
		d.phase = PhaseEditing
	}
	d.err = ""
	apply(&d.state)
	d.state.Results = Evaluate(d.state.New)
}

// ChangeCall is a pending password change.
type ChangeCall struct {
	Token   uuid.UUID
	change  ChangeFunc
	session session.Session
	current string
	next    string
}

type ChangeResult struct {
	Token uuid.UUID
	Err   error
}

func (c *ChangeCall) Run(ctx context.Context) ChangeResult {
	return ChangeResult{Token: c.Token, Err: c.change(ctx, c.session, c.current, c.next)}
}

// Submit validates locally and, if everything passes, starts the remote
// change. A local failure sets the banner and returns the Check error
// without a call.
func (d *Dialog) Submit() (*ChangeCall, error) {
	if !d.editable() {
		return nil, errNotEditable
	}
	if err := Check(d.state); err != nil {
		d.err = Message(err)
		return nil, err
	}
	d.phase = PhaseSubmitting
	d.err = ""
	d.token = uuid.New()
	d.cfg.Logger.Debug().Str("token", d.token.String()).Msg("password change submitted")
	return &ChangeCall{
		Token:   d.token,
		change:  d.cfg.Change,
		session: d.cfg.Session,
		current: d.state.Current,
		next:    d.state.New,
	}, nil
}

// Resolve applies a change result. Success clears every field; failure keeps
// them and shows the error until the next edit.
func (d *Dialog) Resolve(res ChangeResult) Outcome {
	if d.phase != PhaseSubmitting || res.Token == uuid.Nil || res.Token != d.token {
		return OutcomeStale
	}
	d.token = uuid.Nil
	if res.Err != nil {
		d.phase = PhaseFailed
		d.err = d.cfg.Describe(res.Err)
		d.cfg.Logger.Warn().Err(res.Err).Msg("password change failed")
		return OutcomeFailed
	}
	d.phase = PhaseSuccess
	d.state = blank()
	d.cfg.Logger.Info().Msg("password changed")
	return OutcomeSucceeded
}

// Close hides the dialog and drops any in-flight result.
func (d *Dialog) Close() {
	d.phase = PhaseIdle
	d.state = blank()
	d.err = ""
	d.token = uuid.Nil
}
