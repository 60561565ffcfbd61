package policy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/warehousedash/internal/api"
	"github.com/jask/warehousedash/internal/session"
)

type changer struct {
	calls   int
	err     error
	current string
	next    string
}

func (c *changer) change(_ context.Context, _ session.Session, current, next string) error {
	c.calls++
	c.current, c.next = current, next
	return c.err
}

func fill(d *Dialog, current, next, confirm string) {
	d.SetCurrent(current)
	d.SetNew(next)
	d.SetConfirm(confirm)
}

func TestDialogSuccessClearsFields(t *testing.T) {
	c := &changer{}
	d := NewDialog(DialogConfig{Change: c.change})
	require.Equal(t, PhaseIdle, d.Phase())
	require.Equal(t, DefaultCloseDelay, d.CloseDelay())

	d.Open()
	fill(d, "Old-pass1", "Abcdefg1!", "Abcdefg1!")
	require.True(t, d.CanSubmit())

	call, err := d.Submit()
	require.NoError(t, err)
	require.Equal(t, PhaseSubmitting, d.Phase())
	d.SetNew("ignored")
	require.Equal(t, "Abcdefg1!", d.State().New)

	require.Equal(t, OutcomeSucceeded, d.Resolve(call.Run(context.Background())))
	require.Equal(t, 1, c.calls)
	require.Equal(t, "Old-pass1", c.current)
	require.Equal(t, "Abcdefg1!", c.next)
	require.Equal(t, PhaseSuccess, d.Phase())
	require.Empty(t, d.State().Current)
	require.Empty(t, d.State().New)
	require.Empty(t, d.State().Confirm)

	d.Close()
	require.Equal(t, PhaseIdle, d.Phase())
}

func TestDialogLocalFailureMakesNoCall(t *testing.T) {
	c := &changer{}
	d := NewDialog(DialogConfig{Change: c.change})
	d.Open()

	fill(d, "old", "Ab1!", "Ab1!")
	_, err := d.Submit()
	var ruleErr *RuleError
	require.ErrorAs(t, err, &ruleErr)
	require.Contains(t, d.Err(), "Must be at least 8 characters")
	require.Equal(t, PhaseEditing, d.Phase())

	fill(d, "old", "Abcdefg1!", "Abcdefg1?")
	require.Empty(t, d.Err(), "editing clears the banner")
	_, err = d.Submit()
	require.ErrorIs(t, err, ErrMismatch)
	require.Equal(t, MsgMismatch, d.Err())
	require.Equal(t, 0, c.calls)
}

func TestDialogRemoteFailureKeepsValues(t *testing.T) {
	c := &changer{err: api.NewError(api.KindValidation, "")}
	d := NewDialog(DialogConfig{Change: c.change, CloseDelay: 50 * time.Millisecond})
	require.Equal(t, 50*time.Millisecond, d.CloseDelay())
	d.Open()
	fill(d, "wrong", "Abcdefg1!", "Abcdefg1!")

	call, err := d.Submit()
	require.NoError(t, err)
	require.Equal(t, OutcomeFailed, d.Resolve(call.Run(context.Background())))
	require.Equal(t, PhaseFailed, d.Phase())
	require.Equal(t, api.MsgPasswordIncorrect, d.Err())
	require.Equal(t, "wrong", d.State().Current)
	require.Equal(t, "Abcdefg1!", d.State().Confirm)

	d.SetCurrent("right")
	require.Equal(t, PhaseEditing, d.Phase())
	require.Empty(t, d.Err())
	require.Equal(t, "Abcdefg1!", d.State().New)
	require.True(t, d.State().Results.OK())
}

func TestDialogUnauthorized(t *testing.T) {
	c := &changer{err: api.NewError(api.KindUnauthorized, "")}
	d := NewDialog(DialogConfig{Change: c.change})
	d.Open()
	fill(d, "old", "Abcdefg1!", "Abcdefg1!")
	call, err := d.Submit()
	require.NoError(t, err)
	d.Resolve(call.Run(context.Background()))
	require.Equal(t, api.MsgUnauthorized, d.Err())
}

func TestDialogIgnoresResultAfterClose(t *testing.T) {
	c := &changer{}
	d := NewDialog(DialogConfig{Change: c.change})
	d.Open()
	fill(d, "old", "Abcdefg1!", "Abcdefg1!")
	call, err := d.Submit()
	require.NoError(t, err)
	d.Close()

	require.Equal(t, OutcomeStale, d.Resolve(call.Run(context.Background())))
	require.Equal(t, PhaseIdle, d.Phase())

	d.Open()
	require.Empty(t, d.State().Current)
}
