package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/warehousedash/internal/api"
	"github.com/jask/warehousedash/internal/session"
	"github.com/jask/warehousedash/internal/tableview"
)

type user struct {
	ID    int64
	Email string
	Role  string
}

type draft struct {
	Email string
	Role  string
}

type fakeRemote struct {
	updates   int
	deletes   int
	updateErr error
	deleteErr error
	lastSess  session.Session
}

func (f *fakeRemote) update(_ context.Context, sess session.Session, id int64, d draft) (user, error) {
	f.updates++
	f.lastSess = sess
	if f.updateErr != nil {
		return user{}, f.updateErr
	}
	return user{ID: id, Email: d.Email, Role: d.Role}, nil
}

func (f *fakeRemote) remove(_ context.Context, sess session.Session, _ int64) error {
	f.deletes++
	f.lastSess = sess
	return f.deleteErr
}

func newFixture(t *testing.T, users ...user) (*tableview.Engine[int64, user], *Workflow[int64, user, draft], *fakeRemote) {
	t.Helper()
	engine := tableview.New(tableview.Options[int64, user]{
		Key:   func(u user) int64 { return u.ID },
		Match: func(u user, f string) bool { return u.Role == f },
	})
	engine.SetCache(users)
	remote := &fakeRemote{}
	wf := New(Config[int64, user, draft]{
		Cache:   engine,
		Draft:   func(u user) draft { return draft{Email: u.Email, Role: u.Role} },
		Update:  remote.update,
		Delete:  remote.remove,
		Session: session.Session{Token: "tok", Role: session.RoleAdmin},
	})
	return engine, wf, remote
}

func TestBeginEditUnknownID(t *testing.T) {
	_, wf, _ := newFixture(t, user{ID: 1})
	require.ErrorIs(t, wf.BeginEdit(7), ErrNotFound)
	require.False(t, wf.Open())
}

func TestEditUpsertsAndCloses(t *testing.T) {
	engine, wf, remote := newFixture(t,
		user{ID: 1, Email: "a@x.io", Role: "staff"},
		user{ID: 2, Email: "b@x.io", Role: "admin"},
	)
	filter := "admin"
	require.NoError(t, engine.SetParams(tableview.ParamsUpdate{Filter: &filter}))
	require.Len(t, engine.Derive().Items, 1)

	require.NoError(t, wf.BeginEdit(2))
	require.Equal(t, draft{Email: "b@x.io", Role: "admin"}, wf.Draft())

	out, err := wf.Edit(context.Background(), draft{Email: "b@x.io", Role: "manager"})
	require.NoError(t, err)
	require.Equal(t, OutcomeApplied, out)
	require.Equal(t, 1, remote.updates)
	require.Equal(t, "tok", remote.lastSess.Token)
	require.False(t, wf.Open())

	require.Equal(t, []user{
		{ID: 1, Email: "a@x.io", Role: "staff"},
		{ID: 2, Email: "b@x.io", Role: "manager"},
	}, engine.All())
	v := engine.Derive()
	require.Empty(t, v.Items)
	require.Equal(t, 0, v.TotalPages)
}

func TestEditValidationFailureKeepsDraft(t *testing.T) {
	engine, wf, remote := newFixture(t, user{ID: 1, Email: "a@x.io", Role: "staff"})
	remote.updateErr = api.NewError(api.KindValidation, "email already in use")

	require.NoError(t, wf.BeginEdit(1))
	want := draft{Email: "taken@x.io", Role: "staff"}
	out, err := wf.Edit(context.Background(), want)
	require.NoError(t, err)
	require.Equal(t, OutcomeFailed, out)

	require.True(t, wf.Open())
	require.False(t, wf.Updating())
	require.Equal(t, want, wf.Draft())
	require.Equal(t, "email already in use", wf.Err())
	require.Equal(t, []user{{ID: 1, Email: "a@x.io", Role: "staff"}}, engine.All())

	remote.updateErr = nil
	out, err = wf.Edit(context.Background(), want)
	require.NoError(t, err)
	require.Equal(t, OutcomeApplied, out)
	require.Empty(t, wf.Err())
}

func TestEditFailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unauthorized", api.NewError(api.KindUnauthorized, ""), api.MsgUnauthorized},
		{"forbidden", api.NewError(api.KindForbidden, ""), "You don't have permission to do this. Admin access required."},
		{"not found", api.NewError(api.KindNotFound, "gone"), api.MsgNotFound},
		{"validation without detail", api.NewError(api.KindValidation, ""), api.MsgValidation},
		{"network", api.NewError(api.KindNetwork, ""), api.MsgRetry},
		{"plain error", errors.New("boom"), api.MsgRetry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, wf, remote := newFixture(t, user{ID: 1})
			remote.updateErr = tt.err
			require.NoError(t, wf.BeginEdit(1))
			out, err := wf.Edit(context.Background(), draft{})
			require.NoError(t, err)
			require.Equal(t, OutcomeFailed, out)
			require.Equal(t, tt.want, wf.Err())
		})
	}
}

func TestDeleteNeedsTwoRequests(t *testing.T) {
	engine, wf, remote := newFixture(t, user{ID: 1}, user{ID: 2}, user{ID: 3})
	engine.ToggleSelect(2)
	engine.ToggleSelect(3)
	require.NoError(t, wf.BeginEdit(2))

	call, err := wf.RequestDelete()
	require.NoError(t, err)
	require.Nil(t, call)
	require.Equal(t, StageAwaitingConfirm, wf.Stage())
	require.Equal(t, 0, remote.deletes)

	call, err = wf.RequestDelete()
	require.NoError(t, err)
	require.NotNil(t, call)
	require.True(t, wf.Deleting())

	_, err = wf.RequestDelete()
	require.ErrorIs(t, err, ErrBusy)
	_, err = wf.SubmitEdit(wf.Draft())
	require.ErrorIs(t, err, ErrBusy)

	require.Equal(t, OutcomeApplied, wf.ApplyDelete(call.Run(context.Background())))
	require.Equal(t, 1, remote.deletes)
	require.False(t, wf.Open())
	_, ok := engine.Get(2)
	require.False(t, ok)
	require.False(t, engine.IsSelected(2))
	require.Equal(t, []int64{3}, engine.Selected())
}

func TestCancelledDeleteMakesNoCall(t *testing.T) {
	_, wf, remote := newFixture(t, user{ID: 1})
	require.NoError(t, wf.BeginEdit(1))

	_, err := wf.RequestDelete()
	require.NoError(t, err)
	wf.CancelDelete()
	require.Equal(t, StageNone, wf.Stage())

	_, err = wf.ConfirmDelete()
	require.ErrorIs(t, err, ErrNotArmed)

	// Re-arming after a cancel starts the gesture over.
	call, err := wf.RequestDelete()
	require.NoError(t, err)
	require.Nil(t, call)
	wf.Close()
	require.Equal(t, 0, remote.deletes)
}

func TestSwitchingEntityDisarmsDelete(t *testing.T) {
	_, wf, remote := newFixture(t, user{ID: 1}, user{ID: 2})
	require.NoError(t, wf.BeginEdit(1))
	_, err := wf.RequestDelete()
	require.NoError(t, err)

	require.NoError(t, wf.BeginEdit(2))
	require.Equal(t, StageNone, wf.Stage())
	call, err := wf.RequestDelete()
	require.NoError(t, err)
	require.Nil(t, call)
	require.Equal(t, 0, remote.deletes)
}

func TestDeleteFailureDisarms(t *testing.T) {
	engine, wf, remote := newFixture(t, user{ID: 1})
	remote.deleteErr = api.NewError(api.KindForbidden, "")
	require.NoError(t, wf.BeginEdit(1))
	_, err := wf.RequestDelete()
	require.NoError(t, err)

	out, err := wf.Delete(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeFailed, out)
	require.Equal(t, StageNone, wf.Stage())
	require.False(t, wf.Deleting())
	require.True(t, wf.Open())
	require.Contains(t, wf.Err(), "Admin access required")
	require.Equal(t, 1, engine.Len())
}

func TestEditAndDeleteAreExclusive(t *testing.T) {
	_, wf, _ := newFixture(t, user{ID: 1})
	require.NoError(t, wf.BeginEdit(1))

	call, err := wf.SubmitEdit(draft{Role: "admin"})
	require.NoError(t, err)
	require.True(t, wf.Updating())
	_, err = wf.RequestDelete()
	require.ErrorIs(t, err, ErrBusy)
	_, err = wf.SubmitEdit(draft{Role: "staff"})
	require.ErrorIs(t, err, ErrBusy)

	wf.SetDraft(draft{Role: "ignored"})
	require.Equal(t, draft{Role: "admin"}, wf.Draft())
	require.Equal(t, OutcomeApplied, wf.ApplyEdit(call.Run(context.Background())))
}

func TestStaleResultsAreIgnored(t *testing.T) {
	engine, wf, _ := newFixture(t, user{ID: 1, Role: "staff"}, user{ID: 2, Role: "staff"})

	require.NoError(t, wf.BeginEdit(1))
	call, err := wf.SubmitEdit(draft{Role: "admin"})
	require.NoError(t, err)
	wf.Close()

	require.Equal(t, OutcomeStale, wf.ApplyEdit(call.Run(context.Background())))
	got, _ := engine.Get(1)
	require.Equal(t, "staff", got.Role)

	// A result from an earlier submission does not land on a newer one.
	require.NoError(t, wf.BeginEdit(2))
	old, err := wf.SubmitEdit(draft{Role: "manager"})
	require.NoError(t, err)
	res := old.Run(context.Background())
	require.NoError(t, wf.BeginEdit(2))
	require.Equal(t, OutcomeStale, wf.ApplyEdit(res))
	require.False(t, wf.Updating())
	got, _ = engine.Get(2)
	require.Equal(t, "staff", got.Role)
}

func TestIntentsRequireOpenWorkflow(t *testing.T) {
	_, wf, _ := newFixture(t, user{ID: 1})
	_, err := wf.SubmitEdit(draft{})
	require.ErrorIs(t, err, ErrNotOpen)
	_, err = wf.RequestDelete()
	require.ErrorIs(t, err, ErrNotOpen)
	_, err = wf.ConfirmDelete()
	require.ErrorIs(t, err, ErrNotOpen)
}
