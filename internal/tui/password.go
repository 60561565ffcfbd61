package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jask/warehousedash/internal/database/repository"
	"github.com/jask/warehousedash/internal/policy"
	"github.com/jask/warehousedash/internal/session"
)

type (
	passwordDoneMsg  struct{ res policy.ChangeResult }
	passwordCloseMsg struct{ gen int }
)

const (
	fieldCurrent = iota
	fieldNew
	fieldConfirm
)

// passwordModal is the change-own-password dialog. gen counts openings so a
// close tick from an earlier success never hides a reopened dialog.
type passwordModal struct {
	dialog *policy.Dialog
	inputs [3]textinput.Model
	focus  int
	gen    int
}

func newPasswordModal(backend Backend, sess session.Session, closeDelay time.Duration, log zerolog.Logger) *passwordModal {
	m := &passwordModal{
		dialog: policy.NewDialog(policy.DialogConfig{
			Change:     backend.ChangeOwnPassword,
			Session:    sess,
			CloseDelay: closeDelay,
			Logger:     log,
		}),
	}
	prompts := [3]string{"Current password: ", "New password:     ", "Confirm password: "}
	for i := range m.inputs {
		in := newInput(prompts[i], 128)
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
		m.inputs[i] = in
	}
	return m
}

func (m *passwordModal) visible() bool { return m.dialog.Visible() }

func (m *passwordModal) open() tea.Cmd {
	m.gen++
	m.dialog.Open()
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.focus = fieldCurrent
	return m.applyFocus()
}

func (m *passwordModal) applyFocus() tea.Cmd {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	return m.inputs[m.focus].Focus()
}

func (m *passwordModal) handleKey(a *App, msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.formKeys.Cancel):
		m.dialog.Close()
		return nil
	case m.dialog.Phase() == policy.PhaseSubmitting:
		return nil
	case m.dialog.Phase() == policy.PhaseSuccess:
		// Any key dismisses the confirmation early.
		m.dialog.Close()
		return nil
	case key.Matches(msg, a.formKeys.Submit):
		call, err := m.dialog.Submit()
		if err != nil {
			return nil
		}
		ctx := a.ctx
		return func() tea.Msg { return passwordDoneMsg{res: call.Run(ctx)} }
	case key.Matches(msg, a.formKeys.Next):
		m.focus = (m.focus + 1) % len(m.inputs)
		return m.applyFocus()
	case key.Matches(msg, a.formKeys.Prev):
		m.focus = (m.focus - 1 + len(m.inputs)) % len(m.inputs)
		return m.applyFocus()
	}
	prev := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	v := m.inputs[m.focus].Value()
	if v == prev {
		return cmd
	}
	switch m.focus {
	case fieldCurrent:
		m.dialog.SetCurrent(v)
	case fieldNew:
		m.dialog.SetNew(v)
	case fieldConfirm:
		m.dialog.SetConfirm(v)
	}
	return cmd
}

func (m *passwordModal) resolve(a *App, msg passwordDoneMsg) tea.Cmd {
	entry := repository.JournalEntry{Screen: "account", EntityID: a.sess.UserID, Kind: "password"}
	switch m.dialog.Resolve(msg.res) {
	case policy.OutcomeSucceeded:
		for i := range m.inputs {
			m.inputs[i].SetValue("")
		}
		entry.Outcome = "applied"
		gen := m.gen
		tick := tea.Tick(m.dialog.CloseDelay(), func(time.Time) tea.Msg { return passwordCloseMsg{gen: gen} })
		return tea.Batch(a.record(entry), tick)
	case policy.OutcomeFailed:
		entry.Outcome = "failed"
		entry.Message = m.dialog.Err()
		return a.record(entry)
	}
	return nil
}

func (m *passwordModal) autoClose(msg passwordCloseMsg) {
	if msg.gen == m.gen && m.dialog.Phase() == policy.PhaseSuccess {
		m.dialog.Close()
	}
}

func (m *passwordModal) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Change password") + "\n")
	if m.dialog.Phase() == policy.PhaseSuccess {
		b.WriteString(successStyle.Render(policy.MsgChanged))
		return modalStyle.Render(b.String())
	}
	for i := range m.inputs {
		b.WriteString(m.inputs[i].View() + "\n")
	}
	b.WriteString("\n")
	st := m.dialog.State()
	for _, r := range policy.Rules {
		if st.Results[r] {
			b.WriteString(successStyle.Render("✓ "+r.Label()) + "\n")
		} else {
			b.WriteString(dimStyle.Render("✗ "+r.Label()) + "\n")
		}
	}
	if st.Confirm != "" && st.Confirm != st.New {
		b.WriteString(warningStyle.Render(policy.MsgMismatch) + "\n")
	}
	if m.dialog.Phase() == policy.PhaseSubmitting {
		b.WriteString(infoStyle.Render("Updating…") + "\n")
	}
	if msg := m.dialog.Err(); msg != "" {
		b.WriteString(errorStyle.Render(msg) + "\n")
	}
	return modalStyle.Render(strings.TrimRight(b.String(), "\n"))
}
