package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jask/warehousedash/internal/api"
	"github.com/jask/warehousedash/internal/database/repository"
	"github.com/jask/warehousedash/internal/session"
	"github.com/jask/warehousedash/internal/tableview"
	"github.com/jask/warehousedash/internal/workflow"
)

const (
	sortEmpID tableview.SortKey = "empId"
	sortName  tableview.SortKey = "name"
	sortEmail tableview.SortKey = "email"
)

// employee is a directory row derived from a user.
type employee struct {
	api.User
}

func (e employee) empID() string { return fmt.Sprintf("Emp-%03d", e.ID) }

func (e employee) position() string { return e.Role.Title() }

var employeeFilters = []string{tableview.FilterAll, string(session.RoleAdmin), string(session.RoleManager), string(session.RoleStaff)}

type employeeWorkflow = workflow.Workflow[int64, employee, api.UserUpdate]

type employeesScreen struct {
	engine  *tableview.Engine[int64, employee]
	wf      *employeeWorkflow
	cursor  int
	loading bool
	form    employeeForm
}

type (
	editDoneMsg   struct{ res workflow.EditResult[int64, employee] }
	deleteDoneMsg struct{ res workflow.DeleteResult[int64] }
)

func newEmployeesScreen(backend Backend, sess session.Session, opts Options, log zerolog.Logger) *employeesScreen {
	engine := tableview.New(tableview.Options[int64, employee]{
		Key: func(e employee) int64 { return e.ID },
		Columns: []tableview.Column[employee]{
			{Key: sortEmpID, Compare: func(a, b employee) int { return compareInt64(a.ID, b.ID) }},
			{Key: sortName, Text: func(e employee) string { return e.FullName }},
			{Key: sortEmail, Text: func(e employee) string { return e.Email }},
		},
		Match:    func(e employee, role string) bool { return string(e.Role) == role },
		PageSize: opts.PageSize,
		Locale:   opts.Locale,
		SortKey:  sortEmpID,
	})
	wf := workflow.New(workflow.Config[int64, employee, api.UserUpdate]{
		Cache: engine,
		Draft: func(e employee) api.UserUpdate {
			return api.UserUpdate{FullName: e.FullName, Email: e.Email, Role: e.Role}
		},
		Update: func(ctx context.Context, sess session.Session, id int64, d api.UserUpdate) (employee, error) {
			u, err := backend.UpdateUser(ctx, sess, id, d)
			return employee{u}, err
		},
		Delete:  backend.DeleteUser,
		Session: sess,
		Logger:  log,
	})
	return &employeesScreen{engine: engine, wf: wf, loading: true, form: newEmployeeForm()}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (s *employeesScreen) setUsers(users []api.User) {
	rows := make([]employee, len(users))
	for i, u := range users {
		rows[i] = employee{u}
	}
	s.engine.SetCache(rows)
	s.clampCursor()
}

func (s *employeesScreen) clampCursor() {
	n := len(s.engine.Derive().Items)
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *employeesScreen) currentRow() (employee, bool) {
	items := s.engine.Derive().Items
	if s.cursor < 0 || s.cursor >= len(items) {
		return employee{}, false
	}
	return items[s.cursor], true
}

func (s *employeesScreen) handleKey(a *App, m tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(m, a.keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(m, a.keys.Down):
		if s.cursor < len(s.engine.Derive().Items)-1 {
			s.cursor++
		}
	case key.Matches(m, a.keys.NextPage):
		s.engine.NextPage()
		s.cursor = 0
	case key.Matches(m, a.keys.PrevPage):
		s.engine.PrevPage()
		s.cursor = 0
	case key.Matches(m, a.keys.Select):
		if row, ok := s.currentRow(); ok {
			s.engine.ToggleSelect(row.ID)
		}
	case key.Matches(m, a.keys.SelectAll):
		s.engine.ToggleSelectAllOnPage()
	case key.Matches(m, a.keys.Sort):
		next := nextSortKey(s.engine)
		a.setParams(screenEmployees, s.engine, tableview.ParamsUpdate{SortKey: &next})
		s.cursor = 0
		return a.savePref(screenEmployees, s.engine.Params())
	case key.Matches(m, a.keys.Filter):
		next := nextFilter(employeeFilters, s.engine.Params().Filter)
		a.setParams(screenEmployees, s.engine, tableview.ParamsUpdate{Filter: &next})
		s.cursor = 0
		return a.savePref(screenEmployees, s.engine.Params())
	case key.Matches(m, a.keys.Edit):
		row, ok := s.currentRow()
		if !ok {
			return nil
		}
		if err := s.wf.BeginEdit(row.ID); err != nil {
			a.setStatus(err.Error(), true)
			return nil
		}
		return s.form.load(s.wf.Draft())
	}
	return nil
}

func nextSortKey[K comparable, E any](e *tableview.Engine[K, E]) tableview.SortKey {
	keys := e.SortKeys()
	cur := e.Params().SortKey
	for i, k := range keys {
		if k == cur {
			return keys[(i+1)%len(keys)]
		}
	}
	if len(keys) > 0 {
		return keys[0]
	}
	return cur
}

func nextFilter(options []string, cur string) string {
	for i, o := range options {
		if o == cur {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

func (s *employeesScreen) handleFormKey(a *App, m tea.KeyMsg) tea.Cmd {
	wf := s.wf
	switch {
	case key.Matches(m, a.formKeys.Cancel):
		if wf.Armed() {
			wf.CancelDelete()
			return nil
		}
		if !wf.Deleting() {
			wf.Close()
		}
		return nil
	case key.Matches(m, a.formKeys.Delete):
		call, err := wf.RequestDelete()
		if err != nil || call == nil {
			return nil
		}
		return runDelete(a.ctx, call)
	case key.Matches(m, a.formKeys.Submit):
		if wf.Armed() {
			call, err := wf.ConfirmDelete()
			if err != nil {
				return nil
			}
			return runDelete(a.ctx, call)
		}
		call, err := wf.SubmitEdit(s.form.draft())
		if err != nil {
			return nil
		}
		return func() tea.Msg { return editDoneMsg{res: call.Run(a.ctx)} }
	}
	if wf.Busy() {
		return nil
	}
	switch {
	case key.Matches(m, a.formKeys.Next):
		return s.form.move(1)
	case key.Matches(m, a.formKeys.Prev):
		return s.form.move(-1)
	case key.Matches(m, a.formKeys.Cycle):
		s.form.cycleRole()
		wf.SetDraft(s.form.draft())
		return nil
	}
	cmd := s.form.update(m)
	wf.SetDraft(s.form.draft())
	return cmd
}

func runDelete(ctx context.Context, call *workflow.DeleteCall[int64]) tea.Cmd {
	return func() tea.Msg { return deleteDoneMsg{res: call.Run(ctx)} }
}

func (s *employeesScreen) applyEdit(a *App, m editDoneMsg) tea.Cmd {
	switch s.wf.ApplyEdit(m.res) {
	case workflow.OutcomeApplied:
		a.setStatus("Saved "+m.res.Entity.FullName, false)
		s.clampCursor()
		return a.record(journalEntry(m.res.ID, "edit", "applied", ""))
	case workflow.OutcomeFailed:
		a.setStatus("", false)
		return a.record(journalEntry(m.res.ID, "edit", "failed", s.wf.Err()))
	}
	return nil
}

func (s *employeesScreen) applyDelete(a *App, m deleteDoneMsg) tea.Cmd {
	switch s.wf.ApplyDelete(m.res) {
	case workflow.OutcomeApplied:
		a.setStatus("Deleted "+fmt.Sprintf("Emp-%03d", m.res.ID), false)
		s.clampCursor()
		return a.record(journalEntry(m.res.ID, "delete", "applied", ""))
	case workflow.OutcomeFailed:
		return a.record(journalEntry(m.res.ID, "delete", "failed", s.wf.Err()))
	}
	return nil
}

func journalEntry(id int64, kind, outcome, msg string) repository.JournalEntry {
	return repository.JournalEntry{
		Screen:   string(screenEmployees),
		EntityID: strconv.FormatInt(id, 10),
		Kind:     kind,
		Outcome:  outcome,
		Message:  msg,
	}
}

var employeeColumns = []column{
	{" ", 1},
	{"Emp ID", 8},
	{"Name", 24},
	{"Position", 9},
	{"Contact", 28},
	{"Role", 8},
}

func (s *employeesScreen) view() string {
	var b strings.Builder
	params := s.engine.Params()
	v := s.engine.Derive()
	b.WriteString(dimStyle.Render(fmt.Sprintf("sort: %s  role: %s", params.SortKey, params.Filter)))
	if n := len(s.engine.Selected()); n > 0 {
		b.WriteString(selectedStyle.Render(fmt.Sprintf("  %d selected", n)))
	}
	b.WriteString("\n")
	if s.loading && s.engine.Len() == 0 {
		b.WriteString("Loading users…")
		return b.String()
	}
	b.WriteString(renderHeader(employeeColumns) + "\n")
	if len(v.Items) == 0 {
		b.WriteString(dimStyle.Render("No users match this filter") + "\n")
	}
	for i, e := range v.Items {
		mark := " "
		if s.engine.IsSelected(e.ID) {
			mark = "•"
		}
		line := renderRow(employeeColumns, []string{mark, e.empID(), e.FullName, e.position(), e.Email, string(e.Role)})
		if i == s.cursor {
			line = cursorStyle.Render(line)
		} else if mark != " " {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(dimStyle.Render(showing(v.Page, s.engine.PageSize(), v.TotalCount, "users")) + "  " + pager(v.Page, v.TotalPages))
	return b.String()
}

// employeeForm edits the draft of the open workflow.
type employeeForm struct {
	name  textinput.Model
	email textinput.Model
	role  session.Role
	focus int
}

const employeeFormFields = 3

func newEmployeeForm() employeeForm {
	return employeeForm{
		name:  newInput("Full name: ", 120),
		email: newInput("Email:     ", 254),
		role:  session.RoleStaff,
	}
}

func (f *employeeForm) load(d api.UserUpdate) tea.Cmd {
	f.name.SetValue(d.FullName)
	f.email.SetValue(d.Email)
	f.role = d.Role
	if !f.role.Valid() {
		f.role = session.RoleStaff
	}
	f.focus = 0
	return f.applyFocus()
}

func (f *employeeForm) draft() api.UserUpdate {
	return api.UserUpdate{
		FullName: strings.TrimSpace(f.name.Value()),
		Email:    strings.TrimSpace(f.email.Value()),
		Role:     f.role,
	}
}

func (f *employeeForm) move(delta int) tea.Cmd {
	f.focus = (f.focus + delta + employeeFormFields) % employeeFormFields
	return f.applyFocus()
}

func (f *employeeForm) applyFocus() tea.Cmd {
	f.name.Blur()
	f.email.Blur()
	switch f.focus {
	case 0:
		return f.name.Focus()
	case 1:
		return f.email.Focus()
	}
	return nil
}

func (f *employeeForm) cycleRole() {
	for i, r := range session.Roles {
		if r == f.role {
			f.role = session.Roles[(i+1)%len(session.Roles)]
			return
		}
	}
	f.role = session.Roles[0]
}

func (f *employeeForm) update(m tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case 0:
		f.name, cmd = f.name.Update(m)
	case 1:
		f.email, cmd = f.email.Update(m)
	case 2:
		switch m.String() {
		case " ", "left", "right":
			f.cycleRole()
		}
	}
	return cmd
}

func (s *employeesScreen) formView() string {
	wf := s.wf
	var b strings.Builder
	title := "Edit user"
	if e, ok := s.engine.Get(wf.ID()); ok {
		title += " " + e.empID()
	}
	b.WriteString(titleStyle.Render(title) + "\n")
	b.WriteString(s.form.name.View() + "\n")
	b.WriteString(s.form.email.View() + "\n")
	role := "Role:      " + s.form.role.Title()
	if s.form.focus == 2 {
		role = cursorStyle.Render(role + "  (space to change)")
	}
	b.WriteString(role + "\n")

	switch {
	case wf.Updating():
		b.WriteString(infoStyle.Render("Saving…") + "\n")
	case wf.Deleting():
		b.WriteString(infoStyle.Render("Deleting…") + "\n")
	case wf.Armed():
		b.WriteString(warningStyle.Render("Press ctrl+d again to delete this user, esc to keep it") + "\n")
	}
	if msg := wf.Err(); msg != "" {
		b.WriteString(errorStyle.Render(msg) + "\n")
	}
	return modalStyle.Render(strings.TrimRight(b.String(), "\n"))
}
