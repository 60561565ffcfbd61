package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/warehousedash/internal/database/repository"
	"github.com/jask/warehousedash/internal/tableview"
)

const activityLimit = 5

type (
	prefsLoadedMsg []repository.ViewPref
	journalMsg     []repository.JournalEntry
)

func (a *App) loadPrefs() tea.Cmd {
	if a.repos.Prefs == nil {
		return nil
	}
	ctx, prefs := a.ctx, a.repos.Prefs
	return func() tea.Msg {
		list, err := prefs.List(ctx)
		if err != nil {
			return errMsg{fmt.Errorf("load view prefs: %w", err)}
		}
		return prefsLoadedMsg(list)
	}
}

func (a *App) applyPrefs(prefs prefsLoadedMsg) {
	for _, p := range prefs {
		sortKey := tableview.SortKey(p.SortKey)
		update := tableview.ParamsUpdate{SortKey: &sortKey}
		filter := p.Filter
		if screen(p.Screen) != screenInventory {
			update.Filter = &filter
		}
		var err error
		switch screen(p.Screen) {
		case screenEmployees:
			err = a.employees.engine.SetParams(update)
		case screenInventory:
			err = a.inventory.engine.SetParams(update)
		case screenOrders:
			err = a.orders.engine.SetParams(update)
		}
		if errors.Is(err, tableview.ErrUnknownSortKey) {
			a.log.Warn().Str("screen", p.Screen).Str("sort_key", p.SortKey).Msg("ignoring stored sort key")
		}
	}
}

type paramsSetter interface {
	SetParams(tableview.ParamsUpdate) error
}

// setParams applies update to e. A rejected update leaves e as it was.
func (a *App) setParams(s screen, e paramsSetter, update tableview.ParamsUpdate) {
	if err := e.SetParams(update); err != nil {
		a.log.Warn().Err(err).Str("screen", string(s)).Msg("view params rejected")
	}
}

// savePref stores the sort key and filter of s.
func (a *App) savePref(s screen, params tableview.Params) tea.Cmd {
	if a.repos.Prefs == nil {
		return nil
	}
	ctx, prefs := a.ctx, a.repos.Prefs
	pref := repository.ViewPref{Screen: string(s), SortKey: string(params.SortKey), Filter: params.Filter}
	if s == screenInventory {
		pref.Filter = tableview.FilterAll
	}
	return func() tea.Msg {
		if err := prefs.Upsert(ctx, pref); err != nil {
			return errMsg{fmt.Errorf("save view prefs: %w", err)}
		}
		return nil
	}
}

func (a *App) loadJournal() tea.Cmd {
	if a.repos.Journal == nil {
		return nil
	}
	ctx, journal := a.ctx, a.repos.Journal
	return func() tea.Msg {
		list, err := journal.Recent(ctx, activityLimit)
		if err != nil {
			return errMsg{fmt.Errorf("load journal: %w", err)}
		}
		return journalMsg(list)
	}
}

// record journals one mutation outcome. Without a journal store the entry is
// only kept in memory for the activity line.
func (a *App) record(e repository.JournalEntry) tea.Cmd {
	if a.repos.Journal == nil {
		a.activity = append([]repository.JournalEntry{e}, a.activity...)
		if len(a.activity) > activityLimit {
			a.activity = a.activity[:activityLimit]
		}
		return nil
	}
	ctx, journal := a.ctx, a.repos.Journal
	return func() tea.Msg {
		if _, err := journal.Record(ctx, e); err != nil {
			return errMsg{fmt.Errorf("record journal: %w", err)}
		}
		list, err := journal.Recent(ctx, activityLimit)
		if err != nil {
			return errMsg{fmt.Errorf("load journal: %w", err)}
		}
		return journalMsg(list)
	}
}

func describeEntry(e repository.JournalEntry) string {
	out := e.Kind + " " + e.Screen
	if e.EntityID != "" {
		out += " #" + e.EntityID
	}
	out += " " + e.Outcome
	if e.Message != "" {
		out += " (" + e.Message + ")"
	}
	if !e.CreatedAt.IsZero() {
		out += " at " + e.CreatedAt.Local().Format("15:04")
	}
	return out
}
