package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/warehousedash/internal/api"
	"github.com/jask/warehousedash/internal/inventory"
	"github.com/jask/warehousedash/internal/tableview"
)

const (
	sortDate   tableview.SortKey = "date"
	sortAmount tableview.SortKey = "amount"
	sortType   tableview.SortKey = "type"
)

var orderFilters = func() []string {
	out := []string{tableview.FilterAll}
	for _, s := range api.OrderStatuses {
		out = append(out, string(s))
	}
	return out
}()

type ordersScreen struct {
	engine  *tableview.Engine[int64, api.Order]
	cursor  int
	loading bool
}

func newOrdersScreen(opts Options) *ordersScreen {
	engine := tableview.New(tableview.Options[int64, api.Order]{
		Key: func(o api.Order) int64 { return o.ID },
		Columns: []tableview.Column[api.Order]{
			{Key: sortDate, Compare: compareOrderDates},
			{Key: sortAmount, Compare: func(a, b api.Order) int { return a.TotalAmount.Cmp(b.TotalAmount) }},
			{Key: sortType, Text: func(o api.Order) string { return string(o.Type) }},
		},
		Match:    func(o api.Order, status string) bool { return string(o.Status) == status },
		PageSize: opts.PageSize,
		Locale:   opts.Locale,
		SortKey:  sortDate,
	})
	return &ordersScreen{engine: engine, loading: true}
}

// compareOrderDates puts undated orders last.
func compareOrderDates(a, b api.Order) int {
	switch {
	case a.DateCreated == nil && b.DateCreated == nil:
		return 0
	case a.DateCreated == nil:
		return 1
	case b.DateCreated == nil:
		return -1
	}
	return a.DateCreated.Compare(b.DateCreated.Time)
}

func (s *ordersScreen) clampCursor() {
	n := len(s.engine.Derive().Items)
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *ordersScreen) handleKey(a *App, m tea.KeyMsg) tea.Cmd {
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
	case key.Matches(m, a.keys.Sort):
		next := nextSortKey(s.engine)
		a.setParams(screenOrders, s.engine, tableview.ParamsUpdate{SortKey: &next})
		s.cursor = 0
		return a.savePref(screenOrders, s.engine.Params())
	case key.Matches(m, a.keys.Filter):
		next := nextFilter(orderFilters, s.engine.Params().Filter)
		a.setParams(screenOrders, s.engine, tableview.ParamsUpdate{Filter: &next})
		s.cursor = 0
		return a.savePref(screenOrders, s.engine.Params())
	}
	return nil
}

var orderColumns = []column{
	{"Order", 8},
	{"Type", 9},
	{"Status", 10},
	{"Total", 12},
	{"Created by", 10},
	{"Date", 16},
}

func statusStyle(st api.OrderStatus) func(...string) string {
	switch st {
	case api.OrderPending:
		return warningStyle.Render
	case api.OrderCancelled:
		return dimStyle.Render
	}
	return successStyle.Render
}

func (s *ordersScreen) view() string {
	var b strings.Builder
	params := s.engine.Params()
	v := s.engine.Derive()
	b.WriteString(dimStyle.Render(fmt.Sprintf("sort: %s  status: %s", params.SortKey, params.Filter)) + "\n")
	if s.loading && s.engine.Len() == 0 {
		b.WriteString("Loading orders…")
		return b.String()
	}
	b.WriteString(renderHeader(orderColumns) + "\n")
	if len(v.Items) == 0 {
		b.WriteString(dimStyle.Render("No orders match this filter") + "\n")
	}
	for i, o := range v.Items {
		date := "-"
		if o.DateCreated != nil && !o.DateCreated.IsZero() {
			date = o.DateCreated.Format("2006-01-02 15:04")
		}
		values := []string{
			"#" + strconv.FormatInt(o.ID, 10),
			string(o.Type),
			string(o.Status),
			inventory.FormatPrice(o.TotalAmount),
			strconv.FormatInt(o.CreatedBy, 10),
			date,
		}
		if i == s.cursor {
			b.WriteString(cursorStyle.Render(renderRow(orderColumns, values)) + "\n")
			continue
		}
		values[2] = statusStyle(o.Status)(cell(values[2], orderColumns[2].width))
		b.WriteString(renderRow(orderColumns, values) + "\n")
	}
	b.WriteString(dimStyle.Render(showing(v.Page, s.engine.PageSize(), v.TotalCount, "orders")) + "  " + pager(v.Page, v.TotalPages))
	return b.String()
}
