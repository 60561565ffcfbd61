package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/warehousedash/internal/api"
	"github.com/jask/warehousedash/internal/database/repository"
	"github.com/jask/warehousedash/internal/inventory"
	"github.com/jask/warehousedash/internal/session"
	"github.com/jask/warehousedash/internal/tableview"
)

const (
	sortProductName tableview.SortKey = "name"
	sortSKU         tableview.SortKey = "sku"
	sortCategory    tableview.SortKey = "category"
	sortStock       tableview.SortKey = "stock"
)

type productCreatedMsg struct {
	product api.Product
	err     error
}

// Add-product form fields, in focus order.
const (
	fieldSKU = iota
	fieldName
	fieldCategory
	fieldStock
	fieldReorder
	fieldPrice
	fieldBin
	productFields
)

var productFieldLabels = [productFields]string{
	"SKU:           ",
	"Name:          ",
	"Category:      ",
	"Current stock: ",
	"Reorder level: ",
	"Unit price:    ",
	"Bin location:  ",
}

type inventoryScreen struct {
	engine  *tableview.Engine[int64, api.Product]
	cursor  int
	loading bool

	search    textinput.Model
	searching bool

	adding  bool
	saving  bool
	inputs  [productFields]textinput.Model
	focus   int
	formErr string
}

func newInventoryScreen(opts Options) *inventoryScreen {
	engine := tableview.New(tableview.Options[int64, api.Product]{
		Key: func(p api.Product) int64 { return p.ID },
		Columns: []tableview.Column[api.Product]{
			{Key: sortProductName, Text: func(p api.Product) string { return p.Name }},
			{Key: sortSKU, Text: func(p api.Product) string { return p.SKU }},
			{Key: sortCategory, Text: func(p api.Product) string { return p.Category }},
			{Key: sortStock, Compare: func(a, b api.Product) int { return a.CurrentStock - b.CurrentStock }},
		},
		Match:    inventory.Match,
		PageSize: opts.PageSize,
		Locale:   opts.Locale,
		SortKey:  sortProductName,
	})
	search := newInput("/ ", 80)
	search.Placeholder = "name, sku or category"

	s := &inventoryScreen{engine: engine, loading: true, search: search}
	for i := range s.inputs {
		s.inputs[i] = newInput(productFieldLabels[i], 120)
	}
	return s
}

func (s *inventoryScreen) clampCursor() {
	n := len(s.engine.Derive().Items)
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *inventoryScreen) handleKey(a *App, m tea.KeyMsg) tea.Cmd {
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
		a.setParams(screenInventory, s.engine, tableview.ParamsUpdate{SortKey: &next})
		s.cursor = 0
		return a.savePref(screenInventory, s.engine.Params())
	case key.Matches(m, a.keys.Search):
		s.searching = true
		return s.search.Focus()
	case key.Matches(m, a.keys.Add):
		if !canManageProducts(a.sess.Role) {
			a.setStatus(api.ForbiddenMessage(session.RoleManager), true)
			return nil
		}
		return s.openForm()
	}
	return nil
}

// handleSearchKey edits the query; every keystroke re-filters.
func (s *inventoryScreen) handleSearchKey(a *App, m tea.KeyMsg) tea.Cmd {
	switch m.Type {
	case tea.KeyEsc:
		s.search.SetValue("")
		s.applySearch(a)
		s.searching = false
		s.search.Blur()
		return nil
	case tea.KeyEnter:
		s.searching = false
		s.search.Blur()
		return nil
	}
	var cmd tea.Cmd
	s.search, cmd = s.search.Update(m)
	s.applySearch(a)
	return cmd
}

func (s *inventoryScreen) applySearch(a *App) {
	q := strings.TrimSpace(s.search.Value())
	if q == "" {
		q = tableview.FilterAll
	}
	a.setParams(screenInventory, s.engine, tableview.ParamsUpdate{Filter: &q})
	s.cursor = 0
}

func (s *inventoryScreen) openForm() tea.Cmd {
	s.adding = true
	s.saving = false
	s.formErr = ""
	for i := range s.inputs {
		s.inputs[i].SetValue("")
	}
	s.inputs[fieldStock].SetValue("0")
	s.inputs[fieldReorder].SetValue("0")
	s.focus = fieldSKU
	return s.applyFocus()
}

func (s *inventoryScreen) applyFocus() tea.Cmd {
	for i := range s.inputs {
		s.inputs[i].Blur()
	}
	return s.inputs[s.focus].Focus()
}

func (s *inventoryScreen) handleFormKey(a *App, m tea.KeyMsg) tea.Cmd {
	if s.saving {
		return nil
	}
	switch {
	case key.Matches(m, a.formKeys.Cancel):
		s.adding = false
		s.formErr = ""
		return nil
	case key.Matches(m, a.formKeys.Submit):
		return s.submit(a)
	case key.Matches(m, a.formKeys.Next):
		s.focus = (s.focus + 1) % productFields
		return s.applyFocus()
	case key.Matches(m, a.formKeys.Prev):
		s.focus = (s.focus - 1 + productFields) % productFields
		return s.applyFocus()
	}
	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(m)
	s.formErr = ""
	return cmd
}

func (s *inventoryScreen) input() (api.ProductInput, error) {
	val := func(i int) string { return strings.TrimSpace(s.inputs[i].Value()) }
	stock, err := atoiOrZero(val(fieldStock))
	if err != nil {
		return api.ProductInput{}, inventory.ErrInvalidStock
	}
	reorder, err := atoiOrZero(val(fieldReorder))
	if err != nil {
		return api.ProductInput{}, inventory.ErrInvalidReorder
	}
	price, err := inventory.ParsePrice(val(fieldPrice))
	if err != nil {
		return api.ProductInput{}, inventory.ErrInvalidPrice
	}
	in := api.ProductInput{
		SKU:          val(fieldSKU),
		Name:         val(fieldName),
		Category:     val(fieldCategory),
		CurrentStock: stock,
		ReorderLevel: reorder,
		UnitPrice:    price,
		BinLocation:  val(fieldBin),
	}
	return in, inventory.Validate(in)
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func (s *inventoryScreen) submit(a *App) tea.Cmd {
	in, err := s.input()
	if err != nil {
		s.formErr = inventory.Message(err)
		return nil
	}
	s.saving = true
	ctx, sess, backend := a.ctx, a.sess, a.backend
	return func() tea.Msg {
		p, err := backend.CreateProduct(ctx, sess, in)
		return productCreatedMsg{product: p, err: err}
	}
}

// applyCreate closes the form on success and refetches the whole list.
func (s *inventoryScreen) applyCreate(a *App, m productCreatedMsg) tea.Cmd {
	s.saving = false
	entry := repository.JournalEntry{Screen: string(screenInventory), Kind: "create"}
	if m.err != nil {
		s.formErr = api.Message(m.err)
		entry.Outcome = "failed"
		entry.Message = s.formErr
		return a.record(entry)
	}
	s.adding = false
	s.loading = true
	entry.EntityID = strconv.FormatInt(m.product.ID, 10)
	entry.Outcome = "applied"
	a.setStatus("Added "+m.product.Name, false)
	return tea.Batch(a.record(entry), a.loadProducts())
}

var productColumns = []column{
	{" ", 1},
	{"SKU", 10},
	{"Name", 26},
	{"Category", 14},
	{"Stock", 7},
	{"Reorder", 7},
	{"Price", 10},
	{"Bin", 8},
}

func (s *inventoryScreen) view(canEdit bool) string {
	var b strings.Builder
	params := s.engine.Params()
	v := s.engine.Derive()

	head := fmt.Sprintf("sort: %s", params.SortKey)
	if params.Filter != tableview.FilterAll {
		head += fmt.Sprintf("  search: %q", params.Filter)
	}
	b.WriteString(dimStyle.Render(head) + "\n")
	if s.searching {
		b.WriteString(s.search.View() + "\n")
	}
	if s.loading && s.engine.Len() == 0 {
		b.WriteString("Loading products…")
		return b.String()
	}
	b.WriteString(renderHeader(productColumns) + "\n")
	if len(v.Items) == 0 {
		b.WriteString(dimStyle.Render("No products found") + "\n")
	}
	for i, p := range v.Items {
		mark := " "
		if p.LowStock() {
			mark = "!"
		}
		line := renderRow(productColumns, []string{
			mark, p.SKU, p.Name, p.Category,
			strconv.Itoa(p.CurrentStock), strconv.Itoa(p.ReorderLevel),
			inventory.FormatPrice(p.UnitPrice), p.BinLocation,
		})
		switch {
		case i == s.cursor:
			line = cursorStyle.Render(line)
		case p.LowStock():
			line = lowStockStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(dimStyle.Render(showing(v.Page, s.engine.PageSize(), v.TotalCount, "products")) + "  " + pager(v.Page, v.TotalPages) + "\n")

	sum := inventory.Summarize(s.engine.All())
	line := fmt.Sprintf("%d products · %d units · value %s", sum.Products, sum.Units, inventory.FormatPrice(sum.StockValue))
	b.WriteString(dimStyle.Render(line))
	if sum.LowStock > 0 {
		b.WriteString("  " + warningStyle.Render(fmt.Sprintf("%d low on stock", sum.LowStock)))
	}
	if !canEdit {
		b.WriteString("\n" + dimStyle.Render("read only"))
	}
	return b.String()
}

func (s *inventoryScreen) formView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New product") + "\n")
	for i := range s.inputs {
		b.WriteString(s.inputs[i].View() + "\n")
	}
	if s.saving {
		b.WriteString(infoStyle.Render("Saving…") + "\n")
	}
	if s.formErr != "" {
		b.WriteString(errorStyle.Render(s.formErr) + "\n")
	}
	return modalStyle.Render(strings.TrimRight(b.String(), "\n"))
}
