// Package tui is the bubbletea front end of the warehouse dashboard.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/jask/warehousedash/internal/api"
	"github.com/jask/warehousedash/internal/database/repository"
	"github.com/jask/warehousedash/internal/session"
	"github.com/jask/warehousedash/internal/tableview"
)

// Backend is the remote store the screens read and mutate. *api.Client implements it.
type Backend interface {
	ListUsers(ctx context.Context, sess session.Session) ([]api.User, error)
	UpdateUser(ctx context.Context, sess session.Session, id int64, in api.UserUpdate) (api.User, error)
	DeleteUser(ctx context.Context, sess session.Session, id int64) error
	ChangeOwnPassword(ctx context.Context, sess session.Session, current, next string) error
	ListProducts(ctx context.Context, sess session.Session) ([]api.Product, error)
	CreateProduct(ctx context.Context, sess session.Session, in api.ProductInput) (api.Product, error)
	ListOrders(ctx context.Context, sess session.Session) ([]api.Order, error)
}

// Repos are the optional local stores. Nil repos disable the feature.
type Repos struct {
	Prefs   *repository.ViewPrefRepo
	Journal *repository.JournalRepo
}

type Options struct {
	PageSize           int
	Locale             language.Tag
	PasswordCloseDelay time.Duration
	Logger             zerolog.Logger
}

type screen string

const (
	screenEmployees screen = "employees"
	screenInventory screen = "inventory"
	screenOrders    screen = "orders"
)

func (s screen) title() string {
	switch s {
	case screenEmployees:
		return "Employees"
	case screenInventory:
		return "Inventory"
	default:
		return "Orders"
	}
}

// screensFor lists the screens a role may open, in tab order.
func screensFor(role session.Role) []screen {
	if role == session.RoleAdmin {
		return []screen{screenEmployees, screenInventory, screenOrders}
	}
	return []screen{screenInventory, screenOrders}
}

func canManageProducts(role session.Role) bool {
	return role == session.RoleAdmin || role == session.RoleManager
}

// App is the root model.
type App struct {
	ctx     context.Context
	sess    session.Session
	backend Backend
	repos   Repos
	log     zerolog.Logger

	keys     keyMap
	formKeys formKeyMap
	help     help.Model

	screens []screen
	active  int
	width   int
	height  int

	employees *employeesScreen
	inventory *inventoryScreen
	orders    *ordersScreen
	password  *passwordModal

	status    string
	statusErr bool
	activity  []repository.JournalEntry
}

func New(ctx context.Context, sess session.Session, backend Backend, repos Repos, opts Options) *App {
	if opts.PageSize <= 0 {
		opts.PageSize = tableview.DefaultPageSize
	}
	if opts.Locale == language.Und {
		opts.Locale = language.English
	}
	log := opts.Logger.With().Str("component", "tui").Logger()
	a := &App{
		ctx:      ctx,
		sess:     sess,
		backend:  backend,
		repos:    repos,
		log:      log,
		keys:     newKeyMap(),
		formKeys: newFormKeyMap(),
		help:     help.New(),
		screens:  screensFor(sess.Role),
	}
	a.employees = newEmployeesScreen(backend, sess, opts, log)
	a.inventory = newInventoryScreen(opts)
	a.orders = newOrdersScreen(opts)
	a.password = newPasswordModal(backend, sess, opts.PasswordCloseDelay, log)
	return a
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.loadPrefs(), a.loadJournal(), a.loadProducts(), a.loadOrders()}
	if a.allowed(screenEmployees) {
		cmds = append(cmds, a.loadUsers())
	}
	return tea.Batch(cmds...)
}

func (a *App) allowed(s screen) bool {
	for _, x := range a.screens {
		if x == s {
			return true
		}
	}
	return false
}

func (a *App) current() screen { return a.screens[a.active] }

func (a *App) setStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.help.Width = m.Width
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(m)

	case usersLoadedMsg:
		a.employees.loading = false
		if m.err != nil {
			a.setStatus(api.Message(m.err), true)
			return a, nil
		}
		a.employees.setUsers(m.users)
	case productsLoadedMsg:
		a.inventory.loading = false
		if m.err != nil {
			a.setStatus(api.Message(m.err), true)
			return a, nil
		}
		a.inventory.engine.SetCache(m.products)
		a.inventory.clampCursor()
	case ordersLoadedMsg:
		a.orders.loading = false
		if m.err != nil {
			a.setStatus(api.Message(m.err), true)
			return a, nil
		}
		a.orders.engine.SetCache(m.orders)
		a.orders.clampCursor()
	case prefsLoadedMsg:
		a.applyPrefs(m)
	case journalMsg:
		a.activity = []repository.JournalEntry(m)

	case editDoneMsg:
		return a, a.employees.applyEdit(a, m)
	case deleteDoneMsg:
		return a, a.employees.applyDelete(a, m)
	case productCreatedMsg:
		return a, a.inventory.applyCreate(a, m)
	case passwordDoneMsg:
		return a, a.password.resolve(a, m)
	case passwordCloseMsg:
		a.password.autoClose(m)

	case errMsg:
		a.log.Error().Err(m.err).Msg("background command failed")
		a.setStatus("error: "+m.err.Error(), true)
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}
	// Modals take every key first.
	if a.password.visible() {
		return a, a.password.handleKey(a, m)
	}
	switch a.current() {
	case screenEmployees:
		if a.employees.wf.Open() {
			return a, a.employees.handleFormKey(a, m)
		}
	case screenInventory:
		if a.inventory.adding {
			return a, a.inventory.handleFormKey(a, m)
		}
		if a.inventory.searching {
			return a, a.inventory.handleSearchKey(a, m)
		}
	}

	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.NextTab):
		a.active = (a.active + 1) % len(a.screens)
		return a, nil
	case key.Matches(m, a.keys.PrevTab):
		a.active = (a.active - 1 + len(a.screens)) % len(a.screens)
		return a, nil
	case key.Matches(m, a.keys.Password):
		return a, a.password.open()
	case key.Matches(m, a.keys.Refresh):
		return a, a.refresh()
	}

	switch a.current() {
	case screenEmployees:
		return a, a.employees.handleKey(a, m)
	case screenInventory:
		return a, a.inventory.handleKey(a, m)
	default:
		return a, a.orders.handleKey(a, m)
	}
}

func (a *App) refresh() tea.Cmd {
	switch a.current() {
	case screenEmployees:
		a.employees.loading = true
		return a.loadUsers()
	case screenInventory:
		a.inventory.loading = true
		return a.loadProducts()
	default:
		a.orders.loading = true
		return a.loadOrders()
	}
}

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Warehouse Dashboard"))
	b.WriteString(dimStyle.Render("  " + a.sess.Email + " · " + a.sess.Role.Title()))
	b.WriteString("\n")
	tabs := make([]string, len(a.screens))
	for i, s := range a.screens {
		if i == a.active {
			tabs[i] = activeTabStyle.Render(s.title())
		} else {
			tabs[i] = tabStyle.Render(s.title())
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	var modal, footer string
	switch a.current() {
	case screenEmployees:
		b.WriteString(a.employees.view())
		if a.employees.wf.Open() {
			modal = a.employees.formView()
			footer = a.help.View(a.formKeys)
		}
	case screenInventory:
		b.WriteString(a.inventory.view(canManageProducts(a.sess.Role)))
		if a.inventory.adding {
			modal = a.inventory.formView()
			footer = a.help.View(a.formKeys)
		}
	default:
		b.WriteString(a.orders.view())
	}
	if a.password.visible() {
		modal = a.password.view()
		footer = a.help.View(a.formKeys)
	}
	if footer == "" {
		footer = a.help.View(screenKeys{keyMap: a.keys, screen: a.current(), canEdit: canManageProducts(a.sess.Role)})
	}
	return placeWithFooter(a.width, a.height, b.String(), modal, a.statusLine(), footer)
}

func (a *App) statusLine() string {
	line := ""
	switch {
	case a.status != "" && a.statusErr:
		line = errorStyle.Render(a.status)
	case a.status != "":
		line = infoStyle.Render(a.status)
	}
	if len(a.activity) > 0 {
		if line != "" {
			line += "  "
		}
		line += dimStyle.Render("last: " + describeEntry(a.activity[0]))
	}
	return line
}

type (
	usersLoadedMsg struct {
		users []api.User
		err   error
	}
	productsLoadedMsg struct {
		products []api.Product
		err      error
	}
	ordersLoadedMsg struct {
		orders []api.Order
		err    error
	}
	errMsg struct{ err error }
)

func (e errMsg) Error() string { return e.err.Error() }

func (a *App) loadUsers() tea.Cmd {
	ctx, sess, backend := a.ctx, a.sess, a.backend
	return func() tea.Msg {
		users, err := backend.ListUsers(ctx, sess)
		return usersLoadedMsg{users: users, err: err}
	}
}

func (a *App) loadProducts() tea.Cmd {
	ctx, sess, backend := a.ctx, a.sess, a.backend
	return func() tea.Msg {
		products, err := backend.ListProducts(ctx, sess)
		return productsLoadedMsg{products: products, err: err}
	}
}

func (a *App) loadOrders() tea.Cmd {
	ctx, sess, backend := a.ctx, a.sess, a.backend
	return func() tea.Msg {
		orders, err := backend.ListOrders(ctx, sess)
		return ordersLoadedMsg{orders: orders, err: err}
	}
}
