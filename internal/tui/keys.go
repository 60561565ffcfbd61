package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Up        key.Binding
	Down      key.Binding
	NextPage  key.Binding
	PrevPage  key.Binding
	Select    key.Binding
	SelectAll key.Binding
	Sort      key.Binding
	Filter    key.Binding
	Search    key.Binding
	Edit      key.Binding
	Add       key.Binding
	Refresh   key.Binding
	Password  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		NextTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next screen")),
		PrevTab:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev screen")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		NextPage:  key.NewBinding(key.WithKeys("right", "l", "]"), key.WithHelp("→", "next page")),
		PrevPage:  key.NewBinding(key.WithKeys("left", "h", "["), key.WithHelp("←", "prev page")),
		Select:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		SelectAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select page")),
		Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Filter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Edit:      key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit")),
		Add:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new product")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Password:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "password")),
	}
}

// screenKeys is the help.KeyMap for the active screen.
type screenKeys struct {
	keyMap
	screen  screen
	canEdit bool
}

func (k screenKeys) ShortHelp() []key.Binding {
	out := []key.Binding{k.NextTab, k.NextPage, k.Sort}
	switch k.screen {
	case screenEmployees:
		out = append(out, k.Filter, k.Select, k.Edit)
	case screenOrders:
		out = append(out, k.Filter)
	case screenInventory:
		out = append(out, k.Search)
		if k.canEdit {
			out = append(out, k.Add)
		}
	}
	return append(out, k.Refresh, k.Password, k.Quit)
}

func (k screenKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Up, k.Down, k.PrevPage, k.SelectAll, k.PrevTab}}
}

type formKeyMap struct {
	Submit key.Binding
	Next   key.Binding
	Prev   key.Binding
	Cycle  key.Binding
	Delete key.Binding
	Cancel key.Binding
}

func newFormKeyMap() formKeyMap {
	return formKeyMap{
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Cycle:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "cycle role")),
		Delete: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Next, k.Cancel}
}

func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Submit, k.Next, k.Prev, k.Cycle, k.Delete, k.Cancel}}
}
