// Package tableview derives a filtered, sorted, paginated view over an
// in-memory entity cache and tracks row selection on the visible page.
package tableview

import (
	"errors"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FilterAll passes every entity through.
const FilterAll = "all"

// DefaultPageSize is used when Options.PageSize is not positive.
const DefaultPageSize = 10

var ErrUnknownSortKey = errors.New("tableview: unknown sort key")

// SortKey names a sortable column.
type SortKey string

// Column describes one sortable attribute. When Compare is nil the column
// sorts by Text using the engine's collator.
type Column[E any] struct {
	Key     SortKey
	Text    func(E) string
	Compare func(a, b E) int
}

type Options[K comparable, E any] struct {
	Key     func(E) K
	Columns []Column[E]
	// Match decides whether e passes a filter other than FilterAll.
	// A nil Match lets everything through.
	Match    func(e E, filter string) bool
	PageSize int
	Locale   language.Tag
	SortKey  SortKey
	Filter   string
}

// View is a derived page of the cache.
type View[E any] struct {
	Items      []E
	TotalCount int
	TotalPages int
	Page       int
}

// ParamsUpdate is a partial update of the view parameters; nil fields are kept.
type ParamsUpdate struct {
	SortKey *SortKey
	Filter  *string
	Page    *int
}

// Params are the current view parameters.
type Params struct {
	SortKey SortKey
	Filter  string
	Page    int
}

// Engine owns the entity cache of a single table. It is not safe for
// concurrent use; callers keep it on one goroutine.
type Engine[K comparable, E any] struct {
	key      func(E) K
	columns  map[SortKey]Column[E]
	order    []SortKey
	match    func(E, string) bool
	pageSize int
	coll     *collate.Collator

	cache    []E
	sortKey  SortKey
	filter   string
	page     int
	selected map[K]struct{}
}

// New builds an engine with an empty cache. It panics if opts.Key is nil.
func New[K comparable, E any](opts Options[K, E]) *Engine[K, E] {
	if opts.Key == nil {
		panic("tableview: Options.Key is required")
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Locale == language.Und {
		opts.Locale = language.English
	}
	if opts.Filter == "" {
		opts.Filter = FilterAll
	}
	e := &Engine[K, E]{
		key:      opts.Key,
		columns:  make(map[SortKey]Column[E], len(opts.Columns)),
		match:    opts.Match,
		pageSize: opts.PageSize,
		coll:     collate.New(opts.Locale),
		filter:   opts.Filter,
		page:     1,
		selected: make(map[K]struct{}),
	}
	for _, c := range opts.Columns {
		if _, dup := e.columns[c.Key]; !dup {
			e.order = append(e.order, c.Key)
		}
		e.columns[c.Key] = c
	}
	if _, ok := e.columns[opts.SortKey]; ok {
		e.sortKey = opts.SortKey
	} else if len(e.order) > 0 {
		e.sortKey = e.order[0]
	}
	return e
}

// SortKeys lists the configured sort keys in declaration order.
func (e *Engine[K, E]) SortKeys() []SortKey {
	return append([]SortKey(nil), e.order...)
}

func (e *Engine[K, E]) Params() Params {
	return Params{SortKey: e.sortKey, Filter: e.filter, Page: e.page}
}

func (e *Engine[K, E]) PageSize() int { return e.pageSize }

// Len is the size of the whole cache, ignoring the filter.
func (e *Engine[K, E]) Len() int { return len(e.cache) }

// All returns the cache in insertion order.
func (e *Engine[K, E]) All() []E {
	return append([]E(nil), e.cache...)
}

// SetCache replaces the cache wholesale. Entities sharing a key collapse onto
// the first occurrence's position with the last occurrence's attributes.
func (e *Engine[K, E]) SetCache(entities []E) {
	next := make([]E, 0, len(entities))
	pos := make(map[K]int, len(entities))
	for _, ent := range entities {
		k := e.key(ent)
		if i, ok := pos[k]; ok {
			next[i] = ent
			continue
		}
		pos[k] = len(next)
		next = append(next, ent)
	}
	e.cache = next
	e.settle()
}

// SetParams merges update into the current parameters. A changed sort key or
// filter sends the view back to page 1. An unknown sort key leaves every
// parameter untouched.
func (e *Engine[K, E]) SetParams(update ParamsUpdate) error {
	if update.SortKey != nil {
		if _, ok := e.columns[*update.SortKey]; !ok {
			return ErrUnknownSortKey
		}
	}
	reset := false
	if update.SortKey != nil && *update.SortKey != e.sortKey {
		e.sortKey = *update.SortKey
		reset = true
	}
	if update.Filter != nil {
		f := *update.Filter
		if f == "" {
			f = FilterAll
		}
		if f != e.filter {
			e.filter = f
			reset = true
		}
	}
	switch {
	case reset:
		e.page = 1
	case update.Page != nil:
		e.page = *update.Page
	}
	e.settle()
	return nil
}

func (e *Engine[K, E]) SetPage(page int) {
	e.page = page
	e.settle()
}

func (e *Engine[K, E]) NextPage() { e.SetPage(e.page + 1) }

func (e *Engine[K, E]) PrevPage() { e.SetPage(e.page - 1) }

// Derive computes the current page. It does not modify the engine.
func (e *Engine[K, E]) Derive() View[E] {
	rows := e.filtered()
	e.sortRows(rows)
	total := len(rows)
	pages := totalPages(total, e.pageSize)
	page := clampPage(e.page, pages)
	start := (page - 1) * e.pageSize
	end := start + e.pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	items := make([]E, end-start)
	copy(items, rows[start:end])
	return View[E]{Items: items, TotalCount: total, TotalPages: pages, Page: page}
}

// Get looks up an entity by key in the whole cache.
func (e *Engine[K, E]) Get(id K) (E, bool) {
	for _, ent := range e.cache {
		if e.key(ent) == id {
			return ent, true
		}
	}
	var zero E
	return zero, false
}

// Upsert replaces the entity with the same key in place, or appends it.
func (e *Engine[K, E]) Upsert(ent E) {
	k := e.key(ent)
	next := make([]E, len(e.cache), len(e.cache)+1)
	copy(next, e.cache)
	replaced := false
	for i := range next {
		if e.key(next[i]) == k {
			next[i] = ent
			replaced = true
			break
		}
	}
	if !replaced {
		next = append(next, ent)
	}
	e.cache = next
	e.settle()
}

// Remove drops the entity with key id. It reports whether anything was removed.
func (e *Engine[K, E]) Remove(id K) bool {
	next := make([]E, 0, len(e.cache))
	for _, ent := range e.cache {
		if e.key(ent) != id {
			next = append(next, ent)
		}
	}
	if len(next) == len(e.cache) {
		return false
	}
	e.cache = next
	delete(e.selected, id)
	e.settle()
	return true
}

// ToggleSelect flips the selection of id. Keys not on the current page are ignored.
func (e *Engine[K, E]) ToggleSelect(id K) {
	if !e.onPage(id) {
		return
	}
	if _, ok := e.selected[id]; ok {
		delete(e.selected, id)
		return
	}
	e.selected[id] = struct{}{}
}

// ToggleSelectAllOnPage selects every row on the page, or clears the page if
// all of its rows are already selected.
func (e *Engine[K, E]) ToggleSelectAllOnPage() {
	items := e.Derive().Items
	if len(items) == 0 {
		return
	}
	if e.AllOnPageSelected() {
		for _, ent := range items {
			delete(e.selected, e.key(ent))
		}
		return
	}
	for _, ent := range items {
		e.selected[e.key(ent)] = struct{}{}
	}
}

func (e *Engine[K, E]) ClearSelection() {
	e.selected = make(map[K]struct{})
}

func (e *Engine[K, E]) IsSelected(id K) bool {
	_, ok := e.selected[id]
	return ok
}

// Selected returns the selected keys in page order.
func (e *Engine[K, E]) Selected() []K {
	var out []K
	for _, ent := range e.Derive().Items {
		k := e.key(ent)
		if _, ok := e.selected[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// AllOnPageSelected is false for an empty page.
func (e *Engine[K, E]) AllOnPageSelected() bool {
	items := e.Derive().Items
	if len(items) == 0 {
		return false
	}
	for _, ent := range items {
		if _, ok := e.selected[e.key(ent)]; !ok {
			return false
		}
	}
	return true
}

// settle clamps the page and drops selections that left the current page.
func (e *Engine[K, E]) settle() {
	view := e.Derive()
	e.page = view.Page
	if len(e.selected) == 0 {
		return
	}
	visible := make(map[K]struct{}, len(view.Items))
	for _, ent := range view.Items {
		visible[e.key(ent)] = struct{}{}
	}
	for k := range e.selected {
		if _, ok := visible[k]; !ok {
			delete(e.selected, k)
		}
	}
}

func (e *Engine[K, E]) onPage(id K) bool {
	for _, ent := range e.Derive().Items {
		if e.key(ent) == id {
			return true
		}
	}
	return false
}

func (e *Engine[K, E]) filtered() []E {
	out := make([]E, 0, len(e.cache))
	for _, ent := range e.cache {
		if e.filter == FilterAll || e.match == nil || e.match(ent, e.filter) {
			out = append(out, ent)
		}
	}
	return out
}

func (e *Engine[K, E]) sortRows(rows []E) {
	col, ok := e.columns[e.sortKey]
	if !ok {
		return
	}
	cmp := col.Compare
	if cmp == nil {
		if col.Text == nil {
			return
		}
		text := col.Text
		cmp = func(a, b E) int { return e.coll.CompareString(text(a), text(b)) }
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return cmp(rows[i], rows[j]) < 0
	})
}

func totalPages(count, size int) int {
	if count == 0 {
		return 0
	}
	return (count + size - 1) / size
}

func clampPage(page, pages int) int {
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		return 1
	}
	if page > pages {
		return pages
	}
	return page
}
