package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"golang.org/x/text/language"

	"github.com/salmonumbrella/folio-cli/internal/table"
)

// Request asks a Loader for one page. In local paging mode Page is 0 and
// the loader returns every row.
type Request struct {
	Page    int
	PerPage int
	Search  string
}

// Result is one loaded page. Total counts every matching row.
type Result struct {
	Rows  []table.Row
	Total int
}

// Loader fetches rows for the screen.
type Loader func(ctx context.Context, req Request) (Result, error)

// Config describes one browse screen.
type Config struct {
	Title        string
	Columns      []table.Column
	Paging       table.Mode
	PerPage      int
	Searchable   bool
	Locale       language.Tag
	SquareImages bool

	Load Loader
	// Delete enables the delete action, confirmed with y.
	Delete func(ctx context.Context, row table.Row) error
	// Detail renders the view pane; nil lists the row's fields.
	Detail func(row table.Row) string
	// EditHint enables the edit action and returns the status line it shows.
	EditHint func(row table.Row) string
	// CreateHint enables the create action.
	CreateHint  func() string
	CreateLabel string
}

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeConfirm
	modeDetail
)

type loadedMsg struct {
	seq int
	req Request
	res Result
}

type loadFailedMsg struct {
	seq int
	err error
}

type deletedMsg struct {
	row table.Row
	err error
}

// Model is the bubbletea model of a browse screen.
type Model struct {
	ctx context.Context
	cfg Config
	tbl *table.Table

	rows    []table.Row
	total   int
	page    int
	search  string
	loading bool
	seq     int

	cursor int
	mode   mode
	input  textinput.Model
	width  int

	// set by table callbacks during Dispatch
	pendingPage   int
	pendingSearch *string
	selected      table.Row
	selectedKind  table.EventKind

	detail  string
	status  string
	lastErr error
}

// New returns a model that loads its first page on Init.
func New(ctx context.Context, cfg Config) *Model {
	if cfg.PerPage <= 0 {
		cfg.PerPage = table.DefaultPerPage
	}
	if cfg.Detail == nil {
		cfg.Detail = fieldList
	}

	input := textinput.New()
	input.Prompt = "/ "

	m := &Model{
		ctx:   ctx,
		cfg:   cfg,
		page:  1,
		input: input,
		width: 100,
	}
	m.tbl = table.New(m.options())
	return m
}

func (m *Model) options() table.Options {
	opts := table.Options{
		Columns:      m.cfg.Columns,
		Rows:         m.rows,
		Loading:      m.loading,
		SquareImages: m.cfg.SquareImages,
		Locale:       m.cfg.Locale,
		OnView:       func(r table.Row) { m.selected, m.selectedKind = r, table.EventView },
	}

	if m.cfg.Paging == table.ModeServer {
		opts.Paging = table.Server{
			Page:     m.page,
			Total:    m.total,
			PerPage:  m.cfg.PerPage,
			OnChange: func(p int) { m.pendingPage = p },
		}
	} else {
		opts.Paging = table.Local{PerPage: m.cfg.PerPage}
	}

	if m.cfg.Searchable {
		opts.Search = &table.Search{
			Query:    m.search,
			OnChange: func(q string) { m.pendingSearch = &q },
		}
	}
	if m.cfg.EditHint != nil {
		opts.OnEdit = func(r table.Row) { m.selected, m.selectedKind = r, table.EventEdit }
	}
	if m.cfg.Delete != nil {
		opts.OnDelete = func(r table.Row) { m.selected, m.selectedKind = r, table.EventDelete }
	}
	if m.cfg.CreateHint != nil {
		opts.Action = &table.Action{
			Label:   m.cfg.CreateLabel,
			OnPress: func() { m.status = m.cfg.CreateHint() },
		}
	}
	return opts
}

func (m *Model) sync() {
	m.tbl.SetOptions(m.options())
	if n := len(m.tbl.Window()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

// Init starts the first load.
func (m *Model) Init() tea.Cmd {
	return m.fetch()
}

func (m *Model) fetch() tea.Cmd {
	if m.cfg.Load == nil {
		return nil
	}
	m.seq++
	m.loading = true
	m.lastErr = nil
	m.sync()

	req := Request{PerPage: m.cfg.PerPage, Search: m.search}
	if m.cfg.Paging == table.ModeServer {
		req.Page = m.page
	}
	seq, ctx, load := m.seq, m.ctx, m.cfg.Load
	return func() tea.Msg {
		res, err := load(ctx, req)
		if err != nil {
			return loadFailedMsg{seq: seq, err: err}
		}
		return loadedMsg{seq: seq, req: req, res: res}
	}
}

// Update handles load results and key presses.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case loadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.rows = msg.res.Rows
		m.total = msg.res.Total
		if msg.req.Page > 0 {
			m.page = msg.req.Page
			// a delete or search emptied this page; step back to the last one
			if last := table.PageCount(m.total, m.cfg.PerPage); len(m.rows) == 0 && m.page > last && last > 0 {
				m.page = last
				return m, m.fetch()
			}
		}
		m.sync()
		return m, nil
	case loadFailedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.lastErr = msg.err
		m.sync()
		return m, nil
	case deletedMsg:
		if msg.err != nil {
			m.lastErr = msg.err
			return m, nil
		}
		m.status = fmt.Sprintf("Deleted %s", msg.row.ID())
		return m, m.fetch()
	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	}

	if m.mode == modeSearch {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}

	switch m.mode {
	case modeSearch:
		switch key {
		case "enter":
			m.mode = modeBrowse
			m.input.Blur()
			return m.dispatch(table.Event{Kind: table.EventSearch, Query: strings.TrimSpace(m.input.Value())})
		case "esc":
			m.mode = modeBrowse
			m.input.Blur()
			m.input.SetValue(m.search)
			return nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	case modeConfirm:
		row := m.selected
		m.mode = modeBrowse
		if key != "y" && key != "Y" {
			m.status = "Delete canceled"
			return nil
		}
		ctx, del := m.ctx, m.cfg.Delete
		return func() tea.Msg {
			return deletedMsg{row: row, err: del(ctx, row)}
		}
	case modeDetail:
		if key == "esc" || key == "q" || key == "enter" || key == "v" {
			m.mode = modeBrowse
			m.detail = ""
		}
		return nil
	}

	switch key {
	case "q", "esc":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tbl.Window())-1 {
			m.cursor++
		}
	case "left", "h", "pgup":
		return m.dispatch(table.Event{Kind: table.EventPageChange, Page: m.tbl.Page() - 1})
	case "right", "l", "pgdown":
		return m.dispatch(table.Event{Kind: table.EventPageChange, Page: m.tbl.Page() + 1})
	case "enter", "v":
		return m.dispatch(table.Event{Kind: table.EventView, Row: m.cursor})
	case "e":
		return m.dispatch(table.Event{Kind: table.EventEdit, Row: m.cursor})
	case "d":
		return m.dispatch(table.Event{Kind: table.EventDelete, Row: m.cursor})
	case "n":
		return m.dispatch(table.Event{Kind: table.EventCreate})
	case "/":
		if !m.cfg.Searchable || m.loading {
			return nil
		}
		m.mode = modeSearch
		m.input.SetValue(m.search)
		return m.input.Focus()
	case "r":
		if !m.loading {
			return m.fetch()
		}
	}
	return nil
}

// dispatch routes ev through the table and acts on whatever callback fired.
func (m *Model) dispatch(ev table.Event) tea.Cmd {
	m.pendingPage, m.pendingSearch, m.selected = 0, nil, nil

	err := m.tbl.Dispatch(ev)
	switch {
	case errors.Is(err, table.ErrDisabled):
		m.status = table.Translate(m.cfg.Locale, "Loading...")
		return nil
	case err != nil:
		return nil
	}

	switch {
	case m.pendingPage > 0:
		m.page = m.pendingPage
		m.cursor = 0
		return m.fetch()
	case m.pendingSearch != nil:
		m.search = *m.pendingSearch
		m.page = 1
		m.cursor = 0
		return m.fetch()
	case m.selected != nil:
		return m.act(m.selected, m.selectedKind)
	}

	// local page changes move the table's own counter
	if ev.Kind == table.EventPageChange {
		m.cursor = 0
	}
	return nil
}

func (m *Model) act(row table.Row, kind table.EventKind) tea.Cmd {
	switch kind {
	case table.EventView:
		m.detail = m.cfg.Detail(row)
		m.mode = modeDetail
	case table.EventEdit:
		m.status = m.cfg.EditHint(row)
	case table.EventDelete:
		m.mode = modeConfirm
	}
	return nil
}

func fieldList(row table.Row) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %v\n", k, row[k])
	}
	return strings.TrimRight(b.String(), "\n")
}
