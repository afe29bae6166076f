package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salmonumbrella/folio-cli/internal/table"
)

type fakeSource struct {
	mu       sync.Mutex
	rows     []table.Row
	requests []Request
	err      error
	deleted  []string
}

func newSource(n int) *fakeSource {
	s := &fakeSource{}
	for i := 1; i <= n; i++ {
		s.rows = append(s.rows, table.Row{"id": fmt.Sprint(i), "name": fmt.Sprintf("Row %d", i)})
	}
	return s
}

func (s *fakeSource) load(_ context.Context, req Request) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return Result{}, s.err
	}
	rows := s.rows
	if req.Search != "" {
		var matched []table.Row
		for _, r := range rows {
			if strings.Contains(r["name"].(string), req.Search) {
				matched = append(matched, r)
			}
		}
		rows = matched
	}
	total := len(rows)
	if req.Page > 0 {
		start := min((req.Page-1)*req.PerPage, len(rows))
		end := min(start+req.PerPage, len(rows))
		rows = rows[start:end]
	}
	return Result{Rows: rows, Total: total}, nil
}

func (s *fakeSource) delete(_ context.Context, row table.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, row.ID())
	kept := s.rows[:0:0]
	for _, r := range s.rows {
		if r.ID() != row.ID() {
			kept = append(kept, r)
		}
	}
	s.rows = kept
	return nil
}

func (s *fakeSource) lastRequest() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func press(m *Model, k string) tea.Cmd {
	_, cmd := m.Update(key(k))
	return cmd
}

// settle runs cmd and feeds its message back, returning the follow-up command.
func settle(t *testing.T, m *Model, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	require.NotNil(t, cmd)
	_, next := m.Update(cmd())
	return next
}

func serverConfig(src *fakeSource) Config {
	return Config{
		Title:   "Skills",
		Columns: []table.Column{table.Text("name", "NAME"), table.Actions("ACTIONS")},
		Paging:  table.ModeServer,
		PerPage: 10,
		Load:    src.load,
	}
}

func TestInitLoadsFirstPage(t *testing.T) {
	src := newSource(23)
	m := New(context.Background(), serverConfig(src))

	cmd := m.Init()
	assert.Contains(t, m.View(), "Loading...")

	settle(t, m, cmd)
	assert.Equal(t, Request{Page: 1, PerPage: 10}, src.lastRequest())
	view := m.View()
	assert.Contains(t, view, "Skills")
	assert.Contains(t, view, "Row 1")
	assert.Contains(t, view, "Page 1 of 3")
	assert.NotContains(t, view, "Row 11")
}

func TestServerPaging(t *testing.T) {
	src := newSource(23)
	m := New(context.Background(), serverConfig(src))
	settle(t, m, m.Init())

	assert.Nil(t, press(m, "left"), "no page before the first")

	settle(t, m, press(m, "right"))
	assert.Equal(t, 2, src.lastRequest().Page)
	assert.Contains(t, m.View(), "Row 11")
	assert.Contains(t, m.View(), "Page 2 of 3")

	settle(t, m, press(m, "l"))
	assert.Equal(t, 3, src.lastRequest().Page)
	assert.Nil(t, press(m, "right"), "no page after the last")
	assert.Len(t, src.requests, 3)
}

func TestLoadingBlocksInteraction(t *testing.T) {
	src := newSource(23)
	m := New(context.Background(), serverConfig(src))
	settle(t, m, m.Init())

	pending := press(m, "right")
	require.NotNil(t, pending)

	assert.Nil(t, press(m, "right"))
	assert.Equal(t, "Loading...", m.status)
	assert.Nil(t, press(m, "r"))
	assert.Nil(t, press(m, "enter"))
	assert.Equal(t, modeBrowse, m.mode)

	settle(t, m, pending)
	assert.Equal(t, 2, m.tbl.Page())
}

func TestStaleLoadIgnored(t *testing.T) {
	src := newSource(23)
	m := New(context.Background(), serverConfig(src))

	m.fetch()
	second := m.fetch()
	settle(t, m, second)
	assert.False(t, m.loading)
	rows := len(m.rows)

	m.Update(loadedMsg{seq: 1, req: Request{Page: 3, PerPage: 10}, res: Result{Total: 1}})
	assert.Len(t, m.rows, rows)
	assert.Equal(t, 23, m.total)
}

func TestLocalPaging(t *testing.T) {
	src := newSource(12)
	cfg := serverConfig(src)
	cfg.Paging = table.ModeLocal
	cfg.PerPage = 5
	m := New(context.Background(), cfg)
	settle(t, m, m.Init())
	assert.Equal(t, Request{PerPage: 5}, src.lastRequest())

	assert.Nil(t, press(m, "right"))
	assert.Equal(t, 2, m.tbl.Page())
	assert.Contains(t, m.View(), "Row 6")
	assert.Contains(t, m.View(), "Page 2 of 3")
	assert.Len(t, src.requests, 1)
}

func TestSearch(t *testing.T) {
	src := newSource(23)
	cfg := serverConfig(src)
	cfg.Searchable = true
	m := New(context.Background(), cfg)
	settle(t, m, m.Init())
	settle(t, m, press(m, "right"))

	press(m, "/")
	require.Equal(t, modeSearch, m.mode)
	m.input.SetValue(" Row 2 ")

	cmd := press(m, "enter")
	assert.Equal(t, modeBrowse, m.mode)
	settle(t, m, cmd)

	assert.Equal(t, Request{Page: 1, PerPage: 10, Search: "Row 2"}, src.lastRequest())
	assert.Equal(t, "Row 2", m.search)
	assert.Contains(t, m.View(), "Search: Row 2")
}

func TestSearchEscapeKeepsQuery(t *testing.T) {
	src := newSource(3)
	cfg := serverConfig(src)
	cfg.Searchable = true
	m := New(context.Background(), cfg)
	settle(t, m, m.Init())

	press(m, "/")
	m.input.SetValue("zzz")
	assert.Nil(t, press(m, "esc"))
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, "", m.search)
	assert.Len(t, src.requests, 1)
}

func TestSearchUnavailable(t *testing.T) {
	src := newSource(3)
	m := New(context.Background(), serverConfig(src))
	settle(t, m, m.Init())

	press(m, "/")
	assert.Equal(t, modeBrowse, m.mode)
}

func TestDeleteConfirm(t *testing.T) {
	src := newSource(3)
	cfg := serverConfig(src)
	cfg.Delete = src.delete
	m := New(context.Background(), cfg)
	settle(t, m, m.Init())

	press(m, "down")
	assert.Nil(t, press(m, "d"))
	require.Equal(t, modeConfirm, m.mode)
	assert.Contains(t, m.View(), "Delete 2? (y/N)")

	refetch := settle(t, m, press(m, "y"))
	assert.Equal(t, []string{"2"}, src.deleted)
	assert.Equal(t, "Deleted 2", m.status)

	settle(t, m, refetch)
	assert.Len(t, m.rows, 2)
	assert.NotContains(t, m.View(), "Row 2")
}

func TestDeleteLastRowOnLastLocalPage(t *testing.T) {
	src := newSource(11)
	cfg := serverConfig(src)
	cfg.Paging = table.ModeLocal
	cfg.PerPage = 5
	cfg.Delete = src.delete
	m := New(context.Background(), cfg)
	settle(t, m, m.Init())

	press(m, "right")
	press(m, "right")
	require.Equal(t, 3, m.tbl.Page())
	require.Contains(t, m.View(), "Row 11")

	press(m, "d")
	settle(t, m, settle(t, m, press(m, "y")))

	assert.Equal(t, []string{"11"}, src.deleted)
	assert.Equal(t, 2, m.tbl.Page())
	assert.Len(t, m.tbl.Window(), 5)
	view := m.View()
	assert.Contains(t, view, "Page 2 of 2")
	assert.Contains(t, view, "Row 10")
	assert.NotContains(t, view, "No records to display")
}

func TestDeleteLastRowOnLastServerPage(t *testing.T) {
	src := newSource(21)
	cfg := serverConfig(src)
	cfg.Delete = src.delete
	m := New(context.Background(), cfg)
	settle(t, m, m.Init())
	settle(t, m, press(m, "right"))
	settle(t, m, press(m, "right"))
	require.Equal(t, 3, m.tbl.Page())

	press(m, "d")
	refetch := settle(t, m, press(m, "y"))
	stepBack := settle(t, m, refetch)
	require.NotNil(t, stepBack, "an emptied last page loads the new last page")
	settle(t, m, stepBack)

	assert.Equal(t, 2, src.lastRequest().Page)
	assert.Equal(t, 2, m.tbl.Page())
	view := m.View()
	assert.Contains(t, view, "Page 2 of 2")
	assert.Contains(t, view, "Row 20")
}

func TestDeleteCanceled(t *testing.T) {
	src := newSource(3)
	cfg := serverConfig(src)
	cfg.Delete = src.delete
	m := New(context.Background(), cfg)
	settle(t, m, m.Init())

	press(m, "d")
	assert.Nil(t, press(m, "n"))
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, "Delete canceled", m.status)
	assert.Empty(t, src.deleted)
}

func TestDeleteFailure(t *testing.T) {
	src := newSource(3)
	cfg := serverConfig(src)
	cfg.Delete = func(context.Context, table.Row) error { return errors.New("forbidden") }
	m := New(context.Background(), cfg)
	settle(t, m, m.Init())

	press(m, "d")
	next := settle(t, m, press(m, "y"))
	assert.Nil(t, next)
	assert.Contains(t, m.View(), "forbidden")
}

func TestActionsWithoutHandlers(t *testing.T) {
	src := newSource(3)
	m := New(context.Background(), serverConfig(src))
	settle(t, m, m.Init())

	assert.Nil(t, press(m, "d"))
	assert.Nil(t, press(m, "e"))
	assert.Nil(t, press(m, "n"))
	assert.Equal(t, modeBrowse, m.mode)
	assert.Empty(t, m.status)

	help := m.help()
	assert.NotContains(t, help, "delete")
	assert.NotContains(t, help, "edit")
	assert.Contains(t, help, "v view")
}

func TestViewDetail(t *testing.T) {
	src := newSource(3)
	m := New(context.Background(), serverConfig(src))
	settle(t, m, m.Init())

	press(m, "j")
	press(m, "enter")
	require.Equal(t, modeDetail, m.mode)
	assert.Equal(t, "id: 2\nname: Row 2", m.detail)
	assert.Contains(t, m.View(), "name: Row 2")

	press(m, "esc")
	assert.Equal(t, modeBrowse, m.mode)
	assert.Empty(t, m.detail)
}

func TestEditAndCreateHints(t *testing.T) {
	src := newSource(3)
	cfg := serverConfig(src)
	cfg.EditHint = func(r table.Row) string { return "folio skills update " + r.ID() }
	cfg.CreateHint = func() string { return "folio skills create" }
	cfg.CreateLabel = "New skill"
	m := New(context.Background(), cfg)
	settle(t, m, m.Init())

	assert.Contains(t, m.View(), "[n] + New skill")

	press(m, "e")
	assert.Equal(t, "folio skills update 1", m.status)
	press(m, "n")
	assert.Equal(t, "folio skills create", m.status)
}

func TestCursorBounds(t *testing.T) {
	src := newSource(3)
	m := New(context.Background(), serverConfig(src))
	settle(t, m, m.Init())

	press(m, "up")
	assert.Equal(t, 0, m.cursor)
	for range 5 {
		press(m, "down")
	}
	assert.Equal(t, 2, m.cursor)

	src.rows = src.rows[:1]
	settle(t, m, press(m, "r"))
	assert.Equal(t, 0, m.cursor)
}

func TestLoadError(t *testing.T) {
	src := newSource(3)
	src.err = errors.New("connection refused")
	m := New(context.Background(), serverConfig(src))
	settle(t, m, m.Init())

	assert.False(t, m.loading)
	assert.Contains(t, m.View(), "connection refused")
	assert.Contains(t, m.View(), "No records to display")

	src.err = nil
	settle(t, m, press(m, "r"))
	assert.NoError(t, m.lastErr)
	assert.Contains(t, m.View(), "Row 1")
}

func TestQuit(t *testing.T) {
	m := New(context.Background(), serverConfig(newSource(1)))
	cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestSpanishLocale(t *testing.T) {
	src := newSource(23)
	cfg := serverConfig(src)
	cfg.Locale = table.ParseLocale("es")
	m := New(context.Background(), cfg)
	m.Init()
	assert.Contains(t, m.View(), "Cargando...")
}

func TestFieldList(t *testing.T) {
	got := fieldList(table.Row{"z": 1, "a": "x", "id": "7"})
	assert.Equal(t, "a: x\nid: 7\nz: 1", got)
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab  ", pad("ab", 4))
	assert.Equal(t, "abc…", pad("abcdefgh", 4))
}
