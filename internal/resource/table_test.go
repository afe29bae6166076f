package resource

import (
	"errors"
	"fmt"
	"testing"

	"golang.org/x/text/language"

	"github.com/salmonumbrella/folio-cli/internal/api"
	"github.com/salmonumbrella/folio-cli/internal/table"
)

func rows(n int) []table.Row {
	out := make([]table.Row, n)
	for i := range out {
		out[i] = table.Row{"id": fmt.Sprint(i + 1), "title": fmt.Sprintf("Job %d", i+1)}
	}
	return out
}

func mustLookup(t *testing.T, name string) *Resource {
	t.Helper()
	res, err := NewRegistry().Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestNewTable_ServerPage(t *testing.T) {
	skills := mustLookup(t, "skills")
	page := &api.Page{
		Data:      rows(10),
		Meta:      api.Meta{TotalCount: 35, Page: 2, PerPage: 10},
		Enveloped: true,
	}

	tbl, err := skills.NewTable(page, 2, language.English)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	if tbl.Mode() != table.ModeServer {
		t.Errorf("Mode() = %v, want server", tbl.Mode())
	}
	if tbl.Page() != 2 || tbl.Pages() != 4 {
		t.Errorf("page %d of %d, want 2 of 4", tbl.Page(), tbl.Pages())
	}
	if n := len(tbl.Window()); n != 10 {
		t.Errorf("Window() = %d rows, want 10", n)
	}
	for _, h := range tbl.Render().Headers {
		if h.Key == table.ActionsKey {
			t.Error("actions column should be dropped")
		}
	}
}

func TestNewTable_BareArrayPagesLocally(t *testing.T) {
	skills := mustLookup(t, "skills")
	page := &api.Page{Data: rows(23)}

	tbl, err := skills.NewTable(page, 3, language.English)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	if tbl.Mode() != table.ModeLocal {
		t.Errorf("Mode() = %v, want local", tbl.Mode())
	}
	window := tbl.Window()
	if len(window) != 3 || window[0].ID() != "21" {
		t.Errorf("Window() = %v", window)
	}
}

func TestNewTable_LocalResource(t *testing.T) {
	exp := mustLookup(t, "work-experiences")
	page := &api.Page{Data: rows(12), Enveloped: true, Meta: api.Meta{TotalCount: 12}}

	tbl, err := exp.NewTable(page, 0, language.English)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	if tbl.Page() != 1 || tbl.Pages() != 3 || len(tbl.Window()) != 5 {
		t.Errorf("page %d of %d with %d rows", tbl.Page(), tbl.Pages(), len(tbl.Window()))
	}

	_, err = exp.NewTable(page, 4, language.English)
	if !errors.Is(err, table.ErrPageOutOfRange) {
		t.Errorf("NewTable(page 4) error = %v, want ErrPageOutOfRange", err)
	}
}

func TestNewTable_SquareImages(t *testing.T) {
	projects := mustLookup(t, "projects")
	page := &api.Page{
		Data:      []table.Row{{"id": "1", "name": "CMS", "mainImage": "https://img/cms.png"}},
		Meta:      api.Meta{TotalCount: 1, Page: 1, PerPage: 10},
		Enveloped: true,
	}
	tbl, err := projects.NewTable(page, 1, language.English)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range tbl.Render().Rows[0].Cells {
		if c.Avatar != nil && c.Avatar.Shape != table.ShapeSquare {
			t.Errorf("avatar shape = %v, want square", c.Avatar.Shape)
		}
	}
}

func TestFullTable(t *testing.T) {
	res := mustLookup(t, "skills")
	g := res.FullTable(rows(23), language.English).Render()
	if len(g.Rows) != 23 {
		t.Fatalf("rows = %d, want 23", len(g.Rows))
	}
	if g.Pager != nil {
		t.Errorf("pager = %+v, want nil", g.Pager)
	}

	empty := res.FullTable(nil, language.English).Render()
	if empty.Empty == "" {
		t.Error("empty table should carry the empty message")
	}
}
