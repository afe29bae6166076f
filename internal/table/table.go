package table

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	// ErrNoHandler is returned when an event has no callback to receive it.
	ErrNoHandler = errors.New("table: no handler for event")
	// ErrRowOutOfRange is returned for a row index outside the visible window.
	ErrRowOutOfRange = errors.New("table: row index out of range")
	// ErrPageOutOfRange is returned for a page outside 1..Pages.
	ErrPageOutOfRange = errors.New("table: page out of range")
	// ErrDisabled is returned while the table is loading.
	ErrDisabled = errors.New("table: disabled while loading")
)

// DefaultActionIcon is the icon of the call to action when none is given.
const DefaultActionIcon = "plus"

// Options is everything a Table renders from. The Table reads Rows but never
// modifies them.
type Options struct {
	Columns []Column
	Rows    []Row
	// Paging defaults to Local{}.
	Paging  Paging
	Loading bool
	// Search shows a search box. The table never filters rows itself.
	Search *Search

	// Each present callback adds its button to the actions column.
	OnView   func(Row)
	OnEdit   func(Row)
	OnDelete func(Row)
	// ViewLabel overrides the tooltip of the view button.
	ViewLabel string

	// Action is the page level call to action shown above the table.
	Action *Action

	SquareImages bool
	Locale       language.Tag
	// Location is used for dates; nil means time.Local.
	Location *time.Location
	// EmptyText overrides the empty state message.
	EmptyText string
}

type Search struct {
	Query       string
	Placeholder string
	OnChange    func(query string)
}

type Action struct {
	Label   string
	Icon    string
	OnPress func()
}

// Table is one rendered collection. It is used from a single goroutine.
type Table struct {
	opts Options
	page int
}

// New returns a Table starting at page 1.
func New(opts Options) *Table {
	return &Table{opts: opts, page: 1}
}

// SetOptions replaces the inputs. The local page counter is kept but
// pulled back onto the last page when the rows shrank below it.
func (t *Table) SetOptions(opts Options) {
	t.opts = opts
	if t.Mode() == ModeLocal {
		t.page = max(1, min(t.page, t.Pages()))
	}
}

func (t *Table) Options() Options {
	return t.opts
}

func (t *Table) paging() Paging {
	if t.opts.Paging == nil {
		return Local{}
	}
	return t.opts.Paging
}

func (t *Table) Mode() Mode {
	return t.paging().mode()
}

func (t *Table) PerPage() int {
	return t.paging().perPage()
}

// Total is the Server total or the number of rows in Local mode.
func (t *Table) Total() int {
	if s, ok := t.paging().(Server); ok {
		return s.Total
	}
	return len(t.opts.Rows)
}

func (t *Table) Pages() int {
	return PageCount(t.Total(), t.PerPage())
}

// Page is the page currently displayed.
func (t *Table) Page() int {
	if s, ok := t.paging().(Server); ok {
		if s.Page <= 0 {
			return 1
		}
		return s.Page
	}
	return t.page
}

// Window returns the rows visible on the current page.
func (t *Table) Window() []Row {
	rows := t.opts.Rows
	if t.Mode() == ModeServer {
		return rows
	}
	per := t.PerPage()
	start := (t.page - 1) * per
	if start < 0 || start >= len(rows) {
		return nil
	}
	end := min(start+per, len(rows))
	return rows[start:end]
}

// Render builds the grid for the current inputs. It has no side effects.
func (t *Table) Render() Grid {
	p := message.NewPrinter(t.opts.Locale)
	f := formatter{layout: dateLayout(t.opts.Locale), loc: t.opts.Location}

	g := Grid{
		Headers: make([]Header, len(t.opts.Columns)),
		Loading: t.opts.Loading,
	}
	for i, col := range t.opts.Columns {
		g.Headers[i] = Header{Key: col.Key, Label: col.Label, Kind: col.ResolvedKind()}
	}

	if a := t.opts.Action; a != nil {
		label := a.Label
		if label == "" {
			label = p.Sprintf(msgNewRecord)
		}
		icon := a.Icon
		if icon == "" {
			icon = DefaultActionIcon
		}
		g.Top.Create = &CreateButton{Label: label, Icon: icon, Disabled: t.opts.Loading}
	}
	if s := t.opts.Search; s != nil {
		placeholder := s.Placeholder
		if placeholder == "" {
			placeholder = p.Sprintf(msgSearch)
		}
		g.Top.Search = &SearchBox{Query: s.Query, Placeholder: placeholder, Disabled: t.opts.Loading}
	}

	window := t.Window()
	if t.opts.Loading {
		g.LoadingText = p.Sprintf(msgLoading)
	} else {
		g.Rows = make([]GridRow, 0, len(window))
		for _, row := range window {
			cells := make([]Cell, len(t.opts.Columns))
			for i, col := range t.opts.Columns {
				cells[i] = t.cell(col, row, f, p)
			}
			g.Rows = append(g.Rows, GridRow{ID: row.ID(), Row: row, Cells: cells})
		}
		if len(window) == 0 {
			g.Empty = t.opts.EmptyText
			if g.Empty == "" {
				g.Empty = p.Sprintf(msgEmpty)
			}
		}
	}

	if pages := t.Pages(); pages > 1 {
		page := t.Page()
		g.Pager = &Pager{
			Page:     page,
			Pages:    pages,
			Label:    p.Sprintf(msgPageOf, page, pages),
			Disabled: t.opts.Loading,
		}
	}
	return g
}

func (t *Table) cell(col Column, row Row, f formatter, p *message.Printer) Cell {
	kind := col.ResolvedKind()
	c := Cell{Kind: kind}

	switch kind {
	case KindActions:
		c.Buttons = t.buttons(p)
		labels := make([]string, len(c.Buttons))
		for i, b := range c.Buttons {
			labels[i] = b.Tooltip
		}
		c.Text = strings.Join(labels, " ")
		return c
	case KindCustom:
		c.Text = col.Format(row)
		return c
	}

	v, ok := row.Lookup(col.Key)
	if !ok {
		v = nil
	}

	switch kind {
	case KindImage:
		url, _ := v.(string)
		shape := ShapeCircle
		if t.opts.SquareImages {
			shape = ShapeSquare
		}
		c.Avatar = &Avatar{URL: url, Shape: shape}
		c.Text = url
	case KindDate:
		c.Text = f.date(v)
	case KindFlag:
		yes, no := msgYes, msgNo
		if col.ResolvedFlag() == FlagActive {
			yes, no = msgActive, msgInactive
		}
		chip := &Chip{Label: p.Sprintf(no), Tone: ToneDanger}
		if truthy(v) {
			chip = &Chip{Label: p.Sprintf(yes), Tone: ToneSuccess}
		}
		c.Chip = chip
		c.Text = chip.Label
	case KindLongText:
		c.Text = excerpt(f.value(v))
	default:
		c.Text = f.value(v)
	}
	return c
}

func (t *Table) buttons(p *message.Printer) []Button {
	var out []Button
	if t.opts.OnView != nil {
		label := t.opts.ViewLabel
		if label == "" {
			label = p.Sprintf(msgView)
		}
		out = append(out, Button{Action: ActionView, Tooltip: label})
	}
	if t.opts.OnEdit != nil {
		out = append(out, Button{Action: ActionEdit, Tooltip: p.Sprintf(msgEdit)})
	}
	if t.opts.OnDelete != nil {
		out = append(out, Button{Action: ActionDelete, Tooltip: p.Sprintf(msgDelete), Tone: ToneDanger})
	}
	return out
}
