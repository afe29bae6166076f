package table

// Tone is the color role of a chip or button.
type Tone int

const (
	ToneDefault Tone = iota
	ToneSuccess
	ToneDanger
	TonePrimary
)

func (t Tone) String() string {
	switch t {
	case ToneSuccess:
		return "success"
	case ToneDanger:
		return "danger"
	case TonePrimary:
		return "primary"
	default:
		return "default"
	}
}

// Shape is the outline of an avatar.
type Shape int

const (
	ShapeCircle Shape = iota
	ShapeSquare
)

// ActionKind identifies a row action button.
type ActionKind int

const (
	ActionView ActionKind = iota
	ActionEdit
	ActionDelete
)

func (a ActionKind) String() string {
	switch a {
	case ActionEdit:
		return "edit"
	case ActionDelete:
		return "delete"
	default:
		return "view"
	}
}

// Grid is the rendered form of a Table.
type Grid struct {
	Headers []Header
	Rows    []GridRow
	Top     TopBar
	// Pager is nil when there is at most one page.
	Pager   *Pager
	Loading bool
	// LoadingText is shown in place of the rows while Loading.
	LoadingText string
	// Empty is set only when there are no rows and nothing is loading.
	Empty string
}

// Header is one column heading.
type Header struct {
	Key   string
	Label string
	Kind  Kind
}

// GridRow is one body row. Row is the caller's row, unchanged.
type GridRow struct {
	ID    string
	Row   Row
	Cells []Cell
}

// Cell is one rendered value. Text is always a plain-text rendering;
// Avatar, Chip and Buttons are set for their respective kinds.
type Cell struct {
	Kind    Kind
	Text    string
	Avatar  *Avatar
	Chip    *Chip
	Buttons []Button
}

type Avatar struct {
	URL   string
	Shape Shape
}

type Chip struct {
	Label string
	Tone  Tone
}

type Button struct {
	Action  ActionKind
	Tooltip string
	Tone    Tone
}

// TopBar holds the optional call to action and search box.
type TopBar struct {
	Create *CreateButton
	Search *SearchBox
}

type CreateButton struct {
	Label    string
	Icon     string
	Disabled bool
}

type SearchBox struct {
	Query       string
	Placeholder string
	Disabled    bool
}

// Pager is the page control.
type Pager struct {
	Page     int
	Pages    int
	Label    string
	Disabled bool
}

// Buttons returns the actions cell of the row, if any.
func (r GridRow) Buttons() []Button {
	for _, c := range r.Cells {
		if c.Kind == KindActions {
			return c.Buttons
		}
	}
	return nil
}
