// Package tableview prints a rendered table grid as aligned terminal text.
package tableview

import (
	"fmt"
	"io"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"

	"github.com/salmonumbrella/folio-cli/internal/table"
	"github.com/salmonumbrella/folio-cli/internal/ui"
)

// DefaultMaxWidth truncates wide cells.
const DefaultMaxWidth = 40

// Options configures a Printer.
type Options struct {
	Color ui.ColorMode
	// MaxWidth bounds each cell; 0 means DefaultMaxWidth.
	MaxWidth int
	// ShowIDs prepends an ID column so rows can be addressed by commands.
	ShowIDs bool
}

// Printer writes grids to one writer.
type Printer struct {
	w        io.Writer
	out      *termenv.Output
	maxWidth int
	showIDs  bool
}

// New returns a Printer for w.
func New(w io.Writer, opts Options) *Printer {
	width := opts.MaxWidth
	if width <= 0 {
		width = DefaultMaxWidth
	}
	return &Printer{
		w:        w,
		out:      ui.NewOutput(w, opts.Color),
		maxWidth: width,
		showIDs:  opts.ShowIDs,
	}
}

// Print writes the top bar, the header and body rows (or the loading or
// empty message) and the pager line.
func (p *Printer) Print(g table.Grid) error {
	if top := p.topBar(g.Top); top != "" {
		if _, err := fmt.Fprintln(p.w, top); err != nil {
			return err
		}
	}

	tbl := uitable.New()
	tbl.Separator = "  "

	headers := make([]any, 0, len(g.Headers)+1)
	if p.showIDs {
		headers = append(headers, p.out.String("ID").Bold().String())
	}
	for _, h := range g.Headers {
		headers = append(headers, p.out.String(p.clip(h.Label)).Bold().String())
	}
	tbl.AddRow(headers...)

	for _, row := range g.Rows {
		cells := make([]any, 0, len(row.Cells)+1)
		if p.showIDs {
			cells = append(cells, p.out.String(p.clip(row.ID)).Faint().String())
		}
		for _, c := range row.Cells {
			cells = append(cells, p.cell(c))
		}
		tbl.AddRow(cells...)
	}

	if _, err := fmt.Fprintln(p.w, trimLines(tbl.String())); err != nil {
		return err
	}

	switch {
	case g.Loading:
		if _, err := fmt.Fprintln(p.w, p.out.String(g.LoadingText).Faint()); err != nil {
			return err
		}
	case g.Empty != "":
		if _, err := fmt.Fprintln(p.w, p.out.String(g.Empty).Italic()); err != nil {
			return err
		}
	}

	if g.Pager != nil {
		label := p.out.String(g.Pager.Label)
		if g.Pager.Disabled {
			label = label.Faint()
		}
		if _, err := fmt.Fprintln(p.w, label); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) topBar(top table.TopBar) string {
	var parts []string
	if c := top.Create; c != nil {
		s := p.out.String("[+ " + c.Label + "]")
		if c.Disabled {
			s = s.Faint()
		} else {
			s = s.Foreground(p.out.Color(toneColor(table.TonePrimary)))
		}
		parts = append(parts, s.String())
	}
	if s := top.Search; s != nil {
		text := s.Placeholder + ":"
		if s.Query != "" {
			text += " " + s.Query
		}
		styled := p.out.String(text)
		if s.Disabled {
			styled = styled.Faint()
		}
		parts = append(parts, styled.String())
	}
	return strings.Join(parts, "  ")
}

func (p *Printer) cell(c table.Cell) string {
	switch {
	case c.Chip != nil:
		return p.out.String(p.clip(c.Chip.Label)).Foreground(p.out.Color(toneColor(c.Chip.Tone))).String()
	case c.Avatar != nil:
		if c.Avatar.URL == "" {
			return "-"
		}
		mark := "●"
		if c.Avatar.Shape == table.ShapeSquare {
			mark = "■"
		}
		return mark + " " + p.out.String(p.clip(c.Avatar.URL)).Underline().String()
	case len(c.Buttons) > 0:
		labels := make([]string, len(c.Buttons))
		for i, b := range c.Buttons {
			s := p.out.String(b.Tooltip)
			if b.Tone != table.ToneDefault {
				s = s.Foreground(p.out.Color(toneColor(b.Tone)))
			}
			labels[i] = s.String()
		}
		return strings.Join(labels, " ")
	default:
		return p.clip(singleLine(c.Text))
	}
}

func (p *Printer) clip(s string) string {
	if ansi.PrintableRuneWidth(s) <= p.maxWidth {
		return s
	}
	return truncate.StringWithTail(s, uint(p.maxWidth), "...")
}

// toneColor maps tones to ANSI colors; termenv degrades them for the
// active profile.
func toneColor(t table.Tone) string {
	switch t {
	case table.ToneSuccess:
		return "2"
	case table.ToneDanger:
		return "1"
	case table.TonePrimary:
		return "4"
	default:
		return ""
	}
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// trimLines drops the padding uitable leaves after the last column.
func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}
