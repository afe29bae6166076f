package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"

	"github.com/salmonumbrella/folio-cli/internal/table"
)

const maxColumnWidth = 32

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	faintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	detailStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	createStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Faint(true)

	toneStyles = map[table.Tone]lipgloss.Style{
		table.ToneSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		table.ToneDanger:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		table.TonePrimary: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	}
)

// View renders the title, top bar, grid, pager and status lines.
func (m *Model) View() string {
	g := m.tbl.Render()

	var sections []string
	if m.cfg.Title != "" {
		sections = append(sections, titleStyle.Render(m.cfg.Title))
	}
	if top := m.topBar(g.Top); top != "" {
		sections = append(sections, top)
	}

	if m.mode == modeDetail {
		sections = append(sections, detailStyle.Render(m.detail), faintStyle.Render("esc back"))
		return strings.Join(sections, "\n")
	}

	sections = append(sections, m.grid(g))

	if g.Pager != nil {
		style := faintStyle
		if !g.Pager.Disabled {
			style = lipgloss.NewStyle()
		}
		sections = append(sections, style.Render(g.Pager.Label))
	}

	switch {
	case m.mode == modeSearch:
		sections = append(sections, m.input.View())
	case m.mode == modeConfirm:
		sections = append(sections, errorStyle.Render("Delete "+m.selected.ID()+"? (y/N)"))
	case m.lastErr != nil:
		sections = append(sections, errorStyle.Render(m.lastErr.Error()))
	case m.status != "":
		sections = append(sections, faintStyle.Render(m.status))
	}

	sections = append(sections, faintStyle.Render(m.help()))
	return strings.Join(sections, "\n")
}

func (m *Model) topBar(top table.TopBar) string {
	var parts []string
	if c := top.Create; c != nil {
		style := createStyle
		if c.Disabled {
			style = disabledStyle
		}
		parts = append(parts, style.Render("[n] + "+c.Label))
	}
	if s := top.Search; s != nil {
		text := "[/] " + s.Placeholder
		if s.Query != "" {
			text += ": " + s.Query
		}
		style := lipgloss.NewStyle()
		if s.Disabled {
			style = disabledStyle
		}
		parts = append(parts, style.Render(text))
	}
	return strings.Join(parts, "   ")
}

func (m *Model) grid(g table.Grid) string {
	widths := make([]int, len(g.Headers))
	for i, h := range g.Headers {
		widths[i] = ansi.PrintableRuneWidth(h.Label)
	}
	for _, r := range g.Rows {
		for i, c := range r.Cells {
			widths[i] = max(widths[i], min(ansi.PrintableRuneWidth(cellText(c)), maxColumnWidth))
		}
	}

	lines := make([]string, 0, len(g.Rows)+2)
	header := make([]string, len(g.Headers))
	for i, h := range g.Headers {
		header[i] = pad(h.Label, widths[i])
	}
	lines = append(lines, headerStyle.Render(strings.Join(header, "  ")))

	if g.Loading {
		lines = append(lines, faintStyle.Render(g.LoadingText))
		return strings.Join(lines, "\n")
	}
	if g.Empty != "" {
		lines = append(lines, faintStyle.Render(g.Empty))
		return strings.Join(lines, "\n")
	}

	for ri, r := range g.Rows {
		cells := make([]string, len(r.Cells))
		for i, c := range r.Cells {
			text := pad(cellText(c), widths[i])
			if ri != m.cursor {
				text = styleCell(c).Render(text)
			}
			cells[i] = text
		}
		line := strings.Join(cells, "  ")
		if ri == m.cursor {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func cellText(c table.Cell) string {
	text := strings.Join(strings.Fields(c.Text), " ")
	if c.Avatar != nil && c.Avatar.URL == "" {
		return "-"
	}
	return text
}

func styleCell(c table.Cell) lipgloss.Style {
	if c.Chip != nil {
		if s, ok := toneStyles[c.Chip.Tone]; ok {
			return s
		}
	}
	return lipgloss.NewStyle()
}

// pad clips s to w cells and right-pads it with spaces.
func pad(s string, w int) string {
	if ansi.PrintableRuneWidth(s) > w {
		s = truncate.StringWithTail(s, uint(w), "…")
	}
	if n := w - ansi.PrintableRuneWidth(s); n > 0 {
		s += strings.Repeat(" ", n)
	}
	return s
}

func (m *Model) help() string {
	keys := []string{"↑/↓ select", "←/→ page", "v view"}
	if m.cfg.EditHint != nil {
		keys = append(keys, "e edit")
	}
	if m.cfg.Delete != nil {
		keys = append(keys, "d delete")
	}
	if m.cfg.CreateHint != nil {
		keys = append(keys, "n new")
	}
	if m.cfg.Searchable {
		keys = append(keys, "/ search")
	}
	keys = append(keys, "r reload", "q quit")
	return strings.Join(keys, " · ")
}
