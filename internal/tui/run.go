package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea/v2"
)

// Run shows the screen until the user quits or ctx is canceled.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(New(ctx, cfg),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
