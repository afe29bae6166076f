// Package ui picks color profiles for folio's terminal output and writes
// status lines to stderr.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

// ColorMode is the --color setting.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

var colorModeNames = [...]string{
	ColorAuto:   "auto",
	ColorAlways: "always",
	ColorNever:  "never",
}

func (m ColorMode) String() string {
	if m < 0 || int(m) >= len(colorModeNames) {
		return fmt.Sprintf("ColorMode(%d)", int(m))
	}
	return colorModeNames[m]
}

// ParseColorMode converts --color and config values. Empty means auto.
func ParseColorMode(s string) (ColorMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ColorAuto, nil
	}
	for mode, name := range colorModeNames {
		if s == name {
			return ColorMode(mode), nil
		}
	}
	return ColorAuto, fmt.Errorf("invalid color mode %q (expected auto|always|never)", s)
}

// NewOutput returns a termenv output for w. NO_COLOR wins over mode;
// auto detects the profile from w itself, so buffers and pipes get none.
func NewOutput(w io.Writer, mode ColorMode) *termenv.Output {
	if os.Getenv("NO_COLOR") != "" {
		mode = ColorNever
	}
	switch mode {
	case ColorNever:
		return termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
	case ColorAlways:
		return termenv.NewOutput(w, termenv.WithProfile(termenv.ANSI256))
	default:
		return termenv.NewOutput(w)
	}
}

type level struct {
	mark  string
	color termenv.ANSIColor
}

var (
	levelSuccess = level{mark: "✓", color: termenv.ANSIGreen}
	levelWarning = level{mark: "⚠", color: termenv.ANSIYellow}
)

// UI writes status lines. Data goes to stdout; status lines never do.
type UI struct {
	out  *termenv.Output
	mode ColorMode
}

// NewForWriter creates a UI that writes status lines to w.
func NewForWriter(w io.Writer, mode ColorMode) *UI {
	return &UI{out: NewOutput(w, mode), mode: mode}
}

type contextKey struct{}

// WithUI attaches u to ctx.
func WithUI(ctx context.Context, u *UI) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext returns the UI attached to ctx, or an auto-color UI on
// stderr.
func FromContext(ctx context.Context) *UI {
	if u, ok := ctx.Value(contextKey{}).(*UI); ok {
		return u
	}
	return NewForWriter(os.Stderr, ColorAuto)
}

// Mode is the color mode the UI was created with. Table renderers reuse
// it for stdout.
func (u *UI) Mode() ColorMode {
	return u.mode
}

func (u *UI) Success(format string, args ...any) {
	u.line(levelSuccess, format, args...)
}

func (u *UI) Warning(format string, args ...any) {
	u.line(levelWarning, format, args...)
}

func (u *UI) line(l level, format string, args ...any) {
	msg := l.mark + " " + fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(u.out, u.out.String(msg).Foreground(l.color))
}
