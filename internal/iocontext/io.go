// Package iocontext carries the command's stdin, stdout and stderr through
// context so commands and the table browser can be driven from tests.
package iocontext

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"
)

// streams is stored by value; each With call copies and overrides.
type streams struct {
	stdin          io.Reader
	stdout, stderr io.Writer
}

type ctxKey struct{}

func fromContext(ctx context.Context) streams {
	s, _ := ctx.Value(ctxKey{}).(streams)
	return s
}

// WithIO sets stdout and stderr, keeping any stdin already set.
func WithIO(ctx context.Context, stdout, stderr io.Writer) context.Context {
	s := fromContext(ctx)
	s.stdout, s.stderr = stdout, stderr
	return context.WithValue(ctx, ctxKey{}, s)
}

// WithStdin sets the reader used for --data -, import files and prompts.
func WithStdin(ctx context.Context, r io.Reader) context.Context {
	s := fromContext(ctx)
	s.stdin = r
	return context.WithValue(ctx, ctxKey{}, s)
}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

func StdoutOrDefault(ctx context.Context, def io.Writer) io.Writer {
	return orDefault(fromContext(ctx).stdout, def)
}

func StderrOrDefault(ctx context.Context, def io.Writer) io.Writer {
	return orDefault(fromContext(ctx).stderr, def)
}

func StdinOrDefault(ctx context.Context, def io.Reader) io.Reader {
	return orDefault(fromContext(ctx).stdin, def)
}

// IsTerminal reports whether v is an *os.File attached to a terminal.
// Injected buffers are never terminals.
func IsTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
