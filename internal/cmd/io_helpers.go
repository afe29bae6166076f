package cmd

import (
	"context"
	"io"
	"os"

	"github.com/salmonumbrella/folio-cli/internal/iocontext"
	"github.com/salmonumbrella/folio-cli/internal/output"
	"github.com/salmonumbrella/folio-cli/internal/ui"
)

// Commands reach the process streams only through the context so tests
// can swap them.

func stdoutFromContext(ctx context.Context) io.Writer {
	return iocontext.StdoutOrDefault(ctx, os.Stdout)
}

func stderrFromContext(ctx context.Context) io.Writer {
	return iocontext.StderrOrDefault(ctx, os.Stderr)
}

func stdinFromContext(ctx context.Context) io.Reader {
	return iocontext.StdinOrDefault(ctx, os.Stdin)
}

// printerForContext renders results to stdout in the selected format.
func printerForContext(ctx context.Context) *output.Printer {
	return output.NewPrinter(stdoutFromContext(ctx), output.FormatFromContext(ctx))
}

// uiSuccess writes a ✓ line to stderr; --quiet suppresses it. Warnings
// always print.
func uiSuccess(ctx context.Context, format string, args ...any) {
	if !output.QuietFromContext(ctx) {
		ui.FromContext(ctx).Success(format, args...)
	}
}

func uiWarning(ctx context.Context, format string, args ...any) {
	ui.FromContext(ctx).Warning(format, args...)
}
