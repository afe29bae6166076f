package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"slices"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/folio-cli/internal/auth"
	"github.com/salmonumbrella/folio-cli/internal/iocontext"
)

// Build identifies the binary. main sets it from ldflags.
type Build struct {
	Version string
	Commit  string
	Date    string
}

func (b Build) String() string {
	return fmt.Sprintf("folio %s (commit: %s, built: %s)", b.Version, b.Commit, b.Date)
}

// App is one CLI invocation's environment: streams, build info, the
// session store and the browser opener. Tests build it directly.
type App struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Build  Build

	Store   auth.SessionStore
	OpenURL func(url string) error

	// runCtx is set by the root pre-run so errors render in the
	// requested format.
	runCtx context.Context
}

// NewApp wires the process streams, the keyring session store (with
// FOLIO_TOKEN taking precedence) and the system browser.
func NewApp(build Build) *App {
	return &App{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Stdin:   os.Stdin,
		Build:   build,
		Store:   auth.EnvOverride(auth.NewKeyringStore()),
		OpenURL: openBrowser,
	}
}

// Execute runs args and prints any error once, in the requested format.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.RootCommand()
	root.SetArgs(args)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)
	if a.Stdin != nil {
		root.SetIn(a.Stdin)
	}

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	errCtx := a.runCtx
	if errCtx == nil {
		errCtx = iocontext.WithIO(ctx, a.Stdout, a.Stderr)
	}
	printCommandError(errCtx, err)
	return err
}

func (a *App) RootCommand() *cobra.Command {
	return newRootCmd(a)
}

var openers = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"windows": {"cmd", "/c", "start"},
}

func openBrowser(url string) error {
	argv, ok := openers[runtime.GOOS]
	if !ok {
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return exec.Command(argv[0], append(slices.Clone(argv[1:]), url)...).Run()
}
