package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/salmonumbrella/folio-cli/internal/cmd"
)

// Set via -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer stop()

	app := cmd.NewApp(cmd.Build{Version: version, Commit: commit, Date: date})
	if err := app.Execute(ctx, os.Args[1:]); err != nil {
		stop()
		os.Exit(cmd.ExitCode(err))
	}
}
