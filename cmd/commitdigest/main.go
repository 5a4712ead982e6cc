package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mwistrand/commitdigest/internal/cli"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()

	os.Exit(cli.HandleError(os.Stderr, err))
}
