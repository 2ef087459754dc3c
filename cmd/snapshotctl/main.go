package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/fatih/color"

	"github.com/AntonStoeckl/snapshot-testing-go/internal/snapshotctl"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := snapshotctl.NewRootCommand().ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
