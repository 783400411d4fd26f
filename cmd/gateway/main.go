package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// main wires the signal context and hands off to cobra. Subcommands own
// configuration loading and the server lifecycle.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
