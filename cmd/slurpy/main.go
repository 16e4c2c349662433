package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/marcelocantos/slurpy/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Set up context with cancellation on interrupt.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return cli.Main(ctx, version, os.Args[1:], os.Stdout, os.Stderr)
}
