package main

import (
	"context"
	"os"

	"github.com/dwikikusuma/storefront-cart/pkg/config"
	"github.com/dwikikusuma/storefront-cart/pkg/shutdown"
)

func main() {
	ctx, cancel := shutdown.WithSignals(context.Background())

	root := newRootCmd(cli{
		loadConfig: config.Load,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	})
	err := root.ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}
