// Command camels curates the hourly CAMELS-DE station dataset: it maps
// provider IDs to NUTS IDs, imports raw provider files, edits station
// metadata, renders charts, and serves a read-only HTTP view.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/camels-de1h/internal/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(observability.NewMetrics).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
