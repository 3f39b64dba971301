// Command web serves the university statistics dashboard with the
// configuration found in the environment or the default config file.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"unistats/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApplication(nil)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}
