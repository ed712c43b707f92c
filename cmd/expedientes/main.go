package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"expedientes/internal/app"
	"expedientes/internal/cli"
	"expedientes/internal/config"
	"expedientes/internal/logging"
)

func main() {
	cfg := config.Load()
	// Diagnostics go to stderr so command output stays machine-readable.
	logger := logging.New(os.Stderr, cfg.Location(), slog.LevelWarn)

	open := func(ctx context.Context) (*cli.Backend, func() error, error) {
		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return &cli.Backend{Cases: a.Cases, Gate: a.Gate}, a.Close, nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCommand(open).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
