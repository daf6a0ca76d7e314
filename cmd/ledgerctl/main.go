package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/cli"
	"github.com/MrJamesThe3rd/tally/internal/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	root := cli.NewRootCmd(func(ctx context.Context) (*app.App, error) {
		return app.New(ctx, cfg)
	})

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
