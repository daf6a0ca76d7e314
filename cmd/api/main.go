package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/config"
	tallyHttp "github.com/MrJamesThe3rd/tally/internal/http"
	balanceHandler "github.com/MrJamesThe3rd/tally/internal/http/balance"
	documentHandler "github.com/MrJamesThe3rd/tally/internal/http/document"
	importHandler "github.com/MrJamesThe3rd/tally/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/tally/internal/http/matching"
	referenceHandler "github.com/MrJamesThe3rd/tally/internal/http/reference"
	statementHandler "github.com/MrJamesThe3rd/tally/internal/http/statement"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	router := tallyHttp.New(tallyHttp.Handlers{
		Documents:  documentHandler.NewHandler(a.Ledger),
		Accounts:   balanceHandler.NewHandler(a.Ledger),
		Reference:  referenceHandler.NewHandler(a.Ledger),
		Import:     importHandler.NewHandler(a.Importer, a.Ledger, a.Matching),
		Matching:   matchingHandler.NewHandler(a.Matching),
		Statements: statementHandler.NewHandler(a.Statements, a.Ledger, a.BaseUnit),
	}, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	go func() {
		slog.Info("starting server", "port", server.Addr, "store", cfg.Store.Driver)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
}
