// Package app wires the ledger and its collaborators from configuration.
// Every binary starts from here.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/ledger/store/file"
	"github.com/MrJamesThe3rd/tally/internal/ledger/store/sqlstore"
	"github.com/MrJamesThe3rd/tally/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/tally/internal/matching/store"
	"github.com/MrJamesThe3rd/tally/internal/statement"
)

type App struct {
	Config     *config.Config
	Ledger     *ledger.Service
	Matching   *matching.Service
	Importer   *importer.Service
	Statements *statement.Service
	BaseUnit   ledger.WeightUnit

	db *sql.DB
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	baseUnit, err := ledger.ParseWeightUnit(cfg.Ledger.BaseWeightUnit)
	if err != nil {
		return nil, fmt.Errorf("LEDGER_BASE_WEIGHT_UNIT: %w", err)
	}

	repo, db, err := openRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ledgerService := ledger.NewService(repo, ledger.WithBaseUnit(baseUnit))

	return &App{
		Config:     cfg,
		Ledger:     ledgerService,
		Matching:   matching.NewService(matchingStore.New(ledgerService)),
		Importer:   importer.NewService(),
		Statements: statement.NewService(ledgerService),
		BaseUnit:   baseUnit,
		db:         db,
	}, nil
}

func openRepository(ctx context.Context, cfg *config.Config) (ledger.Repository, *sql.DB, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			return nil, nil, err
		}

		return migrated(ctx, db, sqlstore.Postgres)
	case config.DriverSQLite:
		db, err := database.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}

		return migrated(ctx, db, sqlstore.SQLite)
	}

	slog.Debug("using file store", "path", cfg.Store.Path)

	return file.New(cfg.Store.Path), nil, nil
}

func migrated(ctx context.Context, db *sql.DB, dialect sqlstore.Dialect) (ledger.Repository, *sql.DB, error) {
	s := sqlstore.New(db, dialect)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	return s, db, nil
}

// Close releases the database connection, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}

	return a.db.Close()
}
