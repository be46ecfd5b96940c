package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"github.com/AtSheen/efg/internal/config"
	"github.com/AtSheen/efg/internal/database"
	"github.com/AtSheen/efg/internal/logger"
	"github.com/AtSheen/efg/internal/predictor"
	"github.com/AtSheen/efg/internal/repository"
	"github.com/AtSheen/efg/internal/services"
	"github.com/AtSheen/efg/internal/storage"
)

// app holds the wiring shared by every subcommand.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.Database
	store   repository.Store
	taxCode services.TaxCodeService
	reports services.ReportService
}

// newApp loads configuration and builds the services. Logs go to stderr so
// stdout stays valid JSON.
func newApp(ctx context.Context) (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.NewWithWriter(cfg.Server.Env, os.Stderr)

	a := &app{cfg: cfg, log: log}
	if cfg.ReferenceData.Source == config.SourcePostgres {
		a.db, err = database.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	}

	source, err := storage.NewSource(ctx, cfg, a.db)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create reference data source: %w", err)
	}

	a.store = repository.NewStore(source, cfg.ReferenceData.LoadTimeout, log)
	client := predictor.NewClient(cfg.FunctionApp.BaseURL, cfg.FunctionApp.Key, cfg.Predictor.Timeout, log)
	a.taxCode = services.NewTaxCodeService(a.store, client, log)
	a.reports = services.NewReportService(a.store, log)
	return a, nil
}

// Close releases the database pool when one was opened.
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
