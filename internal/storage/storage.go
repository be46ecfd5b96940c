package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/AtSheen/efg/internal/config"
	"github.com/AtSheen/efg/internal/database"
)

// Format describes how a resource body is decoded.
type Format string

const (
	FormatTable    Format = "table"
	FormatDocument Format = "document"
)

// ErrNotFound is returned when a source has no object for a resource.
var ErrNotFound = errors.New("resource not found")

// Resource names one reference file and where each source keeps it.
type Resource struct {
	// Key identifies the resource in logs and names its table in postgres.
	Key string
	// Endpoint is the function app route that serves the file.
	Endpoint string
	// FileName is the object name under the local directory or S3 prefix.
	FileName string
	Format   Format
}

// Source fetches raw reference files. Callers close the returned body.
type Source interface {
	Fetch(ctx context.Context, res Resource) (io.ReadCloser, error)
	Name() string
}

// NewSource creates the source selected by cfg.ReferenceData.Source.
// db is only used by the postgres source and may be nil otherwise.
func NewSource(ctx context.Context, cfg *config.Config, db *database.Database) (Source, error) {
	switch cfg.ReferenceData.Source {
	case config.SourceFunctionApp:
		return NewFunctionAppSource(cfg.FunctionApp.BaseURL, cfg.FunctionApp.Key, cfg.ReferenceData.LoadTimeout), nil
	case config.SourceLocal:
		return NewLocalSource(cfg.ReferenceData.LocalPath)
	case config.SourceS3:
		return NewS3Source(ctx, cfg.S3)
	case config.SourcePostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres source requires a database connection")
		}
		return NewPostgresSource(db), nil
	default:
		return nil, fmt.Errorf("unknown reference data source: %s", cfg.ReferenceData.Source)
	}
}
