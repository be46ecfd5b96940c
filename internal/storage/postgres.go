package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/AtSheen/efg/internal/database"
)

// referenceDB is the part of database.Database the postgres source uses.
type referenceDB interface {
	CopyTableCSV(ctx context.Context, table string, w io.Writer) error
	ReferenceDocument(ctx context.Context, name string) ([]byte, error)
}

// PostgresSource reads tables as CSV exports named after the resource key,
// and documents from the reference_documents table by file name.
type PostgresSource struct {
	db referenceDB
}

// NewPostgresSource creates a source backed by db.
func NewPostgresSource(db *database.Database) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Name() string { return "postgres" }

// Fetch exports the resource into memory and returns it as a reader.
func (s *PostgresSource) Fetch(ctx context.Context, res Resource) (io.ReadCloser, error) {
	switch res.Format {
	case FormatTable:
		var buf bytes.Buffer
		if err := s.db.CopyTableCSV(ctx, res.Key, &buf); err != nil {
			return nil, err
		}
		return io.NopCloser(&buf), nil
	case FormatDocument:
		doc, err := s.db.ReferenceDocument(ctx, res.FileName)
		if errors.Is(err, database.ErrDocumentNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, res.FileName)
		}
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(doc)), nil
	default:
		return nil, fmt.Errorf("unsupported resource format %q for %s", res.Format, res.Key)
	}
}
