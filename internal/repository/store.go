package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AtSheen/efg/internal/logger"
	"github.com/AtSheen/efg/internal/models"
	"github.com/AtSheen/efg/internal/storage"
)

// ErrReferenceDataUnavailable is returned when the reference data cannot be loaded.
var ErrReferenceDataUnavailable = errors.New("reference data unavailable")

// Store provides the reference data snapshot, loading it at most once.
type Store interface {
	// Snapshot returns the loaded snapshot, loading it on first use.
	// Concurrent first calls share a single load. A failed load is not
	// cached; the next call tries again.
	Snapshot(ctx context.Context) (*Snapshot, error)

	// Loaded reports whether a snapshot is available without loading.
	Loaded() bool

	// SourceName names the backend the data is read from.
	SourceName() string
}

// referenceStore is the concrete implementation of Store.
type referenceStore struct {
	source  storage.Source
	timeout time.Duration
	log     *logger.Logger

	mu       sync.Mutex
	snapshot atomic.Pointer[Snapshot]
}

// NewStore creates a Store that reads every resource from source.
// timeout bounds one complete load.
func NewStore(source storage.Source, timeout time.Duration, log *logger.Logger) Store {
	return &referenceStore{
		source:  source,
		timeout: timeout,
		log:     log.WithComponent("reference_data"),
	}
}

// NewStaticStore wraps an already built snapshot.
func NewStaticStore(snapshot *Snapshot) Store {
	s := &referenceStore{log: logger.Nop()}
	s.snapshot.Store(snapshot)
	return s
}

func (s *referenceStore) Loaded() bool {
	return s.snapshot.Load() != nil
}

func (s *referenceStore) SourceName() string {
	if s.source == nil {
		return "static"
	}
	return s.source.Name()
}

func (s *referenceStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := s.snapshot.Load(); snap != nil {
		return snap, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if snap := s.snapshot.Load(); snap != nil {
		return snap, nil
	}

	snap, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReferenceDataUnavailable, err)
	}
	s.snapshot.Store(snap)
	return snap, nil
}

func (s *referenceStore) load(ctx context.Context) (*Snapshot, error) {
	if s.source == nil {
		return nil, errors.New("no reference data source configured")
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	s.log.Info("Loading reference data", map[string]interface{}{
		"source":    s.source.Name(),
		"resources": len(Resources()),
	})

	var (
		tables Tables
		mu     sync.Mutex
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, res := range Resources() {
		g.Go(func() error {
			if res.Format == storage.FormatDocument {
				cfg, err := s.fetchDocument(gctx, res)
				if err != nil {
					return err
				}
				mu.Lock()
				tables.CategoricalConfig = cfg
				mu.Unlock()
				return nil
			}

			table, err := s.fetchTable(gctx, res)
			if err != nil {
				return err
			}
			mu.Lock()
			assignTable(&tables, res.Key, table)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error("Failed to load reference data", err, map[string]interface{}{
			"source": s.source.Name(),
		})
		return nil, err
	}

	snap, err := NewSnapshot(tables, time.Now().UTC())
	if err != nil {
		s.log.Error("Reference data failed validation", err, nil)
		return nil, err
	}

	s.log.Info("Reference data loaded", map[string]interface{}{
		"source":           s.source.Name(),
		"duration_ms":      time.Since(start).Milliseconds(),
		"companies":        len(snap.companies),
		"vendors":          len(snap.vendors),
		"catalog_rows":     len(snap.catalog),
		"feature_count":    len(snap.categorical.FeatureNames),
		"description_rows": snap.descriptions.Len(),
	})
	return snap, nil
}

func (s *referenceStore) fetchTable(ctx context.Context, res storage.Resource) (*models.Table, error) {
	body, err := s.source.Fetch(ctx, res)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", res.Key, err)
	}
	defer body.Close()

	table, err := DecodeTable(body, requiredColumns[res.Key]...)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", res.Key, err)
	}

	s.log.Debug("Loaded reference table", map[string]interface{}{
		"resource": res.Key,
		"rows":     table.Len(),
		"columns":  len(table.Columns()),
	})
	return table, nil
}

func (s *referenceStore) fetchDocument(ctx context.Context, res storage.Resource) (models.CategoricalConfig, error) {
	body, err := s.source.Fetch(ctx, res)
	if err != nil {
		return models.CategoricalConfig{}, fmt.Errorf("fetch %s: %w", res.Key, err)
	}
	defer body.Close()

	cfg, err := DecodeCategoricalConfig(body)
	if err != nil {
		return models.CategoricalConfig{}, fmt.Errorf("decode %s: %w", res.Key, err)
	}
	return cfg, nil
}

func assignTable(t *Tables, key string, table *models.Table) {
	switch key {
	case LegalEntitiesResource.Key:
		t.LegalEntities = table
	case TaxCodeInfoResource.Key:
		t.TaxCodeInfo = table
	case TaxCodeDescriptionResource.Key:
		t.TaxCodeDescription = table
	case CompanyCodeInfoResource.Key:
		t.CompanyCodeInfo = table
	case VendorInfoResource.Key:
		t.VendorInfo = table
	case AttentionListResource.Key:
		t.AttentionList = table
	case IPVatIssuesResource.Key:
		t.IPVatIssues = table
	case HistoricalMetaResource.Key:
		t.HistoricalMeta = table
	}
}
