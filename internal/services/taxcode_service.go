package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/AtSheen/efg/internal/logger"
	"github.com/AtSheen/efg/internal/models"
	"github.com/AtSheen/efg/internal/predictor"
	"github.com/AtSheen/efg/internal/repository"
)

// Service-level errors
var (
	// ErrMalformedConfig is returned when the categorical config cannot
	// produce a payload for the enriched query.
	ErrMalformedConfig = errors.New("malformed categorical config")
	// ErrPredictionFailed wraps every failure of the predictor call.
	ErrPredictionFailed = errors.New("prediction failed")
)

// ReferenceProvider hands out the loaded reference data.
type ReferenceProvider interface {
	Snapshot(ctx context.Context) (*repository.Snapshot, error)
}

// Predictor calls the external tax code model.
type Predictor interface {
	Predict(ctx context.Context, payload *predictor.Payload) (models.Prediction, error)
}

// CandidateResult is an enriched query with its filtered candidates.
type CandidateResult struct {
	Enriched     models.EnrichedQuery
	Candidates   []models.TaxCodeCatalogRow
	Descriptions *models.Table
}

// PredictionResult is the complete outcome of one prediction request.
type PredictionResult struct {
	CandidateResult
	Payload    *predictor.Payload
	Prediction models.Prediction
}

// TaxCodeService defines the tax code prediction operations.
type TaxCodeService interface {
	// Enrich resolves a query against the reference data.
	// Returns an error only when the reference data is unavailable.
	Enrich(ctx context.Context, q models.TaxCodeQuery) (models.EnrichedQuery, error)

	// Candidates enriches q and narrows the catalog to matching tax codes.
	Candidates(ctx context.Context, q models.TaxCodeQuery) (*CandidateResult, error)

	// Predict runs enrichment, filtering and the predictor call.
	// Either every field of the result is populated or an error is returned.
	Predict(ctx context.Context, q models.TaxCodeQuery) (*PredictionResult, error)
}

// taxCodeService is the concrete implementation of TaxCodeService.
type taxCodeService struct {
	ref       ReferenceProvider
	predictor Predictor
	log       *logger.Logger
}

// NewTaxCodeService creates a new instance of TaxCodeService.
func NewTaxCodeService(ref ReferenceProvider, p Predictor, log *logger.Logger) TaxCodeService {
	return &taxCodeService{
		ref:       ref,
		predictor: p,
		log:       log.WithComponent("taxcode"),
	}
}

func (s *taxCodeService) Enrich(ctx context.Context, q models.TaxCodeQuery) (models.EnrichedQuery, error) {
	snap, err := s.ref.Snapshot(ctx)
	if err != nil {
		return models.EnrichedQuery{}, err
	}
	return Enrich(snap, q, s.log), nil
}

func (s *taxCodeService) Candidates(ctx context.Context, q models.TaxCodeQuery) (*CandidateResult, error) {
	snap, err := s.ref.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.candidates(snap, q), nil
}

func (s *taxCodeService) candidates(snap *repository.Snapshot, q models.TaxCodeQuery) *CandidateResult {
	enriched := Enrich(snap, q, s.log)
	rows := FilterCandidates(snap.TaxCodeCatalog(), enriched)
	descriptions := JoinDescriptions(snap.TaxCodeDescriptions(), CandidateTaxCodes(rows))

	s.log.Info("Filtered tax codes", map[string]interface{}{
		"catalog_rows":     len(rows),
		"description_rows": descriptions.Len(),
	})

	return &CandidateResult{
		Enriched:     enriched,
		Candidates:   rows,
		Descriptions: descriptions,
	}
}

func (s *taxCodeService) Predict(ctx context.Context, q models.TaxCodeQuery) (*PredictionResult, error) {
	snap, err := s.ref.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	cand := s.candidates(snap, q)

	payload, err := predictor.BuildPayload(cand.Enriched, snap.CategoricalConfig(), DescriptionTaxCodes(cand.Descriptions))
	if err != nil {
		s.log.Error("Failed to build prediction payload", err, nil)
		return nil, fmt.Errorf("%w: %w", ErrMalformedConfig, err)
	}
	if len(payload.OutOfVocabulary) > 0 {
		s.log.Warn("Query has values outside the model vocabulary", map[string]interface{}{
			"features": payload.OutOfVocabulary,
		})
	}

	prediction, err := s.predictor.Predict(ctx, payload)
	if err != nil {
		s.log.Error("Prediction request failed", err, map[string]interface{}{
			"company_code":  q.CompanyCode,
			"vendor_number": q.VendorNumber,
		})
		return nil, fmt.Errorf("%w: %w", ErrPredictionFailed, err)
	}

	return &PredictionResult{
		CandidateResult: *cand,
		Payload:         payload,
		Prediction:      prediction,
	}, nil
}
