package services

import (
	"context"

	"github.com/AtSheen/efg/internal/logger"
	"github.com/AtSheen/efg/internal/models"
)

// The attention list file names this column differently from the other tables.
const (
	attentionCompanyColumn = "Company code"
	companyCodeColumn      = "Company Code"
)

// ReportService serves the read-only report tables.
type ReportService interface {
	AttentionList(ctx context.Context) (*models.Table, error)
	VATIPIssues(ctx context.Context) (*models.Table, error)
	HistoricalMeta(ctx context.Context) (*models.Table, error)
}

type reportService struct {
	ref ReferenceProvider
	log *logger.Logger
}

// NewReportService creates a new instance of ReportService.
func NewReportService(ref ReferenceProvider, log *logger.Logger) ReportService {
	return &reportService{ref: ref, log: log.WithComponent("reports")}
}

// AttentionList returns the attention list with its company column renamed.
func (s *reportService) AttentionList(ctx context.Context) (*models.Table, error) {
	snap, err := s.ref.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	table := snap.AttentionList().RenameColumn(attentionCompanyColumn, companyCodeColumn)
	s.log.Info("Serving attention list", map[string]interface{}{"rows": table.Len()})
	return table, nil
}

func (s *reportService) VATIPIssues(ctx context.Context) (*models.Table, error) {
	snap, err := s.ref.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	table := snap.VATIPIssues()
	s.log.Info("Serving VAT/IP issues", map[string]interface{}{"rows": table.Len()})
	return table, nil
}

func (s *reportService) HistoricalMeta(ctx context.Context) (*models.Table, error) {
	snap, err := s.ref.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	table := snap.HistoricalMeta()
	s.log.Info("Serving historical meta", map[string]interface{}{"rows": table.Len()})
	return table, nil
}
