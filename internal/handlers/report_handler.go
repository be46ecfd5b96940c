package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AtSheen/efg/internal/models"
	"github.com/AtSheen/efg/internal/services"
)

// ReportHandler serves the read-only report tables.
type ReportHandler struct {
	service services.ReportService
}

// NewReportHandler creates a new ReportHandler instance.
func NewReportHandler(service services.ReportService) *ReportHandler {
	return &ReportHandler{
		service: service,
	}
}

// AttentionListResponse is the body of GET /get_attention_list_table.
type AttentionListResponse struct {
	TableColumns  []string        `json:"tableColumns"`
	AttentionList []models.Record `json:"attentionList"`
}

// VATIPResponse is the body of GET /get_vat_ip_table.
type VATIPResponse struct {
	TableColumns []string        `json:"tableColumns"`
	IPVatList    []models.Record `json:"ipVatList"`
}

// HistoricalMetaResponse is the body of GET /get_historical_meta_table.
type HistoricalMetaResponse struct {
	TableColumns   []string        `json:"tableColumns"`
	HistoricalMeta []models.Record `json:"historicalMeta"`
}

// AttentionList handles GET /get_attention_list_table endpoint.
func (h *ReportHandler) AttentionList(c *gin.Context) {
	h.serveTable(c, h.service.AttentionList, func(t *models.Table) interface{} {
		return AttentionListResponse{TableColumns: t.Columns(), AttentionList: t.Records()}
	})
}

// VATIPIssues handles GET /get_vat_ip_table endpoint.
func (h *ReportHandler) VATIPIssues(c *gin.Context) {
	h.serveTable(c, h.service.VATIPIssues, func(t *models.Table) interface{} {
		return VATIPResponse{TableColumns: t.Columns(), IPVatList: t.Records()}
	})
}

// HistoricalMeta handles GET /get_historical_meta_table endpoint.
func (h *ReportHandler) HistoricalMeta(c *gin.Context) {
	h.serveTable(c, h.service.HistoricalMeta, func(t *models.Table) interface{} {
		return HistoricalMetaResponse{TableColumns: t.Columns(), HistoricalMeta: t.Records()}
	})
}

func (h *ReportHandler) serveTable(
	c *gin.Context,
	load func(context.Context) (*models.Table, error),
	render func(*models.Table) interface{},
) {
	table, err := load(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, render(table))
}
