package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/AtSheen/efg/internal/errors"
	"github.com/AtSheen/efg/internal/middleware"
	"github.com/AtSheen/efg/internal/models"
	"github.com/AtSheen/efg/internal/repository"
	"github.com/AtSheen/efg/internal/services"
)

// MessageReferenceDataUnavailable is sent while reference data cannot be loaded.
const MessageReferenceDataUnavailable = "Reference data is unavailable"

// probsTableColumns labels the probability table in the response.
var probsTableColumns = []string{"Tax Code", "Probability"}

// TaxCodeHandler handles tax code prediction requests.
type TaxCodeHandler struct {
	service services.TaxCodeService
}

// NewTaxCodeHandler creates a new TaxCodeHandler instance.
func NewTaxCodeHandler(service services.TaxCodeService) *TaxCodeHandler {
	return &TaxCodeHandler{
		service: service,
	}
}

// TaxCodePredictionRequest is the body of a prediction request.
// The code fields must be present but may be empty; an empty code is a
// lookup miss. Omitted or null booleans are absent, which is distinct from false.
type TaxCodePredictionRequest struct {
	PID             string      `json:"pID"`
	CompanyCode     *string     `json:"companyCode" binding:"required"`
	VendorNumber    *string     `json:"vendorNumber" binding:"required"`
	VATRate         *string     `json:"vatRate" binding:"required"`
	IsReverseCharge models.Flag `json:"isReverseCharge"`
	Goods           models.Flag `json:"goods"`
	Services        models.Flag `json:"services"`
	APAR            string      `json:"apAr"`
}

// Query converts the request into the core query.
func (r TaxCodePredictionRequest) Query() models.TaxCodeQuery {
	return models.TaxCodeQuery{
		CompanyCode:     deref(r.CompanyCode),
		VendorNumber:    deref(r.VendorNumber),
		VATRate:         deref(r.VATRate),
		APAR:            r.APAR,
		IsReverseCharge: r.IsReverseCharge,
		Goods:           r.Goods,
		Services:        r.Services,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// TaxCodePredictionResponse is the body of a successful prediction.
type TaxCodePredictionResponse struct {
	ReportingName                  *string                     `json:"reportingName"`
	VendorName                     string                      `json:"vendorName"`
	TaxCodeTableColumns            []string                    `json:"taxCodeTableColumns"`
	FilteredTaxCodes               []models.Record             `json:"filtered_tax_codes"`
	PredictedTaxCode               string                      `json:"predictedTaxCode"`
	ConfidenceScore                float64                     `json:"confidenceScore"`
	ProbsTableColumns              []string                    `json:"probsTableColumns"`
	TaxCodePredictionProbabilities []models.TaxCodeProbability `json:"taxCodePredictionProbabilities"`
}

// Predict handles POST /get_tax_code_prediction endpoint.
func (h *TaxCodeHandler) Predict(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req TaxCodePredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", map[string]interface{}{"reason": err.Error()})
		return
	}

	q := req.Query()
	if log != nil {
		log.Info("Processing tax code prediction request", map[string]interface{}{
			"pid":               req.PID,
			"company_code":      q.CompanyCode,
			"vendor_number":     q.VendorNumber,
			"vat_rate":          q.VATRate,
			"is_reverse_charge": req.IsReverseCharge.String(),
			"goods":             req.Goods.String(),
			"services":          req.Services.String(),
			"ap_ar":             req.APAR,
		})
	}

	result, err := h.service.Predict(c.Request.Context(), q)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPredictionResponse(result))
}

func newPredictionResponse(result *services.PredictionResult) TaxCodePredictionResponse {
	probabilities := result.Prediction.Probabilities
	if probabilities == nil {
		probabilities = []models.TaxCodeProbability{}
	}

	return TaxCodePredictionResponse{
		ReportingName:                  result.Enriched.ReportingName,
		VendorName:                     result.Enriched.VendorName,
		TaxCodeTableColumns:            result.Descriptions.Columns(),
		FilteredTaxCodes:               result.Descriptions.Records(),
		PredictedTaxCode:               result.Prediction.TaxCode,
		ConfidenceScore:                result.Prediction.Confidence,
		ProbsTableColumns:              probsTableColumns,
		TaxCodePredictionProbabilities: probabilities,
	}
}

// writeServiceError maps service errors onto the error envelope.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrReferenceDataUnavailable):
		apierrors.ServiceUnavailable(c, MessageReferenceDataUnavailable, err)
	case errors.Is(err, services.ErrPredictionFailed):
		apierrors.ExternalServiceError(c, err)
	default:
		apierrors.InternalServerError(c, apierrors.MessageInternalServer, err)
	}
}
