package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/AtSheen/efg/internal/logger"
	"github.com/AtSheen/efg/internal/middleware"
	"github.com/AtSheen/efg/internal/models"
	"github.com/AtSheen/efg/internal/predictor"
	"github.com/AtSheen/efg/internal/repository"
	"github.com/AtSheen/efg/internal/services"
	"github.com/AtSheen/efg/internal/storage"
)

const fixtureDir = "../repository/testdata"

// lazyFixtureStore returns a store over the repository fixtures that has not loaded yet.
func lazyFixtureStore(t *testing.T) repository.Store {
	t.Helper()
	source, err := storage.NewLocalSource(fixtureDir)
	require.NoError(t, err)
	return repository.NewStore(source, 5*time.Second, logger.Nop())
}

// fixtureStore returns a loaded store over the repository fixtures.
func fixtureStore(t *testing.T) repository.Store {
	t.Helper()
	store := lazyFixtureStore(t)
	_, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	return store
}

// predictorServer serves body for every prediction request and records the payload it received.
func predictorServer(t *testing.T, status int, body string, received *map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/GetTaxCode" || r.URL.Query().Get("code") != "secret" {
			http.NotFound(w, r)
			return
		}
		if received != nil {
			_ = json.NewDecoder(r.Body).Decode(received)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// setupAPIRouter wires the prediction and report routes the way the server does.
func setupAPIRouter(taxCode *TaxCodeHandler, reports *ReportHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))

	router.POST("/get_tax_code_prediction", taxCode.Predict)
	router.GET("/get_attention_list_table", reports.AttentionList)
	router.GET("/get_vat_ip_table", reports.VATIPIssues)
	router.GET("/get_historical_meta_table", reports.HistoricalMeta)

	return router
}

// newIntegrationRouter wires real services over the fixture store and a fake predictor.
func newIntegrationRouter(t *testing.T, store repository.Store, predictorURL string) *gin.Engine {
	t.Helper()
	client := predictor.NewClient(predictorURL, "secret", 2*time.Second, logger.Nop())
	taxCode := NewTaxCodeHandler(services.NewTaxCodeService(store, client, logger.Nop()))
	reports := NewReportHandler(services.NewReportService(store, logger.Nop()))
	return setupAPIRouter(taxCode, reports)
}

// MockTaxCodeService is a mock implementation of services.TaxCodeService for testing
type MockTaxCodeService struct {
	mock.Mock
}

func (m *MockTaxCodeService) Enrich(ctx context.Context, q models.TaxCodeQuery) (models.EnrichedQuery, error) {
	args := m.Called(ctx, q)
	enriched, _ := args.Get(0).(models.EnrichedQuery)
	return enriched, args.Error(1)
}

func (m *MockTaxCodeService) Candidates(ctx context.Context, q models.TaxCodeQuery) (*services.CandidateResult, error) {
	args := m.Called(ctx, q)
	result, _ := args.Get(0).(*services.CandidateResult)
	return result, args.Error(1)
}

func (m *MockTaxCodeService) Predict(ctx context.Context, q models.TaxCodeQuery) (*services.PredictionResult, error) {
	args := m.Called(ctx, q)
	result, _ := args.Get(0).(*services.PredictionResult)
	return result, args.Error(1)
}

// MockReportService is a mock implementation of services.ReportService for testing
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) AttentionList(ctx context.Context) (*models.Table, error) {
	args := m.Called(ctx)
	table, _ := args.Get(0).(*models.Table)
	return table, args.Error(1)
}

func (m *MockReportService) VATIPIssues(ctx context.Context) (*models.Table, error) {
	args := m.Called(ctx)
	table, _ := args.Get(0).(*models.Table)
	return table, args.Error(1)
}

func (m *MockReportService) HistoricalMeta(ctx context.Context) (*models.Table, error) {
	args := m.Called(ctx)
	table, _ := args.Get(0).(*models.Table)
	return table, args.Error(1)
}
