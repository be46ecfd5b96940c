package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtSheen/efg/internal/logger"
	"github.com/AtSheen/efg/internal/models"
)

func enrichedFixture() models.EnrichedQuery {
	name := "Efg Deutschland GmbH"
	return models.EnrichedQuery{
		CompanyCode:      "1027",
		VendorNumber:     "373458",
		VATRate:          "0",
		APAR:             "AP",
		ReportingCountry: models.KnownCountry("DE"),
		ReportingName:    &name,
		VendorCountry:    models.KnownCountry("US"),
		VendorName:       "Acme Supplies Inc",
		IsReverseCharge:  models.ReverseCharge(false),
		LegalEntity:      models.LegalEntityDifferent,
		GoodsServices:    models.GoodsServicesGoods,
		EUNonEU:          models.RegionNonEU,
		DomesticForeign:  models.ResidencyForeign,
	}
}

func fullConfig() models.CategoricalConfig {
	return models.CategoricalConfig{
		FeatureNames: []string{
			models.FeatureLegalEntity,
			models.FeatureCompanyCode,
			models.FeatureVATRate,
			models.FeatureReverseCharge,
			models.FeatureGoodsServices,
		},
		Categories: map[string][]string{
			models.FeatureLegalEntity:   {"Same", "Different"},
			models.FeatureCompanyCode:   {"1027"},
			models.FeatureVATRate:       {"19.0"},
			models.FeatureReverseCharge: {"True", "False"},
			models.FeatureGoodsServices: {"Goods", "Services", "Goods/Services"},
		},
	}
}

func TestBuildPayload(t *testing.T) {
	payload, err := BuildPayload(enrichedFixture(), fullConfig(), []string{"V0", "V1", "V1"})
	require.NoError(t, err)

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	assert.Equal(t,
		`{"query":{"legal_entity":"Different","company_code":"1027","vat_rate":"0","is_reverse_charge":"False","goods_services":"Goods"},"filtered_tax_codes":["V0","V1","V1"]}`,
		string(data),
	)
	assert.Equal(t, []string{models.FeatureVATRate}, payload.OutOfVocabulary, "out-of-vocabulary values are flagged, not dropped")

	value, ok := payload.Query.Get("vat_rate")
	assert.True(t, ok)
	assert.Equal(t, "0", value)
}

func TestBuildPayload_EmptyCandidates(t *testing.T) {
	payload, err := BuildPayload(enrichedFixture(), fullConfig(), nil)
	require.NoError(t, err)

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"filtered_tax_codes":[]`)
}

func TestBuildPayload_Errors(t *testing.T) {
	_, err := BuildPayload(enrichedFixture(), models.CategoricalConfig{}, nil)
	assert.Error(t, err)

	cfg := models.CategoricalConfig{
		FeatureNames: []string{"Invoice Amount"},
		Categories:   map[string][]string{"Invoice Amount": {"1"}},
	}
	_, err = BuildPayload(enrichedFixture(), cfg, nil)
	assert.True(t, errors.Is(err, ErrUnknownFeature))
}

func TestFieldName(t *testing.T) {
	assert.Equal(t, "domestic_foreign", FieldName(models.FeatureDomesticForeign))
	assert.Equal(t, "eu_noneu", FieldName(models.FeatureEUNonEU))
	assert.Equal(t, "Custom Column", FieldName("Custom Column"))
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.23456, 0.23},
		{0.8765, 0.88},
		{0.125, 0.12},
		{0.135, 0.14},
		{0.155, 0.15},
		{0.165, 0.17},
		{0.575, 0.57},
		{0.025, 0.03},
		{0.015, 0.01},
		{0.175, 0.17},
		{1, 1},
		{0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round2(tt.in), "Round2(%v)", tt.in)
	}
}

const eightEntries = `{
	"ml_prediction": "V0",
	"ml_prediction_proba": 0.8765,
	"ml_prediction_proba_df": [
		{"Tax Code": "V0", "prob": 0.23456},
		{"Tax Code": "V1", "prob": 0.2},
		{"Tax Code": "V2", "prob": 0.15555},
		{"Tax Code": "V3", "prob": 0.1},
		{"Tax Code": "V4", "prob": 0.09},
		{"Tax Code": "V5", "prob": 0.08},
		{"Tax Code": "V6", "prob": 0.07},
		{"Tax Code": "V7", "prob": 0.06}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "secret", time.Second, logger.Nop())
}

func testPayload(t *testing.T) *Payload {
	t.Helper()
	payload, err := BuildPayload(enrichedFixture(), fullConfig(), []string{"V0"})
	require.NoError(t, err)
	return payload
}

func TestClient_Predict(t *testing.T) {
	var gotBody, gotPath, gotCode, gotContentType string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotPath = r.URL.Path
		gotCode = r.URL.Query().Get("code")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(eightEntries))
	})

	prediction, err := client.Predict(context.Background(), testPayload(t))
	require.NoError(t, err)

	assert.Equal(t, "/api/GetTaxCode", gotPath)
	assert.Equal(t, "secret", gotCode)
	assert.Equal(t, "application/json", gotContentType)
	assert.Contains(t, gotBody, `"filtered_tax_codes":["V0"]`)

	assert.Equal(t, "V0", prediction.TaxCode)
	assert.Equal(t, 0.88, prediction.Confidence)
	require.Len(t, prediction.Probabilities, 5)
	assert.Equal(t, models.TaxCodeProbability{TaxCode: "V0", Prob: 0.23}, prediction.Probabilities[0])
	assert.Equal(t, 0.16, prediction.Probabilities[2].Prob)
	assert.Equal(t, "V4", prediction.Probabilities[4].TaxCode)
}

func TestClient_Predict_KeepsReceivedOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ml_prediction":"B","ml_prediction_proba":0.5,"ml_prediction_proba_df":[{"Tax Code":"A","prob":0.1},{"Tax Code":"B","prob":0.5}]}`))
	})

	prediction, err := client.Predict(context.Background(), testPayload(t))
	require.NoError(t, err)
	require.Len(t, prediction.Probabilities, 2)
	assert.Equal(t, "A", prediction.Probabilities[0].TaxCode)
}

func TestClient_Predict_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		invalid bool
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`},
		{name: "bad gateway", status: http.StatusBadGateway},
		{name: "not json", status: http.StatusOK, body: `<html>`, invalid: true},
		{name: "missing prediction", status: http.StatusOK, body: `{"ml_prediction_proba":0.5,"ml_prediction_proba_df":[]}`, invalid: true},
		{name: "missing confidence", status: http.StatusOK, body: `{"ml_prediction":"V0","ml_prediction_proba_df":[]}`, invalid: true},
		{name: "confidence out of range", status: http.StatusOK, body: `{"ml_prediction":"V0","ml_prediction_proba":1.5,"ml_prediction_proba_df":[]}`, invalid: true},
		{name: "missing prob", status: http.StatusOK, body: `{"ml_prediction":"V0","ml_prediction_proba":0.5,"ml_prediction_proba_df":[{"Tax Code":"V0"}]}`, invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			prediction, err := client.Predict(context.Background(), testPayload(t))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrExternalService))
			assert.Equal(t, tt.invalid, errors.Is(err, ErrInvalidResponse))
			assert.Equal(t, models.Prediction{}, prediction)
		})
	}
}

func TestClient_Predict_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 20*time.Millisecond, logger.Nop())
	_, err := client.Predict(context.Background(), testPayload(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExternalService))
}

func TestClient_Predict_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "", time.Second, logger.Nop())
	_, err := client.Predict(context.Background(), testPayload(t))
	assert.True(t, errors.Is(err, ErrExternalService))
}
