package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/AtSheen/efg/internal/logger"
	"github.com/AtSheen/efg/internal/models"
)

var (
	// ErrExternalService marks any failure of the predictor call.
	ErrExternalService = errors.New("external service request failed")
	// ErrInvalidResponse marks a predictor response that cannot be used.
	ErrInvalidResponse = fmt.Errorf("%w: invalid response", ErrExternalService)
)

const (
	predictPath      = "/api/GetTaxCode"
	maxResponseBytes = 1 << 20
)

// Client calls the tax code prediction function. Each Predict is a single
// attempt bounded by the client timeout and the caller's context.
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a predictor client for baseURL, authenticated with key.
func NewClient(baseURL, key string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		endpoint:   fmt.Sprintf("%s%s?code=%s", baseURL, predictPath, url.QueryEscape(key)),
		httpClient: &http.Client{Timeout: timeout},
		log:        log.WithComponent("predictor"),
	}
}

type response struct {
	Prediction    *string       `json:"ml_prediction"`
	Confidence    *float64      `json:"ml_prediction_proba"`
	Probabilities []probability `json:"ml_prediction_proba_df"`
}

type probability struct {
	TaxCode string   `json:"Tax Code"`
	Prob    *float64 `json:"prob"`
}

// Predict sends payload and returns the normalized prediction.
func (c *Client) Predict(ctx context.Context, payload *Payload) (models.Prediction, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return models.Prediction{}, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return models.Prediction{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Prediction{}, fmt.Errorf("%w: %w", ErrExternalService, err)
	}
	defer resp.Body.Close()

	fields := map[string]interface{}{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
		"candidates":  len(payload.FilteredTaxCodes),
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		c.log.Warn("Predictor returned an error status", fields)
		return models.Prediction{}, fmt.Errorf("%w: status %d", ErrExternalService, resp.StatusCode)
	}

	var raw response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&raw); err != nil {
		return models.Prediction{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	prediction, err := normalize(raw)
	if err != nil {
		return models.Prediction{}, err
	}

	fields["prediction"] = prediction.TaxCode
	fields["confidence"] = prediction.Confidence
	c.log.Info("Prediction received", fields)
	return prediction, nil
}
