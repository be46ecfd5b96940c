package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// FunctionAppSource downloads reference files from the function app's file endpoints.
type FunctionAppSource struct {
	baseURL string
	key     string
	client  *http.Client
}

// NewFunctionAppSource creates a source for {baseURL}/api/{endpoint}?code={key}.
func NewFunctionAppSource(baseURL, key string, timeout time.Duration) *FunctionAppSource {
	return &FunctionAppSource{
		baseURL: baseURL,
		key:     key,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *FunctionAppSource) Name() string { return "function_app" }

// Fetch downloads the resource. Any non-2xx status is an error.
func (s *FunctionAppSource) Fetch(ctx context.Context, res Resource) (io.ReadCloser, error) {
	endpoint := fmt.Sprintf("%s/api/%s?code=%s", s.baseURL, res.Endpoint, url.QueryEscape(s.key))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", res.Endpoint, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", res.Endpoint, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, res.Endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %d", res.Endpoint, resp.StatusCode)
	}

	return resp.Body, nil
}
