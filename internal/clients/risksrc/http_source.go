package risksrc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dpup/lanewatch/internal/lib/risk"
)

// HTTPSource fetches a normalized hazard feed over HTTP. The per-fetch
// deadline comes from the aggregator's context; the client timeout here is
// only a backstop.
type HTTPSource struct {
	name       string
	url        string
	httpClient *http.Client
}

// NewHTTPSource creates a live hazard source.
func NewHTTPSource(name, url string) *HTTPSource {
	return &HTTPSource{
		name: name,
		url:  url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name identifies the source in logs.
func (s *HTTPSource) Name() string { return s.name }

// Fetch downloads and decodes the feed.
func (s *HTTPSource) Fetch(ctx context.Context) ([]risk.Point, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("source %s error %d: %s", s.name, resp.StatusCode, string(body))
	}

	var points []risk.Point
	if err := json.NewDecoder(resp.Body).Decode(&points); err != nil {
		return nil, fmt.Errorf("failed to decode source %s: %w", s.name, err)
	}

	return points, nil
}

// StaticSource serves a fixed hazard list from memory: the configured
// fallback when a live feed is unavailable, and the workhorse of tests.
type StaticSource struct {
	name   string
	points []risk.Point
}

// NewStaticSource creates a static hazard source.
func NewStaticSource(name string, points []risk.Point) *StaticSource {
	return &StaticSource{name: name, points: points}
}

// Name identifies the source in logs.
func (s *StaticSource) Name() string { return s.name }

// Fetch returns a copy of the configured list.
func (s *StaticSource) Fetch(ctx context.Context) ([]risk.Point, error) {
	out := make([]risk.Point, len(s.points))
	copy(out, s.points)
	return out, nil
}
