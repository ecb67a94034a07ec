// Package ports resolves port names, numbers and codes to coordinates. Two
// implementations sit behind one interface: a live HTTP resolver and a
// static table used as the configured fallback.
package ports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dpup/lanewatch/internal/lib/geo"
)

// Lookup resolves a port reference to coordinates. Resolution failure is a
// soft error; sea-leg extraction degrades rather than aborts.
type Lookup interface {
	Resolve(ctx context.Context, ref string) (geo.Position, error)
}

// Client is the live HTTP port resolver.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// portResponse mirrors the resolver's wire format.
type portResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewClient creates a live port lookup client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Resolve queries the resolver for one port reference.
func (c *Client) Resolve(ctx context.Context, ref string) (geo.Position, error) {
	params := url.Values{}
	params.Set("query", ref)

	requestURL := fmt.Sprintf("%s/ports?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return geo.Position{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return geo.Position{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return geo.Position{}, fmt.Errorf("port not found: %s", ref)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return geo.Position{}, fmt.Errorf("port lookup error %d: %s", resp.StatusCode, string(body))
	}

	var response portResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return geo.Position{}, fmt.Errorf("failed to decode response: %w", err)
	}

	return geo.NewPosition(response.Latitude, response.Longitude)
}

// StaticLookup is the fallback resolver backed by a fixed table of major
// ports, keyed by UN/LOCODE and by common name.
type StaticLookup struct {
	table map[string]geo.Position
}

// NewStaticLookup creates the fallback resolver.
func NewStaticLookup() *StaticLookup {
	return &StaticLookup{table: map[string]geo.Position{
		"GBLON":     {Latitude: 51.5, Longitude: 0.0},
		"LONDON":    {Latitude: 51.5, Longitude: 0.0},
		"USNYC":     {Latitude: 40.7, Longitude: -74.0},
		"NEW YORK":  {Latitude: 40.7, Longitude: -74.0},
		"NLRTM":     {Latitude: 51.95, Longitude: 4.05},
		"ROTTERDAM": {Latitude: 51.95, Longitude: 4.05},
		"ESALG":     {Latitude: 36.13, Longitude: -5.44},
		"ALGECIRAS": {Latitude: 36.13, Longitude: -5.44},
		"EGPSD":     {Latitude: 31.25, Longitude: 32.3},
		"PORT SAID": {Latitude: 31.25, Longitude: 32.3},
		"SGSIN":     {Latitude: 1.3, Longitude: 103.8},
		"SINGAPORE": {Latitude: 1.3, Longitude: 103.8},
		"CNSHA":     {Latitude: 31.2, Longitude: 122.5},
		"SHANGHAI":  {Latitude: 31.2, Longitude: 122.5},
		"USOAK":     {Latitude: 37.8, Longitude: -122.5},
		"OAKLAND":   {Latitude: 37.8, Longitude: -122.5},
		"LKCMB":     {Latitude: 6.95, Longitude: 79.85},
		"COLOMBO":   {Latitude: 6.95, Longitude: 79.85},
	}}
}

// Resolve looks the reference up case-insensitively.
func (s *StaticLookup) Resolve(ctx context.Context, ref string) (geo.Position, error) {
	if p, ok := s.table[strings.ToUpper(strings.TrimSpace(ref))]; ok {
		return p, nil
	}
	return geo.Position{}, fmt.Errorf("port not in static table: %s", ref)
}
