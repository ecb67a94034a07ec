// Package landrouter is the client for the external road/rail routing
// provider. The engine treats the provider as a black box that returns an
// encoded polyline for a given origin/destination.
package landrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dpup/lanewatch/internal/lib/geo"
	"github.com/dpup/lanewatch/internal/lib/legs"
)

// Client talks to the routing provider over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	geoUtils   geo.GeoUtils
}

// RouteData is the processed routing result.
type RouteData struct {
	Polyline                 string
	DurationSeconds          int64
	DurationInTrafficSeconds int64
	Points                   []geo.Position
}

// routeResponse mirrors the provider's wire format.
type routeResponse struct {
	Polyline          string `json:"polyline"`
	Duration          int64  `json:"duration"`
	DurationInTraffic int64  `json:"durationInTraffic"`
}

// NewClient creates a routing client for the given provider endpoint.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  baseURL,
		geoUtils: geo.NewGeoUtils(),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ComputeRoute requests a route and decodes the returned polyline. Each
// endpoint is sent as a {lat,lng} pair when coordinates are known, otherwise
// as the free-text place name the provider geocodes itself.
func (c *Client) ComputeRoute(ctx context.Context, origin, destination legs.Location, mode legs.Mode) (*RouteData, error) {
	requestBody := map[string]interface{}{
		"origin":      endpointValue(origin),
		"destination": endpointValue(destination),
		"mode":        string(mode),
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/route", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 429 {
		return nil, fmt.Errorf("rate limit exceeded")
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("router error %d: %s", resp.StatusCode, string(body))
	}

	var response routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if response.Polyline == "" {
		return nil, fmt.Errorf("router returned no polyline")
	}

	points, err := c.geoUtils.DecodePolyline(response.Polyline)
	if err != nil {
		return nil, fmt.Errorf("failed to decode route polyline: %w", err)
	}

	return &RouteData{
		Polyline:                 response.Polyline,
		DurationSeconds:          response.Duration,
		DurationInTrafficSeconds: response.DurationInTraffic,
		Points:                   points,
	}, nil
}

// RoutePoints implements the leg extractor's LandRouter contract.
func (c *Client) RoutePoints(ctx context.Context, origin, destination legs.Location, mode legs.Mode) ([]geo.Position, error) {
	data, err := c.ComputeRoute(ctx, origin, destination, mode)
	if err != nil {
		return nil, err
	}
	return data.Points, nil
}

// endpointValue renders one request endpoint: coordinates when set, the
// place name otherwise.
func endpointValue(loc legs.Location) interface{} {
	if !loc.Position().IsZero() {
		return map[string]float64{"lat": loc.Latitude, "lng": loc.Longitude}
	}
	return loc.Name
}
