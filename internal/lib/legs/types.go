// Package legs models multi-leg shipments and reconstructs the dense
// polyline each transport leg actually follows.
package legs

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dpup/lanewatch/internal/lib/geo"
)

// Mode is the transport mode of one leg.
type Mode string

const (
	ModeFlight Mode = "flight"
	ModeSea    Mode = "sea"
	ModeRoad   Mode = "road"
	ModeRail   Mode = "rail"
)

// Location is one end of a transport leg. Code carries a port or airport
// identifier when the caller has one; (0,0) coordinates mean "unset".
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Code      string  `json:"code,omitempty"`
}

// Position returns the location as a canonical position.
func (l Location) Position() geo.Position {
	return geo.Position{Latitude: l.Latitude, Longitude: l.Longitude}
}

// Transport is one stage's movement between two locations.
type Transport struct {
	Source      Location `json:"source"`
	Destination Location `json:"destination"`
	Mode        Mode     `json:"mode"`
	Courier     string   `json:"courier,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// Holding is one stage's dwell at a named place.
type Holding struct {
	Location string `json:"location"`
	Duration string `json:"duration,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Stage is exactly one of Transport or Holding, never both, never neither.
type Stage struct {
	Transport *Transport `json:"transport,omitempty"`
	Holding   *Holding   `json:"holding,omitempty"`
}

var errStageExclusivity = errors.New("stage must have exactly one of transport or holding")

// Validate enforces the transport/holding exclusivity invariant. Every
// boundary that accepts a Stage runs this before the engine does.
func (s Stage) Validate() error {
	if (s.Transport == nil) == (s.Holding == nil) {
		return errStageExclusivity
	}
	if s.Transport != nil {
		switch s.Transport.Mode {
		case ModeFlight, ModeSea, ModeRoad, ModeRail:
		default:
			return errors.New("unknown transport mode: " + string(s.Transport.Mode))
		}
	}
	return nil
}

// ShippingRoute is one monitored multi-leg shipment.
type ShippingRoute struct {
	ID              string   `json:"id,omitempty"`
	Name            string   `json:"name"`
	GoodsType       string   `json:"goods_type,omitempty"`
	Stages          []Stage  `json:"stages"`
	MonitorKeywords []string `json:"monitor_keywords,omitempty"`
	FeedURLs        []string `json:"feed_urls,omitempty"`
}

// EnsureID assigns a generated identifier when the caller supplied none.
func (r *ShippingRoute) EnsureID() {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
}

// Validate checks every stage's exclusivity invariant.
func (r ShippingRoute) Validate() error {
	for i, stage := range r.Stages {
		if err := stage.Validate(); err != nil {
			return fmt.Errorf("stage %d: %w", i, err)
		}
	}
	return nil
}
