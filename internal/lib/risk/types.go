// Package risk correlates normalized hazard records against shipment routes.
//
// Hazard collaborators (feed scrapers, jamming heatmaps, rail disruption
// feeds) produce Points already normalized; this package only filters and
// forwards them. All "near" determinations here are advisory triage signals
// built on heuristic spatial tests, not authoritative safety answers.
package risk

import "github.com/dpup/lanewatch/internal/lib/geo"

// Type classifies the hazard source family.
type Type string

const (
	TypeWeather         Type = "weather"
	TypeNavigation      Type = "navigation"
	TypeNotam           Type = "notam"
	TypeTraffic         Type = "traffic"
	TypeJamming         Type = "jamming"
	TypeTrainDisruption Type = "train-disruption"
)

// Point is one normalized, geolocated hazard record. Severity is on a 0-100
// scale for jamming; other sources define their own scale.
type Point struct {
	ID       string  `json:"id"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Type     Type    `json:"type"`
	Category string  `json:"category,omitempty"`
	Severity float64 `json:"severity,omitempty"`
}

// Position returns the hazard location as a canonical position.
func (p Point) Position() geo.Position {
	return geo.Position{Latitude: p.Lat, Longitude: p.Lon}
}
