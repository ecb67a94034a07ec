package legs

import (
	"context"
	"log"

	"github.com/dpup/lanewatch/internal/lib/geo"
)

// flightArcSteps is the fixed resolution for synthesized flight arcs.
const flightArcSteps = 50

// flightArcCurvature scales the bezier control-point offset relative to the
// chord length.
const flightArcCurvature = 0.2

// gapWarnKm is the inter-stage adjacency distance above which a gap warning
// is produced.
const gapWarnKm = 50.0

// LandRouter produces a dense point sequence for a road or rail leg. The
// live implementation decodes an external router's encoded polyline.
type LandRouter interface {
	RoutePoints(ctx context.Context, origin, destination Location, mode Mode) ([]geo.Position, error)
}

// SeaRouter computes a navigable maritime path between two coordinates.
type SeaRouter interface {
	SeaRoutePoints(ctx context.Context, origin, destination geo.Position) ([]geo.Position, error)
}

// PortLookup resolves a port name, number or code to coordinates.
type PortLookup interface {
	Resolve(ctx context.Context, ref string) (geo.Position, error)
}

// Extraction is the dense polyline one transport leg follows. Fallback marks
// the low-confidence 2-point straight line substituted when a dependency
// failed or the leg's coordinates were unset; the correlator treats such legs
// as reduced fidelity but still scans them.
type Extraction struct {
	Points   []geo.Position
	Fallback bool
}

// Extractor reconstructs per-leg polylines, dispatching on transport mode.
type Extractor struct {
	landRouter LandRouter
	seaRouter  SeaRouter
	portLookup PortLookup
	geoUtils   geo.GeoUtils
}

// NewExtractor creates a leg extractor. Any collaborator may be nil; legs
// depending on a missing collaborator fall back to straight lines.
func NewExtractor(landRouter LandRouter, seaRouter SeaRouter, portLookup PortLookup) *Extractor {
	return &Extractor{
		landRouter: landRouter,
		seaRouter:  seaRouter,
		portLookup: portLookup,
		geoUtils:   geo.NewGeoUtils(),
	}
}

// ExtractLegPoints produces the dense coordinate sequence for one transport
// leg. It never returns an empty point list and never fails: every error
// path substitutes the flagged 2-point straight line.
func (e *Extractor) ExtractLegPoints(ctx context.Context, t Transport) Extraction {
	source := t.Source.Position()
	destination := t.Destination.Position()

	// (0,0) on both ends means the coordinates were never set upstream;
	// there is nothing meaningful to route. Sea legs get a chance to resolve
	// port codes first.
	if source.IsZero() && destination.IsZero() && t.Mode != ModeSea {
		return e.fallback(t, "coordinates unset")
	}

	switch t.Mode {
	case ModeRoad, ModeRail:
		if e.landRouter == nil {
			return e.fallback(t, "no land router configured")
		}
		points, err := e.landRouter.RoutePoints(ctx, t.Source, t.Destination, t.Mode)
		if err != nil || len(points) == 0 {
			return e.fallback(t, "land router failed")
		}
		return Extraction{Points: points}

	case ModeSea:
		return e.extractSeaLeg(ctx, t)

	case ModeFlight:
		// Synthesized locally; a visual arc, not a real flight path.
		return Extraction{Points: e.geoUtils.BezierArc(source, destination, flightArcSteps, flightArcCurvature)}

	default:
		return e.fallback(t, "unknown mode")
	}
}

// extractSeaLeg resolves port coordinates then routes over the lane network.
func (e *Extractor) extractSeaLeg(ctx context.Context, t Transport) Extraction {
	if e.seaRouter == nil {
		return e.fallback(t, "no sea router configured")
	}

	origin, ok := e.resolvePort(ctx, t.Source)
	if !ok {
		return e.fallback(t, "origin port unresolved")
	}
	destination, ok := e.resolvePort(ctx, t.Destination)
	if !ok {
		return e.fallback(t, "destination port unresolved")
	}

	points, err := e.seaRouter.SeaRoutePoints(ctx, origin, destination)
	if err != nil || len(points) == 0 {
		return e.fallback(t, "sea router failed")
	}
	return Extraction{Points: points}
}

// resolvePort prefers the location's own coordinates, then the port lookup
// collaborator keyed by code and then name.
func (e *Extractor) resolvePort(ctx context.Context, loc Location) (geo.Position, bool) {
	if !loc.Position().IsZero() {
		return loc.Position(), true
	}
	if e.portLookup == nil {
		return geo.Position{}, false
	}
	for _, ref := range []string{loc.Code, loc.Name} {
		if ref == "" {
			continue
		}
		p, err := e.portLookup.Resolve(ctx, ref)
		if err == nil {
			return p, true
		}
	}
	return geo.Position{}, false
}

// fallback substitutes the 2-point straight line, logged so the degradation
// is never silent.
func (e *Extractor) fallback(t Transport, reason string) Extraction {
	log.Printf("Leg extraction fallback for %s leg %s -> %s: %s",
		t.Mode, t.Source.Name, t.Destination.Name, reason)
	return Extraction{
		Points:   []geo.Position{t.Source.Position(), t.Destination.Position()},
		Fallback: true,
	}
}

// GapWarning flags adjacent transport legs whose handoff points sit far
// apart, a sign of an inconsistent shipment definition.
type GapWarning struct {
	StageIndex int      `json:"stage_index"` // index of the earlier stage
	From       Location `json:"from"`
	To         Location `json:"to"`
	DistanceKm float64  `json:"distance_km"`
}

// StageGaps compares each transport stage's destination with the next
// transport stage's source, after all extraction work is done, never
// interleaved with it.
func (e *Extractor) StageGaps(route ShippingRoute) []GapWarning {
	var warnings []GapWarning
	prevIdx := -1
	for i, stage := range route.Stages {
		if stage.Transport == nil {
			continue
		}
		if prevIdx >= 0 {
			prev := route.Stages[prevIdx].Transport
			d, err := e.geoUtils.Distance(prev.Destination.Position(), stage.Transport.Source.Position())
			if err == nil && d > gapWarnKm {
				warnings = append(warnings, GapWarning{
					StageIndex: prevIdx,
					From:       prev.Destination,
					To:         stage.Transport.Source,
					DistanceKm: d,
				})
			}
		}
		prevIdx = i
	}
	return warnings
}
