package services

import (
	"context"
	"log"

	"github.com/dpup/lanewatch/internal/lib/geo"
	"github.com/dpup/lanewatch/internal/seanet"
)

// KmPerNauticalMile is the exact conversion factor for reported route lengths.
const KmPerNauticalMile = 1.852

// PathResult is one computed sea route. Points always begin and end with the
// caller's exact origin and destination; the snap-in and snap-out legs are
// included in the reported length.
type PathResult struct {
	Points             []geo.Position `json:"points"`
	LengthNauticalMile float64        `json:"length"`
	LengthUnit         string         `json:"length_unit"`
	OriginSnapped      bool           `json:"origin_snapped"`
	DestinationSnapped bool           `json:"destination_snapped"`
}

// SeaRouteService composes the lane-network snapper and pathfinder into the
// public "route between port A and port B" entry point.
type SeaRouteService struct {
	network  *seanet.Network
	geoUtils geo.GeoUtils
}

// NewSeaRouteService creates a SeaRouteService over an already-built network.
func NewSeaRouteService(network *seanet.Network) *SeaRouteService {
	return &SeaRouteService{
		network:  network,
		geoUtils: geo.NewGeoUtils(),
	}
}

// ComputeSeaRoute snaps both endpoints onto the lane network, runs the
// shortest-path search between the snapped vertices, and stitches the
// caller's original endpoints onto the path ends.
//
// seanet.ErrNoRoute is returned when the snapped endpoints sit on
// disconnected components; callers must treat it as a normal outcome.
func (s *SeaRouteService) ComputeSeaRoute(ctx context.Context, origin, destination geo.Position) (*PathResult, error) {
	snappedOrigin, originOk := s.network.Snap(origin)
	snappedDestination, destinationOk := s.network.Snap(destination)

	var lanePath []geo.Position
	if originOk && destinationOk {
		path, err := s.network.ShortestPath(snappedOrigin, snappedDestination)
		if err != nil {
			return nil, err
		}
		lanePath = path
	} else {
		// Unsnappable endpoint: degrade to a direct line, flagged via the
		// snap booleans rather than silently.
		log.Printf("Sea route degraded to direct line (origin snapped: %v, destination snapped: %v)", originOk, destinationOk)
	}

	// The caller's exact endpoints are always first and last, even though the
	// search ran on snapped vertices. Near-identical consecutive points are
	// kept as-is.
	points := make([]geo.Position, 0, len(lanePath)+2)
	points = append(points, origin)
	points = append(points, lanePath...)
	points = append(points, destination)

	lengthKm := 0.0
	for i := 0; i < len(points)-1; i++ {
		d, err := s.geoUtils.Distance(points[i], points[i+1])
		if err != nil {
			continue
		}
		lengthKm += d
	}

	return &PathResult{
		Points:             points,
		LengthNauticalMile: lengthKm / KmPerNauticalMile,
		LengthUnit:         "nautical_miles",
		OriginSnapped:      originOk,
		DestinationSnapped: destinationOk,
	}, nil
}

// SeaRoutePoints implements the leg extractor's SeaRouter contract.
func (s *SeaRouteService) SeaRoutePoints(ctx context.Context, origin, destination geo.Position) ([]geo.Position, error) {
	result, err := s.ComputeSeaRoute(ctx, origin, destination)
	if err != nil {
		return nil, err
	}
	return result.Points, nil
}
