package seanet

import (
	_ "embed"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/dpup/lanewatch/internal/lib/geo"
)

// The bundled lane dataset: major shipping lanes as KML LineStrings. Loaded
// once at process start; a parse failure here aborts initialization since
// every sea-route call depends on it.
//
//go:embed data/sealanes.kml
var defaultLaneDataset []byte

// LoadDefaultNetwork builds the lane network from the bundled dataset.
func LoadDefaultNetwork() (*Network, error) {
	segments, err := ParseKML(defaultLaneDataset)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bundled lane dataset: %w", err)
	}
	return NewNetwork(segments)
}

// kmlFile mirrors just the KML structure the lane dataset uses: a Document
// of Placemarks (optionally foldered) carrying LineString geometries.
type kmlFile struct {
	Document kmlDocument `xml:"Document"`
}

type kmlDocument struct {
	Folders    []kmlFolder    `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlFolder struct {
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlPlacemark struct {
	Name       string         `xml:"name"`
	LineString *kmlLineString `xml:"LineString"`
}

type kmlLineString struct {
	Coordinates string `xml:"coordinates"`
}

// ParseKML extracts lane segments from a KML document. Placemarks without a
// LineString (markers, labels) are skipped; a document that yields no
// segments at all is an error.
func ParseKML(data []byte) ([]LaneSegment, error) {
	var doc kmlFile
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse KML: %w", err)
	}

	placemarks := doc.Document.Placemarks
	for _, folder := range doc.Document.Folders {
		placemarks = append(placemarks, folder.Placemarks...)
	}

	var segments []LaneSegment
	for _, pm := range placemarks {
		if pm.LineString == nil {
			continue
		}
		points, err := parseCoordinates(pm.LineString.Coordinates)
		if err != nil {
			return nil, fmt.Errorf("placemark %q: %w", pm.Name, err)
		}
		if len(points) < 2 {
			return nil, fmt.Errorf("placemark %q: LineString has %d points, need at least 2", pm.Name, len(points))
		}
		segments = append(segments, LaneSegment{Name: pm.Name, Points: points})
	}

	if len(segments) == 0 {
		return nil, fmt.Errorf("KML document contains no LineString placemarks")
	}

	return segments, nil
}

// parseCoordinates decodes a KML coordinate block. KML tuples are
// "longitude,latitude[,altitude]" separated by whitespace; positions come out
// in the engine's canonical latitude/longitude order.
func parseCoordinates(raw string) ([]geo.Position, error) {
	var points []geo.Position
	for _, tuple := range strings.Fields(raw) {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 {
			return nil, fmt.Errorf("malformed coordinate tuple %q", tuple)
		}
		lon, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed longitude in %q", tuple)
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed latitude in %q", tuple)
		}
		p, err := geo.NewPosition(lat, lon)
		if err != nil {
			return nil, fmt.Errorf("out-of-range coordinate %q", tuple)
		}
		points = append(points, p)
	}
	return points, nil
}
