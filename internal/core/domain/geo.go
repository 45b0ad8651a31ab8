package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point lies inside the WGS 84 coordinate range.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("%g,%g", p.Lat, p.Lon)
}

// Path is an ordered sequence of coordinates describing a travel route,
// in travel order from origin to destination. Always (lat, lon); provider
// responses that arrive longitude-first are normalized at the adapter.
type Path []GeoPoint

// Start returns the first coordinate of the path.
func (p Path) Start() GeoPoint { return p[0] }

// End returns the last coordinate of the path.
func (p Path) End() GeoPoint { return p[len(p)-1] }

// Pairs renders the path as [lat, lon] pairs for the wire format.
func (p Path) Pairs() [][2]float64 {
	out := make([][2]float64, len(p))
	for i, pt := range p {
		out[i] = [2]float64{pt.Lat, pt.Lon}
	}
	return out
}

// ParseGeoPoint parses a literal "lat,lon" string. It returns ok=false when
// the string is not a coordinate pair, so callers can fall back to geocoding
// the text as a place name.
func ParseGeoPoint(s string) (GeoPoint, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return GeoPoint{}, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return GeoPoint{}, false
	}
	return GeoPoint{Lat: lat, Lon: lon}, true
}
