// Package ors talks to the OpenRouteService geocoding and directions APIs.
package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/samirrijal/geotales/internal/core/domain"
	"github.com/samirrijal/geotales/internal/pkg/metrics"
)

// Client calls OpenRouteService. It implements ports.RouteProvider.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates an ORS client. timeout bounds every request; ORS directions
// can take several seconds for long routes.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // lon, lat
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode resolves a free-text place name to a coordinate using
// /geocode/search with size=1. No match returns domain.ErrLocationNotFound.
func (c *Client) Geocode(ctx context.Context, name string) (_ domain.GeoPoint, err error) {
	defer metrics.ObserveUpstream("ors")(&err)

	endpoint := c.baseURL + "/geocode/search"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("geocode request: %w", err)
	}
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("text", name)
	q.Set("size", "1")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("geocode %q: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.GeoPoint{}, fmt.Errorf("geocode %q: unexpected status %d", name, resp.StatusCode)
	}

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.GeoPoint{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 || len(decoded.Features[0].Geometry.Coordinates) != 2 {
		return domain.GeoPoint{}, fmt.Errorf("geocode %q: %w", name, domain.ErrLocationNotFound)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	// GeoJSON is longitude-first.
	return domain.GeoPoint{Lat: coords[1], Lon: coords[0]}, nil
}

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"` // lon, lat
		} `json:"geometry"`
	} `json:"features"`
}

// Directions fetches the single best driving route between two points via
// /v2/directions/driving-car/geojson. The GeoJSON geometry arrives
// longitude-first and is normalized to (lat, lon) here, before anything
// downstream sees it.
func (c *Client) Directions(ctx context.Context, from, to domain.GeoPoint) (_ domain.Path, err error) {
	defer metrics.ObserveUpstream("ors")(&err)

	body, err := json.Marshal(directionsRequest{
		Coordinates: [][]float64{{from.Lon, from.Lat}, {to.Lon, to.Lat}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal directions request: %w", err)
	}

	endpoint := c.baseURL + "/v2/directions/driving-car/geojson"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("directions request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	// Transport and status failures are provider outages, not route
	// problems; they must not look like ErrRouteUnavailable, which the
	// HTTP layer maps to a client error.
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directions: unexpected status %d", resp.StatusCode)
	}

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode directions response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return nil, fmt.Errorf("no route features: %w", domain.ErrRouteUnavailable)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	path := make(domain.Path, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		path = append(path, domain.GeoPoint{Lat: c[1], Lon: c[0]})
	}

	if len(path) < 2 {
		return nil, fmt.Errorf("route has %d points: %w", len(path), domain.ErrRouteUnavailable)
	}
	return path, nil
}
