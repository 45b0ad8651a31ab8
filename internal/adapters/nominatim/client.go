// Package nominatim reverse-geocodes coordinates with the OSM Nominatim API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/samirrijal/geotales/internal/core/domain"
	"github.com/samirrijal/geotales/internal/pkg/metrics"
)

const userAgent = "geotales/1.0 (route-story aggregator)"

// Client implements ports.ReverseGeocoder.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type reverseResponse struct {
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		State   string `json:"state"`
		County  string `json:"county"`
	} `json:"address"`
}

// PlaceName resolves a coordinate to a settlement-level name, preferring
// city over town over village over state over county. Returns "" without an
// error when nothing in the address is usable.
func (c *Client) PlaceName(ctx context.Context, pt domain.GeoPoint) (_ string, err error) {
	defer metrics.ObserveUpstream("nominatim")(&err)

	endpoint := c.baseURL + "/reverse"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("reverse request: %w", err)
	}
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", pt.Lat))
	q.Set("lon", fmt.Sprintf("%f", pt.Lon))
	q.Set("format", "json")
	q.Set("zoom", "10")
	q.Set("addressdetails", "1")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode: unexpected status %d", resp.StatusCode)
	}

	var decoded reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode reverse response: %w", err)
	}

	a := decoded.Address
	for _, name := range []string{a.City, a.Town, a.Village, a.State, a.County} {
		if name != "" {
			return name, nil
		}
	}
	return "", nil
}
