// Package overpass queries the Overpass API for tagged OSM nodes.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samirrijal/geotales/internal/core/domain"
	"github.com/samirrijal/geotales/internal/pkg/metrics"
)

// Client calls the Overpass interpreter endpoint. It implements
// ports.POIProvider.
type Client struct {
	endpoint string
	http     *http.Client
}

func New(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

type overpassResponse struct {
	Elements []struct {
		ID   int64             `json:"id"`
		Lat  float64           `json:"lat"`
		Lon  float64           `json:"lon"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// NearbyPOIs returns tourist attractions and anything tagged historic within
// radiusMeters of center, capped at 30 nodes per query by the Overpass
// statement itself. Nodes without a name tag get the UnnamedTitle
// placeholder; the pipeline filters those before enrichment.
func (c *Client) NearbyPOIs(ctx context.Context, center domain.GeoPoint, radiusMeters int) (_ []domain.POI, err error) {
	defer metrics.ObserveUpstream("overpass")(&err)

	query := fmt.Sprintf(`
		[out:json][timeout:25];
		(
		  node["tourism"="attraction"](around:%d,%f,%f);
		  node["historic"](around:%d,%f,%f);
		);
		out center 30;
	`, radiusMeters, center.Lat, center.Lon, radiusMeters, center.Lat, center.Lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass: unexpected status %d", resp.StatusCode)
	}

	var decoded overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}

	pois := make([]domain.POI, 0, len(decoded.Elements))
	for _, el := range decoded.Elements {
		title := el.Tags["name"]
		if title == "" {
			title = domain.UnnamedTitle + " POI"
		}
		pois = append(pois, domain.POI{
			ID:       el.ID,
			Title:    title,
			Location: domain.GeoPoint{Lat: el.Lat, Lon: el.Lon},
			Tags:     el.Tags,
		})
	}
	return pois, nil
}
