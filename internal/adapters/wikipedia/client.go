// Package wikipedia fetches page summaries and geosearch results from the
// Wikipedia REST and Action APIs.
package wikipedia

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

// ErrPageNotFound is returned when a title has no summary page. The pipeline
// treats it as any other per-item failure: drop the item, keep the batch.
var ErrPageNotFound = fmt.Errorf("wikipedia: page not found")

// Client implements ports.SummaryProvider.
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

type summaryResponse struct {
	Title     string `json:"title"`
	Extract   string `json:"extract"`
	Thumbnail struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// SummaryByTitle fetches /api/rest_v1/page/summary/{title}.
func (c *Client) SummaryByTitle(ctx context.Context, title string) (_ domain.Summary, err error) {
	defer metrics.ObserveUpstream("wikipedia")(&err)

	endpoint := c.baseURL + "/api/rest_v1/page/summary/" + url.PathEscape(title)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("summary request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("summary %q: %w", title, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.Summary{}, fmt.Errorf("summary %q: %w", title, ErrPageNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Summary{}, fmt.Errorf("summary %q: unexpected status %d", title, resp.StatusCode)
	}

	var decoded summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Summary{}, fmt.Errorf("decode summary response: %w", err)
	}

	return domain.Summary{
		Title:     decoded.Title,
		Extract:   decoded.Extract,
		Thumbnail: decoded.Thumbnail.Source,
		SourceURL: decoded.ContentURLs.Desktop.Page,
	}, nil
}

type geosearchResponse struct {
	Query struct {
		Geosearch []struct {
			Title string  `json:"title"`
			Lat   float64 `json:"lat"`
			Lon   float64 `json:"lon"`
		} `json:"geosearch"`
	} `json:"query"`
}

// NearestTitle returns the title of the closest geotagged article within
// radiusMeters via the Action API geosearch list, or "" when nothing is
// nearby.
func (c *Client) NearestTitle(ctx context.Context, center domain.GeoPoint, radiusMeters int) (_ string, err error) {
	defer metrics.ObserveUpstream("wikipedia")(&err)

	endpoint := c.baseURL + "/w/api.php"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("geosearch request: %w", err)
	}
	q := url.Values{}
	q.Set("action", "query")
	q.Set("list", "geosearch")
	q.Set("gscoord", fmt.Sprintf("%f|%f", center.Lat, center.Lon))
	q.Set("gsradius", fmt.Sprintf("%d", radiusMeters))
	q.Set("format", "json")
	req.URL.RawQuery = q.Encode()

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("geosearch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geosearch: unexpected status %d", resp.StatusCode)
	}

	var decoded geosearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode geosearch response: %w", err)
	}

	if len(decoded.Query.Geosearch) == 0 {
		return "", nil
	}
	return decoded.Query.Geosearch[0].Title, nil
}
