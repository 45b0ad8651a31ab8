package ports

import (
	"context"

	"github.com/samirrijal/geotales/internal/core/domain"
)

// RouteProvider resolves place names and fetches driving routes from the
// external routing service.
type RouteProvider interface {
	// Geocode resolves a free-text place name to a coordinate. A name with
	// no match returns domain.ErrLocationNotFound.
	Geocode(ctx context.Context, name string) (domain.GeoPoint, error)

	// Directions returns the best driving path between two coordinates, in
	// travel order, normalized to (lat, lon). An empty or single-point
	// route returns domain.ErrRouteUnavailable.
	Directions(ctx context.Context, from, to domain.GeoPoint) (domain.Path, error)
}

// POIProvider queries the map database for tagged points of interest around
// a coordinate.
type POIProvider interface {
	NearbyPOIs(ctx context.Context, center domain.GeoPoint, radiusMeters int) ([]domain.POI, error)
}

// SummaryProvider fetches short encyclopedia summaries.
type SummaryProvider interface {
	// SummaryByTitle returns the page summary for a title. A missing page
	// (HTTP 404) is an error; the pipeline drops the item and moves on.
	SummaryByTitle(ctx context.Context, title string) (domain.Summary, error)

	// NearestTitle returns the title of the closest geotagged article
	// within radiusMeters, or "" when there is none.
	NearestTitle(ctx context.Context, center domain.GeoPoint, radiusMeters int) (string, error)
}

// ReverseGeocoder resolves a coordinate to a human place name.
type ReverseGeocoder interface {
	// PlaceName returns "" (no error) when the coordinate resolves to
	// nothing useful; callers skip the item.
	PlaceName(ctx context.Context, pt domain.GeoPoint) (string, error)
}

// CacheService provides read-through caching for assembled responses.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
