package domain

import "errors"

// Errors surfaced to the HTTP layer. Anything not listed here is treated as
// an internal failure. Per-item upstream failures during enrichment are
// absorbed by the pipeline and never reach the caller.
var (
	// ErrLocationNotFound means an origin or destination descriptor could
	// not be resolved to a coordinate.
	ErrLocationNotFound = errors.New("location could not be resolved")

	// ErrRouteUnavailable means the routing provider returned no usable
	// path between the resolved endpoints.
	ErrRouteUnavailable = errors.New("route data insufficient")
)
