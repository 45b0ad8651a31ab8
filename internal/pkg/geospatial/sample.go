package geospatial

import "github.com/samirrijal/geotales/internal/core/domain"

// SampleByDistance walks the path in order, accumulating haversine distance
// between consecutive points, and emits the current point each time the
// accumulator reaches stepKm, resetting it to zero. The first point is never
// emitted on its own. This is greedy forward accumulation, not an even
// resampling: a single hop longer than stepKm still emits only once, so
// irregular input spacing yields irregular sample spacing.
func SampleByDistance(path domain.Path, stepKm float64) []domain.GeoPoint {
	if len(path) < 2 || stepKm <= 0 {
		return nil
	}

	var samples []domain.GeoPoint
	var acc float64
	for i := 1; i < len(path); i++ {
		prev, cur := path[i-1], path[i]
		acc += HaversineKm(prev.Lat, prev.Lon, cur.Lat, cur.Lon)
		if acc >= stepKm {
			samples = append(samples, cur)
			acc = 0
		}
	}
	return samples
}

// SampleByIndex picks every len/maxSamples-th point of the path, starting
// with the first. Used by the narration mode, which wants a fixed small
// number of evenly index-spaced stops rather than distance-spaced ones.
func SampleByIndex(path domain.Path, maxSamples int) []domain.GeoPoint {
	if len(path) == 0 || maxSamples <= 0 {
		return nil
	}

	step := len(path) / maxSamples
	if step < 1 {
		step = 1
	}

	var samples []domain.GeoPoint
	for i := 0; i < len(path); i += step {
		samples = append(samples, path[i])
	}
	return samples
}
