package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/geotales/internal/core/domain"
	"github.com/samirrijal/geotales/internal/core/ports"
	"github.com/samirrijal/geotales/internal/pkg/geospatial"
	"github.com/samirrijal/geotales/internal/pkg/logging"
	"github.com/samirrijal/geotales/internal/pkg/metrics"
)

// PipelineOptions tunes the sampling and enrichment stages.
type PipelineOptions struct {
	StepKm          float64 // minimum distance between sample points
	POIRadiusMeters int     // search radius for the POI query around each sample
	FanoutLimit     int     // max concurrent upstream calls per fan-out
	CacheTTLSeconds int     // TTL for assembled responses
}

// ItemError records a per-item upstream failure that the pipeline absorbed.
// The affected item is omitted from the result; nothing is retried.
type ItemError struct {
	Stage string // "poi_query", "summary", "reverse_geocode"
	Key   string
	Err   error
}

// StoryService runs the route-story pipeline: route, sample, collect
// landmarks, collect endpoint facts, assemble.
type StoryService struct {
	routes    ports.RouteProvider
	pois      ports.POIProvider
	summaries ports.SummaryProvider
	places    ports.ReverseGeocoder
	cache     ports.CacheService
	opts      PipelineOptions
	log       *slog.Logger
}

// NewStoryService creates a StoryService. cache may be nil.
func NewStoryService(
	routes ports.RouteProvider,
	pois ports.POIProvider,
	summaries ports.SummaryProvider,
	places ports.ReverseGeocoder,
	cache ports.CacheService,
	opts PipelineOptions,
) *StoryService {
	if opts.StepKm <= 0 {
		opts.StepKm = 20
	}
	if opts.POIRadiusMeters <= 0 {
		opts.POIRadiusMeters = 15000
	}
	if opts.FanoutLimit <= 0 {
		opts.FanoutLimit = 8
	}
	return &StoryService{
		routes:    routes,
		pois:      pois,
		summaries: summaries,
		places:    places,
		cache:     cache,
		opts:      opts,
		log:       logging.Component("stories"),
	}
}

// ResolveEndpoint turns an origin/destination descriptor into a coordinate.
// A literal "lat,lon" pair is parsed directly (out-of-range pairs are
// rejected); anything else is geocoded.
func (s *StoryService) ResolveEndpoint(ctx context.Context, descriptor string) (domain.GeoPoint, error) {
	descriptor = strings.TrimSpace(descriptor)
	if descriptor == "" {
		return domain.GeoPoint{}, fmt.Errorf("empty descriptor: %w", domain.ErrLocationNotFound)
	}
	if pt, ok := domain.ParseGeoPoint(descriptor); ok {
		if !pt.Valid() {
			return domain.GeoPoint{}, fmt.Errorf("coordinate out of range: %w", domain.ErrLocationNotFound)
		}
		return pt, nil
	}
	return s.routes.Geocode(ctx, descriptor)
}

// BuildStory runs the full pipeline for one origin/destination pair.
// RouteProvider failures are returned to the caller; every later stage
// tolerates per-item failure by omission.
func (s *StoryService) BuildStory(ctx context.Context, origin, destination string) (*domain.RouteStory, error) {
	cacheKey := storyCacheKey(origin, destination)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var story domain.RouteStory
			if err := json.Unmarshal(data, &story); err == nil {
				metrics.CacheHits.WithLabelValues("story").Inc()
				return &story, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("story").Inc()
	}

	from, err := s.ResolveEndpoint(ctx, origin)
	if err != nil {
		return nil, err
	}
	to, err := s.ResolveEndpoint(ctx, destination)
	if err != nil {
		return nil, err
	}

	path, err := s.routes.Directions(ctx, from, to)
	if err != nil {
		return nil, err
	}

	samples := geospatial.SampleByDistance(path, s.opts.StepKm)
	metrics.SamplePoints.Observe(float64(len(samples)))

	landmarks, dropped := s.CollectLandmarks(ctx, samples)
	facts, factErrs := s.CollectEndpointFacts(ctx, path)
	dropped = append(dropped, factErrs...)

	for _, d := range dropped {
		metrics.LandmarksDropped.WithLabelValues(d.Stage).Inc()
		s.log.Debug("pipeline item dropped", "stage", d.Stage, "key", d.Key, "error", d.Err)
	}
	metrics.LandmarksEmitted.Add(float64(len(landmarks)))

	story := &domain.RouteStory{
		Polyline:  path,
		Landmarks: landmarks,
		Facts:     facts,
	}

	if s.cache != nil && s.opts.CacheTTLSeconds > 0 {
		if data, err := json.Marshal(story); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.opts.CacheTTLSeconds)
		}
	}
	return story, nil
}

// CollectLandmarks queries POIs around each sample point concurrently,
// deduplicates them by OSM id (first seen wins; payloads for one id are
// expected identical), and enriches each named unique POI with an
// encyclopedia summary, also concurrently. POIs whose summary lookup fails
// are dropped, never emitted bare. Returned landmarks keep a stable order:
// sample order, then POI order within a sample.
func (s *StoryService) CollectLandmarks(ctx context.Context, samples []domain.GeoPoint) ([]domain.Landmark, []ItemError) {
	if len(samples) == 0 {
		return nil, nil
	}

	// Fan-out: one POI query per sample point. A failed query drops that
	// point's POIs and nothing else.
	perPoint := make([][]domain.POI, len(samples))
	perPointErr := make([]error, len(samples))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.FanoutLimit)
	for i, pt := range samples {
		i, pt := i, pt
		g.Go(func() error {
			perPoint[i], perPointErr[i] = s.pois.NearbyPOIs(gctx, pt, s.opts.POIRadiusMeters)
			return nil // item failures never cancel siblings
		})
	}
	_ = g.Wait()

	var dropped []ItemError
	seen := make(map[int64]struct{})
	var unique []domain.POI
	for i, pois := range perPoint {
		if perPointErr[i] != nil {
			dropped = append(dropped, ItemError{
				Stage: "poi_query",
				Key:   samples[i].String(),
				Err:   perPointErr[i],
			})
			continue
		}
		for _, p := range pois {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			unique = append(unique, p)
		}
	}

	// Only named POIs go to the encyclopedia; placeholder titles are
	// filtered here and never looked up.
	var named []domain.POI
	for _, p := range unique {
		if p.Named() {
			named = append(named, p)
		}
	}

	results := make([]*domain.Landmark, len(named))
	resultErr := make([]error, len(named))

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(s.opts.FanoutLimit)
	for i, poi := range named {
		i, poi := i, poi
		g.Go(func() error {
			summary, err := s.summaries.SummaryByTitle(gctx, poi.Title)
			if err != nil {
				resultErr[i] = err
				return nil
			}
			lm := domain.MergeLandmark(poi, summary)
			results[i] = &lm
			return nil
		})
	}
	_ = g.Wait()

	var landmarks []domain.Landmark
	for i, lm := range results {
		if resultErr[i] != nil {
			dropped = append(dropped, ItemError{
				Stage: "summary",
				Key:   named[i].Title,
				Err:   resultErr[i],
			})
			continue
		}
		if lm != nil {
			landmarks = append(landmarks, *lm)
		}
	}
	return landmarks, dropped
}

// CollectEndpointFacts reverse-geocodes the first and last path coordinate
// and fetches a summary for each distinct place name, split into sentence
// pairs. The destination fact is suppressed when its resolved title matches
// the origin's. Produces at most two facts; every failure just skips the
// endpoint.
func (s *StoryService) CollectEndpointFacts(ctx context.Context, path domain.Path) ([]domain.Fact, []ItemError) {
	if len(path) < 2 {
		return nil, nil
	}

	var facts []domain.Fact
	var dropped []ItemError

	for _, pt := range []domain.GeoPoint{path.Start(), path.End()} {
		name, err := s.places.PlaceName(ctx, pt)
		if err != nil {
			dropped = append(dropped, ItemError{Stage: "reverse_geocode", Key: pt.String(), Err: err})
			continue
		}
		if name == "" {
			continue
		}

		summary, err := s.summaries.SummaryByTitle(ctx, name)
		if err != nil {
			dropped = append(dropped, ItemError{Stage: "summary", Key: name, Err: err})
			continue
		}

		title := summary.Title
		if title == "" {
			title = name
		}
		if len(facts) > 0 && facts[0].Place == title {
			continue
		}

		facts = append(facts, domain.Fact{
			Place:      title,
			Paragraphs: SplitParagraphs(summary.Extract, 2),
			URL:        summary.SourceURL,
		})
	}
	return facts, dropped
}

func storyCacheKey(origin, destination string) string {
	norm := func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return fmt.Sprintf("story:%s|%s", norm(origin), norm(destination))
}
