package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/samirrijal/geotales/internal/core/domain"
	"github.com/samirrijal/geotales/internal/core/usecases"
)

// --- Mock providers ---

type mockRouteProvider struct {
	geocodeFn    func(ctx context.Context, name string) (domain.GeoPoint, error)
	directionsFn func(ctx context.Context, from, to domain.GeoPoint) (domain.Path, error)
}

func (m *mockRouteProvider) Geocode(ctx context.Context, name string) (domain.GeoPoint, error) {
	if m.geocodeFn != nil {
		return m.geocodeFn(ctx, name)
	}
	return domain.GeoPoint{}, domain.ErrLocationNotFound
}

func (m *mockRouteProvider) Directions(ctx context.Context, from, to domain.GeoPoint) (domain.Path, error) {
	if m.directionsFn != nil {
		return m.directionsFn(ctx, from, to)
	}
	return nil, domain.ErrRouteUnavailable
}

type mockPOIProvider struct {
	nearbyFn func(ctx context.Context, center domain.GeoPoint, radiusMeters int) ([]domain.POI, error)
}

func (m *mockPOIProvider) NearbyPOIs(ctx context.Context, center domain.GeoPoint, radiusMeters int) ([]domain.POI, error) {
	if m.nearbyFn != nil {
		return m.nearbyFn(ctx, center, radiusMeters)
	}
	return nil, nil
}

type mockSummaryProvider struct {
	mu        sync.Mutex
	lookedUp  []string
	summaryFn func(ctx context.Context, title string) (domain.Summary, error)
	nearestFn func(ctx context.Context, center domain.GeoPoint, radiusMeters int) (string, error)
}

func (m *mockSummaryProvider) SummaryByTitle(ctx context.Context, title string) (domain.Summary, error) {
	m.mu.Lock()
	m.lookedUp = append(m.lookedUp, title)
	m.mu.Unlock()
	if m.summaryFn != nil {
		return m.summaryFn(ctx, title)
	}
	return domain.Summary{Title: title, Extract: "About " + title + "."}, nil
}

func (m *mockSummaryProvider) NearestTitle(ctx context.Context, center domain.GeoPoint, radiusMeters int) (string, error) {
	if m.nearestFn != nil {
		return m.nearestFn(ctx, center, radiusMeters)
	}
	return "", nil
}

func (m *mockSummaryProvider) titles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.lookedUp))
	copy(out, m.lookedUp)
	return out
}

type mockReverseGeocoder struct {
	placeFn func(ctx context.Context, pt domain.GeoPoint) (string, error)
}

func (m *mockReverseGeocoder) PlaceName(ctx context.Context, pt domain.GeoPoint) (string, error) {
	if m.placeFn != nil {
		return m.placeFn(ctx, pt)
	}
	return "", nil
}

type mockCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{store: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.store[key]; ok {
		return v, nil
	}
	return nil, errors.New("miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, key)
	return nil
}

// --- Helpers ---

// threePointPath spans two ~25 km segments heading north.
func threePointPath() domain.Path {
	return domain.Path{
		{Lat: 40.0, Lon: -74.0},
		{Lat: 40.225, Lon: -74.0},
		{Lat: 40.45, Lon: -74.0},
	}
}

func newService(routes *mockRouteProvider, pois *mockPOIProvider, summaries *mockSummaryProvider, places *mockReverseGeocoder) *usecases.StoryService {
	return usecases.NewStoryService(routes, pois, summaries, places, nil, usecases.PipelineOptions{
		StepKm:          20,
		POIRadiusMeters: 15000,
		FanoutLimit:     4,
	})
}

// --- ResolveEndpoint ---

func TestResolveEndpoint_LiteralPair(t *testing.T) {
	svc := newService(&mockRouteProvider{}, &mockPOIProvider{}, &mockSummaryProvider{}, &mockReverseGeocoder{})

	pt, err := svc.ResolveEndpoint(context.Background(), "40.0,-74.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pt.Lat != 40.0 || pt.Lon != -74.0 {
		t.Errorf("unexpected point: %v", pt)
	}
}

func TestResolveEndpoint_OutOfRangeRejected(t *testing.T) {
	svc := newService(&mockRouteProvider{}, &mockPOIProvider{}, &mockSummaryProvider{}, &mockReverseGeocoder{})

	_, err := svc.ResolveEndpoint(context.Background(), "95.0,-74.0")
	if !errors.Is(err, domain.ErrLocationNotFound) {
		t.Errorf("expected ErrLocationNotFound, got %v", err)
	}
}

func TestResolveEndpoint_GeocodesFreeText(t *testing.T) {
	routes := &mockRouteProvider{
		geocodeFn: func(ctx context.Context, name string) (domain.GeoPoint, error) {
			if name != "Bilbao" {
				t.Errorf("unexpected geocode input %q", name)
			}
			return domain.GeoPoint{Lat: 43.263, Lon: -2.935}, nil
		},
	}
	svc := newService(routes, &mockPOIProvider{}, &mockSummaryProvider{}, &mockReverseGeocoder{})

	pt, err := svc.ResolveEndpoint(context.Background(), "Bilbao")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pt.Lat != 43.263 {
		t.Errorf("unexpected point: %v", pt)
	}
}

// --- CollectLandmarks ---

func TestCollectLandmarks_DeduplicatesByID(t *testing.T) {
	pois := &mockPOIProvider{
		nearbyFn: func(ctx context.Context, center domain.GeoPoint, radiusMeters int) ([]domain.POI, error) {
			// Same id from every sample point, differing payloads.
			return []domain.POI{
				{ID: 42, Title: "Old Fort", Location: center},
			}, nil
		},
	}
	summaries := &mockSummaryProvider{}
	svc := newService(&mockRouteProvider{}, pois, summaries, &mockReverseGeocoder{})

	samples := []domain.GeoPoint{{Lat: 40.1, Lon: -74.0}, {Lat: 40.3, Lon: -74.0}}
	landmarks, dropped := svc.CollectLandmarks(context.Background(), samples)
	if len(dropped) != 0 {
		t.Fatalf("unexpected drops: %v", dropped)
	}
	if len(landmarks) != 1 {
		t.Fatalf("expected 1 landmark after dedup, got %d", len(landmarks))
	}
	if landmarks[0].ID != 42 {
		t.Errorf("unexpected landmark id %d", landmarks[0].ID)
	}
	if got := summaries.titles(); len(got) != 1 {
		t.Errorf("expected a single summary lookup, got %v", got)
	}
}

func TestCollectLandmarks_UnnamedNeverLookedUp(t *testing.T) {
	pois := &mockPOIProvider{
		nearbyFn: func(ctx context.Context, center domain.GeoPoint, radiusMeters int) ([]domain.POI, error) {
			return []domain.POI{
				{ID: 1, Title: "Unnamed POI"},
				{ID: 2, Title: ""},
				{ID: 3, Title: "Castle Hill"},
			}, nil
		},
	}
	summaries := &mockSummaryProvider{}
	svc := newService(&mockRouteProvider{}, pois, summaries, &mockReverseGeocoder{})

	landmarks, _ := svc.CollectLandmarks(context.Background(), []domain.GeoPoint{{Lat: 40, Lon: -74}})
	if len(landmarks) != 1 {
		t.Fatalf("expected only the named POI, got %d landmarks", len(landmarks))
	}
	if landmarks[0].Title != "Castle Hill" {
		t.Errorf("unexpected landmark %q", landmarks[0].Title)
	}
	for _, title := range summaries.titles() {
		if title != "Castle Hill" {
			t.Errorf("placeholder title %q reached the encyclopedia lookup", title)
		}
	}
}

func TestCollectLandmarks_FailedSummaryDropsPOI(t *testing.T) {
	pois := &mockPOIProvider{
		nearbyFn: func(ctx context.Context, center domain.GeoPoint, radiusMeters int) ([]domain.POI, error) {
			return []domain.POI{
				{ID: 1, Title: "Missing Page"},
				{ID: 2, Title: "Castle Hill"},
			}, nil
		},
	}
	summaries := &mockSummaryProvider{
		summaryFn: func(ctx context.Context, title string) (domain.Summary, error) {
			if title == "Missing Page" {
				return domain.Summary{}, errors.New("page not found")
			}
			return domain.Summary{Title: title, Extract: "text"}, nil
		},
	}
	svc := newService(&mockRouteProvider{}, pois, summaries, &mockReverseGeocoder{})

	landmarks, dropped := svc.CollectLandmarks(context.Background(), []domain.GeoPoint{{Lat: 40, Lon: -74}})
	if len(landmarks) != 1 || landmarks[0].Title != "Castle Hill" {
		t.Fatalf("expected only Castle Hill, got %v", landmarks)
	}
	if len(dropped) != 1 || dropped[0].Stage != "summary" || dropped[0].Key != "Missing Page" {
		t.Errorf("expected a tagged summary drop for Missing Page, got %v", dropped)
	}
}

func TestCollectLandmarks_FailedPOIQueryDropsOnlyThatPoint(t *testing.T) {
	pois := &mockPOIProvider{
		nearbyFn: func(ctx context.Context, center domain.GeoPoint, radiusMeters int) ([]domain.POI, error) {
			if center.Lat > 40.2 {
				return nil, errors.New("overpass timeout")
			}
			return []domain.POI{{ID: 7, Title: "River Bridge"}}, nil
		},
	}
	svc := newService(&mockRouteProvider{}, pois, &mockSummaryProvider{}, &mockReverseGeocoder{})

	samples := []domain.GeoPoint{{Lat: 40.1, Lon: -74.0}, {Lat: 40.3, Lon: -74.0}}
	landmarks, dropped := svc.CollectLandmarks(context.Background(), samples)
	if len(landmarks) != 1 {
		t.Fatalf("expected 1 landmark from the healthy point, got %d", len(landmarks))
	}
	if len(dropped) != 1 || dropped[0].Stage != "poi_query" {
		t.Errorf("expected a tagged poi_query drop, got %v", dropped)
	}
}

func TestCollectLandmarks_NoSamples(t *testing.T) {
	svc := newService(&mockRouteProvider{}, &mockPOIProvider{}, &mockSummaryProvider{}, &mockReverseGeocoder{})
	landmarks, dropped := svc.CollectLandmarks(context.Background(), nil)
	if landmarks != nil || dropped != nil {
		t.Errorf("expected empty result for no samples")
	}
}

// --- CollectEndpointFacts ---

func TestCollectEndpointFacts_SamePlaceYieldsOneFact(t *testing.T) {
	places := &mockReverseGeocoder{
		placeFn: func(ctx context.Context, pt domain.GeoPoint) (string, error) {
			return "Springfield", nil
		},
	}
	summaries := &mockSummaryProvider{
		summaryFn: func(ctx context.Context, title string) (domain.Summary, error) {
			return domain.Summary{Title: title, Extract: "First. Second. Third."}, nil
		},
	}
	svc := newService(&mockRouteProvider{}, &mockPOIProvider{}, summaries, places)

	facts, dropped := svc.CollectEndpointFacts(context.Background(), threePointPath())
	if len(dropped) != 0 {
		t.Fatalf("unexpected drops: %v", dropped)
	}
	if len(facts) != 1 {
		t.Fatalf("expected exactly 1 fact when both endpoints resolve alike, got %d", len(facts))
	}
	if facts[0].Place != "Springfield" {
		t.Errorf("unexpected place %q", facts[0].Place)
	}
}

func TestCollectEndpointFacts_TwoPlaces(t *testing.T) {
	places := &mockReverseGeocoder{
		placeFn: func(ctx context.Context, pt domain.GeoPoint) (string, error) {
			if pt.Lat < 40.2 {
				return "Trenton", nil
			}
			return "Princeton", nil
		},
	}
	svc := newService(&mockRouteProvider{}, &mockPOIProvider{}, &mockSummaryProvider{}, places)

	facts, _ := svc.CollectEndpointFacts(context.Background(), threePointPath())
	if len(facts) != 2 {
		t.Fatalf("expected 2 facts, got %d", len(facts))
	}
	if facts[0].Place != "Trenton" || facts[1].Place != "Princeton" {
		t.Errorf("unexpected order: %v", facts)
	}
}

func TestCollectEndpointFacts_GeocodeFailureSkipsEndpoint(t *testing.T) {
	calls := 0
	places := &mockReverseGeocoder{
		placeFn: func(ctx context.Context, pt domain.GeoPoint) (string, error) {
			calls++
			if calls == 1 {
				return "", errors.New("nominatim down")
			}
			return "Princeton", nil
		},
	}
	svc := newService(&mockRouteProvider{}, &mockPOIProvider{}, &mockSummaryProvider{}, places)

	facts, dropped := svc.CollectEndpointFacts(context.Background(), threePointPath())
	if len(facts) != 1 || facts[0].Place != "Princeton" {
		t.Fatalf("expected only the destination fact, got %v", facts)
	}
	if len(dropped) != 1 || dropped[0].Stage != "reverse_geocode" {
		t.Errorf("expected a tagged reverse_geocode drop, got %v", dropped)
	}
}

// --- BuildStory ---

func TestBuildStory_HappyPath(t *testing.T) {
	routes := &mockRouteProvider{
		directionsFn: func(ctx context.Context, from, to domain.GeoPoint) (domain.Path, error) {
			return threePointPath(), nil
		},
	}
	pois := &mockPOIProvider{
		nearbyFn: func(ctx context.Context, center domain.GeoPoint, radiusMeters int) ([]domain.POI, error) {
			if radiusMeters != 15000 {
				t.Errorf("expected configured radius 15000, got %d", radiusMeters)
			}
			return []domain.POI{{ID: 5, Title: "Watch Tower", Location: center}}, nil
		},
	}
	places := &mockReverseGeocoder{
		placeFn: func(ctx context.Context, pt domain.GeoPoint) (string, error) {
			return "Trenton", nil
		},
	}
	svc := newService(routes, pois, &mockSummaryProvider{}, places)

	story, err := svc.BuildStory(context.Background(), "40.0,-74.0", "40.45,-74.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(story.Polyline) != 3 {
		t.Errorf("expected 3 polyline points, got %d", len(story.Polyline))
	}
	if len(story.Landmarks) != 1 {
		t.Errorf("expected 1 landmark, got %d", len(story.Landmarks))
	}
	if len(story.Facts) != 1 {
		t.Errorf("expected 1 fact, got %d", len(story.Facts))
	}
}

func TestBuildStory_LocationNotFound(t *testing.T) {
	svc := newService(&mockRouteProvider{}, &mockPOIProvider{}, &mockSummaryProvider{}, &mockReverseGeocoder{})

	_, err := svc.BuildStory(context.Background(), "nowhere at all", "40.45,-74.0")
	if !errors.Is(err, domain.ErrLocationNotFound) {
		t.Errorf("expected ErrLocationNotFound, got %v", err)
	}
}

func TestBuildStory_RouteUnavailable(t *testing.T) {
	routes := &mockRouteProvider{
		directionsFn: func(ctx context.Context, from, to domain.GeoPoint) (domain.Path, error) {
			return nil, fmt.Errorf("no route features: %w", domain.ErrRouteUnavailable)
		},
	}
	svc := newService(routes, &mockPOIProvider{}, &mockSummaryProvider{}, &mockReverseGeocoder{})

	_, err := svc.BuildStory(context.Background(), "40.0,-74.0", "40.45,-74.0")
	if !errors.Is(err, domain.ErrRouteUnavailable) {
		t.Errorf("expected ErrRouteUnavailable, got %v", err)
	}
}

func TestBuildStory_CachedResponseSkipsProviders(t *testing.T) {
	directionsCalls := 0
	routes := &mockRouteProvider{
		directionsFn: func(ctx context.Context, from, to domain.GeoPoint) (domain.Path, error) {
			directionsCalls++
			return threePointPath(), nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewStoryService(routes, &mockPOIProvider{}, &mockSummaryProvider{}, &mockReverseGeocoder{}, cache, usecases.PipelineOptions{
		StepKm:          20,
		POIRadiusMeters: 15000,
		FanoutLimit:     4,
		CacheTTLSeconds: 300,
	})

	if _, err := svc.BuildStory(context.Background(), "40.0,-74.0", "40.45,-74.0"); err != nil {
		t.Fatalf("first build: %v", err)
	}
	story, err := svc.BuildStory(context.Background(), "40.0,-74.0", "40.45,-74.0")
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if directionsCalls != 1 {
		t.Errorf("expected cached response on second call, directions called %d times", directionsCalls)
	}
	if len(story.Polyline) != 3 {
		t.Errorf("cached story lost its polyline: %v", story.Polyline)
	}
}
