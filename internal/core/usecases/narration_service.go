package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/geotales/internal/core/domain"
	"github.com/samirrijal/geotales/internal/core/ports"
	"github.com/samirrijal/geotales/internal/pkg/geospatial"
	"github.com/samirrijal/geotales/internal/pkg/logging"
)

// Placeholder texts for narration stops with no nearby article. These are
// part of the response contract, not internal sentinels.
const (
	noArticleText = "No interesting article nearby."
	noTitleText   = "No title"
)

// NarrationService walks a route at a fixed number of evenly index-spaced
// points and narrates the nearest encyclopedia article at each, pacing
// items with a caller-chosen delay. Unlike the story pipeline it samples by
// index, not by distance.
type NarrationService struct {
	routes    ports.RouteProvider
	summaries ports.SummaryProvider

	maxPoints       int
	geosearchRadius int
	log             *slog.Logger

	// sleep is swappable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewNarrationService creates a NarrationService.
func NewNarrationService(routes ports.RouteProvider, summaries ports.SummaryProvider, maxPoints, geosearchRadiusMeters int) *NarrationService {
	if maxPoints <= 0 {
		maxPoints = 5
	}
	if geosearchRadiusMeters <= 0 {
		geosearchRadiusMeters = 1000
	}
	return &NarrationService{
		routes:          routes,
		summaries:       summaries,
		maxPoints:       maxPoints,
		geosearchRadius: geosearchRadiusMeters,
		log:             logging.Component("narration"),
		sleep:           sleepCtx,
	}
}

// Narrate geocodes both endpoints, fetches the route, and produces one
// narration item per sampled point, sleeping delay between items. Item-level
// lookup failures produce placeholder items; only endpoint resolution and
// routing failures abort.
func (s *NarrationService) Narrate(ctx context.Context, start, end string, delay time.Duration) ([]domain.NarrationItem, error) {
	from, err := s.routes.Geocode(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("resolve start: %w", err)
	}
	to, err := s.routes.Geocode(ctx, end)
	if err != nil {
		return nil, fmt.Errorf("resolve end: %w", err)
	}

	path, err := s.routes.Directions(ctx, from, to)
	if err != nil {
		return nil, err
	}

	sampled := geospatial.SampleByIndex(path, s.maxPoints)

	items := make([]domain.NarrationItem, 0, len(sampled))
	for _, pt := range sampled {
		item := domain.NarrationItem{
			Location: pt.String(),
			Title:    noTitleText,
			Summary:  noArticleText,
		}

		title, err := s.summaries.NearestTitle(ctx, pt, s.geosearchRadius)
		if err != nil {
			s.log.Debug("narration geosearch failed", "location", item.Location, "error", err)
		} else if title != "" {
			item.Title = title
			if summary, err := s.summaries.SummaryByTitle(ctx, title); err == nil && summary.Extract != "" {
				item.Summary = summary.Extract
			} else {
				item.Summary = "No summary available."
			}
		}

		items = append(items, item)

		if delay > 0 {
			if err := s.sleep(ctx, delay); err != nil {
				return items, err
			}
		}
	}
	return items, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
