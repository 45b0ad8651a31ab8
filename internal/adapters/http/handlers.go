package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geotales/internal/core/domain"
)

// routeStoriesRequest is the body of POST /api/route-stories. Origin and
// destination are free text or literal "lat,lon" pairs.
type routeStoriesRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// routeStoriesResponse is the success payload rendered by the map UI.
type routeStoriesResponse struct {
	Status    string            `json:"status"`
	Polyline  [][2]float64      `json:"polyline"`
	Landmarks []domain.Landmark `json:"landmarks"`
	Facts     []domain.Fact     `json:"facts"`
}

// RouteStoriesHandler runs the full story pipeline for one trip.
func RouteStoriesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req routeStoriesRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Origin == "" || req.Destination == "" {
			return errBadRequest(c, "origin and destination are required")
		}

		story, err := deps.Stories.BuildStory(c.UserContext(), req.Origin, req.Destination)
		switch {
		case errors.Is(err, domain.ErrLocationNotFound):
			return errBadRequest(c, err.Error())
		case errors.Is(err, domain.ErrRouteUnavailable):
			return errBadRequest(c, "Route data insufficient.")
		case err != nil:
			return errInternal(c, err.Error())
		}

		// Empty collections marshal as [], not null.
		landmarks := story.Landmarks
		if landmarks == nil {
			landmarks = []domain.Landmark{}
		}
		facts := story.Facts
		if facts == nil {
			facts = []domain.Fact{}
		}

		return c.JSON(routeStoriesResponse{
			Status:    "success",
			Polyline:  story.Polyline.Pairs(),
			Landmarks: landmarks,
			Facts:     facts,
		})
	}
}

// narrateRequest is the body of POST /api/narrate. Delay is seconds between
// narration items.
type narrateRequest struct {
	Start string  `json:"start"`
	End   string  `json:"end"`
	Delay float64 `json:"delay"`
}

// maxNarrationDelay bounds the per-item pause so a single request cannot be
// parked for minutes.
const maxNarrationDelay = 30 * time.Second

// NarrateHandler walks the route and returns one narration item per sampled
// point, paced by the requested delay.
func NarrateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req narrateRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Start == "" || req.End == "" {
			return errBadRequest(c, "start and end are required")
		}

		delay := time.Duration(req.Delay * float64(time.Second))
		if delay < 0 {
			delay = 0
		}
		if delay > maxNarrationDelay {
			delay = maxNarrationDelay
		}

		items, err := deps.Narration.Narrate(c.UserContext(), req.Start, req.End, delay)
		switch {
		case errors.Is(err, domain.ErrLocationNotFound):
			return errBadRequest(c, err.Error())
		case errors.Is(err, domain.ErrRouteUnavailable):
			return errBadRequest(c, "Route data insufficient.")
		case err != nil:
			return errInternal(c, err.Error())
		}

		return c.JSON(items)
	}
}
