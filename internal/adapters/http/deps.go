package http

import (
	"github.com/samirrijal/geotales/internal/adapters/valkey"
	"github.com/samirrijal/geotales/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Stories   *usecases.StoryService
	Narration *usecases.NarrationService
	Cache     *valkey.Cache
}
