package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpadapter "github.com/samirrijal/geotales/internal/adapters/http"
	"github.com/samirrijal/geotales/internal/adapters/nominatim"
	"github.com/samirrijal/geotales/internal/adapters/ors"
	"github.com/samirrijal/geotales/internal/adapters/overpass"
	"github.com/samirrijal/geotales/internal/adapters/valkey"
	"github.com/samirrijal/geotales/internal/adapters/wikipedia"
	"github.com/samirrijal/geotales/internal/core/ports"
	"github.com/samirrijal/geotales/internal/core/usecases"
	"github.com/samirrijal/geotales/internal/pkg/config"
	"github.com/samirrijal/geotales/internal/pkg/logging"
	"github.com/samirrijal/geotales/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("geotales-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Optional response cache
	var cache *valkey.Cache
	if cfg.Valkey.Enabled {
		cache, err = valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, running uncached", "error", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	// Provider adapters
	routeProvider := ors.New(
		cfg.Providers.ORS.BaseURL,
		cfg.Providers.ORS.APIKey,
		time.Duration(cfg.Providers.ORS.TimeoutSeconds)*time.Second,
	)
	poiProvider := overpass.New(
		cfg.Providers.Overpass.BaseURL,
		time.Duration(cfg.Providers.Overpass.TimeoutSeconds)*time.Second,
	)
	summaryProvider := wikipedia.New(
		cfg.Providers.Wikipedia.BaseURL,
		time.Duration(cfg.Providers.Wikipedia.TimeoutSeconds)*time.Second,
	)
	reverseGeocoder := nominatim.New(
		cfg.Providers.Nominatim.BaseURL,
		time.Duration(cfg.Providers.Nominatim.TimeoutSeconds)*time.Second,
	)

	// A nil *valkey.Cache must stay a nil interface for the usecases.
	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}

	// Use cases
	storySvc := usecases.NewStoryService(
		routeProvider, poiProvider, summaryProvider, reverseGeocoder, cacheSvc,
		usecases.PipelineOptions{
			StepKm:          cfg.Pipeline.StepKm,
			POIRadiusMeters: cfg.Pipeline.POIRadiusMeters,
			FanoutLimit:     cfg.Pipeline.FanoutLimit,
			CacheTTLSeconds: cfg.Pipeline.CacheTTLSeconds,
		},
	)
	narrationSvc := usecases.NewNarrationService(
		routeProvider, summaryProvider,
		cfg.Pipeline.MaxNarrationPoints, cfg.Pipeline.GeosearchRadiusM,
	)

	deps := &httpadapter.Dependencies{
		Stories:   storySvc,
		Narration: narrationSvc,
		Cache:     cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024, // request bodies are two short strings
		AppName:      "GeoTales API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	httpadapter.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
