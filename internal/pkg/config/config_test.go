package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 30},
		Providers: ProvidersConfig{
			ORS:       ORSConfig{BaseURL: "https://api.openrouteservice.org", TimeoutSeconds: 15},
			Overpass:  UpstreamConfig{BaseURL: "https://overpass-api.de/api/interpreter", TimeoutSeconds: 25},
			Wikipedia: UpstreamConfig{BaseURL: "https://en.wikipedia.org", TimeoutSeconds: 10},
			Nominatim: UpstreamConfig{BaseURL: "https://nominatim.openstreetmap.org", TimeoutSeconds: 10},
		},
		Pipeline: PipelineConfig{
			StepKm:             20,
			POIRadiusMeters:    15000,
			GeosearchRadiusM:   1000,
			MaxNarrationPoints: 5,
			FanoutLimit:        8,
			CacheTTLSeconds:    300,
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"missing ors url", func(c *Config) { c.Providers.ORS.BaseURL = "" }, "providers.ors.base_url"},
		{"zero step", func(c *Config) { c.Pipeline.StepKm = 0 }, "pipeline.step_km"},
		{"negative poi radius", func(c *Config) { c.Pipeline.POIRadiusMeters = -1 }, "pipeline.poi_radius_m"},
		{"zero geosearch radius", func(c *Config) { c.Pipeline.GeosearchRadiusM = 0 }, "pipeline.geosearch_radius_m"},
		{"zero narration points", func(c *Config) { c.Pipeline.MaxNarrationPoints = 0 }, "pipeline.max_narration_points"},
		{"zero fanout", func(c *Config) { c.Pipeline.FanoutLimit = 0 }, "pipeline.fanout_limit"},
		{"valkey enabled without addr", func(c *Config) { c.Valkey.Enabled = true; c.Valkey.Addr = "" }, "valkey.addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("geotales-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Pipeline.StepKm != 20 {
		t.Errorf("unexpected default step_km %g", cfg.Pipeline.StepKm)
	}
	if cfg.Pipeline.POIRadiusMeters != 15000 {
		t.Errorf("unexpected default poi_radius_m %d", cfg.Pipeline.POIRadiusMeters)
	}
	if cfg.Pipeline.MaxNarrationPoints != 5 {
		t.Errorf("unexpected default max_narration_points %d", cfg.Pipeline.MaxNarrationPoints)
	}
	if cfg.Telemetry.ServiceName != "geotales-test" {
		t.Errorf("unexpected service name %q", cfg.Telemetry.ServiceName)
	}
}
