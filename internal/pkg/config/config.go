package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// ProvidersConfig points at the external services the pipeline consumes.
type ProvidersConfig struct {
	ORS       ORSConfig      `mapstructure:"ors"`
	Overpass  UpstreamConfig `mapstructure:"overpass"`
	Wikipedia UpstreamConfig `mapstructure:"wikipedia"`
	Nominatim UpstreamConfig `mapstructure:"nominatim"`
}

type ORSConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type UpstreamConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// PipelineConfig tunes the sampling and enrichment stages.
type PipelineConfig struct {
	StepKm             float64 `mapstructure:"step_km"`
	POIRadiusMeters    int     `mapstructure:"poi_radius_m"`
	GeosearchRadiusM   int     `mapstructure:"geosearch_radius_m"`
	MaxNarrationPoints int     `mapstructure:"max_narration_points"`
	FanoutLimit        int     `mapstructure:"fanout_limit"`
	CacheTTLSeconds    int     `mapstructure:"cache_ttl_seconds"`
}

type ValkeyConfig struct {
	Addr    string `mapstructure:"addr"`
	Enabled bool   `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("providers.ors.base_url", "https://api.openrouteservice.org")
	v.SetDefault("providers.ors.api_key", "")
	v.SetDefault("providers.ors.timeout_seconds", 15)
	v.SetDefault("providers.overpass.base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("providers.overpass.timeout_seconds", 25)
	v.SetDefault("providers.wikipedia.base_url", "https://en.wikipedia.org")
	v.SetDefault("providers.wikipedia.timeout_seconds", 10)
	v.SetDefault("providers.nominatim.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("providers.nominatim.timeout_seconds", 10)
	v.SetDefault("pipeline.step_km", 20.0)
	v.SetDefault("pipeline.poi_radius_m", 15000)
	v.SetDefault("pipeline.geosearch_radius_m", 1000)
	v.SetDefault("pipeline.max_narration_points", 5)
	v.SetDefault("pipeline.fanout_limit", 8)
	v.SetDefault("pipeline.cache_ttl_seconds", 300)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.enabled", false)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: GEOTALES_PROVIDERS_ORS_API_KEY → providers.ors.api_key
	v.SetEnvPrefix("GEOTALES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Providers.ORS.BaseURL == "" {
		errs = append(errs, "providers.ors.base_url is required")
	}
	if c.Providers.Overpass.BaseURL == "" {
		errs = append(errs, "providers.overpass.base_url is required")
	}
	if c.Providers.Wikipedia.BaseURL == "" {
		errs = append(errs, "providers.wikipedia.base_url is required")
	}
	if c.Providers.Nominatim.BaseURL == "" {
		errs = append(errs, "providers.nominatim.base_url is required")
	}
	if c.Pipeline.StepKm <= 0 {
		errs = append(errs, fmt.Sprintf("pipeline.step_km must be positive, got %g", c.Pipeline.StepKm))
	}
	if c.Pipeline.POIRadiusMeters <= 0 {
		errs = append(errs, fmt.Sprintf("pipeline.poi_radius_m must be positive, got %d", c.Pipeline.POIRadiusMeters))
	}
	if c.Pipeline.GeosearchRadiusM <= 0 {
		errs = append(errs, fmt.Sprintf("pipeline.geosearch_radius_m must be positive, got %d", c.Pipeline.GeosearchRadiusM))
	}
	if c.Pipeline.MaxNarrationPoints <= 0 {
		errs = append(errs, fmt.Sprintf("pipeline.max_narration_points must be positive, got %d", c.Pipeline.MaxNarrationPoints))
	}
	if c.Pipeline.FanoutLimit <= 0 {
		errs = append(errs, "pipeline.fanout_limit must be positive")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required when valkey.enabled is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
