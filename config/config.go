package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/labelproof/artcheck/internal/logging"
	"github.com/labelproof/artcheck/internal/usecase"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Extraction ExtractionConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
	Matching   MatchingConfig
	Zoom       ZoomConfig
	Conversion ConversionConfig
	Exclusion  ExclusionConfig
	Logging    LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadMB    int      `mapstructure:"max_upload_mb"`
}

// ExtractionConfig selects and configures the artwork text extractor
type ExtractionConfig struct {
	Provider          string        `mapstructure:"provider"` // "local" or "service"
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	MaxPages          int           `mapstructure:"max_pages"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type string        `mapstructure:"type"` // "memory" or "none"
	TTL  time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// MatchingConfig holds the classification thresholds, in percent
type MatchingConfig struct {
	ExactThreshold    float64 `mapstructure:"exact_threshold"`
	NearThreshold     float64 `mapstructure:"near_threshold"`
	MismatchThreshold float64 `mapstructure:"mismatch_threshold"`
	MinWindow         int     `mapstructure:"min_window"`
	MaxWindow         int     `mapstructure:"max_window"`
}

// ZoomConfig holds the zoom-trigger settings
type ZoomConfig struct {
	FontSizeThreshold   float64  `mapstructure:"font_size_threshold"`
	ConfidenceThreshold float64  `mapstructure:"confidence_threshold"`
	FuzzyThreshold      float64  `mapstructure:"fuzzy_threshold"`
	OnNumbers           bool     `mapstructure:"on_numbers"`
	OnPercentage        bool     `mapstructure:"on_percentage"`
	OnDecimals          bool     `mapstructure:"on_decimals"`
	OnUnits             bool     `mapstructure:"on_units"`
	OnNegation          bool     `mapstructure:"on_negation"`
	UnitPatterns        []string `mapstructure:"unit_patterns"`
}

// ConversionConfig holds the metric to US conversion settings
type ConversionConfig struct {
	MLToFlOz     float64 `mapstructure:"ml_to_floz"`
	Tolerance    float64 `mapstructure:"tolerance"`
	FieldKeyword string  `mapstructure:"field_keyword"`
}

// ExclusionConfig extends the built-in production-metadata filters
type ExclusionConfig struct {
	ExtraTerms        []string `mapstructure:"extra_terms"`
	ExtraCompanyNames []string `mapstructure:"extra_company_names"`
	ExtraPatterns     []string `mapstructure:"extra_patterns"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file. An empty path searches the
// default locations, and a missing file there is not an error.
func LoadFrom(path string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/artcheck/")
	}

	// ARTCHECK_MATCHING_NEAR_THRESHOLD -> matching.near_threshold
	v.SetEnvPrefix("ARTCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env into the process environment when present.
// Variables already set in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values.
// Every key needs a default for AutomaticEnv to reach it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_upload_mb", 50)

	v.SetDefault("extraction.provider", "local")
	v.SetDefault("extraction.base_url", "")
	v.SetDefault("extraction.api_key", "")
	v.SetDefault("extraction.timeout", "60s")
	v.SetDefault("extraction.requests_per_second", 2.0)
	v.SetDefault("extraction.max_pages", 50)

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("ratelimit.per_ip", 60)

	v.SetDefault("matching.exact_threshold", 100.0)
	v.SetDefault("matching.near_threshold", 95.0)
	v.SetDefault("matching.mismatch_threshold", 95.0)
	v.SetDefault("matching.min_window", 2)
	v.SetDefault("matching.max_window", 5)

	v.SetDefault("zoom.font_size_threshold", 6.5)
	v.SetDefault("zoom.confidence_threshold", 100.0)
	v.SetDefault("zoom.fuzzy_threshold", 100.0)
	v.SetDefault("zoom.on_numbers", true)
	v.SetDefault("zoom.on_percentage", true)
	v.SetDefault("zoom.on_decimals", true)
	v.SetDefault("zoom.on_units", true)
	v.SetDefault("zoom.on_negation", true)
	v.SetDefault("zoom.unit_patterns", []string{})

	v.SetDefault("conversion.ml_to_floz", 0.033814)
	v.SetDefault("conversion.tolerance", 0.10)
	v.SetDefault("conversion.field_keyword", "fill weight")

	v.SetDefault("exclusion.extra_terms", []string{})
	v.SetDefault("exclusion.extra_company_names", []string{})
	v.SetDefault("exclusion.extra_patterns", []string{})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Extraction.Provider {
	case "local":
	case "service":
		if config.Extraction.BaseURL == "" {
			return fmt.Errorf("extraction base URL is required for the service provider (set ARTCHECK_EXTRACTION_BASE_URL)")
		}
		if config.Extraction.APIKey == "" {
			return fmt.Errorf("extraction API key is required for the service provider (set ARTCHECK_EXTRACTION_API_KEY)")
		}
	default:
		return fmt.Errorf("extraction provider must be 'local' or 'service', got: %s", config.Extraction.Provider)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "none" {
		return fmt.Errorf("cache type must be 'memory' or 'none', got: %s", config.Cache.Type)
	}

	m := config.Matching
	for _, t := range []struct {
		name  string
		value float64
	}{
		{"exact_threshold", m.ExactThreshold},
		{"near_threshold", m.NearThreshold},
		{"mismatch_threshold", m.MismatchThreshold},
	} {
		if t.value < 0 || t.value > 100 {
			return fmt.Errorf("matching %s must be within 0..100, got: %g", t.name, t.value)
		}
	}
	if m.MismatchThreshold > m.NearThreshold || m.NearThreshold > m.ExactThreshold {
		return fmt.Errorf("matching thresholds must satisfy mismatch <= near <= exact, got: %g/%g/%g",
			m.MismatchThreshold, m.NearThreshold, m.ExactThreshold)
	}
	if m.MinWindow < 1 || m.MinWindow > m.MaxWindow {
		return fmt.Errorf("matching windows must satisfy 1 <= min <= max, got: %d/%d", m.MinWindow, m.MaxWindow)
	}

	if config.Zoom.FontSizeThreshold < 0 {
		return fmt.Errorf("zoom font_size_threshold must not be negative")
	}
	if z := config.Zoom.ConfidenceThreshold; z < 0 || z > 100 {
		return fmt.Errorf("zoom confidence_threshold must be within 0..100, got: %g", z)
	}
	if z := config.Zoom.FuzzyThreshold; z < 0 || z > 100 {
		return fmt.Errorf("zoom fuzzy_threshold must be within 0..100, got: %g", z)
	}

	if config.Conversion.MLToFlOz <= 0 {
		return fmt.Errorf("conversion ml_to_floz must be positive, got: %g", config.Conversion.MLToFlOz)
	}
	if config.Conversion.Tolerance < 0 {
		return fmt.Errorf("conversion tolerance must not be negative, got: %g", config.Conversion.Tolerance)
	}
	if strings.TrimSpace(config.Conversion.FieldKeyword) == "" {
		return fmt.Errorf("conversion field_keyword must not be empty")
	}

	if _, err := logging.ParseLevel(config.Logging.Level); err != nil {
		return err
	}

	return nil
}

// CheckService builds the engine configuration handed to usecase.NewCheckService
func (c *Config) CheckService() usecase.CheckServiceConfig {
	return usecase.CheckServiceConfig{
		CacheTTL: c.Cache.TTL,
		Match: usecase.MatchConfig{
			ExactThreshold:    c.Matching.ExactThreshold,
			NearThreshold:     c.Matching.NearThreshold,
			MismatchThreshold: c.Matching.MismatchThreshold,
			MinWindow:         c.Matching.MinWindow,
			MaxWindow:         c.Matching.MaxWindow,
		},
		Zoom: &usecase.ZoomConfig{
			FontSizeThreshold:   c.Zoom.FontSizeThreshold,
			ConfidenceThreshold: c.Zoom.ConfidenceThreshold,
			FuzzyThreshold:      c.Zoom.FuzzyThreshold,
			OnNumbers:           c.Zoom.OnNumbers,
			OnPercentage:        c.Zoom.OnPercentage,
			OnDecimals:          c.Zoom.OnDecimals,
			OnUnits:             c.Zoom.OnUnits,
			OnNegation:          c.Zoom.OnNegation,
			UnitPatterns:        c.Zoom.UnitPatterns,
		},
		Conversion: usecase.ConversionConfig{
			MLToFlOz:     c.Conversion.MLToFlOz,
			Tolerance:    c.Conversion.Tolerance,
			FieldKeyword: c.Conversion.FieldKeyword,
		},
		Exclusion: usecase.ExclusionConfig{
			ExtraTerms:        c.Exclusion.ExtraTerms,
			ExtraCompanyNames: c.Exclusion.ExtraCompanyNames,
			ExtraPatterns:     c.Exclusion.ExtraPatterns,
		},
	}
}
