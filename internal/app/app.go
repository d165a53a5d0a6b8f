// Package app wires configuration into a ready CheckService for the
// server and the CLI.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/labelproof/artcheck/config"
	"github.com/labelproof/artcheck/internal/domain"
	"github.com/labelproof/artcheck/internal/infrastructure/cache"
	"github.com/labelproof/artcheck/internal/infrastructure/copydoc"
	"github.com/labelproof/artcheck/internal/infrastructure/extraction"
	"github.com/labelproof/artcheck/internal/infrastructure/pdftext"
	"github.com/labelproof/artcheck/internal/usecase"
)

// Version is overridden at build time with -ldflags "-X .../internal/app.Version=...".
var Version = "dev"

// Services holds the wired check service and the resources behind it.
type Services struct {
	Checks *usecase.CheckService
	cache  *cache.MemoryCache
}

// Close releases background resources such as the cache sweeper.
func (s *Services) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// New builds the check service described by cfg.
func New(cfg *config.Config, logger *zap.Logger) (*Services, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	services := &Services{}

	var repo domain.CacheRepository
	if cfg.Cache.Type == "memory" {
		services.cache = cache.NewMemoryCache()
		repo = services.cache
	}

	extractor, err := NewExtractor(cfg.Extraction, logger)
	if err != nil {
		services.Close()
		return nil, err
	}

	checks, err := usecase.NewCheckService(repo, extractor, copydoc.NewParser(logger), cfg.CheckService(), logger)
	if err != nil {
		services.Close()
		return nil, fmt.Errorf("failed to build check service: %w", err)
	}
	services.Checks = checks

	logger.Info("check service ready",
		zap.String("extraction_provider", cfg.Extraction.Provider),
		zap.String("cache", cfg.Cache.Type),
		zap.Duration("cache_ttl", cfg.Cache.TTL),
		zap.Float64("near_threshold", cfg.Matching.NearThreshold),
		zap.Float64("mismatch_threshold", cfg.Matching.MismatchThreshold))

	return services, nil
}

// NewExtractor selects the artwork extractor for the configured provider.
func NewExtractor(cfg config.ExtractionConfig, logger *zap.Logger) (domain.ArtworkExtractor, error) {
	switch cfg.Provider {
	case "", "local":
		return pdftext.NewExtractor(cfg.MaxPages, logger), nil
	case "service":
		return extraction.NewClient(extraction.ClientConfig{
			BaseURL:           cfg.BaseURL,
			APIKey:            cfg.APIKey,
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}, logger), nil
	}
	return nil, fmt.Errorf("unknown extraction provider %q", cfg.Provider)
}
