package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/labelproof/artcheck/internal/domain"
)

const (
	sourceComputed = "computed"
	sourceCache    = "cache"
)

// CheckServiceConfig holds configuration for the check service
type CheckServiceConfig struct {
	CacheTTL   time.Duration
	Match      MatchConfig
	Zoom       *ZoomConfig // nil uses DefaultZoomConfig
	Conversion ConversionConfig
	Exclusion  ExclusionConfig
}

// CheckService runs a complete artwork check with caching
type CheckService struct {
	cache       domain.CacheRepository
	extractor   domain.ArtworkExtractor
	parser      domain.CopyDocumentParser
	exclusion   *ExclusionFilter
	matcher     *MatchingService
	conversions *ConversionChecker
	quality     *CopyQualityChecker
	claims      *ClaimRiskAssessor
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewCheckService creates a new check service with dependencies.
// cache, extractor and parser may be nil; CheckDocuments needs the latter two.
func NewCheckService(
	cache domain.CacheRepository,
	extractor domain.ArtworkExtractor,
	parser domain.CopyDocumentParser,
	config CheckServiceConfig,
	logger *zap.Logger,
) (*CheckService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	zoomConfig := DefaultZoomConfig()
	if config.Zoom != nil {
		zoomConfig = *config.Zoom
	}
	zoom, err := NewZoomDetector(zoomConfig)
	if err != nil {
		return nil, fmt.Errorf("zoom detector: %w", err)
	}
	exclusion, err := NewExclusionFilter(config.Exclusion, logger)
	if err != nil {
		return nil, fmt.Errorf("exclusion filter: %w", err)
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &CheckService{
		cache:       cache,
		extractor:   extractor,
		parser:      parser,
		exclusion:   exclusion,
		matcher:     NewMatchingService(config.Match, zoom, logger),
		conversions: NewConversionChecker(config.Conversion, logger),
		quality:     NewCopyQualityChecker(logger),
		claims:      NewClaimRiskAssessor(logger),
		cacheTTL:    cacheTTL,
		logger:      logger,
	}, nil
}

// Check verifies copy fields against already extracted artwork fragments.
// Flow: check cache -> exclude -> match -> secondary checks -> cache -> return
func (s *CheckService) Check(ctx context.Context, request *domain.CheckRequest) (*domain.CheckReport, error) {
	if request == nil {
		return nil, domain.ErrInvalidRequest
	}

	var active, legacy, struck []domain.CopyField
	for _, f := range request.CopyFields {
		switch {
		case f.IsStrikethrough:
			struck = append(struck, f)
		case f.IsLegacy:
			legacy = append(legacy, f)
		default:
			active = append(active, f)
		}
	}
	if len(active) == 0 {
		return nil, domain.ErrNoCopyFields
	}

	cacheKey, err := generateCacheKey(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		cached.Source = sourceCache
		return cached, nil
	}

	kept, exclusion := s.exclusion.FilterFragments(request.Fragments)
	extraction := request.Extraction
	extraction.FragmentCount = len(request.Fragments)

	findings := s.matcher.MatchFields(active, kept, extraction)

	report := &domain.CheckReport{
		ID:            uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		Source:        sourceComputed,
		CopySource:    request.CopySource,
		ArtworkSource: request.ArtworkSource,
		Extraction:    extraction,
		Exclusion:     exclusion,
		Findings:      findings,
		Conversions:   s.conversions.CheckConversions(active),
		QualityIssues: s.quality.Analyze(active),
		ClaimRisks:    s.claims.AssessAll(active),
		Fonts:         FontMeasurements(kept),
		Legacy:        legacy,
		Strikethrough: struck,
		Warnings:      request.Warnings,
	}
	for i := range findings {
		report.Summary.Add(&findings[i])
	}

	s.logger.Info("artwork check complete",
		zap.String("id", report.ID),
		zap.String("copy", request.CopySource),
		zap.String("artwork", request.ArtworkSource),
		zap.Int("findings", report.Summary.Total),
		zap.Int("failed", report.Summary.Failed),
		zap.Int("quality_issues", len(report.QualityIssues)),
		zap.Int("claims", len(report.ClaimRisks)))

	if err := s.setInCache(ctx, cacheKey, report); err != nil {
		s.logger.Warn("failed to cache report", zap.String("id", report.ID), zap.Error(err))
	}

	return report, nil
}

// CheckDocuments parses the copy document and extracts the artwork
// concurrently, then runs Check on the result.
func (s *CheckService) CheckDocuments(
	ctx context.Context,
	copyName string,
	copyContent []byte,
	artworkName string,
	artworkContent []byte,
) (*domain.CheckReport, error) {
	if s.parser == nil || s.extractor == nil {
		return nil, fmt.Errorf("%w: document checks need a parser and an extractor", domain.ErrInvalidRequest)
	}

	var (
		doc        *domain.CopyDocument
		extraction *domain.ArtworkExtraction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		doc, err = s.parser.Parse(gctx, copyName, copyContent)
		return err
	})
	g.Go(func() error {
		var err error
		extraction, err = s.extractor.Extract(gctx, artworkName, artworkContent)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fields := make([]domain.CopyField, 0, len(doc.Fields)+len(doc.Legacy)+len(doc.Strikethrough))
	fields = append(fields, doc.Fields...)
	fields = append(fields, doc.Legacy...)
	fields = append(fields, doc.Strikethrough...)

	for _, w := range extraction.Warnings {
		s.logger.Warn("artwork extraction warning", zap.String("artwork", artworkName), zap.String("warning", w))
	}

	return s.Check(ctx, &domain.CheckRequest{
		CopySource:    copyName,
		ArtworkSource: artworkName,
		CopyFields:    fields,
		Fragments:     extraction.Fragments,
		Extraction:    extraction.Summary,
		Warnings:      extraction.Warnings,
	})
}

// CheckConversions runs only the unit-conversion check.
func (s *CheckService) CheckConversions(fields []domain.CopyField) []domain.ConversionCheck {
	return s.conversions.CheckConversions(domain.ActiveFields(fields))
}

// generateCacheKey derives a content-addressed key from the request.
// Format: "check:{sha256 of the encoded request}"
func generateCacheKey(request *domain.CheckRequest) (string, error) {
	encoded, err := json.Marshal(request)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return "check:" + hex.EncodeToString(sum[:]), nil
}

// getFromCache retrieves a report from cache
func (s *CheckService) getFromCache(ctx context.Context, key string) (*domain.CheckReport, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var report domain.CheckReport
	if err := json.Unmarshal(value, &report); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheMiss, err)
	}
	return &report, nil
}

// setInCache stores a report in cache
func (s *CheckService) setInCache(ctx context.Context, key string, report *domain.CheckReport) error {
	if s.cache == nil {
		return nil
	}
	encoded, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, encoded, s.cacheTTL)
}
