package services

import (
	"context"
	"log/slog"
	"time"

	"kpilens/internal/analysis"
	"kpilens/internal/cache"
	"kpilens/internal/config"
	"kpilens/internal/infrastructure"
	"kpilens/internal/validation"
	"kpilens/pkg/contracts/domain"
)

// AnalysisService is the engine facade: it validates the workbook, resolves
// the cache key from the file fingerprint, and serves memoized results. The
// underlying engine never fails; only input validation can return an error
// here.
type AnalysisService struct {
	engine    *analysis.Engine
	cache     *cache.AnalysisCache
	validator *validation.WorkbookValidator
	logger    *slog.Logger
}

// NewAnalysisService wires the engine from configuration
func NewAnalysisService(cfg *config.Config, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		engine:    analysis.NewEngine(logger, cfg.Radar.LibraryPath),
		cache:     cache.New(cfg.Cache.TTL, cfg.Cache.MaxEntries),
		validator: validation.NewWorkbookValidator(logger, cfg.Analysis.MaxFileSizeBytes),
		logger:    logger.With(slog.String("component", "analysis_service")),
	}
}

// Analyze returns the (possibly cached) analysis result for a workbook.
// The error is non-nil only when the file itself is rejected before the
// engine runs; once the engine is reached, the result is always complete.
func (s *AnalysisService) Analyze(ctx context.Context, path string, opts analysis.Options) (*domain.Analysis, error) {
	info, err := s.validator.Validate(path)
	if err != nil {
		return nil, err
	}

	key := cache.NewKey(info.Path, string(analysis.NormalizeLang(opts.Lang)), opts.Prompt, opts.Lens, info.ModTime, info.Size)

	computed := false
	result := s.cache.GetOrCompute(key, func() *domain.Analysis {
		computed = true
		start := time.Now()
		out := s.engine.Analyze(ctx, info.Path, opts)
		infrastructure.ObserveAnalysis(string(out.Status), time.Since(start).Seconds(), len(out.MappingBacklog))
		return out
	})
	infrastructure.ObserveCache(!computed)

	s.logger.DebugContext(ctx, "analysis served",
		slog.String("path", info.Path),
		slog.String("status", string(result.Status)),
		slog.Bool("cache_hit", !computed))

	return result, nil
}

// CacheStats exposes cache diagnostics for health/metrics collaborators
func (s *AnalysisService) CacheStats() map[string]interface{} {
	return s.cache.Stats()
}

// Close tears down service-owned background work
func (s *AnalysisService) Close() {
	s.cache.Stop()
}
