package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/JonMunkholm/gridmap/internal/config"
	"github.com/JonMunkholm/gridmap/internal/grid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service fronts the engine for concurrent callers such as the HTTP API.
// Engine runs are bounded by a Limiter; templates are persisted when a
// database pool is configured.
type Service struct {
	limiter      *Limiter
	templates    *TemplateStore
	previewLimit int
}

// NewService creates a new Service instance. pool may be nil, in which case
// template operations return ErrTemplatesUnavailable.
func NewService(pool *pgxpool.Pool, cfg config.EngineConfig) *Service {
	store := NewTemplateStore(nil)
	if pool != nil {
		store = NewTemplateStore(pool)
	}

	previewLimit := cfg.PreviewLimit
	if previewLimit <= 0 {
		previewLimit = DefaultPreviewLimit
	}

	return &Service{
		limiter:      NewLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		templates:    store,
		previewLimit: previewLimit,
	}
}

// Run executes fn while holding an engine slot. It returns
// ErrTooManyRequests when no slot frees up in time and ctx.Err() when ctx
// ends first.
func (s *Service) Run(ctx context.Context, fn func() error) error {
	return s.limiter.Do(ctx, func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn()
	})
}

// Validate checks mappings.
func (s *Service) Validate(ctx context.Context, mappings []Mapping) (ValidationResult, error) {
	var result ValidationResult
	err := s.Run(ctx, func() error {
		result = Validate(mappings)
		return nil
	})
	return result, err
}

// Generate builds the tuples for mappings over g.
func (s *Service) Generate(ctx context.Context, mappings []Mapping, g grid.Grid) ([]Tuple, error) {
	var tuples []Tuple
	err := s.Run(ctx, func() error {
		start := time.Now()
		var err error
		tuples, err = Generate(mappings, g)
		if err != nil {
			return err
		}
		slog.Debug("tuples generated",
			"mappings", len(mappings),
			"rows", g.Rows(),
			"tuples", len(tuples),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tuples, nil
}

// Preview returns a sample of the tuples for mappings over g. A limit <= 0
// uses the configured preview limit.
func (s *Service) Preview(ctx context.Context, mappings []Mapping, g grid.Grid, limit int) (*PreviewResult, error) {
	if limit <= 0 {
		limit = s.previewLimit
	}

	var result *PreviewResult
	err := s.Run(ctx, func() error {
		var err error
		result, err = Preview(mappings, g, limit)
		if err != nil {
			return err
		}
		slog.Debug("preview generated",
			"tuples", result.Summary.TotalTuples,
			"samples", len(result.Samples),
			"duration_ms", result.ProcessingTimeMs,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Templates returns the template store.
func (s *Service) Templates() *TemplateStore {
	return s.templates
}

// ApplyTemplate loads a template and binds its mappings to g.
func (s *Service) ApplyTemplate(ctx context.Context, id string, g grid.Grid) ([]Mapping, error) {
	t, err := s.templates.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return t.Bind(g), nil
}

// MatchTemplates finds saved templates whose headers match g's first row.
func (s *Service) MatchTemplates(ctx context.Context, g grid.Grid) ([]TemplateMatch, error) {
	return s.templates.Match(ctx, g.Header())
}

// LimiterStatus reports engine slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForIdle blocks until in-flight engine runs finish or ctx ends.
func (s *Service) WaitForIdle(ctx context.Context) error {
	return s.limiter.WaitForIdle(ctx)
}
