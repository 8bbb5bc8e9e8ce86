package websearch

import (
	"context"
	"fmt"
	"log/slog"

	"AgentPipeline/internal/config"
	"AgentPipeline/internal/domain"
	"AgentPipeline/internal/ports"
	"AgentPipeline/internal/research"
)

// StrategySource implements SearchProvider via registered scanner strategies.
type StrategySource struct {
	registry *research.Registry
	cfg      config.WebSearchConfig
	logger   *slog.Logger
}

var _ ports.SearchProvider = (*StrategySource)(nil)

// NewStrategySource binds the configured strategy name to the registry.
func NewStrategySource(reg *research.Registry, cfg config.WebSearchConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		cfg:      cfg,
		logger:   log,
	}
}

// Search resolves the configured scanner and executes the query.
func (s *StrategySource) Search(ctx context.Context, query string) ([]domain.SearchResult, string, error) {
	if s.registry == nil {
		return nil, "", fmt.Errorf("scanner registry is not configured")
	}

	strategy, err := s.registry.Resolve(s.cfg.Strategy)
	if err != nil {
		return nil, "", fmt.Errorf("web search: %w", err)
	}

	s.debug("web search", "strategy", s.cfg.Strategy, "query", query)

	results, raw, err := strategy.Search(ctx, research.Request{
		Query:      query,
		MaxResults: s.cfg.MaxResults,
	})
	if err != nil {
		return nil, "", fmt.Errorf("search %s: %w", s.cfg.Strategy, err)
	}

	s.debug("web search done", "strategy", s.cfg.Strategy, "count", len(results))
	return results, raw, nil
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
