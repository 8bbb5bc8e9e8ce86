package research

import (
	"context"
	"fmt"

	"AgentPipeline/internal/domain"
)

// Request carries all parameters required to execute a web search.
type Request struct {
	Query      string
	MaxResults int
	Options    map[string]string
}

// Scanner captures a single web search strategy (API, SERP, etc.).
type Scanner interface {
	Name() string
	Search(ctx context.Context, req Request) ([]domain.SearchResult, string, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("scanner %s is not registered", name)
}
