package skills

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"AgentPipeline/internal/domain"
	"AgentPipeline/internal/ports"
)

// Registry seeds and lists skills against the skill store.
type Registry struct {
	store    ports.SkillStore
	seedPath string
	logger   *slog.Logger
}

var _ ports.PersonaContextProvider = (*Registry)(nil)

// NewRegistry wires the store with the seed file location.
func NewRegistry(store ports.SkillStore, seedPath string, logger *slog.Logger) *Registry {
	return &Registry{store: store, seedPath: seedPath, logger: logger}
}

// SeedDatabase upserts every seed entry unconditionally, overwriting
// name/type/status/priority/config for existing slugs. Intended for a
// completely empty registry.
func (r *Registry) SeedDatabase(ctx context.Context) (int, error) {
	seeds, err := LoadSeed(r.seedPath)
	if err != nil {
		return 0, err
	}

	for _, seed := range seeds {
		if err := r.store.UpsertSkill(ctx, seed.Skill()); err != nil {
			return 0, fmt.Errorf("upsert skill %s: %w", seed.Slug, err)
		}
	}

	r.debug("seeded registry", "skills", len(seeds))
	return len(seeds), nil
}

// SeedMissingSkills inserts only slugs absent from the store. Existing
// skills keep their live config, so operator hand-edits survive runs.
func (r *Registry) SeedMissingSkills(ctx context.Context) ([]string, error) {
	seeds, err := LoadSeed(r.seedPath)
	if err != nil {
		return nil, err
	}

	existing, err := r.store.ListSkills(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, skill := range existing {
		known[skill.Slug] = true
	}

	var inserted []string
	for _, seed := range seeds {
		if known[seed.Slug] {
			continue
		}
		if err := r.store.UpsertSkill(ctx, seed.Skill()); err != nil {
			return nil, fmt.Errorf("insert skill %s: %w", seed.Slug, err)
		}
		inserted = append(inserted, seed.Slug)
	}

	if len(inserted) > 0 {
		r.debug("seeded missing skills", "slugs", inserted)
	}
	return inserted, nil
}

// ActiveSkills lists active skills ordered by priority descending, then
// name ascending.
func (r *Registry) ActiveSkills(ctx context.Context) ([]domain.Skill, error) {
	skills, err := r.store.ListSkills(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list active skills: %w", err)
	}
	return skills, nil
}

// BrandConfig returns the personal-brand skill config, falling back to the
// seed file when the store has no such skill yet.
func (r *Registry) BrandConfig(ctx context.Context, slug string) (map[string]any, error) {
	skill, err := r.store.GetSkillBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("load skill %s: %w", slug, err)
	}
	if skill != nil {
		return skill.Config, nil
	}

	seeds, err := LoadSeed(r.seedPath)
	if err != nil {
		return nil, err
	}
	for _, seed := range seeds {
		if seed.Slug == slug {
			return seed.Config, nil
		}
	}
	return map[string]any{}, nil
}

// PersonaContext formats active creator-persona skills into a prompt
// block. Personas live in the registry as internal skills whose slug
// starts with "creator_persona".
func (r *Registry) PersonaContext(ctx context.Context) (string, error) {
	active, err := r.store.ListSkills(ctx, false)
	if err != nil {
		return "", fmt.Errorf("list skills: %w", err)
	}

	var chunks []string
	for _, skill := range active {
		if skill.Type != domain.SkillTypeInternal || !strings.HasPrefix(skill.Slug, "creator_persona") {
			continue
		}
		lines := []string{fmt.Sprintf("- @%s", skill.ConfigString("handle"))}
		if summary := skill.ConfigString("summary"); summary != "" {
			lines = append(lines, fmt.Sprintf("  summary: %s", summary))
		}
		if hits, ok := skill.Config["example_posts"].([]any); ok {
			for _, hit := range hits {
				if text, ok := hit.(string); ok && text != "" {
					lines = append(lines, fmt.Sprintf("  hit: %s", text))
				}
			}
		}
		chunks = append(chunks, strings.Join(lines, "\n"))
	}

	if len(chunks) == 0 {
		return "", nil
	}
	return "Creator persona inspo (active):\n" + strings.Join(chunks, "\n"), nil
}

func (r *Registry) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
