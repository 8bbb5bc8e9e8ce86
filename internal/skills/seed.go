package skills

import (
	"encoding/json"
	"fmt"
	"os"

	"AgentPipeline/internal/domain"
)

// SeedSkill is one entry of the declarative seed file. The whole raw object,
// including fields this package does not know about, becomes the skill config.
type SeedSkill struct {
	Slug     string
	Name     string
	Type     string
	Status   string
	Priority float64
	Config   map[string]any
}

// Skill converts the seed entry into the domain shape.
func (s SeedSkill) Skill() domain.Skill {
	return domain.Skill{
		Slug:     s.Slug,
		Name:     s.Name,
		Type:     s.Type,
		Status:   s.Status,
		Priority: s.Priority,
		Config:   s.Config,
	}
}

// LoadSeed reads the JSON seed file: an array of skill objects, each with
// slug/name/type plus optional status and priority; everything is kept
// verbatim as config.
func LoadSeed(path string) ([]SeedSkill, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}

	var entries []map[string]any
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	seeds := make([]SeedSkill, 0, len(entries))
	for i, entry := range entries {
		seed, err := seedFromEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i, err)
		}
		seeds = append(seeds, seed)
	}

	return seeds, nil
}

func seedFromEntry(entry map[string]any) (SeedSkill, error) {
	slug, _ := entry["slug"].(string)
	if slug == "" {
		return SeedSkill{}, fmt.Errorf("missing slug")
	}
	name, _ := entry["name"].(string)
	if name == "" {
		return SeedSkill{}, fmt.Errorf("skill %s: missing name", slug)
	}
	skillType, _ := entry["type"].(string)
	if skillType == "" {
		return SeedSkill{}, fmt.Errorf("skill %s: missing type", slug)
	}

	seed := SeedSkill{
		Slug:     slug,
		Name:     name,
		Type:     skillType,
		Status:   domain.SkillStatusActive,
		Priority: 0.5,
		Config:   entry,
	}
	if status, ok := entry["status"].(string); ok && status != "" {
		seed.Status = status
	}
	if priority, ok := entry["priority"].(float64); ok {
		seed.Priority = priority
	}

	return seed, nil
}
