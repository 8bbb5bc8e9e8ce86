package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Skill types and statuses.
const (
	SkillTypeInternal   = "internal"
	SkillTypeGeneration = "generation"

	SkillStatusActive   = "active"
	SkillStatusInactive = "inactive"
)

// Skill is a named, configurable unit of recurring research and
// content-generation work, seeded from a declarative source.
type Skill struct {
	ID        int64
	Slug      string
	Name      string
	Type      string
	Status    string
	Priority  float64
	Config    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ConfigString returns a string config value or "".
func (s Skill) ConfigString(key string) string {
	v, ok := s.Config[key].(string)
	if !ok {
		return ""
	}
	return v
}

// Description is the skill's configured description, if any.
func (s Skill) Description() string {
	return s.ConfigString("description")
}

// ResearchQuery picks the first configured research query, falling back to
// the description and finally to a generic topic.
func (s Skill) ResearchQuery() string {
	if raw, ok := s.Config["research_queries"].([]any); ok {
		for _, q := range raw {
			if text, ok := q.(string); ok && text != "" {
				return text
			}
		}
	}
	if desc := s.Description(); desc != "" {
		return desc
	}
	return "research topics"
}

// ContextSummary formats the free-form config for inclusion in prompts,
// skipping the identity fields that add no signal.
func (s Skill) ContextSummary() string {
	skip := map[string]bool{"name": true, "slug": true, "type": true, "status": true, "priority": true}
	keys := make([]string, 0, len(s.Config))
	for key := range s.Config {
		if !skip[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	lines := []string{"Skill configuration:"}
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("- %s: %v", key, s.Config[key]))
	}
	return strings.Join(lines, "\n")
}
