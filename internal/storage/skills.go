package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"AgentPipeline/internal/domain"
	"AgentPipeline/internal/ports"
)

var _ ports.SkillStore = (*Store)(nil)

// ListSkills returns skills ordered by priority descending then name
// ascending; the order drives deterministic pipeline iteration.
func (s *Store) ListSkills(ctx context.Context, includeInactive bool) ([]domain.Skill, error) {
	query := s.sb.Select("id", "slug", "name", "type", "status", "priority", "config_json", "created_at", "updated_at").
		From("skills").
		OrderBy("priority DESC", "name ASC")
	if !includeInactive {
		query = query.Where(sq.Eq{"status": domain.SkillStatusActive})
	}

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query skills: %w", err)
	}
	defer rows.Close()

	var skills []domain.Skill
	for rows.Next() {
		skill, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		skills = append(skills, skill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate skills: %w", err)
	}

	return skills, nil
}

// GetSkillBySlug returns nil when the slug is unknown.
func (s *Store) GetSkillBySlug(ctx context.Context, slug string) (*domain.Skill, error) {
	rows, err := s.sb.Select("id", "slug", "name", "type", "status", "priority", "config_json", "created_at", "updated_at").
		From("skills").
		Where(sq.Eq{"slug": slug}).
		Limit(1).
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query skill %s: %w", slug, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate skill %s: %w", slug, err)
		}
		return nil, nil
	}

	skill, err := scanSkill(rows)
	if err != nil {
		return nil, err
	}
	return &skill, nil
}

// UpsertSkill inserts or fully overwrites a skill by slug, bumping
// updated_at on conflict.
func (s *Store) UpsertSkill(ctx context.Context, skill domain.Skill) error {
	config, err := marshalJSON(skill.Config)
	if err != nil {
		return fmt.Errorf("marshal skill config: %w", err)
	}
	if config == nil {
		config = "{}"
	}

	_, err = s.sb.Insert("skills").
		Columns("slug", "name", "type", "status", "priority", "config_json").
		Values(skill.Slug, skill.Name, skill.Type, skill.Status, skill.Priority, config).
		Suffix(`ON CONFLICT(slug) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			status = excluded.status,
			priority = excluded.priority,
			config_json = excluded.config_json,
			updated_at = CURRENT_TIMESTAMP`).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("upsert skill %s: %w", skill.Slug, err)
	}
	return nil
}

// UpdateSkillConfig replaces only the config document of an existing skill.
func (s *Store) UpdateSkillConfig(ctx context.Context, slug string, config map[string]any) error {
	raw, err := marshalJSON(config)
	if err != nil {
		return fmt.Errorf("marshal skill config: %w", err)
	}

	res, err := s.sb.Update("skills").
		Set("config_json", raw).
		Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"slug": slug}).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("update skill %s config: %w", slug, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update skill %s config: %w", slug, ErrNotFound)
	}
	return nil
}

func scanSkill(rows *sql.Rows) (domain.Skill, error) {
	var (
		skill                domain.Skill
		config               string
		createdAt, updatedAt sql.NullString
	)
	if err := rows.Scan(&skill.ID, &skill.Slug, &skill.Name, &skill.Type, &skill.Status,
		&skill.Priority, &config, &createdAt, &updatedAt); err != nil {
		return domain.Skill{}, fmt.Errorf("scan skill: %w", err)
	}

	if err := json.Unmarshal([]byte(config), &skill.Config); err != nil {
		return domain.Skill{}, fmt.Errorf("unmarshal config for %s: %w", skill.Slug, err)
	}
	skill.CreatedAt = parseTimestamp(createdAt)
	skill.UpdatedAt = parseTimestamp(updatedAt)

	return skill, nil
}
