package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"AgentPipeline/internal/domain"
	"AgentPipeline/internal/ports"
)

var _ ports.RunStore = (*Store)(nil)

// CreateProcessingRun opens a run in status running.
func (s *Store) CreateProcessingRun(ctx context.Context, runDate string, sessionID int64) (int64, error) {
	res, err := s.sb.Insert("processing_runs").
		Columns("run_date", "session_id").
		Values(runDate, sessionID).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("insert processing run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// UpdateProcessingRun writes status and counters. Terminal statuses also set
// completed_at, closing the run.
func (s *Store) UpdateProcessingRun(ctx context.Context, runID int64, status domain.RunStatus, counters domain.RunCounters) error {
	update := s.sb.Update("processing_runs").
		Set("status", string(status)).
		Set("new_search_results", counters.NewSearchResults).
		Set("new_tweets", counters.NewTweets).
		Set("duplicates_skipped", counters.DuplicatesSkipped).
		Set("content_generated", counters.ContentGenerated).
		Where(sq.Eq{"id": runID})

	if status.Terminal() {
		update = update.Set("completed_at", sq.Expr("CURRENT_TIMESTAMP"))
	}

	if _, err := update.RunWith(s.db).ExecContext(ctx); err != nil {
		return fmt.Errorf("update processing run %d: %w", runID, err)
	}
	return nil
}

// LatestProcessingRun returns the most recently started run, or nil.
func (s *Store) LatestProcessingRun(ctx context.Context) (*domain.ProcessingRun, error) {
	row := s.sb.Select("id", "run_date", "session_id", "started_at", "completed_at", "status",
		"new_search_results", "new_tweets", "duplicates_skipped", "content_generated").
		From("processing_runs").
		OrderBy("started_at DESC", "id DESC").
		Limit(1).
		RunWith(s.db).
		QueryRowContext(ctx)

	var (
		run                    domain.ProcessingRun
		sessionID              sql.NullInt64
		startedAt, completedAt sql.NullString
		status                 string
	)
	err := row.Scan(&run.ID, &run.RunDate, &sessionID, &startedAt, &completedAt, &status,
		&run.Counters.NewSearchResults, &run.Counters.NewTweets,
		&run.Counters.DuplicatesSkipped, &run.Counters.ContentGenerated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan processing run: %w", err)
	}

	run.SessionID = sessionID.Int64
	run.StartedAt = parseTimestamp(startedAt)
	run.Status = domain.RunStatus(status)
	if completedAt.Valid {
		completed := parseTimestamp(completedAt)
		run.CompletedAt = &completed
	}

	return &run, nil
}
