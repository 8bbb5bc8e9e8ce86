package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"AgentPipeline/internal/ports"
)

// MetricsUpdater snapshots engagement data for recently published posts.
type MetricsUpdater struct {
	content ports.ContentStore
	source  ports.MetricsSource
	logger  *slog.Logger
}

// NewMetricsUpdater constructs the updater.
func NewMetricsUpdater(content ports.ContentStore, source ports.MetricsSource, logger *slog.Logger) *MetricsUpdater {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetricsUpdater{content: content, source: source, logger: logger}
}

// Run fetches metrics for posts published within the last `days` days and
// writes one snapshot per post that has data. Posts without data are skipped.
func (u *MetricsUpdater) Run(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		days = 14
	}

	posts, err := u.content.ListRecentPublishedPosts(ctx, days)
	if err != nil {
		return 0, fmt.Errorf("list published posts: %w", err)
	}

	written := 0
	for _, post := range posts {
		metrics, err := u.source.FetchPostMetrics(ctx, post)
		if err != nil {
			u.logger.Warn("metrics fetch failed", "post_id", post.ID, "error", err)
			continue
		}
		if metrics == nil {
			continue
		}
		if err := u.content.InsertMetricsSnapshot(ctx, post.ID, *metrics); err != nil {
			return written, fmt.Errorf("insert snapshot for post %d: %w", post.ID, err)
		}
		written++
	}

	u.logger.Info("metrics update done", "days", days, "posts", len(posts), "snapshots_written", written)
	return written, nil
}
