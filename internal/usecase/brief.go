package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"AgentPipeline/internal/domain"
	"AgentPipeline/internal/ports"
)

// BriefGenerator renders and stores the daily digest document.
type BriefGenerator struct {
	content ports.ContentStore
	now     func() time.Time
}

// NewBriefGenerator constructs the generator; nil now defaults to time.Now.
func NewBriefGenerator(content ports.ContentStore, now func() time.Time) *BriefGenerator {
	if now == nil {
		now = time.Now
	}
	return &BriefGenerator{content: content, now: now}
}

// GenerateAndSave builds the brief for the date and upserts it, replacing
// any earlier brief for the same date.
func (g *BriefGenerator) GenerateAndSave(ctx context.Context, date string) (string, error) {
	if date == "" {
		date = g.now().UTC().Format("2006-01-02")
	}

	pendingPosts, err := g.content.ListPendingPostsForToday(ctx)
	if err != nil {
		return "", fmt.Errorf("list pending posts: %w", err)
	}

	pendingConversations, err := g.content.ListPendingConversations(ctx)
	if err != nil {
		return "", fmt.Errorf("list pending conversations: %w", err)
	}

	totals, err := g.yesterdayMetrics(ctx, date)
	if err != nil {
		return "", fmt.Errorf("aggregate metrics: %w", err)
	}

	contentMD := renderBrief(date, pendingPosts, pendingConversations, totals)
	summary := map[string]any{
		"date":                  date,
		"pending_posts":         len(pendingPosts),
		"pending_conversations": len(pendingConversations),
		"metrics_summary": map[string]any{
			"impressions": totals.Impressions,
			"likes":       totals.Likes,
			"replies":     totals.Replies,
			"retweets":    totals.Retweets,
			"snapshots":   totals.Snapshots,
		},
	}

	if err := g.content.SaveDailyBrief(ctx, date, contentMD, summary); err != nil {
		return "", fmt.Errorf("save daily brief: %w", err)
	}
	return contentMD, nil
}

func (g *BriefGenerator) yesterdayMetrics(ctx context.Context, date string) (domain.MetricsTotals, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return domain.MetricsTotals{}, fmt.Errorf("invalid date %q: %w", date, err)
	}

	target := day.AddDate(0, 0, -1)
	start := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Second)
	return g.content.AggregateMetricsBetween(ctx, start, end)
}

func renderBrief(date string, posts []domain.Post, conversations []domain.Conversation, totals domain.MetricsTotals) string {
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("# Daily Brief - %s", date)
	add("")
	add("## What happened yesterday")
	if totals.Snapshots > 0 {
		add("- %d metric snapshots captured", totals.Snapshots)
		add("- Impressions: %d", totals.Impressions)
		add("- Likes: %d", totals.Likes)
		add("- Replies: %d", totals.Replies)
		add("- Retweets: %d", totals.Retweets)
	} else {
		add("- No metrics captured yet (metrics pipeline pending)")
	}

	add("")
	add("## Publish these")
	if len(posts) > 0 {
		for _, post := range posts {
			add("- Post #%d (%s) [%s] - %s", post.ID, orUnspecified(post.SkillSlug), post.Kind, preview(post.DraftContent, 180))
		}
	} else {
		add("- No pending posts")
	}

	add("")
	add("## Join these conversations")
	if len(conversations) > 0 {
		for _, convo := range conversations {
			add("- Convo #%d (%s) - %s", convo.ID, orUnspecified(convo.SkillSlug), preview(convo.Snippet, 160))
			if convo.TweetURL != "" {
				add("  - %s", convo.TweetURL)
			}
		}
	} else {
		add("- No pending conversations")
	}

	add("")
	add("## Skill proposals / updates")
	add("- No new skill proposals yet (stub)")

	return strings.Join(lines, "\n")
}

// preview flattens newlines and truncates to limit runes, marking the cut
// with an ellipsis. Short text comes back untouched.
func preview(text string, limit int) string {
	flattened := strings.ReplaceAll(text, "\n", " ")
	runes := []rune(flattened)
	if len(runes) <= limit {
		return flattened
	}
	return string(runes[:limit]) + "..."
}

func orUnspecified(slug string) string {
	if slug == "" {
		return "unspecified"
	}
	return slug
}
