package domain

import "time"

// Post and conversation statuses.
const (
	ConversationStatusPending = "pending"
)

// Post is a drafted social post awaiting review/publication.
type Post struct {
	ID               int64
	SessionID        int64
	SkillSlug        string
	Platform         string
	Kind             string
	Source           string
	DraftContent     string
	PublishedContent string
	XTweetID         string
	PublishedAt      *time.Time
	Metadata         map[string]any
	CreatedAt        time.Time
}

// Conversation is a tweet worth replying to, with a suggested reply.
type Conversation struct {
	ID              int64
	SessionID       int64
	SkillSlug       string
	TweetURL        string
	TweetID         string
	AuthorHandle    string
	AuthorFollowers int
	Snippet         string
	Reason          string
	SuggestedReply  string
	Status          string
	CreatedAt       time.Time
}

// DailyBrief is the end-of-pipeline digest document, one per date.
type DailyBrief struct {
	ID        int64
	Date      string
	ContentMD string
	Summary   map[string]any
	CreatedAt time.Time
}

// MetricsData is one engagement snapshot for a published post.
type MetricsData struct {
	Impressions   int
	Likes         int
	Replies       int
	Retweets      int
	Bookmarks     int
	ProfileVisits int
	LinkClicks    int
	Raw           map[string]any
}

// MetricsTotals aggregates snapshots over a time range.
type MetricsTotals struct {
	Impressions   int
	Likes         int
	Replies       int
	Retweets      int
	Bookmarks     int
	ProfileVisits int
	LinkClicks    int
	Snapshots     int
}
