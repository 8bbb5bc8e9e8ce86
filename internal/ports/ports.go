package ports

import (
	"context"
	"time"

	"AgentPipeline/internal/domain"
)

// FingerprintStore is the durable record of content already seen.
type FingerprintStore interface {
	// CheckFingerprint returns nil when the identity has never been seen.
	CheckFingerprint(ctx context.Context, contentType, primaryIdentifier string) (*domain.Fingerprint, error)
	// CheckFingerprintByHash returns nil when no stored fingerprint of any
	// content type carries the hash. Backs the cross-type duplicate rule.
	CheckFingerprintByHash(ctx context.Context, contentHash string) (*domain.Fingerprint, error)
	// SaveFingerprint inserts atomically; created is false when the
	// identity already existed, in which case id is the existing row.
	SaveFingerprint(ctx context.Context, fp domain.Fingerprint) (id int64, created bool, err error)
	UpdateFingerprintStatus(ctx context.Context, id int64, status string) error
}

// RunStore tracks per-skill processing runs.
type RunStore interface {
	CreateProcessingRun(ctx context.Context, runDate string, sessionID int64) (int64, error)
	// UpdateProcessingRun writes counters and status; terminal statuses
	// also stamp completed_at.
	UpdateProcessingRun(ctx context.Context, runID int64, status domain.RunStatus, counters domain.RunCounters) error
	LatestProcessingRun(ctx context.Context) (*domain.ProcessingRun, error)
}

// SkillStore persists the skill registry.
type SkillStore interface {
	ListSkills(ctx context.Context, includeInactive bool) ([]domain.Skill, error)
	GetSkillBySlug(ctx context.Context, slug string) (*domain.Skill, error)
	UpsertSkill(ctx context.Context, skill domain.Skill) error
	UpdateSkillConfig(ctx context.Context, slug string, config map[string]any) error
}

// ContentStore persists sessions, raw result rows, generated content,
// daily briefs and metrics snapshots.
type ContentStore interface {
	CreateSession(ctx context.Context, name, topic, appName, appDescription string) (int64, error)
	SaveSearchResults(ctx context.Context, sessionID int64, results []domain.SearchResult, rawResponse string) error
	SaveTweetResults(ctx context.Context, sessionID int64, tweets []domain.Tweet, rawResponse string) error
	SaveReviewerOutput(ctx context.Context, sessionID int64, distilled domain.Distilled, rawResponse string) error
	SaveEditorOutputs(ctx context.Context, sessionID int64, drafts []domain.DraftResult) error

	CreatePost(ctx context.Context, post domain.Post) (int64, error)
	ListPendingPostsForToday(ctx context.Context) ([]domain.Post, error)
	ListRecentPublishedPosts(ctx context.Context, days int) ([]domain.Post, error)
	MarkPostPublished(ctx context.Context, postID int64, tweetID string, publishedAt time.Time) error

	AddConversation(ctx context.Context, convo domain.Conversation) (int64, error)
	ListPendingConversations(ctx context.Context) ([]domain.Conversation, error)
	GetConversationByID(ctx context.Context, id int64) (*domain.Conversation, error)
	UpdateConversationReply(ctx context.Context, id int64, reply string) error

	SaveDailyBrief(ctx context.Context, date, contentMD string, summary map[string]any) error
	GetDailyBrief(ctx context.Context, date string) (*domain.DailyBrief, error)

	InsertMetricsSnapshot(ctx context.Context, postID int64, metrics domain.MetricsData) error
	AggregateMetricsBetween(ctx context.Context, start, end time.Time) (domain.MetricsTotals, error)
}

// SearchProvider pulls fresh web search results for a query.
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]domain.SearchResult, string, error)
}

// TweetProvider pulls fresh social results for a query.
type TweetProvider interface {
	SearchTweets(ctx context.Context, query string) ([]domain.Tweet, string, error)
}

// Distiller reduces raw content items to topics and talking points.
// The second return value is the raw collaborator response for auditing.
type Distiller interface {
	Distill(ctx context.Context, items []domain.ResearchItem, skillName, description, auxContext string) (domain.Distilled, string, error)
}

// Drafter turns distilled topics into post drafts, one tagged result per topic.
type Drafter interface {
	DraftPosts(ctx context.Context, distilled domain.Distilled, skillName, description, auxContext string) ([]domain.DraftResult, error)
}

// Replier generates a reply for a pending conversation in the brand voice.
type Replier interface {
	GenerateReply(ctx context.Context, convo domain.Conversation, brand map[string]any, examples []string) (string, error)
}

// MetricsSource fetches engagement metrics for a published post.
// A nil result with nil error means no data is available yet.
type MetricsSource interface {
	FetchPostMetrics(ctx context.Context, post domain.Post) (*domain.MetricsData, error)
}

// Notifier delivers the daily brief to an outbound channel.
type Notifier interface {
	PublishBrief(ctx context.Context, brief string) error
}

// PersonaContextProvider supplies the optional creator-persona context
// string folded into generation prompts.
type PersonaContextProvider interface {
	PersonaContext(ctx context.Context) (string, error)
}
