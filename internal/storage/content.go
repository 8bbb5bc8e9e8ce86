package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"AgentPipeline/internal/domain"
	"AgentPipeline/internal/ports"
)

var _ ports.ContentStore = (*Store)(nil)

// CreateSession opens a grouping context for one skill's daily execution.
func (s *Store) CreateSession(ctx context.Context, name, topic, appName, appDescription string) (int64, error) {
	res, err := s.sb.Insert("sessions").
		Columns("session_name", "topic", "app_name", "app_description").
		Values(name, topic, appName, appDescription).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// SaveSearchResults persists the raw search batch as session-scoped rows.
func (s *Store) SaveSearchResults(ctx context.Context, sessionID int64, results []domain.SearchResult, rawResponse string) error {
	if len(results) == 0 {
		return nil
	}

	insert := s.sb.Insert("search_results").Columns("session_id", "url", "snippet", "raw_response")
	for _, result := range results {
		insert = insert.Values(sessionID, result.URL, result.Snippet, rawResponse)
	}

	if _, err := insert.RunWith(s.db).ExecContext(ctx); err != nil {
		return fmt.Errorf("insert search results: %w", err)
	}
	return nil
}

// SaveTweetResults persists the raw tweet batch as session-scoped rows.
func (s *Store) SaveTweetResults(ctx context.Context, sessionID int64, tweets []domain.Tweet, rawResponse string) error {
	if len(tweets) == 0 {
		return nil
	}

	insert := s.sb.Insert("twitter_results").
		Columns("session_id", "url", "snippet", "screen_name", "followers_count", "tweet_created_at",
			"favorite_count", "quote_count", "reply_count", "retweet_count", "raw_response")
	for _, tweet := range tweets {
		insert = insert.Values(sessionID, tweet.URL, tweet.Snippet, tweet.ScreenName, tweet.FollowersCount,
			tweet.CreatedAt, tweet.FavoriteCount, tweet.QuoteCount, tweet.ReplyCount, tweet.RetweetCount, rawResponse)
	}

	if _, err := insert.RunWith(s.db).ExecContext(ctx); err != nil {
		return fmt.Errorf("insert twitter results: %w", err)
	}
	return nil
}

// SaveReviewerOutput persists a distillation result for the session.
func (s *Store) SaveReviewerOutput(ctx context.Context, sessionID int64, distilled domain.Distilled, rawResponse string) error {
	topics, err := json.Marshal(distilled.Topics)
	if err != nil {
		return fmt.Errorf("marshal topics: %w", err)
	}
	points, err := json.Marshal(distilled.TalkingPoints)
	if err != nil {
		return fmt.Errorf("marshal talking points: %w", err)
	}

	_, err = s.sb.Insert("reviewer_outputs").
		Columns("session_id", "distilled_topics", "talking_points", "raw_response").
		Values(sessionID, string(topics), string(points), rawResponse).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert reviewer output: %w", err)
	}
	return nil
}

// SaveEditorOutputs persists the drafted bodies for the session. Drafts that
// carry an error or an empty body are skipped; an all-skipped batch is a no-op.
func (s *Store) SaveEditorOutputs(ctx context.Context, sessionID int64, drafts []domain.DraftResult) error {
	insert := s.sb.Insert("editor_outputs").Columns("session_id", "topic", "content")
	rows := 0
	for _, draft := range drafts {
		if draft.Err != nil || draft.Body == "" {
			continue
		}
		insert = insert.Values(sessionID, draft.Topic, draft.Body)
		rows++
	}
	if rows == 0 {
		return nil
	}

	if _, err := insert.RunWith(s.db).ExecContext(ctx); err != nil {
		return fmt.Errorf("insert editor outputs: %w", err)
	}
	return nil
}

// CreatePost persists a drafted post.
func (s *Store) CreatePost(ctx context.Context, post domain.Post) (int64, error) {
	metadata, err := marshalJSON(post.Metadata)
	if err != nil {
		return 0, fmt.Errorf("marshal post metadata: %w", err)
	}

	res, err := s.sb.Insert("posts").
		Columns("session_id", "skill_slug", "platform", "kind", "source", "draft_content", "metadata_json").
		Values(post.SessionID, post.SkillSlug, post.Platform, post.Kind, post.Source, post.DraftContent, metadata).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// ListPendingPostsForToday returns unpublished posts, newest first.
func (s *Store) ListPendingPostsForToday(ctx context.Context) ([]domain.Post, error) {
	return s.queryPosts(ctx, sq.Expr("published_at IS NULL"), "created_at DESC")
}

// ListRecentPublishedPosts returns posts published within the window.
func (s *Store) ListRecentPublishedPosts(ctx context.Context, days int) ([]domain.Post, error) {
	return s.queryPosts(ctx,
		sq.And{
			sq.Expr("published_at IS NOT NULL"),
			sq.Expr("published_at >= datetime('now', ?)", fmt.Sprintf("-%d days", days)),
		},
		"published_at DESC")
}

// MarkPostPublished records publication, making the post eligible for
// metrics collection.
func (s *Store) MarkPostPublished(ctx context.Context, postID int64, tweetID string, publishedAt time.Time) error {
	_, err := s.sb.Update("posts").
		Set("x_tweet_id", tweetID).
		Set("published_at", formatTimestamp(publishedAt)).
		Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"id": postID}).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("mark post %d published: %w", postID, err)
	}
	return nil
}

// AddConversation persists a reply-worthy tweet in pending status.
func (s *Store) AddConversation(ctx context.Context, convo domain.Conversation) (int64, error) {
	res, err := s.sb.Insert("conversations").
		Columns("session_id", "skill_slug", "x_tweet_url", "x_tweet_id", "author_handle",
			"author_followers", "snippet", "reason", "suggested_reply").
		Values(convo.SessionID, convo.SkillSlug, convo.TweetURL, nullIfEmpty(convo.TweetID), convo.AuthorHandle,
			convo.AuthorFollowers, convo.Snippet, convo.Reason, convo.SuggestedReply).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("insert conversation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// ListPendingConversations returns conversations awaiting a reply decision.
func (s *Store) ListPendingConversations(ctx context.Context) ([]domain.Conversation, error) {
	rows, err := s.sb.Select(conversationColumns()...).
		From("conversations").
		Where(sq.Eq{"status": domain.ConversationStatusPending}).
		OrderBy("created_at DESC").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query pending conversations: %w", err)
	}
	defer rows.Close()

	var conversations []domain.Conversation
	for rows.Next() {
		convo, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, convo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}

	return conversations, nil
}

// GetConversationByID returns nil when the id is unknown.
func (s *Store) GetConversationByID(ctx context.Context, id int64) (*domain.Conversation, error) {
	rows, err := s.sb.Select(conversationColumns()...).
		From("conversations").
		Where(sq.Eq{"id": id}).
		Limit(1).
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query conversation %d: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate conversation %d: %w", id, err)
		}
		return nil, nil
	}

	convo, err := scanConversation(rows)
	if err != nil {
		return nil, err
	}
	return &convo, nil
}

// UpdateConversationReply stores a generated reply on the conversation.
func (s *Store) UpdateConversationReply(ctx context.Context, id int64, reply string) error {
	res, err := s.sb.Update("conversations").
		Set("suggested_reply", reply).
		Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"id": id}).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("update conversation %d reply: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update conversation %d reply: %w", id, ErrNotFound)
	}
	return nil
}

// SaveDailyBrief upserts the brief document for the date.
func (s *Store) SaveDailyBrief(ctx context.Context, date, contentMD string, summary map[string]any) error {
	raw, err := marshalJSON(summary)
	if err != nil {
		return fmt.Errorf("marshal brief summary: %w", err)
	}

	_, err = s.sb.Insert("daily_briefs").
		Columns("date", "content_md", "summary_json").
		Values(date, contentMD, raw).
		Suffix(`ON CONFLICT(date) DO UPDATE SET
			content_md = excluded.content_md,
			summary_json = excluded.summary_json`).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("upsert daily brief %s: %w", date, err)
	}
	return nil
}

// GetDailyBrief returns nil when no brief exists for the date.
func (s *Store) GetDailyBrief(ctx context.Context, date string) (*domain.DailyBrief, error) {
	row := s.sb.Select("id", "date", "content_md", "summary_json", "created_at").
		From("daily_briefs").
		Where(sq.Eq{"date": date}).
		RunWith(s.db).
		QueryRowContext(ctx)

	var (
		brief              domain.DailyBrief
		summary, createdAt sql.NullString
	)
	err := row.Scan(&brief.ID, &brief.Date, &brief.ContentMD, &summary, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan daily brief: %w", err)
	}

	if summary.Valid && summary.String != "" {
		if err := json.Unmarshal([]byte(summary.String), &brief.Summary); err != nil {
			return nil, fmt.Errorf("unmarshal brief summary: %w", err)
		}
	}
	brief.CreatedAt = parseTimestamp(createdAt)

	return &brief, nil
}

// InsertMetricsSnapshot records one engagement snapshot for a post.
func (s *Store) InsertMetricsSnapshot(ctx context.Context, postID int64, metrics domain.MetricsData) error {
	raw, err := marshalJSON(metrics.Raw)
	if err != nil {
		return fmt.Errorf("marshal metrics raw: %w", err)
	}

	_, err = s.sb.Insert("metrics_snapshots").
		Columns("post_id", "impressions", "likes", "replies", "retweets", "bookmarks",
			"profile_visits", "link_clicks", "raw_json").
		Values(postID, metrics.Impressions, metrics.Likes, metrics.Replies, metrics.Retweets,
			metrics.Bookmarks, metrics.ProfileVisits, metrics.LinkClicks, raw).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert metrics snapshot: %w", err)
	}
	return nil
}

// AggregateMetricsBetween sums all snapshots captured inside the range.
func (s *Store) AggregateMetricsBetween(ctx context.Context, start, end time.Time) (domain.MetricsTotals, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(impressions), 0),
			COALESCE(SUM(likes), 0),
			COALESCE(SUM(replies), 0),
			COALESCE(SUM(retweets), 0),
			COALESCE(SUM(bookmarks), 0),
			COALESCE(SUM(profile_visits), 0),
			COALESCE(SUM(link_clicks), 0),
			COUNT(*)
		FROM metrics_snapshots
		WHERE captured_at BETWEEN ? AND ?`,
		formatTimestamp(start), formatTimestamp(end))

	var totals domain.MetricsTotals
	if err := row.Scan(&totals.Impressions, &totals.Likes, &totals.Replies, &totals.Retweets,
		&totals.Bookmarks, &totals.ProfileVisits, &totals.LinkClicks, &totals.Snapshots); err != nil {
		return domain.MetricsTotals{}, fmt.Errorf("scan metrics totals: %w", err)
	}

	return totals, nil
}

func (s *Store) queryPosts(ctx context.Context, where sq.Sqlizer, order string) ([]domain.Post, error) {
	rows, err := s.sb.Select("id", "session_id", "skill_slug", "platform", "kind", "source",
		"draft_content", "published_content", "x_tweet_id", "published_at", "metadata_json", "created_at").
		From("posts").
		Where(where).
		OrderBy(order).
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var (
			post                   domain.Post
			sessionID              sql.NullInt64
			slug, published, tweet sql.NullString
			publishedAt, metadata  sql.NullString
			createdAt              sql.NullString
		)
		if err := rows.Scan(&post.ID, &sessionID, &slug, &post.Platform, &post.Kind, &post.Source,
			&post.DraftContent, &published, &tweet, &publishedAt, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}

		post.SessionID = sessionID.Int64
		post.SkillSlug = slug.String
		post.PublishedContent = published.String
		post.XTweetID = tweet.String
		post.CreatedAt = parseTimestamp(createdAt)
		if publishedAt.Valid {
			at := parseTimestamp(publishedAt)
			post.PublishedAt = &at
		}
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &post.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal post metadata: %w", err)
			}
		}

		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, nil
}

func conversationColumns() []string {
	return []string{"id", "session_id", "skill_slug", "x_tweet_url", "x_tweet_id", "author_handle",
		"author_followers", "snippet", "reason", "suggested_reply", "status", "created_at"}
}

func scanConversation(rows *sql.Rows) (domain.Conversation, error) {
	var (
		convo                            domain.Conversation
		sessionID                        sql.NullInt64
		slug, tweetID, handle            sql.NullString
		followers                        sql.NullInt64
		snippet, reason, reply, statusNS sql.NullString
		createdAt                        sql.NullString
	)
	if err := rows.Scan(&convo.ID, &sessionID, &slug, &convo.TweetURL, &tweetID, &handle,
		&followers, &snippet, &reason, &reply, &statusNS, &createdAt); err != nil {
		return domain.Conversation{}, fmt.Errorf("scan conversation: %w", err)
	}

	convo.SessionID = sessionID.Int64
	convo.SkillSlug = slug.String
	convo.TweetID = tweetID.String
	convo.AuthorHandle = handle.String
	convo.AuthorFollowers = int(followers.Int64)
	convo.Snippet = snippet.String
	convo.Reason = reason.String
	convo.SuggestedReply = reply.String
	convo.Status = statusNS.String
	convo.CreatedAt = parseTimestamp(createdAt)

	return convo, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
