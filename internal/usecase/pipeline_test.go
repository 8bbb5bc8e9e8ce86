package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"AgentPipeline/internal/domain"
	"AgentPipeline/internal/fingerprint"
	"AgentPipeline/internal/skills"
)

// memSkillStore mirrors the sqlite skill ordering: priority desc, name asc.
type memSkillStore struct {
	rows []domain.Skill
}

func (m *memSkillStore) ListSkills(_ context.Context, includeInactive bool) ([]domain.Skill, error) {
	out := make([]domain.Skill, 0, len(m.rows))
	for _, s := range m.rows {
		if !includeInactive && s.Status != domain.SkillStatusActive {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *memSkillStore) GetSkillBySlug(_ context.Context, slug string) (*domain.Skill, error) {
	for i := range m.rows {
		if m.rows[i].Slug == slug {
			row := m.rows[i]
			return &row, nil
		}
	}
	return nil, nil
}

func (m *memSkillStore) UpsertSkill(_ context.Context, skill domain.Skill) error {
	for i := range m.rows {
		if m.rows[i].Slug == skill.Slug {
			skill.ID = m.rows[i].ID
			m.rows[i] = skill
			return nil
		}
	}
	skill.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, skill)
	return nil
}

func (m *memSkillStore) UpdateSkillConfig(_ context.Context, slug string, config map[string]any) error {
	for i := range m.rows {
		if m.rows[i].Slug == slug {
			m.rows[i].Config = config
			return nil
		}
	}
	return fmt.Errorf("skill %s not found", slug)
}

type runRecord struct {
	id       int64
	status   domain.RunStatus
	counters domain.RunCounters
	done     bool
}

type memRuns struct {
	runs []*runRecord
}

func (m *memRuns) CreateProcessingRun(_ context.Context, _ string, _ int64) (int64, error) {
	rec := &runRecord{id: int64(len(m.runs) + 1), status: domain.RunStatusRunning}
	m.runs = append(m.runs, rec)
	return rec.id, nil
}

func (m *memRuns) UpdateProcessingRun(_ context.Context, runID int64, status domain.RunStatus, counters domain.RunCounters) error {
	for _, rec := range m.runs {
		if rec.id == runID {
			rec.status = status
			rec.counters = counters
			rec.done = status.Terminal()
			return nil
		}
	}
	return fmt.Errorf("run %d not found", runID)
}

func (m *memRuns) LatestProcessingRun(_ context.Context) (*domain.ProcessingRun, error) {
	if len(m.runs) == 0 {
		return nil, nil
	}
	rec := m.runs[len(m.runs)-1]
	return &domain.ProcessingRun{ID: rec.id, Status: rec.status, Counters: rec.counters}, nil
}

type memContent struct {
	sessions      int64
	searchSaves   int
	tweetSaves    int
	reviewerSaves int
	editorSaves   int
	posts         []domain.Post
	conversations []domain.Conversation
	briefs        map[string]string
	snapshots     []domain.MetricsData
}

func newMemContent() *memContent {
	return &memContent{briefs: map[string]string{}}
}

func (m *memContent) CreateSession(_ context.Context, _, _, _, _ string) (int64, error) {
	m.sessions++
	return m.sessions, nil
}

func (m *memContent) SaveSearchResults(_ context.Context, _ int64, results []domain.SearchResult, _ string) error {
	m.searchSaves += len(results)
	return nil
}

func (m *memContent) SaveTweetResults(_ context.Context, _ int64, tweets []domain.Tweet, _ string) error {
	m.tweetSaves += len(tweets)
	return nil
}

func (m *memContent) SaveReviewerOutput(_ context.Context, _ int64, _ domain.Distilled, _ string) error {
	m.reviewerSaves++
	return nil
}

func (m *memContent) SaveEditorOutputs(_ context.Context, _ int64, drafts []domain.DraftResult) error {
	for _, draft := range drafts {
		if draft.Err == nil && draft.Body != "" {
			m.editorSaves++
		}
	}
	return nil
}

func (m *memContent) CreatePost(_ context.Context, post domain.Post) (int64, error) {
	post.ID = int64(len(m.posts) + 1)
	m.posts = append(m.posts, post)
	return post.ID, nil
}

func (m *memContent) ListPendingPostsForToday(_ context.Context) ([]domain.Post, error) {
	var out []domain.Post
	for _, p := range m.posts {
		if p.PublishedAt == nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memContent) MarkPostPublished(_ context.Context, postID int64, tweetID string, publishedAt time.Time) error {
	for i := range m.posts {
		if m.posts[i].ID == postID {
			m.posts[i].XTweetID = tweetID
			m.posts[i].PublishedAt = &publishedAt
			return nil
		}
	}
	return errors.New("post not found")
}

func (m *memContent) ListRecentPublishedPosts(_ context.Context, _ int) ([]domain.Post, error) {
	var out []domain.Post
	for _, p := range m.posts {
		if p.PublishedAt != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memContent) AddConversation(_ context.Context, convo domain.Conversation) (int64, error) {
	convo.ID = int64(len(m.conversations) + 1)
	convo.Status = domain.ConversationStatusPending
	m.conversations = append(m.conversations, convo)
	return convo.ID, nil
}

func (m *memContent) ListPendingConversations(_ context.Context) ([]domain.Conversation, error) {
	var out []domain.Conversation
	for _, c := range m.conversations {
		if c.Status == domain.ConversationStatusPending {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memContent) GetConversationByID(_ context.Context, id int64) (*domain.Conversation, error) {
	for i := range m.conversations {
		if m.conversations[i].ID == id {
			c := m.conversations[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memContent) UpdateConversationReply(_ context.Context, id int64, reply string) error {
	for i := range m.conversations {
		if m.conversations[i].ID == id {
			m.conversations[i].SuggestedReply = reply
			return nil
		}
	}
	return fmt.Errorf("conversation %d not found", id)
}

func (m *memContent) SaveDailyBrief(_ context.Context, date, contentMD string, _ map[string]any) error {
	m.briefs[date] = contentMD
	return nil
}

func (m *memContent) GetDailyBrief(_ context.Context, date string) (*domain.DailyBrief, error) {
	md, ok := m.briefs[date]
	if !ok {
		return nil, nil
	}
	return &domain.DailyBrief{Date: date, ContentMD: md}, nil
}

func (m *memContent) InsertMetricsSnapshot(_ context.Context, _ int64, metrics domain.MetricsData) error {
	m.snapshots = append(m.snapshots, metrics)
	return nil
}

func (m *memContent) AggregateMetricsBetween(_ context.Context, _, _ time.Time) (domain.MetricsTotals, error) {
	totals := domain.MetricsTotals{Snapshots: len(m.snapshots)}
	for _, s := range m.snapshots {
		totals.Impressions += s.Impressions
		totals.Likes += s.Likes
		totals.Replies += s.Replies
		totals.Retweets += s.Retweets
	}
	return totals, nil
}

// memFingerprints replicates the sqlite conflict semantics in memory.
type memFingerprints struct {
	rows   []domain.Fingerprint
	nextID int64
}

func (f *memFingerprints) CheckFingerprint(_ context.Context, contentType, primaryIdentifier string) (*domain.Fingerprint, error) {
	for i := range f.rows {
		if f.rows[i].ContentType == contentType && f.rows[i].PrimaryIdentifier == primaryIdentifier {
			row := f.rows[i]
			return &row, nil
		}
	}
	return nil, nil
}

func (f *memFingerprints) CheckFingerprintByHash(_ context.Context, contentHash string) (*domain.Fingerprint, error) {
	for i := range f.rows {
		if f.rows[i].ContentHash == contentHash {
			row := f.rows[i]
			return &row, nil
		}
	}
	return nil, nil
}

func (f *memFingerprints) SaveFingerprint(ctx context.Context, fp domain.Fingerprint) (int64, bool, error) {
	if existing, _ := f.CheckFingerprint(ctx, fp.ContentType, fp.PrimaryIdentifier); existing != nil {
		return existing.ID, false, nil
	}
	f.nextID++
	fp.ID = f.nextID
	f.rows = append(f.rows, fp)
	return fp.ID, true, nil
}

func (f *memFingerprints) UpdateFingerprintStatus(_ context.Context, id int64, status string) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].ProcessingStatus = status
			return nil
		}
	}
	return fmt.Errorf("fingerprint %d not found", id)
}

type stubSearch struct {
	results  []domain.SearchResult
	failFor  string
	requests []string
}

func (s *stubSearch) Search(_ context.Context, query string) ([]domain.SearchResult, string, error) {
	s.requests = append(s.requests, query)
	if s.failFor != "" && strings.Contains(query, s.failFor) {
		return nil, "", fmt.Errorf("provider unavailable")
	}
	return s.results, "raw-search", nil
}

type stubTweets struct {
	tweets []domain.Tweet
}

func (s *stubTweets) SearchTweets(_ context.Context, _ string) ([]domain.Tweet, string, error) {
	return s.tweets, "raw-tweets", nil
}

type stubDistiller struct {
	calls     int
	distilled domain.Distilled
}

func (s *stubDistiller) Distill(_ context.Context, _ []domain.ResearchItem, _, _, _ string) (domain.Distilled, string, error) {
	s.calls++
	return s.distilled, "raw-review", nil
}

type stubDrafter struct {
	calls   int
	results []domain.DraftResult
}

func (s *stubDrafter) DraftPosts(_ context.Context, _ domain.Distilled, _, _, _ string) ([]domain.DraftResult, error) {
	s.calls++
	return s.results, nil
}

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skills_seed.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

const pipelineSeed = `[
  {
    "slug": "alpha",
    "name": "Alpha",
    "type": "generation",
    "priority": 0.8,
    "description": "alpha topics",
    "research_queries": ["alpha query"],
    "reply_style": "What would you cut first?"
  },
  {
    "slug": "personal_brand",
    "name": "Personal Brand",
    "type": "internal",
    "priority": 0.9,
    "description": "brand voice",
    "reply_style": "direct",
    "values": ["clarity"]
  }
]`

type pipelineFixture struct {
	pipeline  *Pipeline
	runs      *memRuns
	content   *memContent
	fps       *memFingerprints
	search    *stubSearch
	tweets    *stubTweets
	distiller *stubDistiller
	drafter   *stubDrafter
	registry  *skills.Registry
}

func newPipelineFixture(t *testing.T, seed string) *pipelineFixture {
	t.Helper()

	now := func() time.Time {
		return time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	}

	f := &pipelineFixture{
		runs:    &memRuns{},
		content: newMemContent(),
		fps:     &memFingerprints{},
		search: &stubSearch{results: []domain.SearchResult{
			{URL: "https://example.org/a", Snippet: "article about alpha"},
			{URL: "https://example.org/b", Snippet: "another angle on alpha"},
		}},
		tweets: &stubTweets{tweets: []domain.Tweet{
			{URL: "https://x.com/u1/status/100", Snippet: "fresh alpha tweet. more detail.", ScreenName: "u1", FollowersCount: 1000, CreatedAt: "2026-03-10T00:00:00Z"},
			{URL: "https://x.com/u2/status/200", Snippet: "stale tweet", ScreenName: "u2", CreatedAt: "2025-01-01T00:00:00Z"},
		}},
		distiller: &stubDistiller{distilled: domain.Distilled{
			Topics:        []string{"topic one", "topic two", "topic three"},
			TalkingPoints: []string{"a point"},
		}},
		drafter: &stubDrafter{results: []domain.DraftResult{
			{Topic: "topic one", Body: "a drafted post"},
			{Topic: "topic two", Err: fmt.Errorf("model refused")},
			{Topic: "topic three", Body: ""},
		}},
	}

	f.registry = skills.NewRegistry(&memSkillStore{}, writeSeed(t, seed), nil)

	f.pipeline = NewPipeline(PipelineDeps{
		Runs:             f.runs,
		Content:          f.content,
		Skills:           f.registry,
		Processor:        fingerprint.NewIncrementalProcessor(f.fps, nil),
		Search:           f.search,
		Tweets:           f.tweets,
		Distiller:        f.distiller,
		Drafter:          f.drafter,
		RecencyDays:      30,
		MaxConversations: 5,
		Now:              now,
	})
	return f
}

func TestRunDailyHappyPath(t *testing.T) {
	t.Parallel()

	f := newPipelineFixture(t, pipelineSeed)
	summary, err := f.pipeline.RunDaily(context.Background(), "2026-03-14")
	if err != nil {
		t.Fatalf("RunDaily error: %v", err)
	}

	if summary.SkillsProcessed != 1 {
		t.Fatalf("skills processed = %d, want 1", summary.SkillsProcessed)
	}
	if summary.PostsCreated != 1 {
		t.Fatalf("posts created = %d, want 1 (failed and empty drafts are skipped)", summary.PostsCreated)
	}
	if summary.ConversationsCreated != 1 {
		t.Fatalf("conversations created = %d, want 1 (stale tweet filtered)", summary.ConversationsCreated)
	}

	run, err := f.runs.LatestProcessingRun(context.Background())
	if err != nil || run == nil {
		t.Fatalf("latest run: %v %v", run, err)
	}
	if run.Status != domain.RunStatusCompleted {
		t.Fatalf("run status = %s, want completed", run.Status)
	}
	want := domain.RunCounters{NewSearchResults: 2, NewTweets: 1, DuplicatesSkipped: 0, ContentGenerated: 1}
	if run.Counters != want {
		t.Fatalf("counters = %+v, want %+v", run.Counters, want)
	}

	// Raw rows are stored for every fetched item, filtered or not.
	if f.content.searchSaves != 2 || f.content.tweetSaves != 2 {
		t.Fatalf("raw rows: %d search %d tweets, want 2 and 2", f.content.searchSaves, f.content.tweetSaves)
	}
	if f.content.reviewerSaves != 1 {
		t.Fatalf("reviewer outputs saved = %d, want 1", f.content.reviewerSaves)
	}
	if f.content.editorSaves != summary.PostsCreated {
		t.Fatalf("editor outputs saved = %d, want %d", f.content.editorSaves, summary.PostsCreated)
	}

	for _, row := range f.fps.rows {
		if row.ProcessingStatus != domain.FingerprintStatusProcessed {
			t.Fatalf("fingerprint %d left in %s", row.ID, row.ProcessingStatus)
		}
	}

	if _, ok := f.content.briefs["2026-03-14"]; !ok {
		t.Fatalf("daily brief was not saved")
	}

	convo := f.content.conversations[0]
	if convo.Reason != "High-signal tweet from skill query" {
		t.Fatalf("unexpected reason: %s", convo.Reason)
	}
	if !strings.HasSuffix(convo.SuggestedReply, "What would you cut first?") {
		t.Fatalf("reply_style closer not used: %q", convo.SuggestedReply)
	}
}

func TestRunDailySecondPassExitsEarly(t *testing.T) {
	t.Parallel()

	f := newPipelineFixture(t, pipelineSeed)
	ctx := context.Background()

	if _, err := f.pipeline.RunDaily(ctx, "2026-03-14"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	distillCalls := f.distiller.calls
	draftCalls := f.drafter.calls

	summary, err := f.pipeline.RunDaily(ctx, "2026-03-15")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if f.distiller.calls != distillCalls || f.drafter.calls != draftCalls {
		t.Fatalf("model collaborators were called on an all-duplicate batch")
	}

	run, _ := f.runs.LatestProcessingRun(ctx)
	if run.Status != domain.RunStatusCompletedNoNewContent {
		t.Fatalf("run status = %s, want completed_no_new_content", run.Status)
	}
	if run.Counters.DuplicatesSkipped != 4 {
		t.Fatalf("duplicates skipped = %d, want 4", run.Counters.DuplicatesSkipped)
	}
	if run.Counters.ContentGenerated != 0 {
		t.Fatalf("content generated = %d, want 0", run.Counters.ContentGenerated)
	}
	if summary.PostsCreated != 0 {
		t.Fatalf("posts created = %d, want 0", summary.PostsCreated)
	}
	if _, ok := f.content.briefs["2026-03-15"]; !ok {
		t.Fatalf("brief must run even without new content")
	}
}

func TestRunDailySkillFailureIsIsolated(t *testing.T) {
	t.Parallel()

	seed := `[
	  {"slug": "alpha", "name": "Alpha", "type": "generation", "priority": 0.8,
	   "description": "alpha topics", "research_queries": ["alpha query"]},
	  {"slug": "beta", "name": "Beta", "type": "generation", "priority": 0.4,
	   "description": "beta topics", "research_queries": ["beta query"]}
	]`

	f := newPipelineFixture(t, seed)
	f.search.failFor = "alpha query"

	summary, err := f.pipeline.RunDaily(context.Background(), "2026-03-14")
	if err != nil {
		t.Fatalf("RunDaily error: %v", err)
	}

	if len(summary.Skills) != 2 {
		t.Fatalf("expected 2 skill results, got %d", len(summary.Skills))
	}
	if summary.Skills[0].Slug != "alpha" || summary.Skills[0].Err == nil {
		t.Fatalf("alpha should fail: %+v", summary.Skills[0])
	}
	if summary.Skills[1].Slug != "beta" || summary.Skills[1].Err != nil {
		t.Fatalf("beta should succeed: %+v", summary.Skills[1])
	}
	if summary.SkillsProcessed != 1 {
		t.Fatalf("skills processed = %d, want 1", summary.SkillsProcessed)
	}
	if summary.SkillsFailed != 1 {
		t.Fatalf("skills failed = %d, want 1", summary.SkillsFailed)
	}
	if _, ok := f.content.briefs["2026-03-14"]; !ok {
		t.Fatalf("brief must run after a failed skill")
	}
}

func TestFilterRecent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	tweets := []domain.Tweet{
		{Snippet: "recent rfc3339", CreatedAt: "2026-03-10T00:00:00Z"},
		{Snippet: "recent twitter format", CreatedAt: "Fri Mar 13 10:00:00 +0000 2026"},
		{Snippet: "old", CreatedAt: "2025-06-01 00:00:00"},
		{Snippet: "unparseable", CreatedAt: "yesterday-ish"},
		{Snippet: "empty", CreatedAt: ""},
	}

	recent, assumed := filterRecent(tweets, 30, now)
	if len(recent) != 4 {
		t.Fatalf("recent = %d, want 4", len(recent))
	}
	if assumed != 2 {
		t.Fatalf("assumed recent = %d, want 2 (unparseable and empty)", assumed)
	}
	for _, tweet := range recent {
		if tweet.Snippet == "old" {
			t.Fatalf("stale tweet survived the filter")
		}
	}
}

func TestBuildSuggestedReply(t *testing.T) {
	t.Parallel()

	reply := buildSuggestedReply("Shipping fast beats planning. https://example.org/x more words", "What would you cut first?")
	if !strings.HasPrefix(reply, "Interesting take on shipping fast beats planning.") {
		t.Fatalf("unexpected opener: %q", reply)
	}
	if strings.Contains(reply, "https://") {
		t.Fatalf("url survived snippet cleaning: %q", reply)
	}
	if !strings.HasSuffix(reply, "What would you cut first?") {
		t.Fatalf("style closer not used: %q", reply)
	}

	fallback := buildSuggestedReply("", "no terminal punctuation")
	if !strings.HasPrefix(fallback, "Appreciate you sharing this.") {
		t.Fatalf("unexpected fallback opener: %q", fallback)
	}
	if !strings.HasSuffix(fallback, "core workflow vs what gets split out?") {
		t.Fatalf("default closer not used when style lacks punctuation: %q", fallback)
	}
}

func TestBriefGeneratorRendersSections(t *testing.T) {
	t.Parallel()

	content := newMemContent()
	ctx := context.Background()

	_, _ = content.CreatePost(ctx, domain.Post{SkillSlug: "alpha", Kind: "short_post", DraftContent: "pending draft body"})
	_, _ = content.CreatePost(ctx, domain.Post{SkillSlug: "alpha", Kind: "short_post", DraftContent: strings.Repeat("long body ", 30)})
	_, _ = content.AddConversation(ctx, domain.Conversation{SkillSlug: "alpha", Snippet: "worth a reply", TweetURL: "https://x.com/u/status/5"})
	_ = content.InsertMetricsSnapshot(ctx, 1, domain.MetricsData{Impressions: 40, Likes: 4})

	gen := NewBriefGenerator(content, nil)
	md, err := gen.GenerateAndSave(ctx, "2026-03-14")
	if err != nil {
		t.Fatalf("GenerateAndSave error: %v", err)
	}

	for _, want := range []string{
		"# Daily Brief - 2026-03-14",
		"## What happened yesterday",
		"Impressions: 40",
		"## Publish these",
		"pending draft body",
		"## Join these conversations",
		"https://x.com/u/status/5",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("brief missing %q:\n%s", want, md)
		}
	}

	// Only previews that were actually cut carry the ellipsis.
	if strings.Contains(md, "pending draft body...") {
		t.Fatalf("short post preview gained a stray ellipsis:\n%s", md)
	}
	if strings.Contains(md, "worth a reply...") {
		t.Fatalf("short conversation preview gained a stray ellipsis:\n%s", md)
	}
	if !strings.Contains(md, "long body ...") {
		t.Fatalf("truncated preview lost its ellipsis:\n%s", md)
	}

	if _, ok := content.briefs["2026-03-14"]; !ok {
		t.Fatalf("brief was not stored")
	}
}

type stubMetricsSource struct {
	data map[int64]*domain.MetricsData
}

func (s *stubMetricsSource) FetchPostMetrics(_ context.Context, post domain.Post) (*domain.MetricsData, error) {
	return s.data[post.ID], nil
}

func TestMetricsUpdaterSkipsPostsWithoutData(t *testing.T) {
	t.Parallel()

	content := newMemContent()
	ctx := context.Background()
	published := time.Now().UTC()

	id1, _ := content.CreatePost(ctx, domain.Post{DraftContent: "a"})
	_, _ = content.CreatePost(ctx, domain.Post{DraftContent: "b"})
	content.posts[0].PublishedAt = &published
	content.posts[0].XTweetID = "111"
	content.posts[1].PublishedAt = &published
	content.posts[1].XTweetID = "222"

	source := &stubMetricsSource{data: map[int64]*domain.MetricsData{
		id1: {Impressions: 10, Likes: 1},
	}}

	written, err := NewMetricsUpdater(content, source, nil).Run(ctx, 14)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if written != 1 {
		t.Fatalf("snapshots written = %d, want 1", written)
	}
	if len(content.snapshots) != 1 {
		t.Fatalf("stored snapshots = %d, want 1", len(content.snapshots))
	}
}

type stubReplier struct {
	reply string
}

func (s *stubReplier) GenerateReply(_ context.Context, _ domain.Conversation, _ map[string]any, _ []string) (string, error) {
	return s.reply, nil
}

func TestReplyGeneratorStoresReply(t *testing.T) {
	t.Parallel()

	content := newMemContent()
	ctx := context.Background()

	id, _ := content.AddConversation(ctx, domain.Conversation{SkillSlug: "alpha", Snippet: "snippet"})
	registry := skills.NewRegistry(&memSkillStore{}, writeSeed(t, pipelineSeed), nil)

	gen := NewReplyGenerator(content, registry, &stubReplier{reply: "a sharper reply?"})
	reply, err := gen.GenerateFor(ctx, id)
	if err != nil {
		t.Fatalf("GenerateFor error: %v", err)
	}
	if reply != "a sharper reply?" {
		t.Fatalf("unexpected reply: %q", reply)
	}

	convo, _ := content.GetConversationByID(ctx, id)
	if convo.SuggestedReply != "a sharper reply?" {
		t.Fatalf("reply not stored: %q", convo.SuggestedReply)
	}

	if _, err := gen.GenerateFor(ctx, 999); err == nil {
		t.Fatalf("expected error for unknown conversation")
	}
}
