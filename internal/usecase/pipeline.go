package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"AgentPipeline/internal/domain"
	"AgentPipeline/internal/fingerprint"
	"AgentPipeline/internal/ports"
	"AgentPipeline/internal/skills"
)

var (
	urlExpr        = regexp.MustCompile(`https?://\S+`)
	whitespaceExpr = regexp.MustCompile(`\s+`)
)

// PipelineDeps wires all driven adapters into the daily pipeline.
type PipelineDeps struct {
	Runs      ports.RunStore
	Content   ports.ContentStore
	Skills    *skills.Registry
	Processor *fingerprint.IncrementalProcessor
	Search    ports.SearchProvider
	Tweets    ports.TweetProvider
	Distiller ports.Distiller
	Drafter   ports.Drafter
	Persona   ports.PersonaContextProvider
	Logger    *slog.Logger

	RecencyDays      int
	MaxConversations int
	Now              func() time.Time
}

// Pipeline implements the daily research-to-draft workflow.
type Pipeline struct {
	runs      ports.RunStore
	content   ports.ContentStore
	skills    *skills.Registry
	processor *fingerprint.IncrementalProcessor
	search    ports.SearchProvider
	tweets    ports.TweetProvider
	distiller ports.Distiller
	drafter   ports.Drafter
	persona   ports.PersonaContextProvider
	logger    *slog.Logger

	recencyDays      int
	maxConversations int
	now              func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		runs:             deps.Runs,
		content:          deps.Content,
		skills:           deps.Skills,
		processor:        deps.Processor,
		search:           deps.Search,
		tweets:           deps.Tweets,
		distiller:        deps.Distiller,
		drafter:          deps.Drafter,
		persona:          deps.Persona,
		logger:           deps.Logger,
		recencyDays:      deps.RecencyDays,
		maxConversations: deps.MaxConversations,
		now:              deps.Now,
	}
	if p.recencyDays <= 0 {
		p.recencyDays = 30
	}
	if p.maxConversations <= 0 {
		p.maxConversations = 5
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// SkillResult is the outcome of one skill's pass, failed or not.
type SkillResult struct {
	Slug          string
	Status        domain.RunStatus
	Posts         int
	Conversations int
	Err           error
}

// Summary aggregates a full daily run across skills.
type Summary struct {
	Date                 string
	SkillsProcessed      int
	SkillsFailed         int
	PostsCreated         int
	ConversationsCreated int
	Skills               []SkillResult
}

// RunDaily executes the pipeline for every active generation skill and
// finishes with the daily brief. A failing skill is recorded in the summary
// and never stops the remaining skills.
func (p *Pipeline) RunDaily(ctx context.Context, runDate string) (Summary, error) {
	if runDate == "" {
		runDate = p.now().UTC().Format("2006-01-02")
	}

	runID := uuid.NewString()
	log := p.logger.With("run_id", runID, "run_date", runDate)

	if _, err := p.skills.SeedMissingSkills(ctx); err != nil {
		return Summary{}, fmt.Errorf("seed missing skills: %w", err)
	}

	active, err := p.skills.ActiveSkills(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list active skills: %w", err)
	}
	if len(active) == 0 {
		if _, err := p.skills.SeedDatabase(ctx); err != nil {
			return Summary{}, fmt.Errorf("seed database: %w", err)
		}
		if active, err = p.skills.ActiveSkills(ctx); err != nil {
			return Summary{}, fmt.Errorf("list active skills: %w", err)
		}
	}

	var internal, generation []domain.Skill
	for _, skill := range active {
		if skill.Type == domain.SkillTypeInternal {
			internal = append(internal, skill)
		} else {
			generation = append(generation, skill)
		}
	}

	internalContext := internalSkillContext(internal)
	personaContext := p.personaContext(ctx, log)

	summary := Summary{Date: runDate}
	for _, skill := range generation {
		result := p.runSkill(ctx, log, runDate, skill, internalContext, personaContext)
		summary.Skills = append(summary.Skills, result)
		if result.Err != nil {
			summary.SkillsFailed++
			log.Error("skill failed", "skill", skill.Slug, "error", result.Err)
			continue
		}
		summary.SkillsProcessed++
		summary.PostsCreated += result.Posts
		summary.ConversationsCreated += result.Conversations
	}

	// The brief runs even when every skill failed; it reports on whatever
	// state the store holds.
	brief := NewBriefGenerator(p.content, p.now)
	if _, err := brief.GenerateAndSave(ctx, runDate); err != nil {
		return summary, fmt.Errorf("daily brief: %w", err)
	}

	log.Info("daily pipeline done",
		"skills_processed", summary.SkillsProcessed,
		"skills_failed", summary.SkillsFailed,
		"posts_created", summary.PostsCreated,
		"conversations_created", summary.ConversationsCreated)
	return summary, nil
}

func (p *Pipeline) runSkill(ctx context.Context, log *slog.Logger, runDate string, skill domain.Skill, internalContext, personaContext string) SkillResult {
	result := SkillResult{Slug: skill.Slug}

	query := fmt.Sprintf("%s (last %d days)", skill.ResearchQuery(), p.recencyDays)
	sessionName := fmt.Sprintf("%s - %s - daily run", runDate, skill.Slug)

	sessionID, err := p.content.CreateSession(ctx, sessionName, query, skill.Name, skill.Description())
	if err != nil {
		result.Err = fmt.Errorf("create session: %w", err)
		return result
	}

	runID, err := p.runs.CreateProcessingRun(ctx, runDate, sessionID)
	if err != nil {
		result.Err = fmt.Errorf("create processing run: %w", err)
		return result
	}

	searchResults, rawSearch, tweets, rawTweets, err := p.fetchResearch(ctx, query)
	if err != nil {
		result.Err = err
		return result
	}

	if err := p.content.SaveSearchResults(ctx, sessionID, searchResults, rawSearch); err != nil {
		result.Err = fmt.Errorf("save search results: %w", err)
		return result
	}
	if err := p.content.SaveTweetResults(ctx, sessionID, tweets, rawTweets); err != nil {
		result.Err = fmt.Errorf("save tweet results: %w", err)
		return result
	}

	searchBatch, err := p.processor.ProcessSearchResults(ctx, searchResults, rawSearch)
	if err != nil {
		result.Err = fmt.Errorf("process search results: %w", err)
		return result
	}
	tweetBatch, err := p.processor.ProcessTweets(ctx, tweets, rawTweets)
	if err != nil {
		result.Err = fmt.Errorf("process tweets: %w", err)
		return result
	}

	recentTweets, assumedRecent := filterRecent(tweetBatch.NewResults, p.recencyDays, p.now())
	if assumedRecent > 0 {
		log.Warn("tweets with unparseable timestamps treated as recent",
			"skill", skill.Slug, "count", assumedRecent)
	}

	counters := domain.RunCounters{
		NewSearchResults:  len(searchBatch.NewResults),
		NewTweets:         len(recentTweets),
		DuplicatesSkipped: searchBatch.DuplicateCount + tweetBatch.DuplicateCount,
	}

	items := make([]domain.ResearchItem, 0, len(searchBatch.NewResults)+len(recentTweets))
	for _, r := range searchBatch.NewResults {
		items = append(items, domain.ItemFromSearchResult(r))
	}
	for _, t := range recentTweets {
		items = append(items, domain.ItemFromTweet(t))
	}

	if len(items) == 0 {
		if err := p.runs.UpdateProcessingRun(ctx, runID, domain.RunStatusCompletedNoNewContent, counters); err != nil {
			result.Err = fmt.Errorf("finalize run: %w", err)
			return result
		}
		result.Status = domain.RunStatusCompletedNoNewContent
		log.Info("no new content", "skill", skill.Slug, "duplicates_skipped", counters.DuplicatesSkipped)
		return result
	}

	auxContext := joinContext(skill.ContextSummary(), personaContext, internalContext)

	distilled, rawReview, err := p.distiller.Distill(ctx, items, skill.Name, skill.Description(), auxContext)
	if err != nil {
		result.Err = fmt.Errorf("distill: %w", err)
		return result
	}
	if err := p.content.SaveReviewerOutput(ctx, sessionID, distilled, rawReview); err != nil {
		result.Err = fmt.Errorf("save reviewer output: %w", err)
		return result
	}

	drafts, err := p.drafter.DraftPosts(ctx, distilled, skill.Name, skill.Description(), auxContext)
	if err != nil {
		result.Err = fmt.Errorf("draft posts: %w", err)
		return result
	}
	if err := p.content.SaveEditorOutputs(ctx, sessionID, drafts); err != nil {
		result.Err = fmt.Errorf("save editor outputs: %w", err)
		return result
	}

	for _, draft := range drafts {
		if draft.Err != nil {
			log.Warn("draft failed", "skill", skill.Slug, "topic", draft.Topic, "error", draft.Err)
			continue
		}
		if draft.Body == "" {
			continue
		}
		_, err := p.content.CreatePost(ctx, domain.Post{
			SessionID:    sessionID,
			SkillSlug:    skill.Slug,
			Platform:     "x",
			Kind:         "short_post",
			Source:       "agent",
			DraftContent: draft.Body,
			Metadata:     map[string]any{"topic": draft.Topic},
		})
		if err != nil {
			result.Err = fmt.Errorf("create post: %w", err)
			return result
		}
		result.Posts++
	}
	counters.ContentGenerated = result.Posts

	replyStyle := skill.ConfigString("reply_style")
	for i, tweet := range recentTweets {
		if i >= p.maxConversations {
			break
		}
		snippet := tweet.Snippet
		_, err := p.content.AddConversation(ctx, domain.Conversation{
			SessionID:       sessionID,
			SkillSlug:       skill.Slug,
			TweetURL:        tweet.URL,
			AuthorHandle:    tweet.ScreenName,
			AuthorFollowers: tweet.FollowersCount,
			Snippet:         snippet,
			Reason:          "High-signal tweet from skill query",
			SuggestedReply:  buildSuggestedReply(snippet, replyStyle),
		})
		if err != nil {
			result.Err = fmt.Errorf("add conversation: %w", err)
			return result
		}
		result.Conversations++
	}

	ids := append(searchBatch.NewFingerprintIDs, tweetBatch.NewFingerprintIDs...)
	if err := p.processor.MarkProcessed(ctx, ids); err != nil {
		result.Err = fmt.Errorf("mark processed: %w", err)
		return result
	}

	if err := p.runs.UpdateProcessingRun(ctx, runID, domain.RunStatusCompleted, counters); err != nil {
		result.Err = fmt.Errorf("finalize run: %w", err)
		return result
	}
	result.Status = domain.RunStatusCompleted

	log.Info("skill done", "skill", skill.Slug,
		"posts", result.Posts, "conversations", result.Conversations,
		"duplicates_skipped", counters.DuplicatesSkipped)
	return result
}

// fetchResearch runs the web and tweet searches concurrently.
func (p *Pipeline) fetchResearch(ctx context.Context, query string) ([]domain.SearchResult, string, []domain.Tweet, string, error) {
	var (
		wg sync.WaitGroup

		searchResults []domain.SearchResult
		rawSearch     string
		searchErr     error

		tweets    []domain.Tweet
		rawTweets string
		tweetErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		searchResults, rawSearch, searchErr = p.search.Search(ctx, query)
	}()
	go func() {
		defer wg.Done()
		tweets, rawTweets, tweetErr = p.tweets.SearchTweets(ctx, query)
	}()
	wg.Wait()

	if searchErr != nil {
		return nil, "", nil, "", fmt.Errorf("web search: %w", searchErr)
	}
	if tweetErr != nil {
		return nil, "", nil, "", fmt.Errorf("tweet search: %w", tweetErr)
	}
	return searchResults, rawSearch, tweets, rawTweets, nil
}

func (p *Pipeline) personaContext(ctx context.Context, log *slog.Logger) string {
	if p.persona == nil {
		return ""
	}
	context, err := p.persona.PersonaContext(ctx)
	if err != nil {
		log.Warn("persona context unavailable", "error", err)
		return ""
	}
	return context
}

func internalSkillContext(internal []domain.Skill) string {
	if len(internal) == 0 {
		return ""
	}

	keys := []string{
		"description", "values", "voice_notes", "lexicon", "avoid",
		"pillars", "style_constraints", "grounding_procedure", "brand_manifesto_md",
	}

	chunks := []string{"Internal skills context:"}
	for _, skill := range internal {
		lines := []string{fmt.Sprintf("Internal skill: %s (%s)", skill.Slug, skill.Name)}
		for _, key := range keys {
			if value, ok := skill.Config[key]; ok {
				lines = append(lines, fmt.Sprintf("%s: %v", key, value))
			}
		}
		chunks = append(chunks, strings.Join(lines, "\n"))
	}
	return strings.Join(chunks, "\n\n")
}

func joinContext(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

func cleanSnippet(snippet string) string {
	cleaned := urlExpr.ReplaceAllString(snippet, "")
	return strings.TrimSpace(whitespaceExpr.ReplaceAllString(cleaned, " "))
}

// buildSuggestedReply composes a local placeholder reply; the reply command
// swaps it for a model-written one on demand.
func buildSuggestedReply(snippet, replyStyle string) string {
	cleaned := cleanSnippet(snippet)

	anchor := cleaned
	if idx := strings.Index(cleaned, "."); idx >= 0 {
		anchor = strings.TrimSpace(cleaned[:idx])
	}

	opener := "Appreciate you sharing this."
	if anchor != "" {
		opener = fmt.Sprintf("Interesting take on %s.", strings.ToLower(anchor))
	}

	closer := "Curious how you decide what belongs in the core workflow vs what gets split out?"
	if replyStyle != "" && strings.ContainsAny(replyStyle[len(replyStyle)-1:], ".?!") {
		closer = replyStyle
	}

	return opener + " " + closer
}
