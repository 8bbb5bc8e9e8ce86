package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"AgentPipeline/internal/config"
	"AgentPipeline/internal/fingerprint"
	"AgentPipeline/internal/infrastructure/analytics"
	"AgentPipeline/internal/infrastructure/llm"
	"AgentPipeline/internal/infrastructure/social"
	"AgentPipeline/internal/infrastructure/telegram"
	"AgentPipeline/internal/infrastructure/websearch"
	"AgentPipeline/internal/logging"
	"AgentPipeline/internal/research"
	"AgentPipeline/internal/skills"
	"AgentPipeline/internal/storage"
	"AgentPipeline/internal/usecase"
)

// Application wires config to storage, adapters and use cases.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *storage.Store
	registry *skills.Registry
	pipeline *usecase.Pipeline
	metrics  *usecase.MetricsUpdater
	replies  *usecase.ReplyGenerator
	notifier *telegram.Notifier
}

// New builds a runnable application instance. The skills seed file must
// exist; a pipeline without skills has nothing to do.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	if _, err := os.Stat(cfg.Skills.SeedPath); err != nil {
		return nil, fmt.Errorf("skills seed file %s: %w", cfg.Skills.SeedPath, err)
	}
	if err := checkCredentials(cfg); err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	registry := skills.NewRegistry(store, cfg.Skills.SeedPath, baseLogger.With("component", "skills"))

	scanners := research.NewRegistry()
	scanners.Register(websearch.NewAPIScanner(nil, cfg.Research.Web.Endpoint, cfg.Research.Web.APIKey, cfg.Research.Web.Model))
	scanners.Register(websearch.NewSERPScanner(nil, cfg.Research.Web.Endpoint))

	source := websearch.NewStrategySource(scanners, cfg.Research.Web, baseLogger.With("component", "websearch"))
	tweetSource := social.NewClient(nil, cfg.Research.Social)

	chat := llm.NewChatClient(cfg.LLM)
	processor := fingerprint.NewIncrementalProcessor(store, baseLogger.With("component", "fingerprints"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Runs:             store,
		Content:          store,
		Skills:           registry,
		Processor:        processor,
		Search:           source,
		Tweets:           tweetSource,
		Distiller:        llm.NewDistiller(chat),
		Drafter:          llm.NewDrafter(chat),
		Persona:          registry,
		Logger:           baseLogger.With("component", "pipeline"),
		RecencyDays:      cfg.Pipeline.RecencyDays,
		MaxConversations: cfg.Pipeline.MaxConversations,
	})

	metricsSource := analytics.NewClient(cfg.Analytics.Endpoint, cfg.Analytics.APIKey)
	notifier := telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		store:    store,
		registry: registry,
		pipeline: pipeline,
		metrics:  usecase.NewMetricsUpdater(store, metricsSource, baseLogger.With("component", "metrics")),
		replies:  usecase.NewReplyGenerator(store, registry, llm.NewReplier(chat)),
		notifier: notifier,
	}, nil
}

// checkCredentials rejects a config whose enabled collaborators cannot
// authenticate, before any pipeline work starts. The SERP strategy scrapes
// without a key; Telegram and analytics stay optional.
func checkCredentials(cfg config.Config) error {
	var missing []string
	if cfg.Research.Web.Strategy == "api" && cfg.Research.Web.APIKey == "" {
		missing = append(missing, "search api key")
	}
	if cfg.Research.Social.APIKey == "" {
		missing = append(missing, "rapidapi key")
	}
	if cfg.LLM.APIKey == "" {
		missing = append(missing, "llm api key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Close releases the database handle.
func (a *Application) Close() error {
	return a.store.Close()
}

// RunDaily executes the full daily pipeline and, when Telegram is
// configured, delivers the brief. Delivery failures are logged, not fatal;
// the brief is already persisted.
func (a *Application) RunDaily(ctx context.Context, date string) (usecase.Summary, error) {
	summary, err := a.pipeline.RunDaily(ctx, date)
	if err != nil {
		return summary, err
	}

	if a.notifier.Configured() {
		brief, err := a.store.GetDailyBrief(ctx, summary.Date)
		if err != nil {
			a.logger.Warn("load brief for delivery", "error", err)
		} else if brief != nil {
			if err := a.notifier.PublishBrief(ctx, brief.ContentMD); err != nil {
				a.logger.Warn("brief delivery failed", "error", err)
			}
		}
	}

	return summary, nil
}

// UpdateMetrics snapshots engagement for recently published posts.
func (a *Application) UpdateMetrics(ctx context.Context, days int) (int, error) {
	return a.metrics.Run(ctx, days)
}

// MarkPublished records that a drafted post went live under the given tweet
// id. Publication itself happens outside the pipeline; recording it here is
// what makes the post visible to the metrics refresh.
func (a *Application) MarkPublished(ctx context.Context, postID int64, tweetID string) error {
	return a.store.MarkPostPublished(ctx, postID, tweetID, time.Now().UTC())
}

// GenerateReply writes a model reply for one pending conversation.
func (a *Application) GenerateReply(ctx context.Context, conversationID int64) (string, error) {
	return a.replies.GenerateFor(ctx, conversationID)
}
