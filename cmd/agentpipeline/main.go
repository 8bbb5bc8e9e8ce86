package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"AgentPipeline/internal/app"
	"AgentPipeline/internal/config"
	"AgentPipeline/internal/logging"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	root := &cobra.Command{
		Use:           "agentpipeline",
		Short:         "Scheduled research, drafting and daily brief pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var date string
	daily := &cobra.Command{
		Use:   "daily",
		Short: "Run the daily pipeline for every active skill",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			summary, err := application.RunDaily(cmd.Context(), date)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"date":                  summary.Date,
				"skills_processed":      summary.SkillsProcessed,
				"skills_failed":         summary.SkillsFailed,
				"posts_created":         summary.PostsCreated,
				"conversations_created": summary.ConversationsCreated,
			})
		},
	}
	daily.Flags().StringVar(&date, "date", "", "run date as YYYY-MM-DD (default today UTC)")

	var days int
	metrics := &cobra.Command{
		Use:   "metrics",
		Short: "Snapshot engagement metrics for recently published posts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			written, err := application.UpdateMetrics(cmd.Context(), days)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"snapshots_written": written, "days": days})
		},
	}
	metrics.Flags().IntVar(&days, "days", 14, "look-back window for published posts")

	var conversationID int64
	reply := &cobra.Command{
		Use:   "reply",
		Short: "Generate a brand-voice reply for a pending conversation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if conversationID <= 0 {
				return fmt.Errorf("--conversation is required")
			}
			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			text, err := application.GenerateReply(cmd.Context(), conversationID)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"conversation_id": conversationID, "reply": text})
		},
	}
	reply.Flags().Int64Var(&conversationID, "conversation", 0, "conversation id to reply to")

	var postID int64
	var tweetID string
	publish := &cobra.Command{
		Use:   "publish",
		Short: "Record that a drafted post went live on X",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if postID <= 0 {
				return fmt.Errorf("--post is required")
			}
			if tweetID == "" {
				return fmt.Errorf("--tweet is required")
			}
			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.MarkPublished(cmd.Context(), postID, tweetID); err != nil {
				return err
			}
			return printJSON(map[string]any{"post_id": postID, "x_tweet_id": tweetID})
		},
	}
	publish.Flags().Int64Var(&postID, "post", 0, "post id that was published")
	publish.Flags().StringVar(&tweetID, "tweet", "", "tweet id assigned by X")

	root.AddCommand(daily, metrics, reply, publish)

	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func printJSON(v any) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
