package usecase

import (
	"context"
	"fmt"

	"AgentPipeline/internal/ports"
	"AgentPipeline/internal/skills"
)

const brandSkillSlug = "personal_brand"

// ReplyGenerator produces a model-written reply for one pending
// conversation and stores it in place of the stub.
type ReplyGenerator struct {
	content ports.ContentStore
	skills  *skills.Registry
	replier ports.Replier
}

// NewReplyGenerator constructs the generator.
func NewReplyGenerator(content ports.ContentStore, registry *skills.Registry, replier ports.Replier) *ReplyGenerator {
	return &ReplyGenerator{content: content, skills: registry, replier: replier}
}

// GenerateFor rewrites the suggested reply of the given conversation using
// the brand voice config and recent published posts as style examples.
func (g *ReplyGenerator) GenerateFor(ctx context.Context, conversationID int64) (string, error) {
	convo, err := g.content.GetConversationByID(ctx, conversationID)
	if err != nil {
		return "", fmt.Errorf("load conversation: %w", err)
	}
	if convo == nil {
		return "", fmt.Errorf("conversation %d not found", conversationID)
	}

	brand, err := g.skills.BrandConfig(ctx, brandSkillSlug)
	if err != nil {
		return "", fmt.Errorf("load brand config: %w", err)
	}

	examples, err := g.styleExamples(ctx, 3)
	if err != nil {
		return "", fmt.Errorf("collect style examples: %w", err)
	}

	reply, err := g.replier.GenerateReply(ctx, *convo, brand, examples)
	if err != nil {
		return "", err
	}

	if err := g.content.UpdateConversationReply(ctx, conversationID, reply); err != nil {
		return "", fmt.Errorf("store reply: %w", err)
	}
	return reply, nil
}

func (g *ReplyGenerator) styleExamples(ctx context.Context, limit int) ([]string, error) {
	posts, err := g.content.ListRecentPublishedPosts(ctx, 30)
	if err != nil {
		return nil, err
	}

	examples := make([]string, 0, limit)
	for _, post := range posts {
		content := post.PublishedContent
		if content == "" {
			content = post.DraftContent
		}
		if content == "" {
			continue
		}
		examples = append(examples, content)
		if len(examples) >= limit {
			break
		}
	}
	return examples, nil
}
