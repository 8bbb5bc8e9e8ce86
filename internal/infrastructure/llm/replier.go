package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"AgentPipeline/internal/domain"
	"AgentPipeline/internal/ports"
)

const replierSystemPrompt = "You are an assistant generating a reply in the author's personal " +
	"brand voice. Follow the brand manifesto and prioritize clarity, leverage, and direct advice. " +
	"Output only the reply text. No labels or JSON."

// Replier generates brand-voice replies for pending conversations.
type Replier struct {
	chat *ChatClient
}

var _ ports.Replier = (*Replier)(nil)

// NewReplier wires the shared chat client.
func NewReplier(chat *ChatClient) *Replier {
	return &Replier{chat: chat}
}

// GenerateReply builds a JSON context block from the conversation, brand
// config and recent post examples, then asks for a 1-3 sentence reply.
func (r *Replier) GenerateReply(ctx context.Context, convo domain.Conversation, brand map[string]any, examples []string) (string, error) {
	context := map[string]any{
		"brand_summary": map[string]any{
			"values":            brand["values"],
			"voice_notes":       brand["voice_notes"],
			"lexicon":           brand["lexicon"],
			"avoid":             brand["avoid"],
			"pillars":           brand["pillars"],
			"style_constraints": brand["style_constraints"],
		},
		"reply_style":   brand["reply_style"],
		"skill_slug":    convo.SkillSlug,
		"tweet_snippet": convo.Snippet,
		"tweet_reason":  convo.Reason,
		"author_handle": convo.AuthorHandle,
		"tweet_url":     convo.TweetURL,
		"recent_posts":  examples,
	}

	encoded, err := json.MarshalIndent(context, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal reply context: %w", err)
	}

	prompt := "Use the following context to craft a concise reply (1-3 short sentences). " +
		"Reference the tweet snippet directly, add one concrete insight, and end with a precise question.\n\n" +
		"Context:\n" + string(encoded)

	reply, err := r.chat.Complete(ctx, replierSystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	return reply, nil
}
