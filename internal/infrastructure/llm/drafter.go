package llm

import (
	"context"
	"fmt"
	"strings"

	"AgentPipeline/internal/domain"
	"AgentPipeline/internal/ports"
)

const drafterSystemPrompt = "You are a sharp social media writer. You turn a topic and its " +
	"talking points into one short post under 280 characters. Direct, concrete, no hashtags, " +
	"no emojis. Output only the post text."

// Drafter turns distilled topics into post drafts, one per topic.
type Drafter struct {
	chat *ChatClient
}

var _ ports.Drafter = (*Drafter)(nil)

// NewDrafter wires the shared chat client.
func NewDrafter(chat *ChatClient) *Drafter {
	return &Drafter{chat: chat}
}

// DraftPosts produces one result per topic. A failed completion yields a
// result with Err set; it never aborts the remaining topics.
func (d *Drafter) DraftPosts(ctx context.Context, distilled domain.Distilled, skillName, description, auxContext string) ([]domain.DraftResult, error) {
	if len(distilled.Topics) == 0 {
		return nil, nil
	}

	results := make([]domain.DraftResult, 0, len(distilled.Topics))
	for _, topic := range distilled.Topics {
		body, err := d.chat.Complete(ctx, drafterSystemPrompt, draftPrompt(topic, distilled.TalkingPoints, skillName, description, auxContext))
		if err != nil {
			results = append(results, domain.DraftResult{Topic: topic, Err: fmt.Errorf("draft topic %q: %w", topic, err)})
			continue
		}
		results = append(results, domain.DraftResult{Topic: topic, Body: strings.TrimSpace(body)})
	}
	return results, nil
}

func draftPrompt(topic string, points []string, skillName, description, auxContext string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Skill: %s\nFocus: %s\nTopic: %s\n", skillName, description, topic)
	if len(points) > 0 {
		sb.WriteString("Talking points:\n")
		for _, p := range points {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
	}
	if auxContext != "" {
		fmt.Fprintf(&sb, "Voice context:\n%s\n", auxContext)
	}
	sb.WriteString("\nWrite the post now.")
	return sb.String()
}
