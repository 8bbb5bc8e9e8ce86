package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"AgentPipeline/internal/domain"
	"AgentPipeline/internal/ports"
)

const distillerSystemPrompt = "You are a research analyst. You reduce raw research items " +
	"to the few topics worth writing about, with concrete talking points. " +
	"Respond with JSON only: {\"distilled_topics\": [...], \"talking_points\": [...]}."

// Distiller reduces raw research items to topics via the chat client.
type Distiller struct {
	chat *ChatClient
}

var _ ports.Distiller = (*Distiller)(nil)

// NewDistiller wires the shared chat client.
func NewDistiller(chat *ChatClient) *Distiller {
	return &Distiller{chat: chat}
}

type distilledPayload struct {
	DistilledTopics []string `json:"distilled_topics"`
	TalkingPoints   []string `json:"talking_points"`
}

// Distill prompts the model with the item list and parses the JSON reply.
// The raw reply is returned for auditing even when parsing succeeds.
func (d *Distiller) Distill(ctx context.Context, items []domain.ResearchItem, skillName, description, auxContext string) (domain.Distilled, string, error) {
	if len(items) == 0 {
		return domain.Distilled{}, "", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Skill: %s\nFocus: %s\n", skillName, description)
	if auxContext != "" {
		fmt.Fprintf(&sb, "Additional context:\n%s\n", auxContext)
	}
	sb.WriteString("\nResearch items:\n")
	for i, item := range items {
		fmt.Fprintf(&sb, "%d. [%s] %s\n   %s\n", i+1, item.Kind, item.URL, item.Snippet)
	}
	sb.WriteString("\nDistill these into at most 3 topics with supporting talking points.")

	raw, err := d.chat.Complete(ctx, distillerSystemPrompt, sb.String())
	if err != nil {
		return domain.Distilled{}, "", fmt.Errorf("distill: %w", err)
	}

	var payload distilledPayload
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return domain.Distilled{}, raw, fmt.Errorf("parse distilled payload: %w", err)
	}

	return domain.Distilled{
		Topics:        payload.DistilledTopics,
		TalkingPoints: payload.TalkingPoints,
	}, raw, nil
}

// stripCodeFence removes a surrounding markdown code fence, which chat
// models add around JSON despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
