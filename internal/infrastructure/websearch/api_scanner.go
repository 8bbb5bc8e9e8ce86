package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"AgentPipeline/internal/domain"
	"AgentPipeline/internal/research"
)

// APIScanner queries an answer-engine search API (Perplexity-style
// chat completions with attached search results).
type APIScanner struct {
	client   *http.Client
	endpoint string
	apiKey   string
	model    string
}

// NewAPIScanner wires an HTTP client; nil falls back to a 30s default.
func NewAPIScanner(client *http.Client, endpoint, apiKey, model string) *APIScanner {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &APIScanner{client: client, endpoint: endpoint, apiKey: apiKey, model: model}
}

// Name identifies the strategy inside the registry.
func (a *APIScanner) Name() string {
	return "api"
}

type apiSearchRequest struct {
	Model    string          `json:"model"`
	Messages []apiMessage    `json:"messages"`
	Options  json.RawMessage `json:"web_search_options,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiSearchResponse struct {
	SearchResults []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Snippet string `json:"snippet"`
	} `json:"search_results"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Search posts the query and maps the provider's search_results list.
func (a *APIScanner) Search(ctx context.Context, req research.Request) ([]domain.SearchResult, string, error) {
	if a.apiKey == "" {
		return nil, "", fmt.Errorf("search api key is not configured")
	}

	payload := apiSearchRequest{
		Model: a.model,
		Messages: []apiMessage{
			{Role: "user", Content: req.Query},
		},
	}
	if req.MaxResults > 0 {
		payload.Options = json.RawMessage(`{"search_results_count": ` + strconv.Itoa(req.MaxResults) + `}`)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("marshal search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("request search api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("search api returned %s", resp.Status)
	}

	var parsed apiSearchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, "", fmt.Errorf("parse search response: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(parsed.SearchResults))
	for _, item := range parsed.SearchResults {
		if item.URL == "" {
			continue
		}
		snippet := item.Snippet
		if snippet == "" {
			snippet = item.Title
		}
		results = append(results, domain.SearchResult{URL: item.URL, Snippet: snippet})
		if req.MaxResults > 0 && len(results) >= req.MaxResults {
			break
		}
	}

	return results, string(raw), nil
}
