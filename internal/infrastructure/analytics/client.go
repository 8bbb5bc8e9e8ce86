package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"AgentPipeline/internal/domain"
	"AgentPipeline/internal/ports"
)

// Client talks to the external analytics service for post engagement data.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.MetricsSource = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

type metricsResponse struct {
	Impressions   int            `json:"impressions"`
	Likes         int            `json:"likes"`
	Replies       int            `json:"replies"`
	Retweets      int            `json:"retweets"`
	Bookmarks     int            `json:"bookmarks"`
	ProfileVisits int            `json:"profile_visits"`
	LinkClicks    int            `json:"link_clicks"`
	Raw           map[string]any `json:"raw"`
}

// FetchPostMetrics requests engagement counters for a published post.
// A 404 means the service has no data yet; callers get nil, nil.
func (c *Client) FetchPostMetrics(ctx context.Context, post domain.Post) (*domain.MetricsData, error) {
	if post.XTweetID == "" {
		return nil, fmt.Errorf("post %d has no tweet id", post.ID)
	}

	endpoint := fmt.Sprintf("%s/%s", c.endpoint, url.PathEscape(post.XTweetID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var parsed metricsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &domain.MetricsData{
		Impressions:   parsed.Impressions,
		Likes:         parsed.Likes,
		Replies:       parsed.Replies,
		Retweets:      parsed.Retweets,
		Bookmarks:     parsed.Bookmarks,
		ProfileVisits: parsed.ProfileVisits,
		LinkClicks:    parsed.LinkClicks,
		Raw:           parsed.Raw,
	}, nil
}
