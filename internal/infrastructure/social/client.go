package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"AgentPipeline/internal/config"
	"AgentPipeline/internal/domain"
	"AgentPipeline/internal/ports"
)

// Client queries a RapidAPI-hosted tweet search endpoint.
type Client struct {
	http *http.Client
	cfg  config.SocialSearchConfig
}

var _ ports.TweetProvider = (*Client)(nil)

// NewClient wires an HTTP client; nil falls back to a 30s default.
func NewClient(httpClient *http.Client, cfg config.SocialSearchConfig) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{http: httpClient, cfg: cfg}
}

type timelineResponse struct {
	Timeline []struct {
		TweetID    string `json:"tweet_id"`
		Text       string `json:"text"`
		ScreenName string `json:"screen_name"`
		CreatedAt  string `json:"created_at"`
		Favorites  int    `json:"favorites"`
		Retweets   int    `json:"retweets"`
		Replies    int    `json:"replies"`
		Quotes     int    `json:"quotes"`
		UserInfo   struct {
			FollowersCount int `json:"followers_count"`
		} `json:"user_info"`
	} `json:"timeline"`
}

// SearchTweets runs the query and maps timeline entries to domain tweets.
func (c *Client) SearchTweets(ctx context.Context, query string) ([]domain.Tweet, string, error) {
	if c.cfg.APIKey == "" {
		return nil, "", fmt.Errorf("rapidapi key is not configured")
	}

	endpoint, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return nil, "", fmt.Errorf("invalid tweet search endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("query", query)
	q.Set("search_type", "Latest")
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.cfg.APIKey)
	req.Header.Set("X-RapidAPI-Host", c.cfg.Host)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("request tweet search: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read tweet search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("tweet search returned %s", resp.Status)
	}

	var parsed timelineResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, "", fmt.Errorf("parse tweet search response: %w", err)
	}

	tweets := make([]domain.Tweet, 0, len(parsed.Timeline))
	for _, entry := range parsed.Timeline {
		if entry.TweetID == "" || entry.ScreenName == "" {
			continue
		}
		tweets = append(tweets, domain.Tweet{
			URL:            fmt.Sprintf("https://x.com/%s/status/%s", entry.ScreenName, entry.TweetID),
			Snippet:        entry.Text,
			ScreenName:     entry.ScreenName,
			FollowersCount: entry.UserInfo.FollowersCount,
			FavoriteCount:  entry.Favorites,
			RetweetCount:   entry.Retweets,
			ReplyCount:     entry.Replies,
			QuoteCount:     entry.Quotes,
			CreatedAt:      entry.CreatedAt,
		})
	}

	return tweets, string(raw), nil
}
