package social

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"AgentPipeline/internal/config"
)

func TestSearchTweets(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-RapidAPI-Key"); got != "rk-1" {
			t.Errorf("unexpected api key header: %s", got)
		}
		if got := r.URL.Query().Get("query"); got != "golang generics" {
			t.Errorf("unexpected query: %s", got)
		}
		_, _ = w.Write([]byte(`{
			"timeline": [
				{
					"tweet_id": "111",
					"text": "generics are fine",
					"screen_name": "gopher",
					"created_at": "Fri Mar 13 10:00:00 +0000 2026",
					"favorites": 12,
					"retweets": 3,
					"replies": 2,
					"quotes": 1,
					"user_info": {"followers_count": 500}
				},
				{"tweet_id": "", "text": "dropped", "screen_name": "x"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), config.SocialSearchConfig{
		Endpoint: server.URL,
		Host:     "twitter-api45.p.rapidapi.com",
		APIKey:   "rk-1",
	})

	tweets, raw, err := client.SearchTweets(context.Background(), "golang generics")
	if err != nil {
		t.Fatalf("SearchTweets error: %v", err)
	}
	if len(tweets) != 1 {
		t.Fatalf("expected 1 tweet, got %d", len(tweets))
	}
	if tweets[0].URL != "https://x.com/gopher/status/111" {
		t.Fatalf("unexpected url: %s", tweets[0].URL)
	}
	if tweets[0].FollowersCount != 500 {
		t.Fatalf("unexpected followers: %d", tweets[0].FollowersCount)
	}
	if raw == "" {
		t.Fatalf("raw response not captured")
	}
}

func TestSearchTweetsRequiresKey(t *testing.T) {
	t.Parallel()

	client := NewClient(nil, config.SocialSearchConfig{Endpoint: "https://api.example.org"})
	if _, _, err := client.SearchTweets(context.Background(), "q"); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}
