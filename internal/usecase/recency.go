package usecase

import (
	"time"

	"AgentPipeline/internal/domain"
)

// tweetTimeFormats are tried in order; providers disagree on timestamps.
var tweetTimeFormats = []string{
	"Mon Jan 02 15:04:05 -0700 2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

func parseTweetTime(createdAt string) (time.Time, bool) {
	if createdAt == "" {
		return time.Time{}, false
	}
	for _, layout := range tweetTimeFormats {
		if parsed, err := time.Parse(layout, createdAt); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

// filterRecent keeps tweets created within the last `days` days. Tweets
// whose timestamp cannot be parsed are treated as recent; assumedRecent
// counts how often that fallback fired.
func filterRecent(tweets []domain.Tweet, days int, now time.Time) (recent []domain.Tweet, assumedRecent int) {
	cutoff := now.UTC().Add(-time.Duration(days) * 24 * time.Hour)
	for _, tweet := range tweets {
		parsed, ok := parseTweetTime(tweet.CreatedAt)
		if !ok {
			assumedRecent++
			recent = append(recent, tweet)
			continue
		}
		if !parsed.Before(cutoff) {
			recent = append(recent, tweet)
		}
	}
	return recent, assumedRecent
}
