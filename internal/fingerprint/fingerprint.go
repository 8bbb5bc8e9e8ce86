package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"time"

	"AgentPipeline/internal/domain"
)

// Platforms recorded on fingerprints.
const (
	PlatformSearch  = "perplexity"
	PlatformTwitter = "twitter"
)

var statusIDExpr = regexp.MustCompile(`/status/(\d+)`)

// NewSearchResult builds the fingerprint for a web search hit. Identity is
// the result URL; the content hash covers the snippet text.
func NewSearchResult(item domain.SearchResult, rawResponse string, now time.Time) domain.Fingerprint {
	return domain.Fingerprint{
		ContentType:       domain.ContentTypeSearchResult,
		PrimaryIdentifier: item.URL,
		URL:               item.URL,
		ContentHash:       hashText(item.Snippet),
		Platform:          PlatformSearch,
		ProcessingStatus:  domain.FingerprintStatusNew,
		PlatformMetadata: withCommonMetadata(map[string]any{
			"snippet": item.Snippet,
		}, rawResponse, now),
	}
}

// NewTweet builds the fingerprint for a tweet. Identity is the numeric
// status id parsed from the URL, falling back to the raw URL when absent;
// two malformed URLs without a status id collide on that fallback, which is
// accepted as best-effort dedup.
func NewTweet(item domain.Tweet, rawResponse string, now time.Time) domain.Fingerprint {
	return domain.Fingerprint{
		ContentType:       domain.ContentTypeTweet,
		PrimaryIdentifier: ExtractTweetID(item.URL),
		URL:               item.URL,
		ContentHash:       hashText(item.Snippet),
		Platform:          PlatformTwitter,
		ProcessingStatus:  domain.FingerprintStatusNew,
		PlatformMetadata: withCommonMetadata(map[string]any{
			"snippet":         item.Snippet,
			"screen_name":     item.ScreenName,
			"followers_count": item.FollowersCount,
			"favorite_count":  item.FavoriteCount,
			"retweet_count":   item.RetweetCount,
			"reply_count":     item.ReplyCount,
			"quote_count":     item.QuoteCount,
			"created_at":      item.CreatedAt,
		}, rawResponse, now),
	}
}

// ExtractTweetID parses the numeric path segment after /status/.
func ExtractTweetID(url string) string {
	if m := statusIDExpr.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return url
}

// IsDuplicate reports whether two fingerprints describe the same content:
// either the identity pair matches, or the content hash matches regardless
// of content type. The cross-type hash rule is intentional.
func IsDuplicate(a, b domain.Fingerprint) bool {
	if a.ContentType == b.ContentType && a.PrimaryIdentifier == b.PrimaryIdentifier {
		return true
	}
	return a.ContentHash == b.ContentHash
}

func withCommonMetadata(metadata map[string]any, rawResponse string, now time.Time) map[string]any {
	if rawResponse != "" {
		metadata["raw_response_hash"] = hashText(rawResponse)
	} else {
		metadata["raw_response_hash"] = nil
	}
	metadata["fingerprint_created"] = now.UTC().Format(time.RFC3339)
	return metadata
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
