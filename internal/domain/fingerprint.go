package domain

import "time"

// Content types recorded in the fingerprint table.
const (
	ContentTypeSearchResult = "search_result"
	ContentTypeTweet        = "tweet"
)

// Fingerprint processing statuses.
const (
	FingerprintStatusNew       = "new"
	FingerprintStatusProcessed = "processed"
)

// Fingerprint is the durable identity+hash record used to detect
// previously-seen content. Identity is the (ContentType, PrimaryIdentifier)
// pair; it is write-once, only ProcessingStatus and LastUpdated mutate.
type Fingerprint struct {
	ID                int64
	ContentType       string
	PrimaryIdentifier string
	URL               string
	ContentHash       string
	Platform          string
	ProcessingStatus  string
	FirstSeen         time.Time
	LastUpdated       time.Time
	PlatformMetadata  map[string]any
}
