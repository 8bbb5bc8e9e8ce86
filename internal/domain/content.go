package domain

// SearchResult is a single hit returned by a web search provider.
type SearchResult struct {
	URL     string
	Snippet string
}

// Tweet is a single result returned by the social search provider,
// including the engagement counters used for conversation triage.
type Tweet struct {
	URL            string
	Snippet        string
	ScreenName     string
	FollowersCount int
	FavoriteCount  int
	RetweetCount   int
	ReplyCount     int
	QuoteCount     int
	CreatedAt      string // provider timestamp, format varies by source
}

// ResearchItem is the provider-neutral shape handed to the distiller.
type ResearchItem struct {
	URL     string
	Snippet string
	Kind    string
}

// ItemFromSearchResult converts a search hit into a distillation input.
func ItemFromSearchResult(r SearchResult) ResearchItem {
	return ResearchItem{URL: r.URL, Snippet: r.Snippet, Kind: ContentTypeSearchResult}
}

// ItemFromTweet converts a tweet into a distillation input.
func ItemFromTweet(t Tweet) ResearchItem {
	return ResearchItem{URL: t.URL, Snippet: t.Snippet, Kind: ContentTypeTweet}
}
