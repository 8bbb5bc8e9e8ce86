package domain

// Distilled is the structured result of topic distillation.
type Distilled struct {
	Topics        []string
	TalkingPoints []string
}

// DraftResult is one drafting attempt for one topic. A failed attempt
// carries Err instead of an in-band error string, so callers branch on the
// tag rather than on content prefixes.
type DraftResult struct {
	Topic string
	Body  string
	Err   error
}
