package fingerprint

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"AgentPipeline/internal/domain"
	"AgentPipeline/internal/ports"
)

// Batch is the outcome of one incremental pass over a raw result set.
// Every input item is counted exactly once: TotalProcessed equals
// len(NewResults) + DuplicateCount.
type Batch[T any] struct {
	NewResults        []T
	DuplicateCount    int
	NewFingerprintIDs []int64
	TotalProcessed    int
}

// IncrementalProcessor partitions raw batches into new and duplicate items
// against the fingerprint store and later marks new items processed.
type IncrementalProcessor struct {
	store  ports.FingerprintStore
	logger *slog.Logger
	now    func() time.Time
}

// NewIncrementalProcessor wires the fingerprint store.
func NewIncrementalProcessor(store ports.FingerprintStore, logger *slog.Logger) *IncrementalProcessor {
	return &IncrementalProcessor{store: store, logger: logger, now: time.Now}
}

// ProcessSearchResults runs the incremental pass over web search hits.
func (p *IncrementalProcessor) ProcessSearchResults(ctx context.Context, results []domain.SearchResult, rawResponse string) (Batch[domain.SearchResult], error) {
	return processBatch(ctx, p, results, func(item domain.SearchResult) domain.Fingerprint {
		return NewSearchResult(item, rawResponse, p.now())
	}, "search result")
}

// ProcessTweets runs the incremental pass over tweet results.
func (p *IncrementalProcessor) ProcessTweets(ctx context.Context, tweets []domain.Tweet, rawResponse string) (Batch[domain.Tweet], error) {
	return processBatch(ctx, p, tweets, func(item domain.Tweet) domain.Fingerprint {
		return NewTweet(item, rawResponse, p.now())
	}, "tweet")
}

// MarkProcessed flips fingerprints to processed after downstream content
// generation has been committed. Safe to call twice on the same ids.
func (p *IncrementalProcessor) MarkProcessed(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		if err := p.store.UpdateFingerprintStatus(ctx, id, domain.FingerprintStatusProcessed); err != nil {
			return fmt.Errorf("mark fingerprint %d processed: %w", id, err)
		}
	}
	return nil
}

func processBatch[T any](ctx context.Context, p *IncrementalProcessor, items []T, build func(T) domain.Fingerprint, kind string) (Batch[T], error) {
	batch := Batch[T]{TotalProcessed: len(items)}

	for _, item := range items {
		fp := build(item)

		byHash, err := p.store.CheckFingerprintByHash(ctx, fp.ContentHash)
		if err != nil {
			return Batch[T]{}, fmt.Errorf("check %s fingerprint by hash: %w", kind, err)
		}
		if byHash != nil {
			batch.DuplicateCount++
			p.debug("duplicate skipped", "kind", kind, "identifier", fp.PrimaryIdentifier, "by", "content_hash")
			continue
		}

		// The insert itself settles identity duplicates, including the
		// check-then-save race across concurrent writers.
		id, created, err := p.store.SaveFingerprint(ctx, fp)
		if err != nil {
			return Batch[T]{}, fmt.Errorf("save %s fingerprint %s: %w", kind, fp.PrimaryIdentifier, err)
		}

		if created {
			batch.NewResults = append(batch.NewResults, item)
			batch.NewFingerprintIDs = append(batch.NewFingerprintIDs, id)
			p.debug("new content", "kind", kind, "identifier", fp.PrimaryIdentifier)
		} else {
			batch.DuplicateCount++
			p.debug("duplicate skipped", "kind", kind, "identifier", fp.PrimaryIdentifier, "by", "identity")
		}
	}

	return batch, nil
}

func (p *IncrementalProcessor) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
