package fingerprint

import (
	"context"
	"fmt"
	"testing"

	"AgentPipeline/internal/domain"
)

// fakeStore keeps fingerprints in memory with the same conflict semantics
// as the sqlite store: identity is unique, saves report created=false on
// conflict instead of failing.
type fakeStore struct {
	rows   []domain.Fingerprint
	nextID int64
}

func (f *fakeStore) CheckFingerprint(_ context.Context, contentType, primaryIdentifier string) (*domain.Fingerprint, error) {
	for i := range f.rows {
		if f.rows[i].ContentType == contentType && f.rows[i].PrimaryIdentifier == primaryIdentifier {
			row := f.rows[i]
			return &row, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CheckFingerprintByHash(_ context.Context, contentHash string) (*domain.Fingerprint, error) {
	for i := range f.rows {
		if f.rows[i].ContentHash == contentHash {
			row := f.rows[i]
			return &row, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SaveFingerprint(ctx context.Context, fp domain.Fingerprint) (int64, bool, error) {
	if existing, _ := f.CheckFingerprint(ctx, fp.ContentType, fp.PrimaryIdentifier); existing != nil {
		return existing.ID, false, nil
	}
	f.nextID++
	fp.ID = f.nextID
	f.rows = append(f.rows, fp)
	return fp.ID, true, nil
}

func (f *fakeStore) UpdateFingerprintStatus(_ context.Context, id int64, status string) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].ProcessingStatus = status
			return nil
		}
	}
	return fmt.Errorf("fingerprint %d not found", id)
}

func searchBatch(n int) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, n)
	for i := 0; i < n; i++ {
		results = append(results, domain.SearchResult{
			URL:     fmt.Sprintf("https://example.org/item-%d", i),
			Snippet: fmt.Sprintf("snippet %d", i),
		})
	}
	return results
}

func TestProcessSearchResultsCountsEveryItem(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	p := NewIncrementalProcessor(store, nil)

	batch, err := p.ProcessSearchResults(context.Background(), searchBatch(4), "raw")
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if batch.TotalProcessed != 4 {
		t.Fatalf("total processed = %d, want 4", batch.TotalProcessed)
	}
	if len(batch.NewResults)+batch.DuplicateCount != batch.TotalProcessed {
		t.Fatalf("new (%d) + duplicates (%d) must equal total (%d)",
			len(batch.NewResults), batch.DuplicateCount, batch.TotalProcessed)
	}
	if len(batch.NewResults) != 4 || batch.DuplicateCount != 0 {
		t.Fatalf("fresh store must classify all items new, got %d new %d dup",
			len(batch.NewResults), batch.DuplicateCount)
	}
	if len(batch.NewFingerprintIDs) != 4 {
		t.Fatalf("expected 4 fingerprint ids, got %d", len(batch.NewFingerprintIDs))
	}
}

func TestProcessSearchResultsIdempotent(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	p := NewIncrementalProcessor(store, nil)
	items := searchBatch(3)

	if _, err := p.ProcessSearchResults(context.Background(), items, ""); err != nil {
		t.Fatalf("first pass: %v", err)
	}

	second, err := p.ProcessSearchResults(context.Background(), items, "")
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}

	if len(second.NewResults) != 0 {
		t.Fatalf("second identical batch must yield no new results, got %d", len(second.NewResults))
	}
	if second.DuplicateCount != len(items) {
		t.Fatalf("duplicate count = %d, want %d", second.DuplicateCount, len(items))
	}
	if second.TotalProcessed != len(items) {
		t.Fatalf("total processed = %d, want %d", second.TotalProcessed, len(items))
	}
}

func TestProcessTweetsDuplicateByIdentity(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	p := NewIncrementalProcessor(store, nil)
	ctx := context.Background()

	first := []domain.Tweet{{URL: "https://x.com/a/status/777", Snippet: "original phrasing"}}
	if _, err := p.ProcessTweets(ctx, first, ""); err != nil {
		t.Fatalf("first pass: %v", err)
	}

	// Same status id, different snippet: identity wins even though hashes differ.
	second := []domain.Tweet{{URL: "https://x.com/b/status/777", Snippet: "edited phrasing"}}
	batch, err := p.ProcessTweets(ctx, second, "")
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}

	if batch.DuplicateCount != 1 || len(batch.NewResults) != 0 {
		t.Fatalf("expected duplicate-by-identity, got %d new %d dup", len(batch.NewResults), batch.DuplicateCount)
	}
}

func TestProcessSearchResultsDuplicateByHash(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	p := NewIncrementalProcessor(store, nil)

	items := []domain.SearchResult{
		{URL: "https://example.org/mirror-1", Snippet: "the same body text"},
		{URL: "https://example.org/mirror-2", Snippet: "the same body text"},
	}

	batch, err := p.ProcessSearchResults(context.Background(), items, "")
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if len(batch.NewResults) != 1 || batch.DuplicateCount != 1 {
		t.Fatalf("identical snippets under different urls must dedup by hash, got %d new %d dup",
			len(batch.NewResults), batch.DuplicateCount)
	}
}

func TestMarkProcessedIdempotent(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	p := NewIncrementalProcessor(store, nil)
	ctx := context.Background()

	batch, err := p.ProcessSearchResults(ctx, searchBatch(2), "")
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if err := p.MarkProcessed(ctx, batch.NewFingerprintIDs); err != nil {
		t.Fatalf("first mark: %v", err)
	}
	if err := p.MarkProcessed(ctx, batch.NewFingerprintIDs); err != nil {
		t.Fatalf("second mark must be a no-op, got %v", err)
	}

	for _, row := range store.rows {
		if row.ProcessingStatus != domain.FingerprintStatusProcessed {
			t.Fatalf("fingerprint %d left in %s", row.ID, row.ProcessingStatus)
		}
	}
}
