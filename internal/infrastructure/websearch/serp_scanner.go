package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"AgentPipeline/internal/domain"
	"AgentPipeline/internal/research"
)

// SERPScanner scrapes a self-hosted results page (SearXNG-style markup)
// as a keyless fallback to the API strategy.
type SERPScanner struct {
	client  *http.Client
	baseURL string
}

// NewSERPScanner wires an HTTP client; nil falls back to a 20s default.
func NewSERPScanner(client *http.Client, baseURL string) *SERPScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &SERPScanner{client: client, baseURL: baseURL}
}

// Name identifies the strategy inside the registry.
func (s *SERPScanner) Name() string {
	return "serp"
}

// Search fetches the results page for the query and extracts result blocks.
func (s *SERPScanner) Search(ctx context.Context, req research.Request) ([]domain.SearchResult, string, error) {
	pageURL, err := buildSearchURL(s.baseURL, req.Query)
	if err != nil {
		return nil, "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "AgentPipeline/1.0")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("request results page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("results page returned %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read results page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil, "", fmt.Errorf("parse results page: %w", err)
	}

	results := extractResults(doc, req.MaxResults)
	return results, string(raw), nil
}

func extractResults(doc *goquery.Document, maxResults int) []domain.SearchResult {
	var (
		collected []domain.SearchResult
		seen      = map[string]struct{}{}
	)

	doc.Find("article.result, div.result").EachWithBreak(func(i int, block *goquery.Selection) bool {
		link := block.Find("a[href]").First()
		href, exists := link.Attr("href")
		if !exists || !strings.HasPrefix(href, "http") {
			return true
		}
		if _, ok := seen[href]; ok {
			return true
		}
		seen[href] = struct{}{}

		snippet := strings.TrimSpace(block.Find("p.content").First().Text())
		if snippet == "" {
			snippet = strings.TrimSpace(link.Text())
		}

		collected = append(collected, domain.SearchResult{URL: href, Snippet: snippet})
		return maxResults <= 0 || len(collected) < maxResults
	})

	return collected
}

func buildSearchURL(base, query string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid results url %s: %w", base, err)
	}

	q := parsed.Query()
	q.Set("q", query)
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}
