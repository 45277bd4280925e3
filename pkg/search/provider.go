package search

import "context"

// InstantSource resolves a query against a structured instant-answer backend.
type InstantSource interface {
	Resolve(ctx context.Context, query string) (*Answer, error)
}

// ScrapeSource resolves a query by scraping a results page.
type ScrapeSource interface {
	Resolve(ctx context.Context, query string) (ScrapedResult, error)
}

var (
	_ InstantSource = (*InstantClient)(nil)
	_ ScrapeSource  = (*ScrapeClient)(nil)
)
