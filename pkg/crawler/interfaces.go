package crawler

import (
	"context"
	"encoding/json"

	"coubcrawl/pkg/coub"
	"coubcrawl/pkg/output"
)

// API defines the Coub operations the crawler depends on
type API interface {
	FetchPage(ctx context.Context, url, token string) (*coub.Page, error)
	FetchSegments(ctx context.Context, permalink, token string) (json.RawMessage, error)
	Probe(ctx context.Context, url string) error
	Endpoints() coub.Endpoints
}

// Store persists per-category results
type Store interface {
	HasURLList(category string) bool
	CountURLs(category string) (int, error)
	RemoveURLList(category string) error
	Write(category string, entries []output.Entry, withSegments bool) (*output.Summary, error)
}

// TokenProvider yields the access token for reserved categories
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Recorder receives one report per processed category
type Recorder interface {
	Record(ctx context.Context, report CategoryReport) error
}

// RecrawlFunc decides whether an already crawled category is crawled again.
// existing is the number of URLs in the current list.
type RecrawlFunc func(category string, existing int) (bool, error)

// AlwaysRecrawl accepts every recrawl
func AlwaysRecrawl(string, int) (bool, error) { return true, nil }

// NeverRecrawl declines every recrawl
func NeverRecrawl(string, int) (bool, error) { return false, nil }
