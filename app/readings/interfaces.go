package readings

import (
	"context"

	"github.com/lysyi3m/lectio/app/bible"
	"github.com/lysyi3m/lectio/app/scripture"
	"github.com/lysyi3m/lectio/app/usccb"
)

type PrimarySource interface {
	FetchForDate(ctx context.Context, date string) (*usccb.Document, error)
	Invalidate(date string) int
}

type EnrichmentProvider interface {
	Passage(ctx context.Context, bibleID string, key scripture.PassageKey) (bible.Passage, error)
	Search(ctx context.Context, bibleID, query string) (bible.SearchResult, error)
	Versions(ctx context.Context) ([]bible.Version, error)
	InvalidatePassage(bibleID string, key scripture.PassageKey) bool
}

var (
	_ PrimarySource      = (*usccb.Source)(nil)
	_ EnrichmentProvider = (*bible.Client)(nil)
)
