// Package readings merges the liturgical-day page with passage text from the
// translation service and caches the result per date.
package readings

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/lysyi3m/lectio/app/bible"
	"github.com/lysyi3m/lectio/app/cache"
	"github.com/lysyi3m/lectio/app/scripture"
	"github.com/lysyi3m/lectio/app/usccb"
)

const (
	enhancedPrefix = "enhanced_readings_"
	defaultTTL     = 24 * time.Hour
)

type Options struct {
	BibleID           string
	FallbackPassage   string
	FallbackReference string
	TTL               time.Duration
}

type Service struct {
	primary           PrimarySource
	enrichment        EnrichmentProvider
	cache             cache.Store
	group             singleflight.Group
	bibleID           string
	fallbackPassage   scripture.PassageKey
	fallbackReference string
	ttl               time.Duration
	now               func() time.Time
}

func NewService(primary PrimarySource, enrichment EnrichmentProvider, store cache.Store, opts Options) *Service {
	if opts.BibleID == "" {
		opts.BibleID = bible.DefaultBibleID
	}
	if opts.FallbackPassage == "" {
		opts.FallbackPassage = "JHN.3.16"
	}
	if opts.FallbackReference == "" {
		opts.FallbackReference = "John 3:16"
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}

	return &Service{
		primary:           primary,
		enrichment:        enrichment,
		cache:             store,
		bibleID:           opts.BibleID,
		fallbackPassage:   scripture.PassageKey(opts.FallbackPassage),
		fallbackReference: opts.FallbackReference,
		ttl:               opts.TTL,
		now:               time.Now,
	}
}

// Today returns the current UTC date as YYYY-MM-DD.
func (s *Service) Today() string {
	return usccb.FormatDate(s.now())
}

func (s *Service) GetTodaysReadings(ctx context.Context) *DailyReadings {
	return s.getReadings(ctx, s.Today())
}

// GetReadingsForDate returns the merged readings for a YYYY-MM-DD date. It
// fails only with ErrInvalidDate: when nothing can be retrieved the result
// carries Error and no readings.
func (s *Service) GetReadingsForDate(ctx context.Context, date string) (*DailyReadings, error) {
	if _, err := usccb.ParseDate(date); err != nil {
		return nil, err
	}
	return s.getReadings(ctx, date), nil
}

// getReadings serves date from the cache or aggregates it. Concurrent misses
// for the same date share one aggregation, which is detached from the
// caller's cancellation so that a dropped request cannot leave an unenriched
// result behind for everyone else.
func (s *Service) getReadings(ctx context.Context, date string) *DailyReadings {
	key := enhancedPrefix + date
	if cached, ok := cache.Lookup[*DailyReadings](s.cache, key); ok {
		slog.Debug("Using cached readings", "date", date)
		return cached.clone()
	}

	v, _, _ := s.group.Do(date, func() (any, error) {
		if cached, ok := cache.Lookup[*DailyReadings](s.cache, key); ok {
			return cached, nil
		}
		return s.aggregate(context.WithoutCancel(ctx), date), nil
	})

	return v.(*DailyReadings).clone()
}

// CacheStats reports on the store shared by every upstream lookup.
func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

func (s *Service) aggregate(ctx context.Context, date string) *DailyReadings {
	start := time.Now()

	doc, err := s.primary.FetchForDate(ctx, date)
	if err != nil {
		slog.Warn("Primary source failed, using fallback", "date", date, "error", err)
		return s.fallback(ctx, date)
	}

	results := s.enrich(ctx, doc.Readings)

	result := &DailyReadings{
		Date:          date,
		DateLabel:     doc.DateLabel,
		LiturgicalDay: doc.LiturgicalDay,
		Readings:      merge(doc.Readings, results, s.bibleID),
	}

	s.cache.Set(enhancedPrefix+date, result, s.ttl)

	enriched := 0
	for _, r := range results {
		if r.ok() {
			enriched++
		}
	}

	slog.Info("Readings aggregated",
		"date", date,
		"readings", len(result.Readings),
		"enriched", enriched,
		"duration", time.Since(start))

	return result
}

// fallback serves a single fixed passage when the primary source fails.
// Neither outcome is cached so the next request retries the primary source.
func (s *Service) fallback(ctx context.Context, date string) *DailyReadings {
	passage, err := s.enrichment.Passage(ctx, s.bibleID, s.fallbackPassage)
	if err != nil {
		slog.Error("Fallback passage failed", "date", date, "error", err)
		return &DailyReadings{
			Date:          date,
			LiturgicalDay: UnavailableDay,
			Readings:      []Reading{},
			Error:         UnavailableReason,
		}
	}

	return &DailyReadings{
		Date:          date,
		LiturgicalDay: FallbackDay,
		Readings: []Reading{{
			Title:     FallbackTitle,
			Reference: s.fallbackReference,
			Content:   passage.Content,
			Source:    SourceFallback,
		}},
		Fallback: true,
	}
}

func (s *Service) SearchPassages(ctx context.Context, query, bibleID string) (bible.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return bible.SearchResult{}, ErrEmptyQuery
	}
	if bibleID == "" {
		bibleID = s.bibleID
	}
	return s.enrichment.Search(ctx, bibleID, query)
}

func (s *Service) ListVersions(ctx context.Context) ([]bible.Version, error) {
	return s.enrichment.Versions(ctx)
}

// Invalidate forgets everything cached for date: the merged result, the parsed
// page and the passages its readings referenced. An empty date flushes the
// whole cache. It returns the number of entries removed.
func (s *Service) Invalidate(date string) int {
	if date == "" {
		removed := s.cache.Len()
		s.cache.Flush()
		slog.Info("Cache flushed", "removed", removed)
		return removed
	}

	removed := 0
	key := enhancedPrefix + date

	if cached, ok := cache.Lookup[*DailyReadings](s.cache, key); ok {
		for _, r := range cached.Readings {
			if pk, ok := scripture.MapReference(r.Reference); ok && s.enrichment.InvalidatePassage(s.bibleID, pk) {
				removed++
			}
		}
	}

	if s.cache.Delete(key) {
		removed++
	}
	removed += s.primary.Invalidate(date)

	slog.Info("Readings invalidated", "date", date, "removed", removed)

	return removed
}
