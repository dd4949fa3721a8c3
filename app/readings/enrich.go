package readings

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/lectio/app/bible"
	"github.com/lysyi3m/lectio/app/scripture"
	"github.com/lysyi3m/lectio/app/usccb"
)

// enrichment is the outcome of looking up one reading's passage. A reading
// whose reference does not map is skipped, not failed.
type enrichment struct {
	key     scripture.PassageKey
	passage bible.Passage
	skipped bool
	err     error
}

func (e enrichment) ok() bool {
	return !e.skipped && e.err == nil
}

// enrich looks up each reading in order, one at a time. The result has one
// entry per reading.
func (s *Service) enrich(ctx context.Context, readings []usccb.Reading) []enrichment {
	results := make([]enrichment, len(readings))

	for i, r := range readings {
		key, ok := scripture.MapReference(r.Reference)
		if !ok {
			slog.Debug("Reference not mappable, skipping enrichment", "reference", r.Reference)
			results[i] = enrichment{skipped: true}
			continue
		}

		passage, err := s.enrichment.Passage(ctx, s.bibleID, key)
		if err != nil {
			slog.Warn("Could not enrich reading", "reference", r.Reference, "passage", key, "error", err)
		}
		results[i] = enrichment{key: key, passage: passage, err: err}
	}

	return results
}

// merge copies the primary readings and attaches successful lookups.
func merge(readings []usccb.Reading, results []enrichment, bibleID string) []Reading {
	out := make([]Reading, len(readings))

	for i, r := range readings {
		out[i] = Reading{
			Title:     r.Title,
			Reference: r.Reference,
			Content:   r.Content,
		}

		if i >= len(results) || !results[i].ok() {
			continue
		}

		p := results[i].passage
		out[i].AlternativeTranslations = []AlternativeTranslation{{
			Source:    SourceEnrichment,
			BibleID:   bibleID,
			Content:   p.Content,
			Copyright: p.Copyright,
		}}
		if len(p.CrossReferences) > 0 {
			out[i].CrossReferences = p.CrossReferences
		}
	}

	return out
}
