package readings

import (
	"encoding/json"
	"errors"

	"github.com/lysyi3m/lectio/app/bible"
	"github.com/lysyi3m/lectio/app/usccb"
)

var (
	ErrSourceUnavailable     = usccb.ErrSourceUnavailable
	ErrEnrichmentUnavailable = bible.ErrEnrichmentUnavailable
	ErrInvalidDate           = usccb.ErrInvalidDate
	ErrEmptyQuery            = errors.New("search query is required")

	// ErrAggregateUnavailable means neither the primary source nor the
	// fallback passage could be retrieved.
	ErrAggregateUnavailable = errors.New("could not retrieve readings from any source")
)

const (
	SourcePrimary     = "USCCB"
	SourceEnrichment  = "API.Bible"
	SourceFallback    = "API.Bible (Fallback)"
	FallbackDay       = "Fallback Reading"
	FallbackTitle     = "Gospel"
	UnavailableDay    = "Readings Unavailable"
	UnavailableReason = "Could not retrieve readings from any source"
)

type AlternativeTranslation struct {
	Source    string `json:"source"`
	BibleID   string `json:"bibleId"`
	Content   string `json:"content"`
	Copyright string `json:"copyright"`
}

type Reading struct {
	Title                   string                   `json:"title"`
	Reference               string                   `json:"reference"`
	Content                 string                   `json:"content"`
	AlternativeTranslations []AlternativeTranslation `json:"alternativeTranslations,omitempty"`
	CrossReferences         []json.RawMessage        `json:"crossReferences,omitempty"`
	Source                  string                   `json:"source,omitempty"`
}

// DailyReadings is the merged result for one calendar date. Readings is empty
// only when Error is set.
type DailyReadings struct {
	Date          string    `json:"date"`
	DateLabel     string    `json:"dateLabel,omitempty"`
	LiturgicalDay string    `json:"liturgicalDay"`
	Readings      []Reading `json:"readings"`
	Fallback      bool      `json:"fallback,omitempty"`
	Error         string    `json:"error,omitempty"`
}

func (d *DailyReadings) Unavailable() bool {
	return d.Error != ""
}

// Err returns ErrAggregateUnavailable for an error result and nil otherwise.
func (d *DailyReadings) Err() error {
	if d.Unavailable() {
		return ErrAggregateUnavailable
	}
	return nil
}

// SourceTag names where the readings came from, as stored with a reading row.
func (d *DailyReadings) SourceTag() string {
	if d.Fallback {
		return SourceFallback
	}
	return SourcePrimary
}

// Label is the title stored with a reading row.
func (d *DailyReadings) Label() string {
	if d.LiturgicalDay == "" {
		return "Daily Readings"
	}
	return d.LiturgicalDay
}

func (d *DailyReadings) clone() *DailyReadings {
	out := *d
	out.Readings = make([]Reading, len(d.Readings))
	for i, r := range d.Readings {
		if r.AlternativeTranslations != nil {
			r.AlternativeTranslations = append([]AlternativeTranslation(nil), r.AlternativeTranslations...)
		}
		if r.CrossReferences != nil {
			r.CrossReferences = append([]json.RawMessage(nil), r.CrossReferences...)
		}
		out.Readings[i] = r
	}
	return &out
}
