package usccb

import (
	"errors"
	"time"
)

var (
	// ErrSourceUnavailable covers every network, status and parse failure of the
	// primary source. Callers see a single condition.
	ErrSourceUnavailable = errors.New("readings source unavailable")
	ErrInvalidDate       = errors.New("invalid date, expected YYYY-MM-DD")
)

const DateLayout = "2006-01-02"

// Document is a parsed liturgical-day page.
type Document struct {
	DateLabel     string
	LiturgicalDay string
	Readings      []Reading
}

// Reading is one block of the page: the h3 title, the h4 reference and the
// paragraphs that follow.
type Reading struct {
	Title     string
	Reference string
	Content   string
}

func (d Document) clone() Document {
	out := d
	out.Readings = make([]Reading, len(d.Readings))
	copy(out.Readings, d.Readings)
	return out
}

// FormatDate renders t as a UTC ISO date.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate validates a YYYY-MM-DD string.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
