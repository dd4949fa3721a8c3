// Package reset stores each day's readings once and reports on messages left
// over from earlier days.
package reset

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/lectio/app/database"
	"github.com/lysyi3m/lectio/app/readings"
	"github.com/lysyi3m/lectio/app/usccb"
)

type Aggregator interface {
	GetReadingsForDate(ctx context.Context, date string) (*readings.DailyReadings, error)
}

type Result struct {
	Date          string                  `json:"date"`
	Readings      *readings.DailyReadings `json:"readings"`
	ArchivedCount int                     `json:"archivedCount"`
	Existing      bool                    `json:"existing"`
	Stored        bool                    `json:"stored"`
}

type Coordinator struct {
	aggregator  Aggregator
	readingRepo database.ReadingRepository
	messageRepo database.MessageRepository
	now         func() time.Time
}

func NewCoordinator(aggregator Aggregator, readingRepo database.ReadingRepository, messageRepo database.MessageRepository) *Coordinator {
	return &Coordinator{
		aggregator:  aggregator,
		readingRepo: readingRepo,
		messageRepo: messageRepo,
		now:         time.Now,
	}
}

func (c *Coordinator) today() string {
	return usccb.FormatDate(c.now())
}

// PerformDailyReset makes sure today's readings are stored and counts the
// messages posted on other days. Running it again on the same day returns the
// stored readings without aggregating.
func (c *Coordinator) PerformDailyReset(ctx context.Context) (*Result, error) {
	start := time.Now()
	today := c.today()

	result, err := c.fetchAndStoreReadings(ctx, today)
	if err != nil {
		return nil, err
	}

	archived, err := c.messageRepo.CountMessagesNotOnDate(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to count archived messages: %w", err)
	}
	result.ArchivedCount = archived

	slog.Info("Daily reset completed",
		"date", today,
		"existing", result.Existing,
		"stored", result.Stored,
		"archived", archived,
		"duration", time.Since(start))

	return result, nil
}

func (c *Coordinator) fetchAndStoreReadings(ctx context.Context, date string) (*Result, error) {
	stored, err := c.storedReadings(ctx, date)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		slog.Debug("Readings already stored, skipping fetch", "date", date)
		return &Result{Date: date, Readings: stored, Existing: true}, nil
	}

	daily, err := c.aggregator.GetReadingsForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate readings for %s: %w", date, err)
	}

	// An unavailable result is returned but not stored, so the next trigger
	// tries again.
	if daily.Unavailable() {
		slog.Warn("Readings unavailable, nothing stored", "date", date)
		return &Result{Date: date, Readings: daily}, nil
	}

	body, err := json.Marshal(daily)
	if err != nil {
		return nil, fmt.Errorf("failed to encode readings: %w", err)
	}

	inserted, err := c.readingRepo.InsertReading(ctx, date, daily.Label(), string(body), daily.SourceTag())
	if err != nil {
		return nil, fmt.Errorf("failed to store readings: %w", err)
	}

	if !inserted {
		// Another reset stored the row first; report what it stored.
		stored, err := c.storedReadings(ctx, date)
		if err != nil {
			return nil, err
		}
		if stored != nil {
			return &Result{Date: date, Readings: stored, Existing: true}, nil
		}
	}

	return &Result{Date: date, Readings: daily, Stored: inserted}, nil
}

func (c *Coordinator) storedReadings(ctx context.Context, date string) (*readings.DailyReadings, error) {
	row, err := c.readingRepo.GetReadingByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to check stored readings: %w", err)
	}
	if row == nil {
		return nil, nil
	}

	var daily readings.DailyReadings
	if err := json.Unmarshal([]byte(row.Content), &daily); err != nil {
		return nil, fmt.Errorf("failed to decode stored readings for %s: %w", date, err)
	}

	return &daily, nil
}

// CheckTodaysReadings reports whether a row for today exists.
func (c *Coordinator) CheckTodaysReadings(ctx context.Context) (bool, error) {
	exists, err := c.readingRepo.ReadingExistsForDate(ctx, c.today())
	if err != nil {
		return false, fmt.Errorf("failed to check today's readings: %w", err)
	}
	return exists, nil
}

// Today exposes the date a reset would use.
func (c *Coordinator) Today() string {
	return c.today()
}
