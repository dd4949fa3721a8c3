package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

// WarmReadingsTask aggregates a date ahead of the first request so that it is
// served from the cache.
type WarmReadingsTask struct {
	Task
	warmer ReadingsWarmer
}

func NewWarmReadingsTask(date string, warmer ReadingsWarmer) *WarmReadingsTask {
	return &WarmReadingsTask{
		Task:   NewTask(TaskTypeWarmReadings, date),
		warmer: warmer,
	}
}

func (t *WarmReadingsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	daily, err := t.warmer.GetReadingsForDate(ctx, t.Date)
	if err != nil {
		return fmt.Errorf("failed to warm readings for %s: %w", t.Date, err)
	}

	if err := daily.Err(); err != nil {
		return fmt.Errorf("failed to warm readings for %s: %w", t.Date, err)
	}

	// Fallback results are not cached, retry until the primary source answers.
	if daily.Fallback {
		return fmt.Errorf("primary source unavailable for %s, fallback served", t.Date)
	}

	slog.Info("Task completed",
		"type", "WarmReadings",
		"date", t.Date,
		"duration", t.GetDuration(),
		"readings", len(daily.Readings))

	return nil
}
