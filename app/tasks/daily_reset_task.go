package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type DailyResetTask struct {
	Task
	resetter Resetter
}

func NewDailyResetTask(date string, resetter Resetter) *DailyResetTask {
	return &DailyResetTask{
		Task:     NewTask(TaskTypeDailyReset, date),
		resetter: resetter,
	}
}

func (t *DailyResetTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.resetter.PerformDailyReset(ctx)
	if err != nil {
		return fmt.Errorf("failed to perform daily reset: %w", err)
	}

	// Nothing was stored; fail so the scheduler retries.
	if err := result.Readings.Err(); err != nil {
		return fmt.Errorf("daily reset for %s: %w", result.Date, err)
	}

	slog.Info("Task completed",
		"type", "DailyReset",
		"date", result.Date,
		"duration", t.GetDuration(),
		"existing", result.Existing,
		"stored", result.Stored,
		"fallback", result.Readings.Fallback,
		"archived", result.ArchivedCount)

	return nil
}
