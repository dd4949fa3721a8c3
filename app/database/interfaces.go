package database

import (
	"context"
)

type ReadingRepository interface {
	ReadingExistsForDate(ctx context.Context, date string) (bool, error)
	GetReadingByDate(ctx context.Context, date string) (*Reading, error)
	GetRecentReadings(ctx context.Context, limit int) ([]Reading, error)
	GetReadingCount(ctx context.Context) (int, error)

	// InsertReading reports false when a row for date already exists.
	InsertReading(ctx context.Context, date, title, content, source string) (bool, error)
}

type MessageRepository interface {
	CountMessagesNotOnDate(ctx context.Context, date string) (int, error)
}
