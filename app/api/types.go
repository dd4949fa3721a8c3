package api

import (
	"context"

	"github.com/lysyi3m/lectio/app/bible"
	"github.com/lysyi3m/lectio/app/cache"
	"github.com/lysyi3m/lectio/app/database"
	"github.com/lysyi3m/lectio/app/feed"
	"github.com/lysyi3m/lectio/app/readings"
	"github.com/lysyi3m/lectio/app/reset"
)

const feedItemLimit = 30

type ReadingsServiceInterface interface {
	GetTodaysReadings(ctx context.Context) *readings.DailyReadings
	GetReadingsForDate(ctx context.Context, date string) (*readings.DailyReadings, error)
	SearchPassages(ctx context.Context, query, bibleID string) (bible.SearchResult, error)
	ListVersions(ctx context.Context) ([]bible.Version, error)
	Invalidate(date string) int
	CacheStats() cache.Stats
}

type ResetCoordinatorInterface interface {
	PerformDailyReset(ctx context.Context) (*reset.Result, error)
	CheckTodaysReadings(ctx context.Context) (bool, error)
	Today() string
}

type GeneratorInterface interface {
	Run(rows []database.Reading) (string, error)
}

var (
	_ ReadingsServiceInterface  = (*readings.Service)(nil)
	_ ResetCoordinatorInterface = (*reset.Coordinator)(nil)
	_ GeneratorInterface        = (*feed.Generator)(nil)
)

type Handler struct {
	readings    ReadingsServiceInterface
	coordinator ResetCoordinatorInterface
	readingRepo database.ReadingRepository
	generator   GeneratorInterface
}

// envelope is the body of every JSON response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}
