package tasks

import (
	"context"

	"github.com/lysyi3m/lectio/app/readings"
	"github.com/lysyi3m/lectio/app/reset"
)

// TaskSchedulerInterface is what main needs from the background scheduler.
//
//	scheduler := NewScheduler(coordinator, readingsService)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

type Resetter interface {
	PerformDailyReset(ctx context.Context) (*reset.Result, error)
	CheckTodaysReadings(ctx context.Context) (bool, error)
	Today() string
}

type ReadingsWarmer interface {
	GetReadingsForDate(ctx context.Context, date string) (*readings.DailyReadings, error)
}

var (
	_ Resetter       = (*reset.Coordinator)(nil)
	_ ReadingsWarmer = (*readings.Service)(nil)
)
