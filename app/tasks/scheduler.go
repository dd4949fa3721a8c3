package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/lectio/app/cfg"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	taskTimeout   = 5 * time.Minute
	maxRetryDelay = 30 * time.Second
	queueSize     = 300
)

type settings struct {
	interval      time.Duration
	resetInterval time.Duration
	workerCount   int
	retryBase     time.Duration
}

type Scheduler struct {
	resetter   Resetter
	warmer     ReadingsWarmer
	settings   settings
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	taskQueue  chan TaskInterface
	mu         sync.Mutex
	pending    map[string]bool
	lastReset  time.Time
	warmedDate string
}

func NewScheduler(resetter Resetter, warmer ReadingsWarmer) TaskSchedulerInterface {
	cfg := cfg.Get()

	return newScheduler(resetter, warmer, settings{
		interval:      time.Duration(cfg.SchedulerInterval) * time.Second,
		resetInterval: time.Duration(cfg.ResetInterval) * time.Second,
		workerCount:   cfg.WorkerCount,
		retryBase:     time.Second,
	})
}

func newScheduler(resetter Resetter, warmer ReadingsWarmer, s settings) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	if s.workerCount < 1 {
		s.workerCount = 1
	}
	if s.interval <= 0 {
		s.interval = time.Minute
	}
	if s.retryBase <= 0 {
		s.retryBase = time.Second
	}

	return &Scheduler{
		resetter:  resetter,
		warmer:    warmer,
		settings:  s,
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, queueSize),
		pending:   make(map[string]bool),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.settings.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.settings.interval)
		defer ticker.Stop()

		s.enqueueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// enqueueTasks warms the cache once per date and queues a reset while today's
// readings are missing or the reset interval has elapsed.
func (s *Scheduler) enqueueTasks() {
	today := s.resetter.Today()

	s.mu.Lock()
	warm := s.warmedDate != today
	s.mu.Unlock()

	if warm {
		if s.enqueueOnce(NewWarmReadingsTask(today, s.warmer)) {
			s.mu.Lock()
			s.warmedDate = today
			s.mu.Unlock()
		}
	}

	exists, err := s.resetter.CheckTodaysReadings(s.ctx)
	if err != nil {
		slog.Warn("Failed to check today's readings", "date", today, "error", err)
	}

	s.mu.Lock()
	due := s.settings.resetInterval > 0 && time.Since(s.lastReset) >= s.settings.resetInterval
	s.mu.Unlock()

	if exists && !due {
		slog.Debug("Readings stored, reset not due", "date", today)
		return
	}

	if s.enqueueOnce(NewDailyResetTask(today, s.resetter)) {
		s.mu.Lock()
		s.lastReset = time.Now()
		s.mu.Unlock()
	}
}

// enqueueOnce skips a task whose key is already queued or running.
func (s *Scheduler) enqueueOnce(task TaskInterface) bool {
	key := task.GetKey()

	s.mu.Lock()
	if s.pending[key] {
		s.mu.Unlock()
		slog.Debug("Task already pending, skipping", "key", key)
		return false
	}
	s.pending[key] = true
	s.mu.Unlock()

	if err := s.EnqueueTask(task); err != nil {
		s.release(task)
		slog.Warn("Failed to enqueue task", "type", string(task.GetType()), "date", task.GetDate(), "error", err)
		return false
	}
	return true
}

func (s *Scheduler) release(task TaskInterface) {
	s.mu.Lock()
	delete(s.pending, task.GetKey())
	s.mu.Unlock()
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		s.release(task)
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		s.release(task)
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	retryDelay := s.retryDelay(task.GetRetryCount())

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "date", task.GetDate(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(retryDelay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
			return
		case <-timer.C:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				s.release(task)
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			}
		}
	}()
}

// retryDelay doubles from the base delay per attempt, capped at 30s.
func (s *Scheduler) retryDelay(retry int) time.Duration {
	if retry < 1 {
		retry = 1
	}
	if retry > 16 {
		return maxRetryDelay
	}
	delay := s.settings.retryBase << uint(retry-1)
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}
