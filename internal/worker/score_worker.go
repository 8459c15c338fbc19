package worker

import (
	"context"
	"errors"
	"time"

	"veloraMarket/pkg/logger"
	"veloraMarket/pkg/metrics"
)

// ErrQueueFull is returned by Submit when the bounded queue is saturated.
// Callers see the backpressure instead of tasks vanishing.
var ErrQueueFull = errors.New("score worker queue is full")

// ScoreTask is the post-interaction upkeep unit: after a new interaction
// row lands, cached trending results are stale and get invalidated.
type ScoreTask struct {
	UserID    string
	ProductID string
	QueuedAt  time.Time
}

// TrendingInvalidator drops any cached trending responses.
type TrendingInvalidator interface {
	InvalidateTrending(ctx context.Context) error
}

// ScoreWorker consumes score tasks from a bounded queue on a single
// goroutine. Serving never depends on it; a failed task only means a cache
// stays warm slightly longer.
type ScoreWorker struct {
	tasks chan ScoreTask
	cache TrendingInvalidator
}

func NewScoreWorker(cache TrendingInvalidator, queueSize int) *ScoreWorker {
	if queueSize < 1 {
		queueSize = 1
	}

	return &ScoreWorker{
		tasks: make(chan ScoreTask, queueSize),
		cache: cache,
	}
}

// Submit enqueues a task without blocking. Returns ErrQueueFull when the
// queue is saturated.
func (w *ScoreWorker) Submit(task ScoreTask) error {
	select {
	case w.tasks <- task:
		metrics.ScoreWorkerQueueDepth.Set(float64(len(w.tasks)))
		return nil
	default:
		metrics.ScoreWorkerDropped.Inc()
		return ErrQueueFull
	}
}

// Run processes tasks until ctx is cancelled.
func (w *ScoreWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("score worker stopping", "pending", len(w.tasks))
			return
		case task := <-w.tasks:
			metrics.ScoreWorkerQueueDepth.Set(float64(len(w.tasks)))
			w.handle(ctx, task)
		}
	}
}

func (w *ScoreWorker) handle(ctx context.Context, task ScoreTask) {
	taskCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := w.cache.InvalidateTrending(taskCtx); err != nil {
		metrics.ScoreWorkerFailures.Inc()
		logger.Error("score task failed", "product_id", task.ProductID, "error", err)
	}
}
