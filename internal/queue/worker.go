// internal/queue/worker.go
package queue

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handler processes one job. A non-nil error triggers the retry policy.
type Handler func(ctx context.Context, job *Job) error

// Worker pulls jobs from a Queue and dispatches them to type-registered
// handlers with bounded concurrency. Jobs are unordered across goroutines.
type Worker struct {
	queue       *Queue
	concurrency int
	handlers    map[string]Handler
	logger      *zap.Logger
}

func NewWorker(queue *Queue, concurrency int, logger *zap.Logger) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		queue:       queue,
		concurrency: concurrency,
		handlers:    make(map[string]Handler),
		logger:      logger,
	}
}

// Register binds a handler to a job type. Not safe to call after Run.
func (w *Worker) Register(jobType string, h Handler) {
	w.handlers[jobType] = h
}

// Run consumes jobs until ctx is canceled. It starts one mover goroutine
// promoting due retries plus `concurrency` consumer goroutines.
func (w *Worker) Run(ctx context.Context) {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.runMover(ctx)
	}()

	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.runConsumer(ctx)
		}()
	}

	wg.Wait()
}

func (w *Worker) runMover(ctx context.Context) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.queue.promoteDue(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("failed to promote delayed jobs", zap.Error(err))
			}
		}
	}
}

func (w *Worker) runConsumer(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		job, err := w.queue.pop(ctx, 2*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("failed to pop job", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}

		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job *Job) {
	handler, ok := w.handlers[job.Type]
	if !ok {
		// Unknown subtypes are logged and dropped, not errors.
		w.logger.Warn("unknown job type", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return
	}

	job.Attempts++
	if err := handler(ctx, job); err != nil {
		if job.Attempts >= w.queue.opts.MaxAttempts {
			// Attempts exhausted: the job is dropped. Notification loss is
			// an accepted failure mode here.
			w.logger.Error("job dropped after final attempt",
				zap.String("job_id", job.ID),
				zap.String("type", job.Type),
				zap.Int("attempts", job.Attempts),
				zap.Error(err),
			)
			return
		}

		delay := w.queue.opts.Backoff(job.Attempts)
		w.logger.Warn("job failed, scheduling retry",
			zap.String("job_id", job.ID),
			zap.String("type", job.Type),
			zap.Int("attempts", job.Attempts),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := w.queue.requeueLater(ctx, job, delay); err != nil {
			w.logger.Error("failed to schedule retry", zap.String("job_id", job.ID), zap.Error(err))
		}
		return
	}

	w.logger.Info("job completed", zap.String("job_id", job.ID), zap.String("type", job.Type))
}
