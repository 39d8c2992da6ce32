package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/arkclose/netsheet-tracker/internal/pipeline"
	"github.com/arkclose/netsheet-tracker/internal/repository"
)

// ProcessorQueue runs documents through the pipeline on a fixed worker pool
// and persists each outcome. Document pipelines share no mutable state, so
// workers never coordinate beyond the channel.
type ProcessorQueue struct {
	proc    *pipeline.Processor
	jobs    repository.JobRepository
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewProcessorQueue(proc *pipeline.Processor, jobs repository.JobRepository, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		jobs:    jobs,
		logger:  logger,
		workers: 2,
		timeout: 5 * time.Minute,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					q.run(workerID, job)
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	_ = q.jobs.MarkRunning(ctx, job.JobID)

	res, err := q.proc.ProcessDocument(ctx, job.PDFPath)
	if err != nil {
		q.logger.Error("processing failed", "worker_id", workerID, "job_id", job.JobID, "error", err)
		_ = q.jobs.MarkFailed(ctx, job.JobID, err.Error())
		return
	}

	if err := q.jobs.SaveResult(ctx, job.JobID, res); err != nil {
		q.logger.Error("persist failed", "worker_id", workerID, "job_id", job.JobID, "error", err)
		return
	}
	q.logger.Info("processed document", "worker_id", workerID, "job_id", job.JobID, "file", res.SourceFile)
}

func (q *ProcessorQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "job_id", job.JobID)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued document", "job_id", job.JobID, "file", job.PDFPath)
	default:
		q.logger.Warn("queue full, applying backpressure", "job_id", job.JobID)
		q.ch <- job
	}
	return nil
}

func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
