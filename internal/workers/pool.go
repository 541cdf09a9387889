package workers

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"blsearch/internal/lib/logger/sl"
)

// WorkerPool runs retrieval jobs on a fixed number of workers. Results
// are delivered on Results in completion order; the channel is closed
// once every job has finished.
type WorkerPool struct {
	log           *slog.Logger
	workersCount  int
	jobs          chan Job
	Results       chan Result
	activeWorkers int32
}

func New(log *slog.Logger, numWorkers int) *WorkerPool {
	return &WorkerPool{
		log:          log,
		workersCount: numWorkers,
		jobs:         make(chan Job),
		Results:      make(chan Result),
	}
}

func (wp *WorkerPool) AddJob(job Job) {
	wp.jobs <- job
}

// Finish signals that no more jobs will be added. Workers drain the
// queue and exit.
func (wp *WorkerPool) Finish() {
	close(wp.jobs)
}

func (wp *WorkerPool) ActiveWorkersCount() int32 {
	return atomic.LoadInt32(&wp.activeWorkers)
}

func (wp *WorkerPool) Run(ctx context.Context) {
	var wg sync.WaitGroup

	for i := 0; i < wp.workersCount; i++ {
		wg.Add(1)
		go worker(ctx, &wg, wp)
	}

	wg.Wait()
	close(wp.Results)
}

func worker(ctx context.Context, wg *sync.WaitGroup, wp *WorkerPool) {
	defer wg.Done()

	atomic.AddInt32(&wp.activeWorkers, 1)
	defer atomic.AddInt32(&wp.activeWorkers, -1)

	for {
		select {
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			result := job.execute(ctx)
			if result.Err != nil {
				wp.log.Error("Job failed", "job", string(job.Description.ID), "error", sl.Err(result.Err))
			}
			select {
			case wp.Results <- result:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			wp.log.Info("Worker cancelled", "error", sl.Err(ctx.Err()))
			return
		}
	}
}
