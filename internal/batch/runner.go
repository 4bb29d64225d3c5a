package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/doccheck/internal/docmodel"
)

// CheckFunc runs the full check pass for one document.
type CheckFunc func(ctx context.Context, path string) (*docmodel.Report, error)

// Runner drains a batch of documents through a fixed pool of workers.
type Runner struct {
	check   CheckFunc
	workers int
	log     *slog.Logger
}

func NewRunner(check CheckFunc, workers int, log *slog.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{check: check, workers: workers, log: log}
}

// Run checks every path and returns one job per input, in input order.
// A failed document never aborts the batch; its job carries the error.
func (r *Runner) Run(ctx context.Context, paths []string) []*Job {
	jobs := make([]*Job, len(paths))
	queue := make(chan *Job, len(paths))
	for i, path := range paths {
		jobs[i] = NewJob(path)
		queue <- jobs[i]
	}
	close(queue)

	var wg sync.WaitGroup
	for range r.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				select {
				case <-ctx.Done():
					job.fail(ctx.Err().Error())
					continue
				default:
				}
				r.process(ctx, job)
			}
		}()
	}
	wg.Wait()

	return jobs
}

// process runs one check, retrying transient upstream failures with
// exponential backoff.
func (r *Runner) process(ctx context.Context, job *Job) {
	job.SetStatus(StatusChecking)
	log := r.log.With("job_id", job.ID, "path", job.Path)

	var report *docmodel.Report
	var err error
	for attempt := 0; ; attempt++ {
		report, err = r.check(ctx, job.Path)
		if err == nil || !IsRetryable(err) || attempt >= MaxRetries {
			break
		}
		delay := Backoff(attempt)
		log.Warn("transient failure, retrying", "attempt", attempt+1, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			job.fail(ctx.Err().Error())
			return
		case <-time.After(delay):
		}
	}

	if err != nil {
		log.Error("check failed", "error", err)
		job.fail(err.Error())
		return
	}
	job.complete(report)
	log.Info("check completed", "issues", report.TotalIssues)
}
