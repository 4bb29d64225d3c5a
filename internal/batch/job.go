// Package batch checks many documents concurrently with a fixed worker
// pool. Each document gets its own job record so callers can report
// per-file outcomes after the batch finishes.
package batch

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/doccheck/internal/docmodel"
)

// JobStatus represents the state of one document check.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusChecking  JobStatus = "checking"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job tracks the state of a single document check.
type Job struct {
	mu sync.Mutex

	ID   string
	Path string

	Status JobStatus
	Report *docmodel.Report

	CreatedAt time.Time
	UpdatedAt time.Time

	errors []string
}

func NewJob(path string) *Job {
	now := time.Now()
	return &Job{
		ID:        strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
		Path:      path,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.UpdatedAt = time.Now()
}

func (j *Job) fail(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusFailed
	j.errors = append(j.errors, msg)
	j.UpdatedAt = time.Now()
}

func (j *Job) complete(report *docmodel.Report) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusCompleted
	j.Report = report
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string           `json:"job_id"`
	Path        string           `json:"path"`
	Status      JobStatus        `json:"status"`
	TotalIssues int              `json:"total_issues"`
	Report      *docmodel.Report `json:"report,omitempty"`
	Errors      []string         `json:"errors"`
}

// Snapshot returns a JSON-safe copy of the job state. The full report is
// attached only on request; the issue count is always carried.
func (j *Job) Snapshot(includeReport bool) JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.errors
	if errs == nil {
		errs = []string{}
	}
	snap := JobSnapshot{
		ID:     j.ID,
		Path:   j.Path,
		Status: j.Status,
		Errors: errs,
	}
	if j.Report != nil {
		snap.TotalIssues = j.Report.TotalIssues
		if includeReport {
			snap.Report = j.Report
		}
	}
	return snap
}

// Summary aggregates a finished batch.
type Summary struct {
	Total       int           `json:"total"`
	Completed   int           `json:"completed"`
	Failed      int           `json:"failed"`
	TotalIssues int           `json:"total_issues"`
	Jobs        []JobSnapshot `json:"jobs"`
}

// Summarize folds per-job state into one batch-level result, preserving
// input order.
func Summarize(jobs []*Job, includeReports bool) Summary {
	summary := Summary{Total: len(jobs), Jobs: make([]JobSnapshot, 0, len(jobs))}
	for _, job := range jobs {
		snap := job.Snapshot(includeReports)
		switch snap.Status {
		case StatusCompleted:
			summary.Completed++
			summary.TotalIssues += snap.TotalIssues
		case StatusFailed:
			summary.Failed++
		}
		summary.Jobs = append(summary.Jobs, snap)
	}
	return summary
}
