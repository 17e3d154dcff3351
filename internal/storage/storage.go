package storage

import (
	"context"
	"time"
)

// JobStatus is the lifecycle state of an asynchronous extraction job
type JobStatus string

const (
	JobStatusPending JobStatus = "pending"
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusFailed  JobStatus = "failed"
)

// Job represents one persisted asynchronous extraction request
type Job struct {
	ID          string
	Status      JobStatus
	RequestJSON string
	ResultJSON  *string // Nullable until the job succeeds
	Error       *string // Nullable
	Attempts    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// JobCounts holds per-status job totals
type JobCounts struct {
	Pending int
	Running int
	Done    int
	Failed  int
}

// Storage defines the interface for persisting extraction jobs
type Storage interface {
	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	UpdateJob(ctx context.Context, job *Job) error
	ListJobsByStatus(ctx context.Context, status JobStatus, limit int) ([]*Job, error)
	CountJobs(ctx context.Context) (*JobCounts, error)
	DeleteJobsBefore(ctx context.Context, cutoff time.Time) (deletedCount int, err error)

	Close() error
}
