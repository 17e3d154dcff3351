package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MikaTepe/keyscope/internal/logging"
	"github.com/MikaTepe/keyscope/internal/storage"
	"github.com/MikaTepe/keyscope/pkg/types"
)

const (
	// DefaultWorkers is the number of concurrent job workers
	DefaultWorkers = 2
	// DefaultMaxRetries bounds attempts per job for transient failures
	DefaultMaxRetries = 3
	// DefaultQueueDepth is the buffered channel capacity
	DefaultQueueDepth = 256

	// retryBaseDelay grows exponentially per attempt
	retryBaseDelay = 2 * time.Second
)

// ErrQueueFull is returned when the queue cannot accept more jobs
var ErrQueueFull = errors.New("job queue full")

// Extractor runs one extraction request to completion
type Extractor interface {
	Extract(ctx context.Context, req types.ExtractionRequest) (*types.ExtractionResult, error)
}

// Queue dispatches persisted extraction jobs to a pool of workers
type Queue struct {
	store      storage.Storage
	ext        Extractor
	log        *logging.Logger
	workers    int
	maxRetries int
	retryDelay time.Duration
	pending    chan string

	cancel context.CancelFunc
	group  *errgroup.Group
}

// Option configures a Queue
type Option func(*Queue)

// WithWorkers sets the worker count
func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

// WithMaxRetries sets the attempt limit per job
func WithMaxRetries(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.maxRetries = n
		}
	}
}

// New creates a job queue backed by the given store and extractor
func New(store storage.Storage, ext Extractor, log *logging.Logger, opts ...Option) *Queue {
	q := &Queue{
		store:      store,
		ext:        ext,
		log:        log,
		workers:    DefaultWorkers,
		maxRetries: DefaultMaxRetries,
		retryDelay: retryBaseDelay,
		pending:    make(chan string, DefaultQueueDepth),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start launches the worker pool and requeues jobs left over from a previous
// run. It returns immediately; call Stop to drain and shut down.
func (q *Queue) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel

	if err := q.recover(ctx); err != nil {
		cancel()
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	q.group = g
	for i := 0; i < q.workers; i++ {
		g.Go(func() error {
			q.worker(gctx)
			return nil
		})
	}

	q.log.Info("job queue started", "workers", q.workers, "max_retries", q.maxRetries)
	return nil
}

// Stop signals the workers and waits for in-flight jobs to finish
func (q *Queue) Stop() {
	if q.cancel != nil {
		q.cancel()
	}
	if q.group != nil {
		_ = q.group.Wait()
	}
}

// Enqueue persists a request as a pending job and hands it to the workers
func (q *Queue) Enqueue(ctx context.Context, req types.ExtractionRequest) (string, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return "", err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	job := &storage.Job{
		ID:          uuid.New().String(),
		Status:      storage.JobStatusPending,
		RequestJSON: string(payload),
	}
	if err := q.store.CreateJob(ctx, job); err != nil {
		return "", err
	}

	select {
	case q.pending <- job.ID:
	default:
		// Stays pending in the store; a later recover pass picks it up
		q.log.Warn("job queue full, job deferred", "job_id", job.ID)
		return job.ID, ErrQueueFull
	}

	q.log.Info("job enqueued", "job_id", job.ID)
	return job.ID, nil
}

// Get returns the persisted state of a job
func (q *Queue) Get(ctx context.Context, id string) (*storage.Job, error) {
	job, err := q.store.GetJob(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", types.ErrJobNotFound, id)
	}
	return job, err
}

// recover requeues jobs that never reached a terminal state
func (q *Queue) recover(ctx context.Context) error {
	for _, status := range []storage.JobStatus{storage.JobStatusRunning, storage.JobStatusPending} {
		jobs, err := q.store.ListJobsByStatus(ctx, status, cap(q.pending))
		if err != nil {
			return fmt.Errorf("failed to recover %s jobs: %w", status, err)
		}
		for _, job := range jobs {
			if status == storage.JobStatusRunning {
				job.Status = storage.JobStatusPending
				if err := q.store.UpdateJob(ctx, job); err != nil {
					return err
				}
			}
			select {
			case q.pending <- job.ID:
			default:
				q.log.Warn("recovery queue full", "job_id", job.ID)
			}
		}
		if len(jobs) > 0 {
			q.log.Info("recovered jobs", "status", status, "count", len(jobs))
		}
	}
	return nil
}

func (q *Queue) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-q.pending:
			q.process(ctx, id)
		}
	}
}

func (q *Queue) process(ctx context.Context, id string) {
	job, err := q.store.GetJob(ctx, id)
	if err != nil {
		q.log.Error("failed to load job", "job_id", id, "error", err)
		return
	}

	var req types.ExtractionRequest
	if err := json.Unmarshal([]byte(job.RequestJSON), &req); err != nil {
		q.fail(ctx, job, fmt.Errorf("corrupt request payload: %w", err))
		return
	}

	now := time.Now()
	job.Status = storage.JobStatusRunning
	job.StartedAt = &now
	if err := q.store.UpdateJob(ctx, job); err != nil {
		q.log.Error("failed to mark job running", "job_id", id, "error", err)
		return
	}

	for {
		job.Attempts++
		result, err := q.ext.Extract(ctx, req)
		if err == nil {
			q.complete(ctx, job, result)
			return
		}

		if !isTransient(err) || job.Attempts >= q.maxRetries {
			q.fail(ctx, job, err)
			return
		}

		delay := q.retryDelay * time.Duration(1<<(job.Attempts-1))
		q.log.Warn("job attempt failed, retrying",
			"job_id", job.ID, "attempt", job.Attempts, "delay", delay, "error", err)
		if err := q.store.UpdateJob(ctx, job); err != nil {
			q.log.Error("failed to record job attempt", "job_id", job.ID, "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (q *Queue) complete(ctx context.Context, job *storage.Job, result *types.ExtractionResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		q.fail(ctx, job, fmt.Errorf("failed to encode result: %w", err))
		return
	}

	now := time.Now()
	resultJSON := string(payload)
	job.Status = storage.JobStatusDone
	job.ResultJSON = &resultJSON
	job.CompletedAt = &now
	if err := q.store.UpdateJob(ctx, job); err != nil {
		q.log.Error("failed to mark job done", "job_id", job.ID, "error", err)
		return
	}
	q.log.Info("job completed", "job_id", job.ID, "attempts", job.Attempts)
}

func (q *Queue) fail(ctx context.Context, job *storage.Job, cause error) {
	now := time.Now()
	msg := cause.Error()
	job.Status = storage.JobStatusFailed
	job.Error = &msg
	job.CompletedAt = &now
	if err := q.store.UpdateJob(ctx, job); err != nil {
		q.log.Error("failed to mark job failed", "job_id", job.ID, "error", err)
		return
	}
	q.log.Error("job failed", "job_id", job.ID, "attempts", job.Attempts, "error", cause)
}

// Scorer outages are worth retrying; validation errors are not
func isTransient(err error) bool {
	return errors.Is(err, types.ErrScorerFailed) || errors.Is(err, types.ErrScorerNotReady)
}
