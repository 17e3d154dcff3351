package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikaTepe/keyscope/internal/logging"
	"github.com/MikaTepe/keyscope/internal/storage"
	"github.com/MikaTepe/keyscope/pkg/types"
)

type stubExtractor struct {
	calls     int32
	extractFn func(req types.ExtractionRequest) (*types.ExtractionResult, error)
}

func (s *stubExtractor) Extract(ctx context.Context, req types.ExtractionRequest) (*types.ExtractionResult, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.extractFn != nil {
		return s.extractFn(req)
	}
	return &types.ExtractionResult{
		Keywords:           []types.Keyword{{Keyword: "solar power", Score: 0.9, NgramSize: 2}},
		TotalKeywordsFound: 1,
	}, nil
}

func newTestQueue(t *testing.T, ext Extractor) (*Queue, storage.Storage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	q := New(store, ext, logging.Nop(), WithWorkers(2), WithMaxRetries(3))
	q.retryDelay = time.Millisecond
	return q, store
}

func waitForTerminal(t *testing.T, q *Queue, id string) *storage.Job {
	t.Helper()
	var job *storage.Job
	require.Eventually(t, func() bool {
		var err error
		job, err = q.Get(context.Background(), id)
		if err != nil {
			return false
		}
		return job.Status == storage.JobStatusDone || job.Status == storage.JobStatusFailed
	}, 5*time.Second, 10*time.Millisecond)
	return job
}

func TestQueue_EnqueueAndComplete(t *testing.T) {
	ext := &stubExtractor{}
	q, _ := newTestQueue(t, ext)
	require.NoError(t, q.Start(context.Background()))
	defer q.Stop()

	id, err := q.Enqueue(context.Background(), types.NewExtractionRequest("document about solar power"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	job := waitForTerminal(t, q, id)
	assert.Equal(t, storage.JobStatusDone, job.Status)
	assert.Equal(t, 1, job.Attempts)
	require.NotNil(t, job.ResultJSON)

	var result types.ExtractionResult
	require.NoError(t, json.Unmarshal([]byte(*job.ResultJSON), &result))
	require.Len(t, result.Keywords, 1)
	assert.Equal(t, "solar power", result.Keywords[0].Keyword)
}

func TestQueue_EnqueueRejectsInvalidRequest(t *testing.T) {
	q, _ := newTestQueue(t, &stubExtractor{})

	_, err := q.Enqueue(context.Background(), types.NewExtractionRequest(""))
	assert.ErrorIs(t, err, types.ErrTextTooShort)
}

func TestQueue_TransientFailureRetries(t *testing.T) {
	ext := &stubExtractor{}
	ext.extractFn = func(req types.ExtractionRequest) (*types.ExtractionResult, error) {
		if atomic.LoadInt32(&ext.calls) < 3 {
			return nil, fmt.Errorf("%w: scorer unavailable", types.ErrScorerFailed)
		}
		return &types.ExtractionResult{}, nil
	}
	q, _ := newTestQueue(t, ext)
	require.NoError(t, q.Start(context.Background()))
	defer q.Stop()

	id, err := q.Enqueue(context.Background(), types.NewExtractionRequest("retry fodder"))
	require.NoError(t, err)

	job := waitForTerminal(t, q, id)
	assert.Equal(t, storage.JobStatusDone, job.Status)
	assert.Equal(t, 3, job.Attempts)
}

func TestQueue_TransientFailureExhaustsRetries(t *testing.T) {
	ext := &stubExtractor{
		extractFn: func(req types.ExtractionRequest) (*types.ExtractionResult, error) {
			return nil, fmt.Errorf("%w: scorer down", types.ErrScorerNotReady)
		},
	}
	q, _ := newTestQueue(t, ext)
	require.NoError(t, q.Start(context.Background()))
	defer q.Stop()

	id, err := q.Enqueue(context.Background(), types.NewExtractionRequest("doomed text"))
	require.NoError(t, err)

	job := waitForTerminal(t, q, id)
	assert.Equal(t, storage.JobStatusFailed, job.Status)
	assert.Equal(t, 3, job.Attempts)
	require.NotNil(t, job.Error)
	assert.Contains(t, *job.Error, "scorer down")
}

func TestQueue_PermanentFailureDoesNotRetry(t *testing.T) {
	ext := &stubExtractor{
		extractFn: func(req types.ExtractionRequest) (*types.ExtractionResult, error) {
			return nil, errors.New("unrecoverable")
		},
	}
	q, _ := newTestQueue(t, ext)
	require.NoError(t, q.Start(context.Background()))
	defer q.Stop()

	id, err := q.Enqueue(context.Background(), types.NewExtractionRequest("some text"))
	require.NoError(t, err)

	job := waitForTerminal(t, q, id)
	assert.Equal(t, storage.JobStatusFailed, job.Status)
	assert.Equal(t, 1, job.Attempts)
}

func TestQueue_GetUnknownJob(t *testing.T) {
	q, _ := newTestQueue(t, &stubExtractor{})

	_, err := q.Get(context.Background(), "no-such-job")
	assert.ErrorIs(t, err, types.ErrJobNotFound)
}

func TestQueue_RecoversInterruptedJobs(t *testing.T) {
	ext := &stubExtractor{}
	q, store := newTestQueue(t, ext)

	// A job left mid-flight by a previous process
	payload, err := json.Marshal(types.NewExtractionRequest("interrupted work"))
	require.NoError(t, err)
	orphan := &storage.Job{
		ID:          "orphan-1",
		Status:      storage.JobStatusRunning,
		RequestJSON: string(payload),
	}
	require.NoError(t, store.CreateJob(context.Background(), orphan))

	require.NoError(t, q.Start(context.Background()))
	defer q.Stop()

	job := waitForTerminal(t, q, "orphan-1")
	assert.Equal(t, storage.JobStatusDone, job.Status)
}
