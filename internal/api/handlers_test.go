package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikaTepe/keyscope/internal/jobs"
	"github.com/MikaTepe/keyscope/internal/logging"
	"github.com/MikaTepe/keyscope/internal/scorer"
	"github.com/MikaTepe/keyscope/internal/storage"
	"github.com/MikaTepe/keyscope/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubExtractor struct {
	extractFn func(req types.ExtractionRequest) (*types.ExtractionResult, error)
}

func (s *stubExtractor) Extract(ctx context.Context, req types.ExtractionRequest) (*types.ExtractionResult, error) {
	if s.extractFn != nil {
		return s.extractFn(req)
	}
	return &types.ExtractionResult{
		RequestID:          req.RequestID,
		Keywords:           []types.Keyword{{Keyword: "solar power", Score: 0.9, NgramSize: 2}},
		TotalKeywordsFound: 1,
	}, nil
}

type stubReadyScorer struct {
	err error
}

func (s *stubReadyScorer) Score(ctx context.Context, window string, p scorer.Params) ([]scorer.Candidate, error) {
	return nil, nil
}
func (s *stubReadyScorer) Ready(ctx context.Context) error { return s.err }
func (s *stubReadyScorer) Name() string                    { return "stub" }
func (s *stubReadyScorer) Model() string                   { return "stub-v1" }
func (s *stubReadyScorer) Close() error                    { return nil }

func newTestRouter(ext jobs.Extractor) *gin.Engine {
	return NewRouter(RouterConfig{
		ExtractHandler: NewExtractHandler(ext, logging.Nop()),
		HealthHandler:  NewHealthHandler(&stubReadyScorer{}),
		Log:            logging.Nop(),
	})
}

func performJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestExtractEndpoint(t *testing.T) {
	r := newTestRouter(&stubExtractor{})

	w := performJSON(t, r, http.MethodPost, "/api/v1/keywords/extract",
		types.NewExtractionRequest("text about solar power"))
	require.Equal(t, http.StatusOK, w.Code)

	var result types.ExtractionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Keywords, 1)
	assert.Equal(t, "solar power", result.Keywords[0].Keyword)
	// The middleware-minted correlation ID flows into the request
	assert.NotEmpty(t, result.RequestID)
	assert.Equal(t, w.Header().Get(RequestIDHeader), result.RequestID)
}

func TestExtractEndpoint_MalformedBody(t *testing.T) {
	r := newTestRouter(&stubExtractor{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/keywords/extract",
		strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractEndpoint_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", types.ErrTextTooShort, http.StatusBadRequest},
		{"not ready", types.ErrScorerNotReady, http.StatusServiceUnavailable},
		{"scorer failure", types.ErrScorerFailed, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&stubExtractor{
				extractFn: func(req types.ExtractionRequest) (*types.ExtractionResult, error) {
					return nil, fmt.Errorf("wrapped: %w", tt.err)
				},
			})
			w := performJSON(t, r, http.MethodPost, "/api/v1/keywords/extract",
				types.NewExtractionRequest("any text"))
			assert.Equal(t, tt.want, w.Code)

			var envelope ErrorEnvelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
			assert.Equal(t, "extraction_failed", envelope.Error.Code)
		})
	}
}

func TestBatchEndpoint_Parallel(t *testing.T) {
	r := newTestRouter(&stubExtractor{
		extractFn: func(req types.ExtractionRequest) (*types.ExtractionResult, error) {
			if strings.Contains(req.Text, "bad") {
				return nil, fmt.Errorf("%w: no luck", types.ErrScorerFailed)
			}
			return &types.ExtractionResult{TotalKeywordsFound: 1}, nil
		},
	})

	batch := types.BatchRequest{Items: []types.ExtractionRequest{
		types.NewExtractionRequest("good one"),
		types.NewExtractionRequest("bad one"),
		types.NewExtractionRequest("good two"),
	}}
	w := performJSON(t, r, http.MethodPost, "/api/v1/keywords/extract/batch", batch)
	require.Equal(t, http.StatusOK, w.Code)

	var result types.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 3, result.Summary.Total)
	assert.Equal(t, 2, result.Summary.Succeeded)
	assert.Equal(t, 1, result.Summary.Failed)
	require.Len(t, result.Results, 3)
	assert.True(t, result.Results[0].Success)
	assert.False(t, result.Results[1].Success)
	assert.Contains(t, result.Results[1].Error, "no luck")
	assert.True(t, result.Results[2].Success)
}

func TestBatchEndpoint_FailFastStopsEarly(t *testing.T) {
	r := newTestRouter(&stubExtractor{
		extractFn: func(req types.ExtractionRequest) (*types.ExtractionResult, error) {
			if strings.Contains(req.Text, "bad") {
				return nil, errors.New("stop here")
			}
			return &types.ExtractionResult{}, nil
		},
	})

	batch := types.BatchRequest{
		Items: []types.ExtractionRequest{
			types.NewExtractionRequest("good one"),
			types.NewExtractionRequest("bad one"),
			types.NewExtractionRequest("never reached"),
		},
		FailFast: true,
	}
	w := performJSON(t, r, http.MethodPost, "/api/v1/keywords/extract/batch", batch)
	require.Equal(t, http.StatusOK, w.Code)

	var result types.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 3, result.Summary.Total)
	assert.Equal(t, 1, result.Summary.Succeeded)
	assert.Equal(t, 1, result.Summary.Failed)
	assert.Len(t, result.Results, 2)
}

func TestBatchEndpoint_EmptyBatch(t *testing.T) {
	r := newTestRouter(&stubExtractor{})

	w := performJSON(t, r, http.MethodPost, "/api/v1/keywords/extract/batch",
		types.BatchRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	r := newTestRouter(&stubExtractor{})

	w := performJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performJSON(t, r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var ready map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ready))
	assert.Equal(t, "stub", ready["scorer"])
}

func TestReadyEndpoint_ScorerDown(t *testing.T) {
	r := NewRouter(RouterConfig{
		HealthHandler: NewHealthHandler(&stubReadyScorer{err: errors.New("loading")}),
		Log:           logging.Nop(),
	})

	w := performJSON(t, r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestJobEndpoints(t *testing.T) {
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	queue := jobs.New(store, &stubExtractor{}, logging.Nop(), jobs.WithWorkers(1))
	require.NoError(t, queue.Start(context.Background()))
	t.Cleanup(queue.Stop)

	r := NewRouter(RouterConfig{
		JobHandler: NewJobHandler(queue, logging.Nop()),
		Log:        logging.Nop(),
	})

	w := performJSON(t, r, http.MethodPost, "/api/v1/jobs",
		types.NewExtractionRequest("async document text"))
	require.Equal(t, http.StatusAccepted, w.Code)

	var created map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	jobID := created["job_id"]
	require.NotEmpty(t, jobID)

	var view jobView
	require.Eventually(t, func() bool {
		w := performJSON(t, r, http.MethodGet, "/api/v1/jobs/"+jobID, nil)
		if w.Code != http.StatusOK {
			return false
		}
		if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
			return false
		}
		return view.Status == string(storage.JobStatusDone)
	}, 5*time.Second, 10*time.Millisecond)

	require.NotNil(t, view.Result)
	require.Len(t, view.Result.Keywords, 1)
	assert.Equal(t, "solar power", view.Result.Keywords[0].Keyword)
}

func TestGetJob_NotFound(t *testing.T) {
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	queue := jobs.New(store, &stubExtractor{}, logging.Nop())
	r := NewRouter(RouterConfig{
		JobHandler: NewJobHandler(queue, logging.Nop()),
		Log:        logging.Nop(),
	})

	w := performJSON(t, r, http.MethodGet, "/api/v1/jobs/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateJob_InvalidRequest(t *testing.T) {
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	queue := jobs.New(store, &stubExtractor{}, logging.Nop())
	r := NewRouter(RouterConfig{
		JobHandler: NewJobHandler(queue, logging.Nop()),
		Log:        logging.Nop(),
	})

	w := performJSON(t, r, http.MethodPost, "/api/v1/jobs",
		types.NewExtractionRequest(""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
