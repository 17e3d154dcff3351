package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/MikaTepe/keyscope/internal/jobs"
	"github.com/MikaTepe/keyscope/internal/logging"
	"github.com/MikaTepe/keyscope/internal/scorer"
	"github.com/MikaTepe/keyscope/internal/storage"
	"github.com/MikaTepe/keyscope/pkg/types"
)

// batchWorkers bounds concurrent items in a parallel batch
const batchWorkers = 4

// ExtractHandler serves synchronous extraction endpoints
type ExtractHandler struct {
	ext jobs.Extractor
	log *logging.Logger
}

// NewExtractHandler creates the extraction handler
func NewExtractHandler(ext jobs.Extractor, log *logging.Logger) *ExtractHandler {
	return &ExtractHandler{ext: ext, log: log}
}

// Extract handles POST /api/v1/keywords/extract
func (h *ExtractHandler) Extract(c *gin.Context) {
	var req types.ExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	if req.RequestID == "" {
		req.RequestID = requestID(c)
	}

	result, err := h.ext.Extract(c.Request.Context(), req)
	if err != nil {
		respondError(c, statusForError(err), "extraction_failed", err)
		return
	}
	respondOK(c, result)
}

// ExtractBatch handles POST /api/v1/keywords/extract/batch
func (h *ExtractHandler) ExtractBatch(c *gin.Context) {
	var batch types.BatchRequest
	if err := c.ShouldBindJSON(&batch); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	if err := batch.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_batch", err)
		return
	}

	var results []types.BatchItemResult
	if batch.FailFast {
		results = h.runBatchSequential(c, batch.Items)
	} else {
		results = h.runBatchParallel(c, batch.Items)
	}

	summary := types.BatchSummary{Total: len(batch.Items)}
	for _, r := range results {
		if r.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	respondOK(c, types.BatchResult{Results: results, Summary: summary})
}

// runBatchSequential processes items in order and stops at the first failure
func (h *ExtractHandler) runBatchSequential(c *gin.Context, items []types.ExtractionRequest) []types.BatchItemResult {
	var results []types.BatchItemResult
	for i, req := range items {
		if req.RequestID == "" {
			req.RequestID = requestID(c)
		}
		result, err := h.ext.Extract(c.Request.Context(), req)
		if err != nil {
			results = append(results, types.BatchItemResult{Index: i, Success: false, Error: err.Error()})
			break
		}
		results = append(results, types.BatchItemResult{Index: i, Success: true, Data: result})
	}
	return results
}

// runBatchParallel processes all items, collecting per-item failures
func (h *ExtractHandler) runBatchParallel(c *gin.Context, items []types.ExtractionRequest) []types.BatchItemResult {
	results := make([]types.BatchItemResult, len(items))

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.SetLimit(batchWorkers)
	for i, req := range items {
		if req.RequestID == "" {
			req.RequestID = requestID(c)
		}
		g.Go(func() error {
			result, err := h.ext.Extract(ctx, req)
			if err != nil {
				results[i] = types.BatchItemResult{Index: i, Success: false, Error: err.Error()}
				return nil // Item failures don't cancel siblings
			}
			results[i] = types.BatchItemResult{Index: i, Success: true, Data: result}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// JobHandler serves asynchronous extraction endpoints
type JobHandler struct {
	queue *jobs.Queue
	log   *logging.Logger
}

// NewJobHandler creates the job handler
func NewJobHandler(queue *jobs.Queue, log *logging.Logger) *JobHandler {
	return &JobHandler{queue: queue, log: log}
}

// jobView is the wire shape of a job status response
type jobView struct {
	JobID       string                  `json:"job_id"`
	Status      string                  `json:"status"`
	Attempts    int                     `json:"attempts"`
	CreatedAt   time.Time               `json:"created_at"`
	StartedAt   *time.Time              `json:"started_at,omitempty"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
	Result      *types.ExtractionResult `json:"result,omitempty"`
	Error       string                  `json:"error,omitempty"`
}

// CreateJob handles POST /api/v1/jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req types.ExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	if req.RequestID == "" {
		req.RequestID = requestID(c)
	}

	id, err := h.queue.Enqueue(c.Request.Context(), req)
	if err != nil && !errors.Is(err, jobs.ErrQueueFull) {
		respondError(c, statusForError(err), "enqueue_failed", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": id, "status": string(storage.JobStatusPending)})
}

// GetJob handles GET /api/v1/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.queue.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, statusForError(err), "job_not_found", err)
		return
	}

	view := jobView{
		JobID:       job.ID,
		Status:      string(job.Status),
		Attempts:    job.Attempts,
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
	}
	if job.Error != nil {
		view.Error = *job.Error
	}
	if job.ResultJSON != nil {
		var result types.ExtractionResult
		if err := json.Unmarshal([]byte(*job.ResultJSON), &result); err != nil {
			respondError(c, http.StatusInternalServerError, "corrupt_job_result", err)
			return
		}
		view.Result = &result
	}
	respondOK(c, view)
}

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	scorer scorer.Scorer
}

// NewHealthHandler creates the health handler
func NewHealthHandler(s scorer.Scorer) *HealthHandler {
	return &HealthHandler{scorer: s}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	respondOK(c, gin.H{"status": "ok"})
}

// Ready handles GET /ready; it fails while the scorer is unreachable
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.scorer.Ready(c.Request.Context()); err != nil {
		respondError(c, http.StatusServiceUnavailable, "scorer_not_ready", err)
		return
	}
	respondOK(c, gin.H{
		"status": "ready",
		"scorer": h.scorer.Name(),
		"model":  h.scorer.Model(),
	})
}

// statusForError maps pipeline errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, types.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrScorerNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, types.ErrScorerFailed):
		return http.StatusBadGateway
	case errors.Is(err, types.ErrTextTooShort),
		errors.Is(err, types.ErrTextTooLarge),
		errors.Is(err, types.ErrInvalidNgramRange),
		errors.Is(err, types.ErrInvalidKeywordCap),
		errors.Is(err, types.ErrInvalidDiversity),
		errors.Is(err, types.ErrInvalidChunkConfig),
		errors.Is(err, types.ErrInvalidAggregation),
		errors.Is(err, types.ErrInvalidTitleWeight),
		errors.Is(err, types.ErrBatchTooLarge):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
