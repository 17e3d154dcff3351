package types

import "errors"

// Domain errors for request validation and pipeline failures
var (
	// Validation errors - caller bugs, never retried
	ErrTextTooShort       = errors.New("text is below the minimum length")
	ErrTextTooLarge       = errors.New("text exceeds the maximum length")
	ErrInvalidNgramRange  = errors.New("ngram range must satisfy 1 <= min <= max <= 5")
	ErrInvalidKeywordCap  = errors.New("max keywords must be between 1 and 100")
	ErrInvalidDiversity   = errors.New("diversity must be between 0 and 1")
	ErrInvalidChunkConfig = errors.New("invalid chunking configuration")
	ErrInvalidAggregation = errors.New("unknown aggregation policy")
	ErrInvalidTitleWeight = errors.New("title weight must be positive and at most 10")

	// Scorer errors - the external collaborator boundary
	ErrScorerNotReady = errors.New("candidate scorer is not ready")
	ErrScorerFailed   = errors.New("candidate scorer invocation failed")

	// Job errors
	ErrJobNotFound   = errors.New("job not found")
	ErrBatchTooLarge = errors.New("batch size exceeds limit")
)
