package types

// Keyword is one ranked entry in an extraction result. The surface form is
// canonical for its merge key; NgramSize is the word count of the surface.
type Keyword struct {
	Keyword   string  `json:"keyword"`
	Score     float64 `json:"score"`
	NgramSize int     `json:"ngram_size"`
}

// ChunkingMetadata echoes the chunking decisions made for one request
type ChunkingMetadata struct {
	Enabled           bool    `json:"enabled"`
	ApproxPages       float64 `json:"approx_pages"`
	ChunkSizeChars    int     `json:"chunk_size_chars"`
	ChunkOverlapChars int     `json:"chunk_overlap_chars"`
	Aggregation       string  `json:"aggregation"`
	WindowCount       int     `json:"window_count"`
	Truncated         bool    `json:"truncated"`
}

// Metadata carries processing details for callers that asked for them
type Metadata struct {
	ProcessingTimeMs float64          `json:"processing_time_ms"`
	UseMMR           bool             `json:"use_mmr"`
	Diversity        float64          `json:"diversity"`
	NgramRange       [2]int           `json:"ngram_range"`
	StopWords        string           `json:"stop_words"`
	Scorer           string           `json:"scorer"`
	Model            string           `json:"model"`
	Chunking         ChunkingMetadata `json:"chunking"`
}

// ExtractionResult is the terminal value of one request's pipeline run
type ExtractionResult struct {
	RequestID          string    `json:"request_id,omitempty"`
	Keywords           []Keyword `json:"keywords"`
	TotalKeywordsFound int       `json:"total_keywords_found"`
	// TextLength is the original (pre-truncation) length in runes
	TextLength int       `json:"text_length"`
	Language   Language  `json:"language"`
	Metadata   *Metadata `json:"processing_metadata,omitempty"`
}

// BatchRequest fans out independent extraction requests
type BatchRequest struct {
	Items []ExtractionRequest `json:"texts"`
	// FailFast stops at the first failed item instead of collecting errors
	FailFast bool `json:"fail_fast"`
}

// Validate checks batch-level bounds; per-item validation happens per item
func (b *BatchRequest) Validate() error {
	if len(b.Items) == 0 {
		return ErrBatchTooLarge
	}
	if len(b.Items) > MaxBatchItems {
		return ErrBatchTooLarge
	}
	return nil
}

// BatchItemResult reports one item's outcome inside a batch response
type BatchItemResult struct {
	Index   int               `json:"index"`
	Success bool              `json:"success"`
	Data    *ExtractionResult `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// BatchSummary aggregates item outcomes
type BatchSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// BatchResult is the response of a batch extraction call
type BatchResult struct {
	Results []BatchItemResult `json:"results"`
	Summary BatchSummary      `json:"summary"`
}
