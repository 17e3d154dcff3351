package types

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Language identifies the input language for stopword selection
type Language string

const (
	LanguageGerman  Language = "de"
	LanguageEnglish Language = "en"
	LanguageAuto    Language = "auto"
)

// AggregationPolicy selects how scores for the same keyphrase are combined
// across overlapping text windows
type AggregationPolicy string

const (
	// AggregationMax keeps the strongest score seen in any window. A phrase
	// highly relevant in one region is not diluted by irrelevance elsewhere.
	AggregationMax AggregationPolicy = "max"
	// AggregationMean averages scores, rewarding consistent relevance
	// across the whole document.
	AggregationMean AggregationPolicy = "mean"
	// AggregationSum totals scores, rewarding phrases that recur in many
	// windows.
	AggregationSum AggregationPolicy = "sum"
)

// Request bounds, taken over from the original service contract
const (
	MinTextChars = 1
	MaxTextChars = 1_000_000

	MaxKeywordLimit = 100
	MaxNgramSize    = 5

	MinChunkSizeChars = 400
	MaxChunkSizeChars = 6000
	MaxOverlapChars   = 3000
	MinPagesLimit     = 1
	MaxPagesLimit     = 50
	MinCharsPerPage   = 500
	MaxCharsPerPage   = 6000
	MaxPoolMultiplier = 10.0
	MaxTitleWeight    = 10.0
	MaxBatchItems     = 100
)

// Defaults applied to unset request fields
const (
	DefaultMaxKeywords = 10
	DefaultDiversity   = 0.6
	DefaultTitleWeight = 3.0
)

// TitleConfig biases extraction toward a document title by repeating it as a
// prefix of the scored text
type TitleConfig struct {
	Text string `json:"text" yaml:"text"`
	// Weight controls how many times the title is repeated (ceil of weight)
	Weight float64 `json:"weight" yaml:"weight"`
	// Normalize clamps the weight to [1,5] before deriving the repeat count
	Normalize bool `json:"normalize" yaml:"normalize"`
}

// ChunkingConfig controls how long texts are split into overlapping windows
type ChunkingConfig struct {
	Enabled                 bool              `json:"enable_chunking" yaml:"enable_chunking"`
	MaxPages                int               `json:"max_pages" yaml:"max_pages"`
	ApproxCharsPerPage      int               `json:"approx_chars_per_page" yaml:"approx_chars_per_page"`
	ChunkSizeChars          int               `json:"chunk_size_chars" yaml:"chunk_size_chars"`
	ChunkOverlapChars       int               `json:"chunk_overlap_chars" yaml:"chunk_overlap_chars"`
	CandidatePoolMultiplier float64           `json:"candidate_pool_multiplier" yaml:"candidate_pool_multiplier"`
	Aggregation             AggregationPolicy `json:"aggregation" yaml:"aggregation"`
}

// DefaultChunkingConfig returns the chunking defaults used when a request
// leaves the config unset
func DefaultChunkingConfig() ChunkingConfig {
	return ChunkingConfig{
		Enabled:                 true,
		MaxPages:                50,
		ApproxCharsPerPage:      1800,
		ChunkSizeChars:          1200,
		ChunkOverlapChars:       200,
		CandidatePoolMultiplier: 3.0,
		Aggregation:             AggregationMax,
	}
}

// Validate checks the chunk geometry invariants. Violations indicate a
// caller bug, not a recoverable condition.
func (c ChunkingConfig) Validate() error {
	if c.ChunkSizeChars < MinChunkSizeChars || c.ChunkSizeChars > MaxChunkSizeChars {
		return fmt.Errorf("%w: chunk_size_chars %d outside [%d,%d]",
			ErrInvalidChunkConfig, c.ChunkSizeChars, MinChunkSizeChars, MaxChunkSizeChars)
	}
	if c.ChunkOverlapChars < 0 || c.ChunkOverlapChars > MaxOverlapChars {
		return fmt.Errorf("%w: chunk_overlap_chars %d outside [0,%d]",
			ErrInvalidChunkConfig, c.ChunkOverlapChars, MaxOverlapChars)
	}
	if c.ChunkOverlapChars >= c.ChunkSizeChars {
		return fmt.Errorf("%w: overlap %d must be smaller than chunk size %d",
			ErrInvalidChunkConfig, c.ChunkOverlapChars, c.ChunkSizeChars)
	}
	if c.MaxPages < MinPagesLimit || c.MaxPages > MaxPagesLimit {
		return fmt.Errorf("%w: max_pages %d outside [%d,%d]",
			ErrInvalidChunkConfig, c.MaxPages, MinPagesLimit, MaxPagesLimit)
	}
	if c.ApproxCharsPerPage < MinCharsPerPage || c.ApproxCharsPerPage > MaxCharsPerPage {
		return fmt.Errorf("%w: approx_chars_per_page %d outside [%d,%d]",
			ErrInvalidChunkConfig, c.ApproxCharsPerPage, MinCharsPerPage, MaxCharsPerPage)
	}
	if c.CandidatePoolMultiplier < 1.0 || c.CandidatePoolMultiplier > MaxPoolMultiplier {
		return fmt.Errorf("%w: candidate_pool_multiplier %.2f outside [1,%.0f]",
			ErrInvalidChunkConfig, c.CandidatePoolMultiplier, MaxPoolMultiplier)
	}
	switch c.Aggregation {
	case AggregationMax, AggregationMean, AggregationSum:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAggregation, c.Aggregation)
	}
	return nil
}

// ExtractionRequest carries one keyword extraction job through the pipeline
type ExtractionRequest struct {
	Text     string   `json:"text"`
	Language Language `json:"language"`

	MaxKeywords int `json:"max_keywords"`

	// Scorer parameters
	UseMMR    bool    `json:"use_mmr"`
	Diversity float64 `json:"diversity"`

	// N-gram range; zero values fall back to (1,2)
	MinNgram int `json:"min_ngram"`
	MaxNgram int `json:"max_ngram"`

	IncludeMetadata bool           `json:"include_metadata"`
	TitleConfig     *TitleConfig   `json:"title_config,omitempty"`
	Chunking        ChunkingConfig `json:"chunking"`

	// Correlation / tracing
	RequestID string `json:"request_id,omitempty"`
}

// NewExtractionRequest builds a request with the service defaults applied
func NewExtractionRequest(text string) ExtractionRequest {
	return ExtractionRequest{
		Text:            text,
		Language:        LanguageAuto,
		MaxKeywords:     DefaultMaxKeywords,
		UseMMR:          true,
		Diversity:       DefaultDiversity,
		MinNgram:        1,
		MaxNgram:        2,
		IncludeMetadata: true,
		Chunking:        DefaultChunkingConfig(),
	}
}

// ApplyDefaults fills zero-valued fields with the service defaults. It is
// used by the transport layers so partially specified JSON requests behave
// like the original service.
func (r *ExtractionRequest) ApplyDefaults() {
	if r.Language == "" {
		r.Language = LanguageAuto
	}
	if r.MaxKeywords == 0 {
		r.MaxKeywords = DefaultMaxKeywords
	}
	if r.Diversity == 0 {
		r.Diversity = DefaultDiversity
	}
	if r.MinNgram == 0 && r.MaxNgram == 0 {
		r.MinNgram, r.MaxNgram = 1, 2
	} else {
		if r.MinNgram == 0 {
			r.MinNgram = 1
		}
		if r.MaxNgram == 0 {
			r.MaxNgram = r.MinNgram
		}
		// The original service accepted either ordering
		if r.MinNgram > r.MaxNgram {
			r.MinNgram, r.MaxNgram = r.MaxNgram, r.MinNgram
		}
	}
	if r.Chunking == (ChunkingConfig{}) {
		r.Chunking = DefaultChunkingConfig()
	}
}

// Validate checks the request invariants. The extractor trusts a request
// that passed validation.
func (r *ExtractionRequest) Validate() error {
	n := utf8.RuneCountInString(strings.TrimSpace(r.Text))
	if n < MinTextChars {
		return ErrTextTooShort
	}
	if n > MaxTextChars {
		return ErrTextTooLarge
	}
	if r.MaxKeywords < 1 || r.MaxKeywords > MaxKeywordLimit {
		return ErrInvalidKeywordCap
	}
	if r.Diversity < 0 || r.Diversity > 1 {
		return ErrInvalidDiversity
	}
	if r.MinNgram < 1 || r.MinNgram > r.MaxNgram || r.MaxNgram > MaxNgramSize {
		return ErrInvalidNgramRange
	}
	if r.TitleConfig != nil && r.TitleConfig.Text != "" {
		w := r.TitleConfig.Weight
		if w <= 0 || w > MaxTitleWeight {
			return ErrInvalidTitleWeight
		}
	}
	return r.Chunking.Validate()
}
