package extractor

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/MikaTepe/keyscope/internal/aggregator"
	"github.com/MikaTepe/keyscope/internal/chunker"
	"github.com/MikaTepe/keyscope/internal/logging"
	"github.com/MikaTepe/keyscope/internal/scorer"
	"github.com/MikaTepe/keyscope/pkg/types"
)

// DefaultWorkers bounds how many window scoring calls run concurrently for
// one request
const DefaultWorkers = 4

// minPerWindowTopN is the floor for the inflated per-window candidate
// budget in chunked mode
const minPerWindowTopN = 10

// Extractor orchestrates one request through the pipeline:
// title weighting -> page limit -> chunk decision -> window scoring ->
// aggregation -> result assembly.
//
// Window scoring is fail-fast: the first failed window fails the whole
// request, and retries belong to the enclosing layer, never the extractor.
type Extractor struct {
	scorer  scorer.Scorer
	log     *logging.Logger
	workers int
}

// Option configures an Extractor
type Option func(*Extractor)

// WithWorkers sets the window-scoring concurrency bound
func WithWorkers(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// New creates an Extractor around an already-loaded scorer. The scorer's
// lifecycle (load once, serve many) belongs to the caller.
func New(s scorer.Scorer, log *logging.Logger, opts ...Option) *Extractor {
	if log == nil {
		log = logging.Nop()
	}
	e := &Extractor{
		scorer:  s,
		log:     log,
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs the full pipeline for one request
func (e *Extractor) Extract(ctx context.Context, req types.ExtractionRequest) (*types.ExtractionResult, error) {
	t0 := time.Now()

	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := e.scorer.Ready(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrScorerNotReady, err)
	}

	originalLen := utf8.RuneCountInString(req.Text)

	text, titled := applyTitleWeight(req.Text, req.TitleConfig)
	stopWords, stopLabel := resolveStopWords(req.Language)

	runes := []rune(text)
	charLen := len(runes)
	approxPages := chunker.EstimatePages(charLen, req.Chunking.ApproxCharsPerPage)

	e.log.Info("begin extraction",
		"request_id", req.RequestID,
		"chars", charLen,
		"approx_pages", approxPages,
		"language", req.Language,
		"top_n", req.MaxKeywords,
		"mmr", req.UseMMR,
		"diversity", req.Diversity,
		"ngram", [2]int{req.MinNgram, req.MaxNgram},
		"chunking", req.Chunking.Enabled,
		"title_weighted", titled,
	)

	// Page limit: a lossy but deterministic truncation, not a failure
	truncated := false
	if approxPages > float64(req.Chunking.MaxPages) {
		maxChars := req.Chunking.MaxPages * req.Chunking.ApproxCharsPerPage
		e.log.Warn("input exceeds page limit, truncating",
			"request_id", req.RequestID,
			"max_pages", req.Chunking.MaxPages,
			"approx_pages", approxPages,
		)
		runes = runes[:maxChars]
		text = string(runes)
		charLen = len(runes)
		approxPages = chunker.EstimatePages(charLen, req.Chunking.ApproxCharsPerPage)
		truncated = true
	}

	params := scorer.Params{
		NgramMin:  req.MinNgram,
		NgramMax:  req.MaxNgram,
		StopWords: stopWords,
		UseMMR:    req.UseMMR,
		Diversity: req.Diversity,
	}

	var perWindow [][]scorer.Candidate
	var windowCount int

	if req.Chunking.Enabled && charLen > req.Chunking.ChunkSizeChars {
		windows, err := chunker.Split(text, req.Chunking.ChunkSizeChars, req.Chunking.ChunkOverlapChars)
		if err != nil {
			return nil, err
		}
		windowCount = len(windows)
		params.TopN = perWindowTopN(req.MaxKeywords, req.Chunking.CandidatePoolMultiplier)

		e.log.Info("chunked extraction",
			"request_id", req.RequestID,
			"windows", windowCount,
			"aggregation", req.Chunking.Aggregation,
			"per_window_top_n", params.TopN,
		)

		perWindow, err = e.scoreWindows(ctx, windows, params)
		if err != nil {
			return nil, err
		}
	} else {
		normalized := chunker.NormalizeWhitespace(text)
		windowCount = 1
		params.TopN = req.MaxKeywords

		cands, err := e.scorer.Score(ctx, normalized, params)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrScorerFailed, err)
		}
		perWindow = [][]scorer.Candidate{cands}
	}

	keywords, err := aggregator.Aggregate(perWindow, req.MaxKeywords, req.Chunking.Aggregation)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(t0)
	e.log.Info("finished extraction",
		"request_id", req.RequestID,
		"keywords", len(keywords),
		"elapsed_ms", float64(elapsed.Microseconds())/1000.0,
	)

	result := &types.ExtractionResult{
		RequestID:          req.RequestID,
		Keywords:           keywords,
		TotalKeywordsFound: len(keywords),
		TextLength:         originalLen,
		Language:           req.Language,
	}
	if req.IncludeMetadata {
		result.Metadata = &types.Metadata{
			ProcessingTimeMs: float64(elapsed.Microseconds()) / 1000.0,
			UseMMR:           req.UseMMR,
			Diversity:        req.Diversity,
			NgramRange:       [2]int{req.MinNgram, req.MaxNgram},
			StopWords:        stopLabel,
			Scorer:           e.scorer.Name(),
			Model:            e.scorer.Model(),
			Chunking: types.ChunkingMetadata{
				Enabled:           req.Chunking.Enabled,
				ApproxPages:       approxPages,
				ChunkSizeChars:    req.Chunking.ChunkSizeChars,
				ChunkOverlapChars: req.Chunking.ChunkOverlapChars,
				Aggregation:       string(req.Chunking.Aggregation),
				WindowCount:       windowCount,
				Truncated:         truncated,
			},
		}
	}
	return result, nil
}

// scoreWindows scores all windows with bounded concurrency and a full join:
// aggregation never starts before every window has reported. Any window
// failure cancels the remaining calls and fails the request.
func (e *Extractor) scoreWindows(ctx context.Context, windows []chunker.Window, params scorer.Params) ([][]scorer.Candidate, error) {
	results := make([][]scorer.Candidate, len(windows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, w := range windows {
		g.Go(func() error {
			t0 := time.Now()
			cands, err := e.scorer.Score(gctx, w.Text, params)
			if err != nil {
				return fmt.Errorf("%w: window %d: %v", types.ErrScorerFailed, i, err)
			}
			e.log.Debug("window scored",
				"window", i,
				"window_len", w.Len(),
				"candidates", len(cands),
				"elapsed_ms", float64(time.Since(t0).Microseconds())/1000.0,
			)
			results[i] = cands
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// perWindowTopN inflates the per-window candidate budget so the post-merge
// pool still yields enough distinct keywords after deduplication
func perWindowTopN(maxKeywords int, multiplier float64) int {
	n := int(float64(maxKeywords) * multiplier)
	if n < minPerWindowTopN {
		n = minPerWindowTopN
	}
	return n
}
