package scorer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrEmptyWindow       = errors.New("window text cannot be empty")
	ErrProviderFailed    = errors.New("scoring provider failed")
	ErrNotReady          = errors.New("scoring provider not ready")
	ErrUnsupportedScorer = errors.New("unsupported scorer provider")
)

// Candidate is one (keyphrase, relevance score) pair returned by a single
// scoring call on a single window. The list order is not meaningful; the
// aggregator imposes the final ordering.
type Candidate struct {
	Phrase string  `json:"keyword"`
	Score  float64 `json:"score"`
}

// Params carries the extraction parameters for one scoring call
type Params struct {
	NgramMin  int
	NgramMax  int
	StopWords []string // nil means no stopword filtering
	TopN      int
	UseMMR    bool
	Diversity float64
}

// Scorer is the external keyphrase-candidate scoring capability. The core
// pipeline never inspects the scorer's ranking algorithm; it supplies
// parameters and consumes an unordered candidate list.
//
// Implementations must be safe for concurrent invocation: a long document is
// scored one window at a time, possibly from several goroutines, and many
// requests may be in flight.
type Scorer interface {
	// Score returns candidates for one text window. It may return fewer
	// than TopN candidates, duplicate surface forms, or scores outside
	// [0,1]; callers must not rely on any of these.
	Score(ctx context.Context, window string, p Params) ([]Candidate, error)

	// Ready reports whether the scorer's one-time loading has completed
	Ready(ctx context.Context) error

	// Name returns the provider name
	Name() string

	// Model returns the underlying model identifier
	Model() string

	// Close releases any resources held by the scorer
	Close() error
}

// ValidateWindow validates a scoring call's inputs
func ValidateWindow(window string, p Params) error {
	if strings.TrimSpace(window) == "" {
		return ErrEmptyWindow
	}
	if p.NgramMin < 1 || p.NgramMin > p.NgramMax {
		return fmt.Errorf("%w: ngram range (%d,%d)", ErrInvalidInput, p.NgramMin, p.NgramMax)
	}
	if p.TopN < 1 {
		return fmt.Errorf("%w: topN must be >= 1", ErrInvalidInput)
	}
	return nil
}

// CacheKey computes a stable hash for a (window, params) pair so equal calls
// can share a cache slot
func CacheKey(window string, p Params) string {
	var b strings.Builder
	b.WriteString(window)
	fmt.Fprintf(&b, "|%d-%d|%d|%t|%.3f|", p.NgramMin, p.NgramMax, p.TopN, p.UseMMR, p.Diversity)
	b.WriteString(strings.Join(p.StopWords, ","))
	h := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(h[:])
}
