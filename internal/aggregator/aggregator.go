package aggregator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MikaTepe/keyscope/internal/scorer"
	"github.com/MikaTepe/keyscope/pkg/types"
)

// entry accumulates everything observed for one merge key while windows are
// folded in. The map holding entries is request-local and discarded as soon
// as the sorted result is produced.
type entry struct {
	// surface is the canonical display form: the lexicographically smallest
	// original form seen for this key, so output does not depend on the
	// order windows arrive in
	surface string
	scores  []float64
}

// MergeKey normalizes a candidate surface form for deduplication:
// case-folded, trimmed, inner whitespace collapsed. Two candidates with the
// same merge key are the same logical keyword.
func MergeKey(phrase string) string {
	return strings.ToLower(strings.Join(strings.Fields(phrase), " "))
}

// combine folds a key's observed scores under the given policy
func combine(scores []float64, policy types.AggregationPolicy) float64 {
	if len(scores) == 0 {
		return 0
	}
	switch policy {
	case types.AggregationMax:
		max := scores[0]
		for _, s := range scores[1:] {
			if s > max {
				max = s
			}
		}
		return max
	case types.AggregationMean:
		var sum float64
		for _, s := range scores {
			sum += s
		}
		return sum / float64(len(scores))
	default: // sum
		var sum float64
		for _, s := range scores {
			sum += s
		}
		return sum
	}
}

// Aggregate merges per-window candidate lists into one ranked, deduplicated
// list capped at targetCount.
//
// Ordering is a pure function of the candidates, not of arrival order:
// combined score descending, then n-gram size ascending (shorter phrases
// first), then surface form ascending. An entirely empty input yields an
// empty list, which is a valid outcome for degenerate text.
func Aggregate(perWindow [][]scorer.Candidate, targetCount int, policy types.AggregationPolicy) ([]types.Keyword, error) {
	switch policy {
	case types.AggregationMax, types.AggregationMean, types.AggregationSum:
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidAggregation, policy)
	}
	if targetCount < 1 {
		return nil, fmt.Errorf("%w: target count must be >= 1", types.ErrInvalidKeywordCap)
	}

	acc := make(map[string]*entry)
	for _, cands := range perWindow {
		for _, c := range cands {
			key := MergeKey(c.Phrase)
			if key == "" {
				continue
			}
			surface := strings.Join(strings.Fields(c.Phrase), " ")
			e, ok := acc[key]
			if !ok {
				e = &entry{surface: surface}
				acc[key] = e
			} else if surface < e.surface {
				e.surface = surface
			}
			e.scores = append(e.scores, c.Score)
		}
	}
	if len(acc) == 0 {
		return []types.Keyword{}, nil
	}

	merged := make([]types.Keyword, 0, len(acc))
	for _, e := range acc {
		merged = append(merged, types.Keyword{
			Keyword:   e.surface,
			Score:     combine(e.scores, policy),
			NgramSize: len(strings.Fields(e.surface)),
		})
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		if merged[i].NgramSize != merged[j].NgramSize {
			return merged[i].NgramSize < merged[j].NgramSize
		}
		return merged[i].Keyword < merged[j].Keyword
	})

	if len(merged) > targetCount {
		merged = merged[:targetCount]
	}
	return merged, nil
}
