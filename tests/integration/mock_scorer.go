package integration

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/MikaTepe/keyscope/internal/scorer"
)

// mockScorer is a deterministic scorer for integration tests. It ranks
// phrases by frequency within the window, so assertions can be made about
// cross-window aggregation without a live scorer sidecar.
type mockScorer struct {
	mu      sync.Mutex
	windows []string
	fail    error
}

func newMockScorer() *mockScorer {
	return &mockScorer{}
}

func (m *mockScorer) Score(ctx context.Context, window string, p scorer.Params) ([]scorer.Candidate, error) {
	m.mu.Lock()
	m.windows = append(m.windows, window)
	fail := m.fail
	m.mu.Unlock()
	if fail != nil {
		return nil, fail
	}

	counts := make(map[string]int)
	words := strings.Fields(strings.ToLower(window))
	for n := p.NgramMin; n <= p.NgramMax; n++ {
		for i := 0; i+n <= len(words); i++ {
			phrase := strings.Join(words[i:i+n], " ")
			counts[phrase]++
		}
	}

	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	if max == 0 {
		return nil, nil
	}

	candidates := make([]scorer.Candidate, 0, len(counts))
	for phrase, c := range counts {
		candidates = append(candidates, scorer.Candidate{
			Phrase: phrase,
			Score:  float64(c) / float64(max),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Phrase < candidates[j].Phrase
	})
	if len(candidates) > p.TopN {
		candidates = candidates[:p.TopN]
	}
	return candidates, nil
}

func (m *mockScorer) Ready(ctx context.Context) error { return nil }
func (m *mockScorer) Name() string                    { return "mock" }
func (m *mockScorer) Model() string                   { return "mock-v1" }
func (m *mockScorer) Close() error                    { return nil }

func (m *mockScorer) windowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}
