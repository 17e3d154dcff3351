package scorer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultParams() Params {
	return Params{NgramMin: 1, NgramMax: 2, TopN: 10, UseMMR: false, Diversity: 0.6}
}

func TestLexical_EmptyWindowRejected(t *testing.T) {
	s, err := NewLexicalProvider(nil)
	require.NoError(t, err)

	_, err = s.Score(context.Background(), "   ", defaultParams())
	assert.ErrorIs(t, err, ErrEmptyWindow)
}

func TestLexical_InvalidParams(t *testing.T) {
	s, _ := NewLexicalProvider(nil)

	p := defaultParams()
	p.NgramMin = 3
	p.NgramMax = 2
	_, err := s.Score(context.Background(), "some text here", p)
	assert.ErrorIs(t, err, ErrInvalidInput)

	p = defaultParams()
	p.TopN = 0
	_, err = s.Score(context.Background(), "some text here", p)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLexical_FrequencyRanking(t *testing.T) {
	s, _ := NewLexicalProvider(nil)

	window := "solar power grows. solar power scales. wind energy helps but solar power dominates"
	p := Params{NgramMin: 2, NgramMax: 2, TopN: 5}

	cands, err := s.Score(context.Background(), window, p)
	require.NoError(t, err)
	require.NotEmpty(t, cands)

	assert.Equal(t, "solar power", cands[0].Phrase)
	for _, c := range cands {
		assert.Greater(t, c.Score, 0.0)
		assert.LessOrEqual(t, c.Score, 1.0)
	}
}

func TestLexical_StopwordsFiltered(t *testing.T) {
	s, _ := NewLexicalProvider(nil)

	window := "the cat and the dog and the cat"
	p := Params{NgramMin: 1, NgramMax: 1, TopN: 10, StopWords: []string{"the", "and"}}

	cands, err := s.Score(context.Background(), window, p)
	require.NoError(t, err)

	for _, c := range cands {
		assert.NotEqual(t, "the", c.Phrase)
		assert.NotEqual(t, "and", c.Phrase)
	}
}

func TestLexical_TopNRespected(t *testing.T) {
	s, _ := NewLexicalProvider(nil)

	window := strings.Repeat("alpha bravo charlie delta echo foxtrot golf hotel india juliett ", 3)
	p := Params{NgramMin: 1, NgramMax: 2, TopN: 4}

	cands, err := s.Score(context.Background(), window, p)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(cands), 4)
}

func TestLexical_Deterministic(t *testing.T) {
	s, _ := NewLexicalProvider(nil)
	window := "climate policy drives climate action in climate science"
	p := Params{NgramMin: 1, NgramMax: 2, TopN: 8, UseMMR: true, Diversity: 0.5}

	first, err := s.Score(context.Background(), window, p)
	require.NoError(t, err)
	second, err := s.Score(context.Background(), window, p)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLexical_DiversityPenalizesOverlap(t *testing.T) {
	s, _ := NewLexicalProvider(nil)
	window := "neural network models neural network training neural network"
	p := Params{NgramMin: 2, NgramMax: 2, TopN: 3, UseMMR: true, Diversity: 1.0}

	cands, err := s.Score(context.Background(), window, p)
	require.NoError(t, err)
	require.NotEmpty(t, cands)
	// Top pick keeps its full score, later overlapping picks are discounted
	assert.Equal(t, "neural network", cands[0].Phrase)
}

func TestLexical_CacheHit(t *testing.T) {
	cache := NewCache(16)
	s, _ := NewLexicalProvider(cache)

	window := "reusable window text for cache checks"
	p := defaultParams()

	first, err := s.Score(context.Background(), window, p)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	second, err := s.Score(context.Background(), window, p)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLexical_Ready(t *testing.T) {
	s, _ := NewLexicalProvider(nil)
	assert.NoError(t, s.Ready(context.Background()))
	assert.Equal(t, ProviderLexical, s.Name())
}

func TestRemote_ScoreAndHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/extract":
			var req map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "window text", req["text"])
			assert.EqualValues(t, 10, req["top_n"])

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"keywords": []map[string]interface{}{
					{"keyword": "window text", "score": 0.91},
					{"keyword": "text", "score": 0.55},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s, err := NewRemoteProvider(srv.URL, "", "", nil)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Ready(context.Background()))

	cands, err := s.Score(context.Background(), "window text", defaultParams())
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.Equal(t, Candidate{Phrase: "window text", Score: 0.91}, cands[0])
}

func TestRemote_ServerErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s, err := NewRemoteProvider(srv.URL, "", "", nil)
	require.NoError(t, err)

	_, err = s.Score(context.Background(), "window text", defaultParams())
	assert.ErrorIs(t, err, ErrProviderFailed)
}

func TestRemote_NotReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s, err := NewRemoteProvider(srv.URL, "", "", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Ready(context.Background()), ErrNotReady)
}

func TestRemote_RequiresBaseURL(t *testing.T) {
	_, err := NewRemoteProvider("", "", "", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFactory(t *testing.T) {
	s, err := New(Config{Provider: ProviderLexical})
	require.NoError(t, err)
	assert.Equal(t, ProviderLexical, s.Name())

	s, err = New(Config{Provider: ProviderRemote, BaseURL: "http://localhost:8001"})
	require.NoError(t, err)
	assert.Equal(t, ProviderRemote, s.Name())
	assert.Equal(t, DefaultRemoteModel, s.Model())

	_, err = New(Config{Provider: "quantum"})
	assert.ErrorIs(t, err, ErrUnsupportedScorer)
}

func TestCacheKey_SensitiveToParams(t *testing.T) {
	p1 := defaultParams()
	p2 := defaultParams()
	p2.TopN = 30

	assert.Equal(t, CacheKey("text", p1), CacheKey("text", p1))
	assert.NotEqual(t, CacheKey("text", p1), CacheKey("text", p2))
	assert.NotEqual(t, CacheKey("text", p1), CacheKey("other", p1))
}
