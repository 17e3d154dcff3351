package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode"
)

// Provider configuration
const (
	ProviderRemote  = "remote"
	ProviderLexical = "lexical"

	// DefaultRemoteModel is the embedding model the extraction sidecar
	// serves unless configured otherwise
	DefaultRemoteModel = "all-MiniLM-L6-v2"

	remoteTimeout = 60 * time.Second
)

// RemoteProvider calls a KeyBERT-style extraction sidecar over HTTP. The
// sidecar owns the embedding model; this provider only ships windows and
// parameters across and collects candidates.
type RemoteProvider struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	cache      *Cache
}

// NewRemoteProvider creates a scorer backed by an extraction sidecar
func NewRemoteProvider(baseURL, apiKey, model string, cache *Cache) (*RemoteProvider, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: remote scorer requires a base URL", ErrInvalidInput)
	}
	if model == "" {
		model = DefaultRemoteModel
	}
	return &RemoteProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: remoteTimeout,
		},
		cache: cache,
	}, nil
}

func (r *RemoteProvider) Score(ctx context.Context, window string, p Params) ([]Candidate, error) {
	if err := ValidateWindow(window, p); err != nil {
		return nil, err
	}

	key := CacheKey(window, p)
	if r.cache != nil {
		if cands, ok := r.cache.Get(key); ok {
			return cands, nil
		}
	}

	config := DefaultRetryConfig()
	cands, err := retryWithBackoff(ctx, config, func() ([]Candidate, error) {
		return r.callAPI(ctx, window, p)
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d retries: %v", ErrProviderFailed, MaxRetries, err)
	}

	if r.cache != nil {
		r.cache.Set(key, cands)
	}

	return cands, nil
}

func (r *RemoteProvider) callAPI(ctx context.Context, window string, p Params) ([]Candidate, error) {
	reqBody := map[string]interface{}{
		"text":      window,
		"min_ngram": p.NgramMin,
		"max_ngram": p.NgramMax,
		"top_n":     p.TopN,
		"use_mmr":   p.UseMMR,
		"diversity": p.Diversity,
		"model":     r.model,
	}
	if len(p.StopWords) > 0 {
		reqBody["stop_words"] = p.StopWords
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.baseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Keywords []struct {
			Keyword string  `json:"keyword"`
			Score   float64 `json:"score"`
		} `json:"keywords"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	cands := make([]Candidate, len(apiResp.Keywords))
	for i, kw := range apiResp.Keywords {
		cands[i] = Candidate{Phrase: kw.Keyword, Score: kw.Score}
	}

	return cands, nil
}

// Ready probes the sidecar's health endpoint
func (r *RemoteProvider) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", r.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotReady, err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotReady, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health status %d", ErrNotReady, resp.StatusCode)
	}
	return nil
}

func (r *RemoteProvider) Name() string {
	return ProviderRemote
}

func (r *RemoteProvider) Model() string {
	return r.model
}

func (r *RemoteProvider) Close() error {
	r.httpClient.CloseIdleConnections()
	return nil
}

// LexicalProvider is an in-process frequency-based scorer for development
// and tests. It honors the full scoring contract (ngram range, stopwords,
// topN, diversity) with a deterministic algorithm: term-frequency scores
// normalized against the most frequent candidate, with a mild boost for
// longer phrases.
type LexicalProvider struct {
	cache *Cache
}

// NewLexicalProvider creates the in-process scorer
func NewLexicalProvider(cache *Cache) (*LexicalProvider, error) {
	return &LexicalProvider{cache: cache}, nil
}

func (l *LexicalProvider) Score(ctx context.Context, window string, p Params) ([]Candidate, error) {
	if err := ValidateWindow(window, p); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := CacheKey(window, p)
	if l.cache != nil {
		if cands, ok := l.cache.Get(key); ok {
			return cands, nil
		}
	}

	tokens := tokenize(window)
	if len(tokens) == 0 {
		return nil, nil
	}

	stop := make(map[string]struct{}, len(p.StopWords))
	for _, w := range p.StopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}

	counts := make(map[string]int)
	for n := p.NgramMin; n <= p.NgramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			gram := tokens[i : i+n]
			if containsStopword(gram, stop) {
				continue
			}
			counts[strings.Join(gram, " ")]++
		}
	}
	if len(counts) == 0 {
		return nil, nil
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	cands := make([]Candidate, 0, len(counts))
	for phrase, count := range counts {
		words := strings.Count(phrase, " ") + 1
		// Mild length boost so multi-word phrases can compete with their
		// own constituent unigrams
		boost := 0.7 + 0.3*float64(words)/float64(p.NgramMax)
		cands = append(cands, Candidate{
			Phrase: phrase,
			Score:  float64(count) / float64(maxCount) * boost,
		})
	}

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].Phrase < cands[j].Phrase
	})

	if p.UseMMR {
		cands = diversify(cands, p.TopN, p.Diversity)
	} else if len(cands) > p.TopN {
		cands = cands[:p.TopN]
	}

	if l.cache != nil {
		l.cache.Set(key, cands)
	}

	return cands, nil
}

// Ready always succeeds: the lexical scorer has no loading phase
func (l *LexicalProvider) Ready(ctx context.Context) error {
	return nil
}

func (l *LexicalProvider) Name() string {
	return ProviderLexical
}

func (l *LexicalProvider) Model() string {
	return "lexical-tf"
}

func (l *LexicalProvider) Close() error {
	return nil
}

// tokenize lowercases and splits a window into word tokens, dropping
// punctuation but keeping intra-word hyphens
func tokenize(text string) []string {
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-' && b.Len() > 0:
			b.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	// Strip trailing hyphens left by flush-before-separator sequences
	for i, t := range tokens {
		tokens[i] = strings.TrimRight(t, "-")
	}
	return tokens
}

func containsStopword(gram []string, stop map[string]struct{}) bool {
	for _, w := range gram {
		if _, ok := stop[w]; ok {
			return true
		}
	}
	return false
}

// diversify selects topN candidates greedily, discounting each candidate's
// score by its word overlap with already selected phrases
func diversify(cands []Candidate, topN int, diversity float64) []Candidate {
	if topN <= 0 || len(cands) == 0 {
		return nil
	}

	selected := make([]Candidate, 0, topN)
	selectedWords := make(map[string]struct{})
	remaining := append([]Candidate(nil), cands...)

	for len(selected) < topN && len(remaining) > 0 {
		bestIdx := -1
		bestScore := 0.0
		for i, c := range remaining {
			words := strings.Fields(c.Phrase)
			shared := 0
			for _, w := range words {
				if _, ok := selectedWords[w]; ok {
					shared++
				}
			}
			overlap := float64(shared) / float64(len(words))
			eff := c.Score * (1 - diversity*overlap)
			if bestIdx == -1 || eff > bestScore {
				bestIdx = i
				bestScore = eff
			}
		}
		pick := remaining[bestIdx]
		pick.Score = bestScore
		selected = append(selected, pick)
		for _, w := range strings.Fields(pick.Phrase) {
			selectedWords[w] = struct{}{}
		}
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}
