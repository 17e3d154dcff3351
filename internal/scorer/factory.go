package scorer

import (
	"fmt"
	"os"
	"strings"
)

// Environment variable names for scorer selection
const (
	EnvProvider = "KEYSCOPE_SCORER_PROVIDER"
	EnvBaseURL  = "KEYSCOPE_SCORER_URL"
	EnvAPIKey   = "KEYSCOPE_SCORER_API_KEY"
	EnvModel    = "KEYSCOPE_SCORER_MODEL"
)

// Config holds scorer configuration
type Config struct {
	Provider  string
	BaseURL   string
	APIKey    string
	Model     string
	CacheSize int
}

// New creates a scorer with explicit configuration
func New(cfg Config) (Scorer, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderRemote:
		return NewRemoteProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, cache)
	case ProviderLexical, "":
		return NewLexicalProvider(cache)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScorer, cfg.Provider)
	}
}

// NewFromEnv creates a scorer based on environment variables.
// Priority:
//  1. KEYSCOPE_SCORER_PROVIDER (remote, lexical)
//  2. KEYSCOPE_SCORER_URL set -> remote
//  3. fall back to the in-process lexical scorer
func NewFromEnv() (Scorer, error) {
	cfg := Config{
		Provider:  os.Getenv(EnvProvider),
		BaseURL:   os.Getenv(EnvBaseURL),
		APIKey:    os.Getenv(EnvAPIKey),
		Model:     os.Getenv(EnvModel),
		CacheSize: DefaultCacheSize,
	}
	if cfg.Provider == "" && cfg.BaseURL != "" {
		cfg.Provider = ProviderRemote
	}
	return New(cfg)
}
