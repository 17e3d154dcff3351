package extractor

import (
	"math"
	"strings"

	"github.com/MikaTepe/keyscope/pkg/types"
)

// Title weight clamp range used when normalization is enabled
const (
	minTitleWeight = 1.0
	maxTitleWeight = 5.0
)

// applyTitleWeight prepends the title ceil(weight) times so any downstream
// frequency- or embedding-based scorer leans toward title vocabulary without
// the core knowing scorer internals. Returns the text unchanged when no
// usable title is configured.
func applyTitleWeight(text string, cfg *types.TitleConfig) (string, bool) {
	if cfg == nil || strings.TrimSpace(cfg.Text) == "" {
		return text, false
	}

	weight := cfg.Weight
	if cfg.Normalize {
		weight = math.Min(maxTitleWeight, math.Max(minTitleWeight, weight))
	}
	repeats := int(math.Ceil(weight))
	if repeats < 1 {
		repeats = 1
	}

	prefix := strings.Repeat(strings.TrimSpace(cfg.Text)+"\n", repeats)
	return prefix + text, true
}
