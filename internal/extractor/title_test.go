package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MikaTepe/keyscope/pkg/types"
)

func TestApplyTitleWeight_NoConfig(t *testing.T) {
	text := "body text"

	got, applied := applyTitleWeight(text, nil)
	assert.False(t, applied)
	assert.Equal(t, text, got)

	got, applied = applyTitleWeight(text, &types.TitleConfig{Text: "   ", Weight: 3})
	assert.False(t, applied)
	assert.Equal(t, text, got)
}

func TestApplyTitleWeight_RepeatCount(t *testing.T) {
	text := "body text"
	cfg := &types.TitleConfig{Text: "Climate Policy", Weight: 3.0, Normalize: true}

	got, applied := applyTitleWeight(text, cfg)
	assert.True(t, applied)
	assert.Equal(t, strings.Repeat("Climate Policy\n", 3)+text, got)
}

func TestApplyTitleWeight_CeilAndClamp(t *testing.T) {
	text := "body"

	// 2.1 ceils to 3 repeats
	got, _ := applyTitleWeight(text, &types.TitleConfig{Text: "T", Weight: 2.1, Normalize: true})
	assert.Equal(t, "T\nT\nT\n"+text, got)

	// Normalization clamps 9.0 down to 5
	got, _ = applyTitleWeight(text, &types.TitleConfig{Text: "T", Weight: 9.0, Normalize: true})
	assert.Equal(t, strings.Repeat("T\n", 5)+text, got)

	// Without normalization the raw weight drives the repeat count
	got, _ = applyTitleWeight(text, &types.TitleConfig{Text: "T", Weight: 7.0, Normalize: false})
	assert.Equal(t, strings.Repeat("T\n", 7)+text, got)

	// Sub-1 weights still repeat at least once
	got, _ = applyTitleWeight(text, &types.TitleConfig{Text: "T", Weight: 0.2, Normalize: false})
	assert.Equal(t, "T\n"+text, got)
}

func TestApplyTitleWeight_TrimsTitle(t *testing.T) {
	got, _ := applyTitleWeight("body", &types.TitleConfig{Text: "  Heading  ", Weight: 1, Normalize: true})
	assert.Equal(t, "Heading\nbody", got)
}

func TestResolveStopWords(t *testing.T) {
	words, label := resolveStopWords(types.LanguageGerman)
	assert.Nil(t, words)
	assert.Equal(t, "none", label)

	words, label = resolveStopWords(types.LanguageEnglish)
	assert.NotEmpty(t, words)
	assert.Equal(t, "english", label)

	words, label = resolveStopWords(types.LanguageAuto)
	assert.NotEmpty(t, words)
	assert.Equal(t, "english", label)

	words, label = resolveStopWords(types.Language("fr"))
	assert.Nil(t, words)
	assert.Equal(t, "none", label)
}
