package extractor

import (
	"strings"

	"github.com/MikaTepe/keyscope/pkg/types"
)

// englishStopWords is the generic English function-word set used for `en`
// and `auto` inputs. German gets no stopword filtering: no curated German
// set ships with the scorer backend, and filtering with the wrong list is
// worse than not filtering.
var englishStopWords = []string{
	"a", "about", "above", "after", "again", "against", "all", "also", "am",
	"an", "and", "any", "are", "as", "at", "be", "because", "been", "before",
	"being", "below", "between", "both", "but", "by", "can", "could", "did",
	"do", "does", "doing", "down", "during", "each", "few", "for", "from",
	"further", "had", "has", "have", "having", "he", "her", "here", "hers",
	"herself", "him", "himself", "his", "how", "i", "if", "in", "into", "is",
	"it", "its", "itself", "just", "me", "more", "most", "my", "myself",
	"no", "nor", "not", "now", "of", "off", "on", "once", "only", "or",
	"other", "our", "ours", "ourselves", "out", "over", "own", "same", "she",
	"should", "so", "some", "such", "than", "that", "the", "their", "theirs",
	"them", "themselves", "then", "there", "these", "they", "this", "those",
	"through", "to", "too", "under", "until", "up", "very", "was", "we",
	"were", "what", "when", "where", "which", "while", "who", "whom", "why",
	"will", "with", "would", "you", "your", "yours", "yourself", "yourselves",
}

// resolveStopWords maps a language tag to the stopword set handed to the
// scorer. Static three-branch mapping:
//
//	de        -> none
//	en / auto -> generic English set
//	anything  -> none
//
// The returned label names the choice for metadata.
func resolveStopWords(lang types.Language) ([]string, string) {
	switch {
	case strings.HasPrefix(string(lang), "de"):
		return nil, "none"
	case strings.HasPrefix(string(lang), "en"), lang == types.LanguageAuto:
		return englishStopWords, "english"
	default:
		return nil, "none"
	}
}
