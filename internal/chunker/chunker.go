package chunker

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/MikaTepe/keyscope/pkg/types"
)

const (
	// BoundarySearchWindow is how far past the tentative cut the splitter
	// looks for a nicer boundary
	BoundarySearchWindow = 200

	// MinWindowRatio is the smallest acceptable window size relative to the
	// target chunk size when a boundary cut would shrink the window
	MinWindowRatio = 0.6
)

// Window is a contiguous substring of the normalized source text. Start and
// End are rune offsets into the normalized text; consecutive windows may
// overlap by up to the configured overlap.
type Window struct {
	Text  string
	Start int
	End   int
}

// Len returns the window length in runes
func (w Window) Len() int {
	return w.End - w.Start
}

// horizontalWS collapses runs of spaces/tabs/form feeds; newlines survive so
// boundary search can still prefer them
var horizontalWS = regexp.MustCompile(`[ \t\f\v]+`)

// NormalizeWhitespace collapses horizontal whitespace runs to single spaces,
// unifies line endings and trims the result. Applied once before splitting
// so windows measure cleanly against the chunk size.
func NormalizeWhitespace(text string) string {
	text = horizontalWS.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(text)
}

// EstimatePages returns the approximate page count for limit decisions
func EstimatePages(charCount, approxCharsPerPage int) float64 {
	if approxCharsPerPage < 1 {
		approxCharsPerPage = 1
	}
	return float64(charCount) / float64(approxCharsPerPage)
}

// isBoundary reports whether r is a cut-friendly character: whitespace or
// sentence/clause punctuation
func isBoundary(r rune) bool {
	switch r {
	case ' ', '\n', '.', '!', '?', ':', ';', ',':
		return true
	}
	return false
}

// Split divides text into overlapping windows of roughly chunkSize runes,
// preferring to cut at sentence or clause boundaries near the target size.
//
// The walk from offset 0 works per tentative cut:
//  1. look forward up to BoundarySearchWindow runes for the nearest boundary,
//     accepted only if the window keeps at least MinWindowRatio of chunkSize
//  2. otherwise search backward from the tentative cut toward
//     start+MinWindowRatio*chunkSize for the last boundary in that span
//  3. otherwise cut exactly at the tentative end (mid-word as last resort)
//
// Windows come out in left-to-right order, never empty, overlapping by up to
// overlap runes. Empty input (after normalization) yields no windows.
func Split(text string, chunkSize, overlap int) ([]Window, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be > 0", types.ErrInvalidChunkConfig)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap must be smaller than chunk size", types.ErrInvalidChunkConfig)
	}

	runes := []rune(NormalizeWhitespace(text))
	n := len(runes)
	if n == 0 {
		return nil, nil
	}

	if n <= chunkSize {
		return []Window{{Text: string(runes), Start: 0, End: n}}, nil
	}

	minSpan := int(float64(chunkSize) * MinWindowRatio)
	windows := make([]Window, 0, n/chunkSize+1)
	start := 0

	for start < n {
		end := start + chunkSize
		if end > n {
			end = n
		}
		bestEnd := end

		// Look forward for a nicer boundary
		searchEnd := end + BoundarySearchWindow
		if searchEnd > n {
			searchEnd = n
		}
		for i := end; i < searchEnd; i++ {
			if isBoundary(runes[i]) {
				if i-start >= minSpan {
					bestEnd = i
				}
				break
			}
		}

		// No forward boundary accepted: look backward a little
		if bestEnd == end {
			windowStart := start + minSpan
			for i := end - 1; i >= windowStart; i-- {
				if isBoundary(runes[i]) {
					bestEnd = i
					break
				}
			}
		}

		if w, ok := trimWindow(runes, start, bestEnd); ok {
			windows = append(windows, w)
		}

		if bestEnd >= n {
			break
		}

		next := bestEnd - overlap
		if next < 0 {
			next = 0
		}
		// Guard against stalling when a backward cut lands inside the
		// overlap span
		if next <= start {
			next = bestEnd
		}
		start = next
	}

	return windows, nil
}

// trimWindow strips leading/trailing whitespace from runes[start:end] and
// reports the trimmed span; ok is false when nothing remains
func trimWindow(runes []rune, start, end int) (Window, bool) {
	for start < end && unicode.IsSpace(runes[start]) {
		start++
	}
	for end > start && unicode.IsSpace(runes[end-1]) {
		end--
	}
	if start >= end {
		return Window{}, false
	}
	return Window{Text: string(runes[start:end]), Start: start, End: end}, true
}
