// Package chunker splits long documents into overlapping text windows sized
// for an embedding scorer's effective context.
//
// Splitting prefers sentence and clause boundaries near the target size so
// windows read as coherent text, and consecutive windows overlap so that
// keyphrases straddling a cut are seen by at least one window whole.
//
// # Basic Usage
//
//	windows, err := chunker.Split(text, 1200, 200)
//	if err != nil {
//	    return err
//	}
//	for _, w := range windows {
//	    candidates, err := scorer.Score(ctx, w.Text, params)
//	    ...
//	}
//
// # Guarantees
//
//   - windows are produced in left-to-right order
//   - no window is empty
//   - consecutive windows overlap by at most the configured overlap
//   - text at most one chunk long comes back as a single window
//
// Offsets are rune-based: the input may be German or any other non-ASCII
// text and a cut never lands inside a multi-byte character.
package chunker
