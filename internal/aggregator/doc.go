// Package aggregator merges per-window keyphrase candidates into one ranked
// result list.
//
// Candidates from different windows that share a merge key (case-folded,
// whitespace-collapsed surface form) are the same logical keyword: their
// scores are combined under a per-request policy (max, mean or sum) and the
// keyword appears at most once in the output.
//
// Ordering is deterministic: combined score descending, ties broken by
// shorter n-gram first, then lexicographically on the surface form. Feeding
// the same candidate lists in any order produces identical output.
package aggregator
