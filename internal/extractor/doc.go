// Package extractor orchestrates keyword extraction for arbitrary-length
// documents.
//
// One request moves through a single linear pipeline: optional title
// weighting, page-limit enforcement, the single-shot vs. chunked decision,
// per-window scoring against the injected scorer, cross-window aggregation
// and result assembly. No stage is retried or revisited; failures surface
// immediately and retry policy belongs to the enclosing layer.
//
//	ext := extractor.New(s, log)
//	res, err := ext.Extract(ctx, types.NewExtractionRequest(text))
//
// Window scoring for one document may run on a bounded worker pool; the
// aggregator only runs after a full join over all windows. Extractor itself
// holds no per-request state and is safe for concurrent use.
package extractor
