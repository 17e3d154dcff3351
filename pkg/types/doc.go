// Package types defines the request and result value objects shared across
// the keyword extraction pipeline.
//
// Every value here is created per request and discarded with it: an
// ExtractionRequest enters the extractor, an ExtractionResult leaves it, and
// nothing outlives the exchange. The types carry their own validation so the
// orchestrator can trust invariants (n-gram ordering, chunk geometry, numeric
// bounds) once Validate has passed.
//
// # Basic Usage
//
//	req := types.NewExtractionRequest("long document text ...")
//	req.MaxKeywords = 15
//	if err := req.Validate(); err != nil {
//	    return err
//	}
package types
