// Package scorer defines the keyphrase-candidate scoring boundary and its
// providers.
//
// The extraction pipeline treats scoring as a black box: it hands a text
// window plus parameters to a Scorer and gets back an unordered list of
// (phrase, score) candidates. Ranking logic inside the scorer is never
// inspected; deduplication and cross-window merging happen downstream in the
// aggregator.
//
// # Providers
//
//   - remote: HTTP client for a KeyBERT-style extraction sidecar. Retries
//     with exponential backoff and caches per-window results in an LRU.
//   - lexical: deterministic in-process term-frequency scorer. No model
//     loading, instantly ready; used for development and tests.
//
// # Selection
//
//	s, err := scorer.NewFromEnv()
//
// or with explicit configuration:
//
//	s, err := scorer.New(scorer.Config{
//	    Provider: scorer.ProviderRemote,
//	    BaseURL:  "http://localhost:8001",
//	})
//
// All providers are safe for concurrent use; window scoring calls for one
// document may run in parallel.
package scorer
