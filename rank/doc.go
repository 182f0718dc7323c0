// Package rank implements the ranking engine: it scores every candidate
// record of a kind against a query vector and returns the candidates ordered
// by descending similarity.
//
// The engine is a linear scan over whatever candidate Source supplies. The
// default Snapshot source hands over the full store snapshot, which makes the
// ranking exact; Indexed narrows the candidates with an index.Index first.
// Either way the engine rescores in float64 and applies the same ordering,
// tie-break and error semantics:
//
//   - records without a non-empty vector of the kind are skipped
//   - a degenerate (zero-norm) candidate is skipped and counted
//   - a dimension mismatch fails the whole search with a
//     *SearchConfigurationError and no partial result
//   - equal scores keep the candidate order
package rank
