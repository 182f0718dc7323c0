// Package index defines a minimal abstraction for vector indexes that can be
// built from embeddings and queried for kNN. Implementations in this module
// include a brute-force baseline and a vantage-point tree; the ranking engine
// uses them as candidate prefilters behind the same search contract.
package index
