// Package similarity provides bounded similarity functions between two
// equal-length embeddings. All functions accumulate in float64 regardless of
// the float32 storage precision and report degenerate inputs as errors rather
// than returning NaN or Inf.
package similarity
