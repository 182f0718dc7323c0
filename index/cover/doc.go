// Package cover provides an approximate cosine kNN index backed by a
// vantage-point tree. Distances use the float32 kernels from
// github.com/viant/vec/search; cosine distance is not a true metric, so
// triangle-inequality pruning may occasionally drop a close neighbour.
package cover
