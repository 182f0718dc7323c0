package similarity

import (
	"fmt"
	"math"
	"strings"
)

// Func computes a similarity score between two vectors where a higher score
// means more similar. Implementations return a *DimensionMismatchError when
// len(a) != len(b) and ErrDegenerateVector when the score is undefined.
type Func func(a, b []float32) (float64, error)

// Metric names a built-in similarity function.
type Metric string

const (
	MetricCosine    Metric = "cosine"
	MetricDot       Metric = "dot"
	MetricEuclidean Metric = "euclidean"
)

// Func resolves the metric to its implementation, or nil when unknown.
func (m Metric) Func() Func {
	switch m {
	case MetricCosine:
		return Cosine
	case MetricDot:
		return Dot
	case MetricEuclidean:
		return Euclidean
	}
	return nil
}

// ParseMetric resolves a metric by case-insensitive name. An empty name
// selects cosine similarity.
func ParseMetric(name string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(name)))
	if m == "" {
		m = MetricCosine
	}
	if m.Func() == nil {
		return "", fmt.Errorf("similarity: unknown metric %q", name)
	}
	return m, nil
}

// Lookup resolves a metric name to its implementation.
func Lookup(name string) (Func, error) {
	m, err := ParseMetric(name)
	if err != nil {
		return nil, err
	}
	return m.Func(), nil
}

// Cosine computes dot(a,b) / (|a|*|b|).
func Cosine(a, b []float32) (float64, error) {
	if err := checkDims(a, b); err != nil {
		return 0, err
	}
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0, ErrDegenerateVector
	}
	return finite(dot / (math.Sqrt(na2) * math.Sqrt(nb2)))
}

// Dot computes the inner product. It is equivalent to Cosine for
// unit-normalized embeddings and cheaper to evaluate.
func Dot(a, b []float32) (float64, error) {
	if err := checkDims(a, b); err != nil {
		return 0, err
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return finite(dot)
}

// Euclidean maps the L2 distance into (0, 1] as 1/(1+d).
func Euclidean(a, b []float32) (float64, error) {
	d, err := L2Distance(a, b)
	if err != nil {
		return 0, err
	}
	return finite(1 / (1 + d))
}

// L2Distance computes the Euclidean (L2) distance between two vectors.
func L2Distance(a, b []float32) (float64, error) {
	if err := checkDims(a, b); err != nil {
		return 0, err
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return finite(math.Sqrt(sum))
}

// Norm returns the L2 norm of v accumulated in float64.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func checkDims(a, b []float32) error {
	if len(a) != len(b) {
		return &DimensionMismatchError{Expected: len(a), Actual: len(b)}
	}
	if len(a) == 0 {
		return ErrDegenerateVector
	}
	return nil
}

func finite(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrDegenerateVector
	}
	return v, nil
}
