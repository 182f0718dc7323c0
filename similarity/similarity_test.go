package similarity

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomVector(r *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = float32(r.NormFloat64())
	}
	return v
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"Identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"Orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"Opposite", []float32{1, 2, 3}, []float32{-1, -2, -3}, -1},
		{"Angle45", []float32{1, 0}, []float32{1, 1}, math.Sqrt2 / 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cosine(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestCosine_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for _, dim := range []int{1, 3, 384, 512, 4096} {
		a := randomVector(r, dim)
		b := randomVector(r, dim)

		self, err := Cosine(a, a)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, self, 1e-9, "dim=%d", dim)

		ab, err := Cosine(a, b)
		require.NoError(t, err)
		ba, err := Cosine(b, a)
		require.NoError(t, err)
		assert.Equal(t, ab, ba, "symmetry dim=%d", dim)
		assert.LessOrEqual(t, math.Abs(ab), 1+1e-9)

		for _, k := range []float32{0.001, 0.5, 3, 1e4} {
			scaled := make([]float32, dim)
			for i := range a {
				scaled[i] = a[i] * k
			}
			got, err := Cosine(a, scaled)
			require.NoError(t, err)
			assert.InDelta(t, self, got, 1e-6, "scale k=%v dim=%d", k, dim)
		}
	}
}

func TestCosine_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
	}{
		{"ZeroA", []float32{0, 0, 0}, []float32{1, 2, 3}},
		{"ZeroB", []float32{1, 2, 3}, []float32{0, 0, 0}},
		{"BothZero", []float32{0, 0}, []float32{0, 0}},
		{"Empty", []float32{}, []float32{}},
		{"NaN", []float32{float32(math.NaN()), 1}, []float32{1, 1}},
		{"Inf", []float32{float32(math.Inf(1)), 1}, []float32{1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cosine(tt.a, tt.b)
			require.ErrorIs(t, err, ErrDegenerateVector)
			assert.False(t, math.IsNaN(got))
			assert.Zero(t, got)
		})
	}
}

func TestCosine_DimensionMismatch(t *testing.T) {
	_, err := Cosine(make([]float32, 384), make([]float32, 512))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	var dm *DimensionMismatchError
	require.True(t, errors.As(err, &dm))
	assert.Equal(t, 384, dm.Expected)
	assert.Equal(t, 512, dm.Actual)

	// Dimension checks win over degenerate checks.
	_, err = Cosine([]float32{}, []float32{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestDotAndEuclidean(t *testing.T) {
	d, err := Dot([]float32{1, 2, 3}, []float32{4, 5, 6})
	require.NoError(t, err)
	assert.InDelta(t, 32, d, 1e-9)

	l2, err := L2Distance([]float32{0, 0}, []float32{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 5, l2, 1e-9)

	e, err := Euclidean([]float32{0, 0}, []float32{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 1.0/6.0, e, 1e-9)

	same, err := Euclidean([]float32{1, 1}, []float32{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 1.0, same)

	_, err = Dot([]float32{1}, []float32{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"", "cosine", "COSINE", " dot ", "euclidean"} {
		fn, err := Lookup(name)
		require.NoError(t, err, name)
		require.NotNil(t, fn, name)
	}
	_, err := Lookup("manhattan")
	assert.Error(t, err)
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("")
	require.NoError(t, err)
	assert.Equal(t, MetricCosine, m)

	m, err = ParseMetric(" Euclidean ")
	require.NoError(t, err)
	assert.Equal(t, MetricEuclidean, m)

	_, err = ParseMetric("manhattan")
	assert.Error(t, err)
}

func TestNorm(t *testing.T) {
	assert.InDelta(t, 5, Norm([]float32{3, 4}), 1e-12)
	assert.Zero(t, Norm(nil))
}
