package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_RecordSearch(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg)
	require.NoError(t, err)

	p.RecordSearch("text", 3, 1, 2*time.Millisecond, nil)
	p.RecordSearch("text", 5, 2, time.Millisecond, nil)
	p.RecordSearch("image", 0, 0, time.Millisecond, errors.New("boom"))

	assert.Equal(t, 3.0, testutil.ToFloat64(p.skipped.WithLabelValues("text")))
	assert.Equal(t, 2, testutil.CollectAndCount(p.latency))
	assert.Equal(t, 1, testutil.CollectAndCount(p.results))

	_, err = NewPrometheus(reg)
	assert.Error(t, err)
}
