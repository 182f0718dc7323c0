package rank

import (
	"errors"
	"fmt"

	"github.com/viant/vecsearch/similarity"
	"github.com/viant/vecsearch/vector"
)

// ErrMetricMismatch is matched by *MetricMismatchError.
var ErrMetricMismatch = errors.New("rank: source and engine metrics differ")

// SearchConfigurationError reports that the corpus violates a corpus-wide
// assumption, e.g. a stored vector whose dimensionality differs from the
// query. It points at data-ingestion drift, not at a bad user query.
type SearchConfigurationError struct {
	Kind     vector.Kind
	Expected int
	Actual   int
	RecordID string
	Err      error
}

func (e *SearchConfigurationError) Error() string {
	return fmt.Sprintf("rank: search configuration error: kind %q expects dim %d, record %q has dim %d",
		e.Kind, e.Expected, e.RecordID, e.Actual)
}

func (e *SearchConfigurationError) Unwrap() error { return e.Err }

// MetricMismatchError reports a candidate source that pre-selects by a
// different metric than the engine scores with.
type MetricMismatchError struct {
	Source similarity.Metric
	Engine similarity.Metric
}

func (e *MetricMismatchError) Error() string {
	engine := string(e.Engine)
	if engine == "" {
		engine = "custom"
	}
	return fmt.Sprintf("rank: source pre-selects by %s but engine scores by %s", e.Source, engine)
}

func (e *MetricMismatchError) Is(target error) bool { return target == ErrMetricMismatch }
