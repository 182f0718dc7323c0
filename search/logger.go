package search

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/viant/vecsearch/rank"
	"github.com/viant/vecsearch/vector"
)

// Logger wraps slog.Logger with search-specific fields.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler. A nil handler discards
// everything.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.DiscardHandler
	}
	return &Logger{Logger: slog.New(handler)}
}

// WithKind adds a kind field to the logger.
func (l *Logger) WithKind(kind vector.Kind) *Logger {
	return &Logger{Logger: l.Logger.With("kind", string(kind))}
}

// LogSearch logs one search call. Configuration errors are logged at Error
// level since they point at corpus drift; cancellations at Debug.
func (l *Logger) LogSearch(ctx context.Context, kind vector.Kind, rs *rank.ResultSet, elapsed time.Duration, err error) {
	var cfgErr *rank.SearchConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		l.ErrorContext(ctx, "search configuration error",
			"kind", string(kind),
			"record", cfgErr.RecordID,
			"expected_dim", cfgErr.Expected,
			"actual_dim", cfgErr.Actual,
		)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		l.DebugContext(ctx, "search cancelled",
			"kind", string(kind),
			"error", err,
		)
	case err != nil:
		l.ErrorContext(ctx, "search failed",
			"kind", string(kind),
			"error", err,
		)
	default:
		if rs.Skipped > 0 {
			l.WarnContext(ctx, "search skipped degenerate vectors",
				"kind", string(kind),
				"skipped", rs.Skipped,
			)
		}
		l.DebugContext(ctx, "search completed",
			"kind", string(kind),
			"candidates", rs.Candidates,
			"results", rs.Len(),
			"missing", rs.Missing,
			"elapsed", elapsed,
		)
	}
}
