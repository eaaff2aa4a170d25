package vecquery

import (
	"log/slog"

	"github.com/RoaringBitmap/roaring/v2"
)

type options struct {
	logger      *Logger
	parallelism int
	filter      *roaring.Bitmap
}

// Option configures Index construction and search behavior.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithParallelism sets the number of workers used to scan candidates
// during a search. Values <= 1 mean a sequential scan. Parallel and
// sequential scans return the same result set; only the relative order of
// equal-distance candidates may differ.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithFilter restricts search to the candidate indices contained in the
// bitmap. Candidates outside the bitmap are skipped entirely; the result
// is the exact top-k of the remaining subset.
func WithFilter(bm *roaring.Bitmap) Option {
	return func(o *options) {
		o.filter = bm
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger: NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
