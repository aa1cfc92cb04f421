package h5io

import "github.com/tgolubev/cgio/internal/logger"

// Option configures a Reader or Writer.
type Option func(*options)

type options struct {
	logger logger.Logger
}

func newOptions(opts []Option) *options {
	o := &options{logger: logger.NopLogger}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
