package verifying

import (
	"fmt"

	"go.uber.org/zap"
)

const DefaultWorkers = 4

type option struct {
	logger *zap.Logger
	// number of headers verified concurrently by VerifyBatch
	workers int
}

func applyOpts(options ...OptionFunc) (*option, error) {
	opts := &option{
		logger:  zap.NewNop(),
		workers: DefaultWorkers,
	}
	for _, opt := range options {
		if err := opt(opts); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

type OptionFunc func(*option) error

func WithLogger(logger *zap.Logger) OptionFunc {
	return func(o *option) error {
		if logger == nil {
			return fmt.Errorf("invalid `logger` value; expected: non-nil, given: nil")
		}
		o.logger = logger
		return nil
	}
}

func WithWorkers(n int) OptionFunc {
	return func(o *option) error {
		if n < 1 {
			return fmt.Errorf("invalid `workers` value; expected: >= 1, given: %d", n)
		}
		o.workers = n
		return nil
	}
}
