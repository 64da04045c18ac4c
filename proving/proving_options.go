package proving

import (
	"errors"
	"runtime"

	"go.uber.org/zap"
)

type option struct {
	logger *zap.Logger
	// How many threads to use to hash the dataset leaves.
	// 0 - automatically detect
	threads uint
}

func (o *option) validate() error {
	if o.logger == nil {
		return errors.New("`logger` is required")
	}
	return nil
}

func (o *option) workers() int {
	if o.threads == 0 {
		return runtime.NumCPU()
	}
	return int(o.threads)
}

type OptionFunc func(*option) error

func WithLogger(logger *zap.Logger) OptionFunc {
	return func(o *option) error {
		o.logger = logger
		return nil
	}
}

func WithThreads(threads uint) OptionFunc {
	return func(o *option) error {
		o.threads = threads
		return nil
	}
}
