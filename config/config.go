package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap/zapcore"
)

const (
	MaxWorkers = 1 << 10

	// MaxDatasetCount bounds the epochs the tooling will build. The verifier
	// itself accepts any non-zero uint32 count.
	MaxDatasetCount = 1 << 26
)

const (
	DefaultDataDirName  = "ethproof"
	DefaultLogLevel     = "info"
	DefaultDatasetCount = 1 << 16
	DefaultDifficulty   = 1 << 4
)

var DefaultDataDir string

func init() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	DefaultDataDir = filepath.Join(home, DefaultDataDirName)
}

type Config struct {
	DataDir  string `mapstructure:"datadir"`
	LogLevel string `mapstructure:"log-level"`

	// Workers is the number of envelopes verified concurrently in batch mode.
	Workers int `mapstructure:"workers"`
	// Threads is the number of goroutines hashing dataset leaves; 0 means all CPUs.
	Threads uint `mapstructure:"threads"`

	DatasetCount uint32 `mapstructure:"dataset-count"`
	Difficulty   uint64 `mapstructure:"difficulty"`
}

func DefaultConfig() *Config {
	return &Config{
		DataDir:      DefaultDataDir,
		LogLevel:     DefaultLogLevel,
		Workers:      runtime.NumCPU(),
		DatasetCount: DefaultDatasetCount,
		Difficulty:   DefaultDifficulty,
	}
}

func (cfg *Config) Validate() error {
	if cfg.DataDir == "" {
		return fmt.Errorf("invalid `DataDir`; expected: non-empty path")
	}

	if _, err := cfg.Level(); err != nil {
		return fmt.Errorf("invalid `LogLevel`: %w", err)
	}

	if cfg.Workers < 1 || cfg.Workers > MaxWorkers {
		return fmt.Errorf("invalid `Workers`; expected: 1..%d, given: %d", MaxWorkers, cfg.Workers)
	}

	if cfg.Threads > MaxWorkers {
		return fmt.Errorf("invalid `Threads`; expected: <= %d, given: %d", MaxWorkers, cfg.Threads)
	}

	if cfg.DatasetCount == 0 {
		return fmt.Errorf("invalid `DatasetCount`; expected: > 0")
	}

	if cfg.DatasetCount > MaxDatasetCount {
		return fmt.Errorf("invalid `DatasetCount`; expected: <= %d, given: %d", MaxDatasetCount, cfg.DatasetCount)
	}

	return nil
}

// Level parses LogLevel.
func (cfg *Config) Level() (zapcore.Level, error) {
	return zapcore.ParseLevel(cfg.LogLevel)
}
