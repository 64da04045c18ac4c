package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/ethproof/config"
)

const (
	envPrefix = "ETHPROOF"
	configKey = "ethproof_config_key"
)

var (
	Version = "0.0.0"
	Commit  = ""
)

// app is the state shared by all commands of one invocation.
type app struct {
	cfg        *config.Config
	configFile string
	logger     *zap.Logger
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// NewRootCmd builds the ethproof command tree.
func NewRootCmd() *cobra.Command {
	a := &app{cfg: config.DefaultConfig(), logger: zap.NewNop()}
	var printConfig bool

	rootCmd := &cobra.Command{
		Use:   "ethproof",
		Short: "Compact Ethash proof of work tooling",
		Long: `ethproof builds synthetic epochs, produces compact proofs of work against
their dataset root and verifies them the way a light client would.`,
		Version:      fmt.Sprintf("%s (%s)", Version, Commit),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if printConfig {
				spew.Fdump(cmd.OutOrStdout(), a.cfg)
				return nil
			}
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "path to configuration file")
	flags.String("datadir", a.cfg.DataDir, "directory holding epoch params and proofs")
	flags.String("log-level", a.cfg.LogLevel, "log level (debug, info, warn, error, dpanic, panic, fatal)")
	flags.Int("workers", a.cfg.Workers, "number of proofs verified concurrently")
	flags.Uint("threads", a.cfg.Threads, "number of threads hashing dataset leaves (0 - all CPUs)")
	flags.Uint32("dataset-count", a.cfg.DatasetCount, "number of elements in a generated epoch dataset")
	flags.Uint64("difficulty", a.cfg.Difficulty, "difficulty a generated proof must meet")
	for _, name := range []string{"datadir", "log-level", "workers", "threads", "dataset-count", "difficulty"} {
		_ = flags.SetAnnotation(name, configKey, []string{name})
	}

	rootCmd.Flags().BoolVar(&printConfig, "print-config", false, "print the used config")

	rootCmd.AddCommand(
		newGenerateCmd(a),
		newVerifyCmd(a),
		newBatchCmd(a),
	)
	return rootCmd
}

// load merges the config file, the environment and the command line flags
// into a.cfg, in increasing priority, and builds the logger.
func (a *app) load(cmd *cobra.Command) error {
	vip := viper.New()
	vip.SetEnvPrefix(envPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vip.AutomaticEnv()

	if a.configFile != "" {
		vip.SetConfigFile(a.configFile)
		if err := vip.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	if err := bindFlags(vip, cmd.Flags()); err != nil {
		return err
	}
	if err := vip.Unmarshal(a.cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(a.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize zap logger: %w", err)
	}
	a.logger = logger
	return nil
}

// bindFlags binds every flag that maps onto a config.Config field.
func bindFlags(vip *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Annotations[configKey] == nil {
			return
		}
		err = vip.BindPFlag(f.Name, f)
	})
	return err
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zapCfg := zap.Config{
		Level:    zap.NewAtomicLevelAt(level),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "T",
			LevelKey:       "L",
			NameKey:        "N",
			MessageKey:     "M",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return zapCfg.Build()
}
