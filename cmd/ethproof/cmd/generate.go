package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"

	"code.cloudfoundry.org/bytefmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/ethproof/ethash"
	"github.com/spacemeshos/ethproof/persistence"
	"github.com/spacemeshos/ethproof/proving"
)

var ErrNoSolution = errors.New("no nonce meets the difficulty")

type generateFlags struct {
	seed     string
	header   string
	epoch    uint32
	nonce    uint64
	attempts uint64
}

func newGenerateCmd(a *app) *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic epoch and a proof of work against it",
		Long: `Builds the dataset tree of a synthetic epoch derived from --seed, stores
its params in the datadir and searches nonces starting at --nonce until the
final hash meets the configured difficulty. The resulting proof envelope is
written to the datadir.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.generate(cmd, &f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.seed, "seed", "", "dataset seed, in hex (up to 32 bytes)")
	flags.StringVar(&f.header, "header", "", "header hash to seal, in hex (32 bytes, zero if not provided)")
	flags.Uint32Var(&f.epoch, "epoch", 0, "epoch number")
	flags.Uint64Var(&f.nonce, "nonce", 0, "first nonce to try")
	flags.Uint64Var(&f.attempts, "attempts", 1<<16, "max number of nonces to try")
	return cmd
}

func (a *app) generate(cmd *cobra.Command, f *generateFlags) error {
	ds := proving.SyntheticDataset{Size: a.cfg.DatasetCount}
	seed, err := hex.DecodeString(f.seed)
	if err != nil || len(seed) > len(ds.Seed) {
		return fmt.Errorf("invalid seed: %q", f.seed)
	}
	copy(ds.Seed[:], seed)

	var header ethash.Hash
	if f.header != "" {
		if header, err = ethash.HashFromHex(f.header); err != nil {
			return fmt.Errorf("invalid header: %w", err)
		}
	}

	epoch, err := proving.NewEpoch(cmd.Context(), ds,
		proving.WithLogger(a.logger),
		proving.WithThreads(a.cfg.Threads),
	)
	if err != nil {
		return fmt.Errorf("failed to build epoch: %w", err)
	}
	params := epoch.Params()
	if err := persistence.SaveEpoch(a.cfg.DataDir, f.epoch, params); err != nil {
		return err
	}

	for i := uint64(0); i < f.attempts; i++ {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		nonce := f.nonce + i
		proof, final, err := epoch.Prove(header, nonce)
		if err != nil {
			return err
		}
		if !ethash.CheckDifficulty(final, a.cfg.Difficulty) {
			continue
		}

		path, err := persistence.SaveEnvelope(a.cfg.DataDir, &persistence.Envelope{
			Header:     header,
			Nonce:      nonce,
			Difficulty: a.cfg.Difficulty,
			Epoch:      f.epoch,
			Proof:      proof,
		})
		if err != nil {
			return err
		}
		a.logger.Info("proof generated",
			zap.Uint32("epoch", f.epoch),
			zap.Stringer("params", params),
			zap.Uint64("nonce", nonce),
			zap.Uint64("attempts", i+1),
			zap.Stringer("final", final),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", path, bytefmt.ByteSize(uint64(len(proof))))
		return nil
	}
	return fmt.Errorf("%w: %d attempts from nonce %d", ErrNoSolution, f.attempts, f.nonce)
}
