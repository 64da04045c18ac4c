package cmd

import (
	"fmt"

	"code.cloudfoundry.org/bytefmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/ethproof/persistence"
	"github.com/spacemeshos/ethproof/verifying"
)

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <proof file>...",
		Short: "Verify proof envelopes against the stored epoch params",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if err := a.verify(cmd, path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (a *app) verify(cmd *cobra.Command, path string) error {
	env, err := persistence.LoadEnvelope(path)
	if err != nil {
		return err
	}
	params, err := persistence.LoadEpoch(a.cfg.DataDir, env.Epoch)
	if err != nil {
		return err
	}

	consumed, err := verifying.VerifyHeader(params, env.Header, env.Nonce, env.Difficulty, env.Proof,
		verifying.WithLogger(a.logger),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if int(consumed) < len(env.Proof) {
		a.logger.Warn("proof has trailing bytes",
			zap.String("path", path),
			zap.Uint32("consumed", consumed),
			zap.Int("size", len(env.Proof)),
		)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (%s)\n", path, bytefmt.ByteSize(uint64(consumed)))
	return nil
}
