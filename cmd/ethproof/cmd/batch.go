package cmd

import (
	"fmt"
	"strconv"

	"code.cloudfoundry.org/bytefmt"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/ethproof/ethash"
	"github.com/spacemeshos/ethproof/persistence"
	"github.com/spacemeshos/ethproof/shared"
	"github.com/spacemeshos/ethproof/verifying"
)

func newBatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "batch [proof file]...",
		Short: "Verify many proof envelopes concurrently",
		Long: `Verifies the given proof envelopes, or every envelope in the datadir when
none are given, using --workers concurrent verifiers. Each proof is accepted
or rejected on its own and the outcome is printed as a table.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.batch(cmd, args)
		},
	}
}

func (a *app) batch(cmd *cobra.Command, paths []string) error {
	if len(paths) == 0 {
		var err error
		if paths, err = persistence.ListEnvelopes(a.cfg.DataDir); err != nil {
			return err
		}
	}

	epochs := make(map[uint32]ethash.EpochParams)
	reqs := make([]verifying.Request, 0, len(paths))
	for _, path := range paths {
		env, err := persistence.LoadEnvelope(path)
		if err != nil {
			return err
		}
		params, ok := epochs[env.Epoch]
		if !ok {
			if params, err = persistence.LoadEpoch(a.cfg.DataDir, env.Epoch); err != nil {
				return err
			}
			epochs[env.Epoch] = params
		}
		reqs = append(reqs, verifying.Request{
			Epoch: params,
			Header: verifying.Header{
				Hash:       env.Header,
				Nonce:      env.Nonce,
				Difficulty: env.Difficulty,
			},
			Proof: env.Proof,
		})
	}

	results, err := verifying.VerifyBatch(cmd.Context(), reqs,
		verifying.WithLogger(a.logger),
		verifying.WithWorkers(a.cfg.Workers),
	)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Proof", "Header", "Nonce", "Size", "Result"})
	rejected := 0
	for i, res := range results {
		size, outcome := bytefmt.ByteSize(uint64(res.Consumed)), "valid"
		if res.Err != nil {
			rejected++
			size, outcome = bytefmt.ByteSize(uint64(len(reqs[i].Proof))), shared.KindOf(res.Err).String()
			a.logger.Info("proof rejected", zap.String("path", paths[i]), zap.Error(res.Err))
		}
		table.Append([]string{
			paths[i],
			res.Header.Hash.String(),
			strconv.FormatUint(res.Header.Nonce, 10),
			size,
			outcome,
		})
	}
	table.Render()

	if rejected > 0 {
		return fmt.Errorf("%d of %d proofs rejected", rejected, len(results))
	}
	return nil
}
