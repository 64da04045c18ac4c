package proving

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spacemeshos/ethproof/ethash"
	"github.com/spacemeshos/ethproof/merkle"
)

const leavesPerBatch = 1 << 12

var ErrEmptyDataset = errors.New("dataset is empty")

// Epoch holds the dataset tree of one epoch and builds compact proofs
// against its root.
type Epoch struct {
	dataset Dataset
	tree    *merkle.Tree[ethash.Node]
}

// NewEpoch hashes every dataset element and builds the epoch tree.
func NewEpoch(ctx context.Context, ds Dataset, opts ...OptionFunc) (*Epoch, error) {
	options := &option{logger: zap.NewNop()}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	if err := options.validate(); err != nil {
		return nil, err
	}

	count := ds.Count()
	if count == 0 {
		return nil, ErrEmptyDataset
	}

	start := time.Now()
	leaves := make([]ethash.Node, count)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(options.workers())
	for from := uint64(0); from < uint64(count); from += leavesPerBatch {
		to := min(from+leavesPerBatch, uint64(count))
		from := from
		g.Go(func() error {
			for i := from; i < to; i++ {
				if i%leavesPerBatch == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				e := ds.Element(uint32(i))
				leaves[i] = ethash.LeafHash(&e)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tree, err := merkle.NewTree(leaves, ethash.NodeHash)
	if err != nil {
		return nil, err
	}
	options.logger.Info("epoch tree built",
		zap.Uint32("count", count),
		zap.Int("depth", tree.Depth()),
		zap.Stringer("root", tree.Root()),
		zap.Duration("duration", time.Since(start)),
	)
	return &Epoch{dataset: ds, tree: tree}, nil
}

// Params returns the trusted params a verifier needs for this epoch.
func (e *Epoch) Params() ethash.EpochParams {
	return ethash.EpochParams{
		DatasetCount: e.tree.Width(),
		Root:         e.tree.Root(),
	}
}

// Prove builds the compact proof of the solution for the given header and
// nonce: the 64 sampled elements followed by the minimal set of tree nodes.
// It also returns the final hash, which the caller may test against a
// difficulty. No nonce search is done here.
func (e *Epoch) Prove(header ethash.Hash, nonce uint64) ([]byte, ethash.Hash, error) {
	seed := ethash.SeedHash(header, nonce)
	mix, elements, indices := ethash.Sample(e.tree.Width(), &seed, e.dataset.Element)

	nodes, err := e.tree.Prove(indices[:])
	if err != nil {
		return nil, ethash.Hash{}, fmt.Errorf("building multi-proof: %w", err)
	}

	proof := make([]byte, 0, ethash.FixedProofSize+len(nodes)*ethash.NodeSize)
	for i := range elements {
		proof = append(proof, elements[i][:]...)
	}
	for i := range nodes {
		proof = append(proof, nodes[i][:]...)
	}
	return proof, ethash.FinalHash(&seed, &mix), nil
}
