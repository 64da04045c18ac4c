package verifying

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spacemeshos/ethproof/ethash"
	"github.com/spacemeshos/ethproof/merkle"
	"github.com/spacemeshos/ethproof/shared"
)

var (
	ErrEmptyDataset = errors.New("epoch dataset is empty")
	ErrShortProof   = errors.New("proof shorter than the solution elements")
)

// Header is a PoW claim: the sealed header hash, its nonce and the difficulty
// it must meet.
type Header struct {
	Hash       ethash.Hash
	Nonce      uint64
	Difficulty uint64
}

// VerifyHeader checks a compact proof of work against the trusted epoch params.
//
// The proof holds the 64 solution elements followed by the multi-proof nodes
// of the dataset tree. On success it returns the number of proof bytes
// actually read, so proofs may be packed back to back. Any failure rejects the
// header as a whole and is reported as a *shared.VerifyError.
func VerifyHeader(ep ethash.EpochParams, header ethash.Hash, nonce, difficulty uint64, proof []byte, opts ...OptionFunc) (uint32, error) {
	options, err := applyOpts(opts...)
	if err != nil {
		return 0, err
	}
	return verifyHeader(ep, Header{Hash: header, Nonce: nonce, Difficulty: difficulty}, proof, options.logger)
}

func verifyHeader(ep ethash.EpochParams, h Header, proof []byte, logger *zap.Logger) (uint32, error) {
	consumed, err := verify(ep, h, proof)
	if err != nil {
		logger.Debug("header rejected",
			zap.Stringer("header", h.Hash),
			zap.Uint64("nonce", h.Nonce),
			zap.Stringer("kind", shared.KindOf(err)),
			zap.Error(err),
		)
		return 0, err
	}
	logger.Debug("header verified",
		zap.Stringer("header", h.Hash),
		zap.Uint64("nonce", h.Nonce),
		zap.Uint32("consumed", consumed),
	)
	return consumed, nil
}

func verify(ep ethash.EpochParams, h Header, proof []byte) (uint32, error) {
	if ep.DatasetCount == 0 {
		return 0, shared.NewVerifyError(shared.KindInconsistency, ErrEmptyDataset)
	}
	if len(proof) < ethash.FixedProofSize {
		return 0, shared.NewVerifyError(shared.KindUnderrun,
			fmt.Errorf("%w; expected: >= %d bytes, given: %d", ErrShortProof, ethash.FixedProofSize, len(proof)))
	}

	// 1. pow seed
	seed := ethash.SeedHash(h.Hash, h.Nonce)

	// 2. replay the mixing rounds over the supplied elements
	var elements [ethash.NumSolutionElements]ethash.Element
	for i := range elements {
		copy(elements[i][:], proof[i*ethash.ElementSize:])
	}
	mix, items := ethash.InterpretPath(ep.DatasetCount, &seed, &elements)

	// 3. the epoch root must commit to every element at its derived position
	siblings := merkle.NewByteStream(proof[ethash.FixedProofSize:], ethash.NodeSize, ethash.NodeFromBytes)
	var work [ethash.NumSolutionElements]merkle.Entry[ethash.Node]
	if err := ethash.DatasetTree.Verify(items[:], work[:], ep.DatasetCount, siblings, ep.Root); err != nil {
		if errors.Is(err, merkle.ErrProofExhausted) {
			return 0, shared.NewVerifyError(shared.KindUnderrun, err)
		}
		return 0, shared.NewVerifyError(shared.KindInconsistency, err)
	}

	// 4. final hash, 5. difficulty
	final := ethash.FinalHash(&seed, &mix)
	if !ethash.CheckDifficulty(final, h.Difficulty) {
		return 0, shared.NewVerifyError(shared.KindDifficulty,
			fmt.Errorf("final hash %v does not meet difficulty %d", final, h.Difficulty))
	}

	return uint32(ethash.FixedProofSize + siblings.Consumed()*ethash.NodeSize), nil
}
