package ethash

import (
	"encoding/hex"
	"fmt"

	"github.com/spacemeshos/ethproof/merkle"
)

const (
	// NumSolutionElements is the number of dataset elements a solution consumes.
	NumSolutionElements = 64

	ElementSize = 128
	SeedSize    = 64
	MixSize     = 32
	HashSize    = 32

	// NodeSize is the width of a dataset tree node. The hash is truncated to
	// 160 bits to keep proofs small; roots and proofs depend on this value.
	NodeSize = 20

	// FixedProofSize is the size of the solution elements at the head of a proof.
	FixedProofSize = NumSolutionElements * ElementSize

	wordsPerElement = ElementSize / 4
)

type (
	Element [ElementSize]byte
	Seed    [SeedSize]byte
	Mix     [MixSize]byte
	Hash    [HashSize]byte
	Node    [NodeSize]byte
)

func (h Hash) String() string { return hex.EncodeToString(h[:]) }
func (n Node) String() string { return hex.EncodeToString(n[:]) }

// EpochParams are the trusted commitments to one epoch's dataset.
type EpochParams struct {
	DatasetCount uint32
	Root         Node
}

func (ep EpochParams) String() string {
	return fmt.Sprintf("{count: %d, root: %v}", ep.DatasetCount, ep.Root)
}

// Item is a solution element together with the dataset position it was
// sampled from.
type Item = merkle.Item[*Element]

// DatasetTree is the multi-proof validator for dataset trees.
var DatasetTree = merkle.MultiProof[*Element, Node]{Leaf: LeafHash, Node: NodeHash}

func HashFromHex(s string) (Hash, error) {
	var h Hash
	return h, decodeHex(h[:], s)
}

func NodeFromHex(s string) (Node, error) {
	var n Node
	return n, decodeHex(n[:], s)
}

func decodeHex(dst []byte, s string) error {
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(b) != len(dst) {
		return fmt.Errorf("invalid length; expected: %d, given: %d", len(dst), len(b))
	}
	copy(dst, b)
	return nil
}
