package merkle

import (
	"fmt"
	"slices"
)

// Tree keeps every layer of a fully built tree, so it can serve multi-proofs
// for any set of leaves. It is the proving counterpart of MultiProof and uses
// the same shape: the last node of an odd layer is carried up unchanged.
type Tree[N comparable] struct {
	layers [][]N
}

func NewTree[N comparable](leaves []N, node func(left, right N) N) (*Tree[N], error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}
	if uint64(len(leaves)) > 1<<32-1 {
		return nil, fmt.Errorf("too many leaves: %d", len(leaves))
	}

	layer := slices.Clone(leaves)
	layers := [][]N{layer}
	for len(layer) > 1 {
		parents := make([]N, 0, (len(layer)+1)/2)
		for i := 0; i < len(layer); i += 2 {
			if i+1 == len(layer) {
				parents = append(parents, layer[i])
				continue
			}
			parents = append(parents, node(layer[i], layer[i+1]))
		}
		layers = append(layers, parents)
		layer = parents
	}
	return &Tree[N]{layers: layers}, nil
}

func (t *Tree[N]) Root() N {
	return t.layers[len(t.layers)-1][0]
}

// Width returns the number of leaves.
func (t *Tree[N]) Width() uint32 {
	return uint32(len(t.layers[0]))
}

// Depth returns the number of layers above the leaves.
func (t *Tree[N]) Depth() int {
	return len(t.layers) - 1
}

// Prove returns the proof nodes for the given leaves, in the order
// MultiProof.Root reads them. Repeated indices are proven once.
func (t *Tree[N]) Prove(indices []uint32) ([]N, error) {
	if len(indices) == 0 {
		return nil, ErrNoLeaves
	}
	idx := slices.Clone(indices)
	slices.Sort(idx)
	idx = slices.Compact(idx)
	if last := idx[len(idx)-1]; last >= t.Width() {
		return nil, fmt.Errorf("%w: index %d, count %d", ErrIndexRange, last, t.Width())
	}

	var proof []N
	for _, layer := range t.layers[:len(t.layers)-1] {
		width := uint32(len(layer))
		parents := idx[:0]
		for i := 0; i < len(idx); {
			cur := idx[i]
			i++
			switch {
			case cur%2 == 0 && cur+1 == width:
			case cur%2 == 0 && i < len(idx) && idx[i] == cur+1:
				i++
			case cur%2 == 0:
				proof = append(proof, layer[cur+1])
			default:
				proof = append(proof, layer[cur-1])
			}
			parents = append(parents, cur/2)
		}
		idx = parents
	}
	return proof, nil
}
