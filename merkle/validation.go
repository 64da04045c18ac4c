package merkle

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

var (
	ErrNoLeaves       = errors.New("at least one leaf is required for validation")
	ErrEmptyTree      = errors.New("tree must have at least one leaf")
	ErrIndexRange     = errors.New("leaf index out of range")
	ErrConflict       = errors.New("conflicting values for the same node")
	ErrRootMismatch   = errors.New("merkle root mismatch")
	ErrWorkTooSmall   = errors.New("work area smaller than the number of leaves")
	ErrProofExhausted = errors.New("no more proof nodes")
)

// Item is a leaf preimage together with its position in the tree.
type Item[E any] struct {
	Index   uint32
	Element E
}

// Entry is a computed node at a given position of the current layer.
type Entry[N any] struct {
	Index uint32
	Node  N
}

// Siblings supplies the proof nodes in the order the validator needs them.
type Siblings[N any] interface {
	Next() (N, error)
}

// MultiProof validates many leaves of one tree against a single stream of
// proof nodes. Paths that overlap share their upper nodes, so a sibling is
// only read from the stream when it cannot be computed from the leaves.
type MultiProof[E any, N comparable] struct {
	Leaf func(E) N
	Node func(left, right N) N
}

// Verify recomputes the root over items and compares it to expectedRoot.
func (mp MultiProof[E, N]) Verify(items []Item[E], work []Entry[N], count uint32, siblings Siblings[N], expectedRoot N) error {
	root, err := mp.Root(items, work, count, siblings)
	if err != nil {
		return err
	}
	if root != expectedRoot {
		return ErrRootMismatch
	}
	return nil
}

// Root recomputes the root of a tree with count leaves from items.
//
// work must hold at least len(items) entries; it is used as the layer buffer
// and its contents are undefined after the call. Items may repeat an index, in
// which case their leaf values must be identical.
func (mp MultiProof[E, N]) Root(items []Item[E], work []Entry[N], count uint32, siblings Siblings[N]) (N, error) {
	var root N
	switch {
	case count == 0:
		return root, ErrEmptyTree
	case len(items) == 0:
		return root, ErrNoLeaves
	case len(work) < len(items):
		return root, ErrWorkTooSmall
	}

	n := len(items)
	for i, it := range items {
		if it.Index >= count {
			return root, fmt.Errorf("%w: index %d, count %d", ErrIndexRange, it.Index, count)
		}
		work[i] = Entry[N]{Index: it.Index, Node: mp.Leaf(it.Element)}
	}
	layer := work[:n]
	slices.SortStableFunc(layer, func(a, b Entry[N]) int {
		return cmp.Compare(a.Index, b.Index)
	})

	width := count
	for width > 1 {
		var err error
		layer, err = mp.calcParents(layer, width, siblings)
		if err != nil {
			return root, err
		}
		width = width/2 + width%2
	}

	// A single-leaf tree never enters the loop, so duplicates are checked here.
	if _, err := skipDuplicates(layer, 0); err != nil {
		return root, err
	}
	return layer[0].Node, nil
}

// calcParents replaces the sorted layer with its parent layer, in place.
func (mp MultiProof[E, N]) calcParents(layer []Entry[N], width uint32, siblings Siblings[N]) ([]Entry[N], error) {
	out := 0
	for i := 0; i < len(layer); {
		cur := layer[i]
		next, err := skipDuplicates(layer, i)
		if err != nil {
			return nil, err
		}
		i = next

		var parent N
		switch {
		case cur.Index%2 == 0 && cur.Index+1 == width:
			// last node of an odd layer has no sibling and moves up as is
			parent = cur.Node
		case cur.Index%2 == 0 && i < len(layer) && layer[i].Index == cur.Index+1:
			right := layer[i]
			if i, err = skipDuplicates(layer, i); err != nil {
				return nil, err
			}
			parent = mp.Node(cur.Node, right.Node)
		case cur.Index%2 == 0:
			sibling, err := siblings.Next()
			if err != nil {
				return nil, err
			}
			parent = mp.Node(cur.Node, sibling)
		default:
			sibling, err := siblings.Next()
			if err != nil {
				return nil, err
			}
			parent = mp.Node(sibling, cur.Node)
		}

		layer[out] = Entry[N]{Index: cur.Index / 2, Node: parent}
		out++
	}
	return layer[:out], nil
}

// skipDuplicates returns the position past the run of entries sharing
// layer[i].Index, failing if any of them holds a different value.
func skipDuplicates[N comparable](layer []Entry[N], i int) (int, error) {
	first := layer[i]
	for i++; i < len(layer) && layer[i].Index == first.Index; i++ {
		if layer[i].Node != first.Node {
			return 0, fmt.Errorf("%w: index %d", ErrConflict, first.Index)
		}
	}
	return i, nil
}
