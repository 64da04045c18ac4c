package proving

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/spacemeshos/ethproof/ethash"
)

// Dataset is random access to the elements of one epoch.
type Dataset interface {
	Count() uint32
	Element(index uint32) ethash.Element
}

// SliceDataset serves elements held in memory.
type SliceDataset []ethash.Element

func (d SliceDataset) Count() uint32 { return uint32(len(d)) }

func (d SliceDataset) Element(index uint32) ethash.Element { return d[index] }

// SyntheticDataset derives every element from a seed, so test epochs of any
// size can be produced without storing them. Element i is
// Keccak-512(seed || le32(i) || 0) || Keccak-512(seed || le32(i) || 1).
type SyntheticDataset struct {
	Seed [32]byte
	Size uint32
}

func (d SyntheticDataset) Count() uint32 { return d.Size }

func (d SyntheticDataset) Element(index uint32) ethash.Element {
	var (
		e   ethash.Element
		msg [len(d.Seed) + 5]byte
	)
	copy(msg[:], d.Seed[:])
	binary.LittleEndian.PutUint32(msg[len(d.Seed):], index)

	h := sha3.NewLegacyKeccak512()
	for half := 0; half < 2; half++ {
		msg[len(msg)-1] = byte(half)
		h.Reset()
		h.Write(msg[:])
		h.Sum(e[half*ethash.SeedSize : half*ethash.SeedSize])
	}
	return e
}
