package ethash

import (
	"encoding/binary"

	"github.com/spacemeshos/sha256-simd"
	"golang.org/x/crypto/sha3"
)

// SeedHash derives the pow seed: Keccak-512(header || little-endian nonce).
func SeedHash(header Hash, nonce uint64) Seed {
	var buf [HashSize + 8]byte
	copy(buf[:], header[:])
	binary.LittleEndian.PutUint64(buf[HashSize:], nonce)

	var seed Seed
	h := sha3.NewLegacyKeccak512()
	h.Write(buf[:])
	h.Sum(seed[:0])
	return seed
}

// FinalHash is Keccak-256(seed || mix), the value tested against the difficulty.
func FinalHash(seed *Seed, mix *Mix) Hash {
	var res Hash
	h := sha3.NewLegacyKeccak256()
	h.Write(seed[:])
	h.Write(mix[:])
	h.Sum(res[:0])
	return res
}

// LeafHash commits to one dataset element.
func LeafHash(e *Element) Node {
	sum := sha256.Sum256(e[:])
	return truncate(&sum)
}

// NodeHash combines two children, left first.
func NodeHash(left, right Node) Node {
	var buf [2 * NodeSize]byte
	copy(buf[:], left[:])
	copy(buf[NodeSize:], right[:])
	sum := sha256.Sum256(buf[:])
	return truncate(&sum)
}

func truncate(sum *[sha256.Size]byte) Node {
	var n Node
	copy(n[:], sum[:NodeSize])
	return n
}

// NodeFromBytes decodes one proof node; b must hold at least NodeSize bytes.
func NodeFromBytes(b []byte) Node {
	var n Node
	copy(n[:], b[:NodeSize])
	return n
}
