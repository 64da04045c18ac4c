package ethash

import "github.com/holiman/uint256"

// CheckDifficulty reports whether the final hash, read as a big-endian
// 256-bit integer V, satisfies V * difficulty < 2^256.
//
// The product is computed exactly: the 320-bit result passes only when its
// bits above 2^256 are all zero. No target is derived by division, so there
// is no rounding at the boundary.
func CheckDifficulty(final Hash, difficulty uint64) bool {
	v := new(uint256.Int).SetBytes32(final[:])
	d := uint256.NewInt(difficulty)
	_, overflow := new(uint256.Int).MulOverflow(v, d)
	return !overflow
}
