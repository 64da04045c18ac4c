package ethash

const fnvPrime = 0x01000193

// Combine is the FNV-1 style fold used both to derive dataset indices and to
// mix element words into the running state.
func Combine(u, v uint32) uint32 {
	return (u * fnvPrime) ^ v
}
