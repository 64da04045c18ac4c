package ethash

import "encoding/binary"

// mixer is the 1024-bit running state of the hashimoto loop.
type mixer struct {
	words    [wordsPerElement]uint32
	seedInit uint32
}

// newMixer fills the state with the seed, twice.
func newMixer(seed *Seed) mixer {
	var m mixer
	const seedWords = SeedSize / 4
	for i := 0; i < seedWords; i++ {
		w := binary.LittleEndian.Uint32(seed[i*4:])
		m.words[i] = w
		m.words[i+seedWords] = w
	}
	m.seedInit = m.words[0]
	return m
}

// index returns the dataset position read in the given round. It depends on
// the state left by all previous rounds.
func (m *mixer) index(round, datasetCount uint32) uint32 {
	return Combine(round^m.seedInit, m.words[round%wordsPerElement]) % datasetCount
}

func (m *mixer) absorb(e *Element) {
	for j := range m.words {
		m.words[j] = Combine(m.words[j], binary.LittleEndian.Uint32(e[j*4:]))
	}
}

// digest compresses the state into the 256-bit mix digest.
func (m *mixer) digest() Mix {
	var res Mix
	for i := 0; i < wordsPerElement; i += 4 {
		h1 := Combine(m.words[i], m.words[i+1])
		h2 := Combine(h1, m.words[i+2])
		h3 := Combine(h2, m.words[i+3])
		binary.LittleEndian.PutUint32(res[i:], h3)
	}
	return res
}

// InterpretPath replays the mixing rounds over the supplied solution elements.
// It returns the mix digest and, for every element, the dataset position the
// rounds claim it was read from. datasetCount must be non-zero.
func InterpretPath(datasetCount uint32, seed *Seed, elements *[NumSolutionElements]Element) (Mix, [NumSolutionElements]Item) {
	var items [NumSolutionElements]Item
	m := newMixer(seed)
	for i := uint32(0); i < NumSolutionElements; i++ {
		items[i] = Item{
			Index:   m.index(i, datasetCount),
			Element: &elements[i],
		}
		m.absorb(&elements[i])
	}
	return m.digest(), items
}

// Sample runs the same rounds against a dataset and returns the elements it
// read, in round order. This is the prover side of InterpretPath.
func Sample(datasetCount uint32, seed *Seed, lookup func(index uint32) Element) (Mix, [NumSolutionElements]Element, [NumSolutionElements]uint32) {
	var (
		elements [NumSolutionElements]Element
		indices  [NumSolutionElements]uint32
	)
	m := newMixer(seed)
	for i := uint32(0); i < NumSolutionElements; i++ {
		indices[i] = m.index(i, datasetCount)
		elements[i] = lookup(indices[i])
		m.absorb(&elements[i])
	}
	return m.digest(), elements, indices
}
