package merkle

// ByteStream reads fixed-width proof nodes from a byte slice, front to back.
// Trailing bytes shorter than one node are never read.
type ByteStream[N any] struct {
	buf      []byte
	width    int
	decode   func([]byte) N
	consumed int
}

func NewByteStream[N any](buf []byte, width int, decode func([]byte) N) *ByteStream[N] {
	return &ByteStream[N]{buf: buf, width: width, decode: decode}
}

func (s *ByteStream[N]) Next() (N, error) {
	var n N
	if len(s.buf) < s.width {
		return n, ErrProofExhausted
	}
	n = s.decode(s.buf[:s.width])
	s.buf = s.buf[s.width:]
	s.consumed++
	return n, nil
}

// Consumed returns the number of nodes read so far.
func (s *ByteStream[N]) Consumed() int {
	return s.consumed
}

// Remaining returns the number of whole nodes left in the stream.
func (s *ByteStream[N]) Remaining() int {
	return len(s.buf) / s.width
}

// SliceStream serves proof nodes from an already decoded slice.
type SliceStream[N any] struct {
	nodes    []N
	consumed int
}

func NewSliceStream[N any](nodes []N) *SliceStream[N] {
	return &SliceStream[N]{nodes: nodes}
}

func (s *SliceStream[N]) Next() (N, error) {
	var n N
	if len(s.nodes) == 0 {
		return n, ErrProofExhausted
	}
	n = s.nodes[0]
	s.nodes = s.nodes[1:]
	s.consumed++
	return n, nil
}

func (s *SliceStream[N]) Consumed() int {
	return s.consumed
}
