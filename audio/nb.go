package audio

import (
	"sync"
)

type peekableReader interface {
	Read(out []float32) (int, error)
	Len() int
}

// NonBlockingReader wraps a sample reader and makes it non-blocking, for
// use from audio callbacks which must never wait.
type NonBlockingReader struct {
	src peekableReader
	mu  sync.Mutex
}

func NewNonBlockingReader(r peekableReader) *NonBlockingReader {
	return &NonBlockingReader{src: r}
}

// Read reads from the underlying reader without blocking. If no samples
// are immediately available, it returns 0, nil and the caller plays
// silence.
func (n *NonBlockingReader) Read(out []float32) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.src.Len() == 0 {
		return 0, nil
	}
	return n.src.Read(out)
}
