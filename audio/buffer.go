// Package audio holds sample buffering helpers for the edges of the
// system, e.g. bridging network packets to a local playback callback.
package audio

import (
	"encoding/binary"
	"io"
	"math"
	"sync"

	"github.com/smallnest/ringbuffer"
)

const sampleSize = 4

// Buffer is a bounded FIFO of float32 samples. Read blocks until at least
// one sample is available or the buffer is closed; Write never blocks -
// when the buffer is full the oldest samples are discarded to make room,
// keeping the freshest audio.
type Buffer struct {
	rb     *ringbuffer.RingBuffer
	mu     sync.Mutex
	cond   *sync.Cond
	closed bool
}

// NewBuffer creates a buffer holding up to size samples.
func NewBuffer(size int) *Buffer {
	b := &Buffer{
		rb: ringbuffer.New(size * sampleSize),
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Len reports the number of buffered samples.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rb.Length() / sampleSize
}

func (b *Buffer) Write(samples []float32) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, io.ErrClosedPipe
	}

	data := make([]byte, len(samples)*sampleSize)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(data[i*sampleSize:], math.Float32bits(s))
	}

	// a full buffer loses its oldest samples
	if free := b.rb.Free(); free < len(data) {
		discard := make([]byte, len(data)-free)
		_, _ = b.rb.Read(discard)
	}

	if _, err := b.rb.Write(data); err != nil {
		return 0, err
	}

	b.cond.Broadcast()
	return len(samples), nil
}

func (b *Buffer) Read(out []float32) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.rb.Length() < sampleSize && !b.closed {
		b.cond.Wait()
	}

	if b.closed && b.rb.Length() < sampleSize {
		return 0, io.EOF
	}

	n := min(len(out)*sampleSize, b.rb.Length())
	n -= n % sampleSize
	data := make([]byte, n)
	if _, err := b.rb.Read(data); err != nil {
		return 0, err
	}

	for i := 0; i < n/sampleSize; i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*sampleSize:]))
	}

	return n / sampleSize, nil
}

func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.cond.Broadcast()
	return nil
}
