package audio

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestBuffer(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := NewBuffer(16)

	n, err := b.Write([]float32{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, 3, b.Len())

	out := make([]float32, 16)
	n, err = b.Read(out)
	require.NoError(t, err)
	require.Equal(t, []float32{1, 2, 3}, out[:n])

	require.NoError(t, b.Close())

	_, err = b.Read(out)
	require.Equal(t, io.EOF, err)

	_, err = b.Write([]float32{4})
	require.Equal(t, io.ErrClosedPipe, err)
}

func TestBufferBlockingRead(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := NewBuffer(16)
	go func() {
		<-time.After(50 * time.Millisecond)
		_, _ = b.Write([]float32{7})
	}()

	out := make([]float32, 4)
	n, err := b.Read(out)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, float32(7), out[0])
}

func TestBufferFullDropsOldest(t *testing.T) {
	b := NewBuffer(4)

	_, err := b.Write([]float32{1, 2, 3, 4})
	require.NoError(t, err)

	// two new samples push out the two oldest
	_, err = b.Write([]float32{5, 6})
	require.NoError(t, err)
	require.Equal(t, 4, b.Len())

	out := make([]float32, 4)
	n, err := b.Read(out)
	require.NoError(t, err)
	require.Equal(t, []float32{3, 4, 5, 6}, out[:n])
}

func TestNonBlockingReader(t *testing.T) {
	b := NewBuffer(8)
	nb := NewNonBlockingReader(b)

	out := make([]float32, 4)
	n, err := nb.Read(out)
	require.NoError(t, err)
	require.Zero(t, n)

	_, err = b.Write([]float32{1, 2})
	require.NoError(t, err)

	n, err = nb.Read(out)
	require.NoError(t, err)
	require.Equal(t, []float32{1, 2}, out[:n])
}
