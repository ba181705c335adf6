package ring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fill appends count samples with timestamp = sample index and every channel
// value set to the sample index.
func fill(b *Buffer, count int) {
	for i := 0; i < count; i++ {
		row := make([]float64, b.Channels())
		for c := range row {
			row[c] = float64(i)
		}
		b.Append(float64(i), row)
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	if _, err := New(0, 10); err == nil {
		t.Error("expected error for zero channels")
	}
	if _, err := New(2, 0); err == nil {
		t.Error("expected error for zero capacity")
	}
	if _, err := New(2, 10); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLastChronologicalOrder(t *testing.T) {
	t.Parallel()

	// Any append sequence of length L <= C must come back in exact
	// chronological order.
	for _, l := range []int{1, 3, 7, 8} {
		b, err := New(2, 8)
		require.NoError(t, err)
		fill(b, l)

		samples, stamps, err := b.Last(l)
		require.NoError(t, err)
		require.Len(t, samples, l)
		for i := 0; i < l; i++ {
			assert.Equal(t, float64(i), stamps[i], "timestamp at position %d for L=%d", i, l)
			assert.Equal(t, float64(i), samples[i][0])
			assert.Equal(t, float64(i), samples[i][1])
		}
	}
}

func TestLastAfterWraparound(t *testing.T) {
	t.Parallel()

	// For L > C the buffer retains exactly the most recent C samples.
	b, err := New(1, 5)
	require.NoError(t, err)
	fill(b, 12)

	samples, stamps, err := b.Last(5)
	require.NoError(t, err)
	want := []float64{7, 8, 9, 10, 11}
	for i, w := range want {
		assert.Equal(t, w, stamps[i])
		assert.Equal(t, w, samples[i][0])
	}

	// A partial read that wraps past the end of the backing array must
	// assemble tail then head.
	samples, _, err = b.Last(4)
	require.NoError(t, err)
	assert.Equal(t, []float64{8}, samples[0])
	assert.Equal(t, []float64{11}, samples[3])

	_, _, err = b.Last(6)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestLastInsufficientData(t *testing.T) {
	t.Parallel()

	b, err := New(3, 10)
	require.NoError(t, err)

	_, _, err = b.Last(1)
	assert.ErrorIs(t, err, ErrInsufficientData)

	fill(b, 4)
	_, _, err = b.Last(5)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, _, err = b.Last(4)
	assert.NoError(t, err)
}

func TestFullStateIsAbsorbing(t *testing.T) {
	t.Parallel()

	b, err := New(1, 3)
	require.NoError(t, err)

	assert.False(t, b.Full())
	fill(b, 2)
	assert.False(t, b.Full())
	fill(b, 1)
	assert.True(t, b.Full())

	// Further appends keep the buffer full.
	b.Append(99, []float64{99})
	assert.True(t, b.Full())
	assert.Equal(t, 3, b.Len())
}

func TestLastReturnsCopies(t *testing.T) {
	t.Parallel()

	b, err := New(1, 4)
	require.NoError(t, err)
	fill(b, 4)

	samples, _, err := b.Last(2)
	require.NoError(t, err)
	samples[0][0] = -1

	again, _, err := b.Last(2)
	require.NoError(t, err)
	assert.Equal(t, float64(2), again[0][0], "mutating a snapshot must not reach backing storage")
}

func TestAppendsCounter(t *testing.T) {
	t.Parallel()

	b, err := New(1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), b.Appends())
	fill(b, 5)
	assert.Equal(t, uint64(5), b.Appends())
}

func TestReset(t *testing.T) {
	t.Parallel()

	b, err := New(2, 4)
	require.NoError(t, err)
	fill(b, 4)
	require.True(t, b.Full())

	b.Reset()
	assert.Equal(t, 0, b.Len())
	assert.False(t, b.Full())
	_, _, err = b.Last(1)
	assert.True(t, errors.Is(err, ErrInsufficientData))

	// The buffer is usable again after a reset.
	b.Append(42, []float64{1, 2})
	samples, stamps, err := b.Last(1)
	require.NoError(t, err)
	assert.Equal(t, float64(42), stamps[0])
	assert.Equal(t, []float64{1, 2}, samples[0])
}

func TestAppendPanicsOnChannelMismatch(t *testing.T) {
	t.Parallel()

	b, err := New(2, 4)
	require.NoError(t, err)
	assert.Panics(t, func() { b.Append(0, []float64{1}) })
}
