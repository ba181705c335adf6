package window

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func block(channels, samples int) [][]float64 {
	b := make([][]float64, channels)
	for ch := range b {
		b[ch] = make([]float64, samples)
		for i := range b[ch] {
			b[ch][i] = float64(ch*samples + i)
		}
	}
	return b
}

func TestNewSegmenterValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		size, overlap int
		wantErr       bool
	}{
		{"valid half overlap", 400, 200, false},
		{"no overlap", 100, 0, false},
		{"step of one", 10, 9, false},
		{"zero size", 0, 0, true},
		{"negative overlap", 10, -1, true},
		{"overlap equals size", 10, 10, true},
		{"overlap exceeds size", 10, 12, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSegmenter(tc.size, tc.overlap)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSegmentStartIndices(t *testing.T) {
	t.Parallel()

	// window_size=400, overlap=200 over 1000 samples: exactly four windows
	// at [0, 200, 400, 600], no partial fifth.
	seg, err := NewSegmenter(400, 200)
	require.NoError(t, err)

	b := block(2, 1000)
	var starts []int
	for w := range seg.Segment(b) {
		starts = append(starts, w.Start)
		require.Len(t, w.Data, 2)
		require.Len(t, w.Data[0], 400)
	}
	assert.Equal(t, []int{0, 200, 400, 600}, starts)
	assert.Equal(t, 4, seg.Count(1000))
}

func TestSegmentWindowContents(t *testing.T) {
	t.Parallel()

	seg, err := NewSegmenter(3, 1)
	require.NoError(t, err)

	b := [][]float64{{0, 1, 2, 3, 4, 5}}
	var got [][]float64
	for w := range seg.Segment(b) {
		row := make([]float64, len(w.Data[0]))
		copy(row, w.Data[0])
		got = append(got, row)
	}
	if diff := cmp.Diff([][]float64{{0, 1, 2}, {2, 3, 4}}, got); diff != "" {
		t.Errorf("window contents mismatch (-want +got):\n%s", diff)
	}
}

func TestSegmentIsRestartable(t *testing.T) {
	t.Parallel()

	seg, err := NewSegmenter(2, 0)
	require.NoError(t, err)
	b := block(1, 6)

	seq := seg.Segment(b)
	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}
	assert.Equal(t, 3, count())
	assert.Equal(t, 3, count(), "sequence should be restartable")
}

func TestSegmentEarlyBreak(t *testing.T) {
	t.Parallel()

	seg, err := NewSegmenter(2, 1)
	require.NoError(t, err)
	b := block(1, 100)

	n := 0
	for range seg.Segment(b) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestCount(t *testing.T) {
	t.Parallel()

	seg, err := NewSegmenter(5, 0)
	require.NoError(t, err)

	assert.Equal(t, 0, seg.Count(4), "block shorter than a window yields nothing")
	assert.Equal(t, 1, seg.Count(5))
	assert.Equal(t, 1, seg.Count(9), "remainder is dropped")
	assert.Equal(t, 2, seg.Count(10))
}

func TestSegmentEmptyBlock(t *testing.T) {
	t.Parallel()

	seg, err := NewSegmenter(4, 2)
	require.NoError(t, err)
	for range seg.Segment(nil) {
		t.Fatal("empty block must yield no windows")
	}
}
