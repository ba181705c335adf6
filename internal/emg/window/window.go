// Package window segments a conditioned block into fixed-size, optionally
// overlapping analysis windows. Segmentation is lazy: windows are slices
// into the block, produced on demand and valid only while the block is.
package window

import (
	"fmt"
	"iter"
)

// Window is one channels x size view into a block, tagged with the absolute
// start-sample index for traceability. Data rows alias the source block;
// callers that outlive the block must copy.
type Window struct {
	Start int
	Data  [][]float64
}

// Segmenter produces windows of a fixed size with a fixed step. The step is
// size minus overlap and must be at least 1; that is validated once at
// construction so segmentation itself cannot fail.
type Segmenter struct {
	size int
	step int
}

// NewSegmenter builds a Segmenter for the given window size and overlap, in
// samples.
func NewSegmenter(size, overlap int) (*Segmenter, error) {
	if size < 1 {
		return nil, fmt.Errorf("window: size must be >= 1, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("window: overlap must be >= 0, got %d", overlap)
	}
	step := size - overlap
	if step < 1 {
		return nil, fmt.Errorf("window: step must be >= 1, got size %d with overlap %d", size, overlap)
	}
	return &Segmenter{size: size, step: step}, nil
}

// Size returns the window size in samples.
func (s *Segmenter) Size() int { return s.size }

// Step returns the hop between consecutive window starts.
func (s *Segmenter) Step() int { return s.step }

// Count returns the number of windows Segment will yield for a block of
// numSamples samples. A trailing remainder shorter than the window size is
// dropped, never padded.
func (s *Segmenter) Count(numSamples int) int {
	if numSamples < s.size {
		return 0
	}
	return (numSamples-s.size)/s.step + 1
}

// Segment returns a lazy, finite, restartable sequence of windows over the
// block. Each window is the slice block[:][start:start+size] with start
// advancing by the step while a full window still fits.
func (s *Segmenter) Segment(block [][]float64) iter.Seq[Window] {
	return func(yield func(Window) bool) {
		if len(block) == 0 {
			return
		}
		n := len(block[0])
		for start := 0; start+s.size <= n; start += s.step {
			w := Window{Start: start, Data: make([][]float64, len(block))}
			for ch, row := range block {
				w.Data[ch] = row[start : start+s.size]
			}
			if !yield(w) {
				return
			}
		}
	}
}
