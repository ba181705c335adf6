// Package feature computes fixed-length numeric feature vectors from
// analysis windows. Two descriptor sets are supported: a rich
// multi-resolution set built on a two-level wavelet decomposition, and a
// compact time/frequency set. For a fixed configuration the vector length
// is constant regardless of signal content; it is part of the contract with
// the downstream classifier.
package feature

import "fmt"

// Mode selects the descriptor set.
type Mode int

const (
	// Rich computes 19 descriptors per decomposition component per
	// channel (3 components from the level-2 decomposition).
	Rich Mode = iota
	// Compact computes 4 descriptors per channel.
	Compact
)

// components is the output band count of the level-2 decomposition: one
// approximation plus two details.
const components = 3

// Extractor computes one feature vector per window. Channel count and mode
// are fixed at construction, which fixes the vector length.
type Extractor struct {
	mode     Mode
	channels int
}

// NewExtractor builds an Extractor for the given mode and channel count.
func NewExtractor(mode Mode, channels int) (*Extractor, error) {
	if channels < 1 {
		return nil, fmt.Errorf("feature: channel count must be >= 1, got %d", channels)
	}
	if mode != Rich && mode != Compact {
		return nil, fmt.Errorf("feature: unknown mode %d", mode)
	}
	return &Extractor{mode: mode, channels: channels}, nil
}

// Length returns the feature-vector length for this configuration.
func (e *Extractor) Length() int {
	if e.mode == Rich {
		return e.channels * components * richDescriptors
	}
	return e.channels * compactDescriptors
}

// Extract computes the feature vector for one channels x samples window.
// Channel ordering in the output follows the input ordering; within a
// channel, rich mode emits components coarse-to-fine, 19 descriptors each.
func (e *Extractor) Extract(window [][]float64) ([]float64, error) {
	if len(window) != e.channels {
		return nil, fmt.Errorf("feature: window has %d channels, extractor expects %d", len(window), e.channels)
	}
	n := len(window[0])
	if n == 0 {
		return nil, fmt.Errorf("feature: empty window")
	}
	for ch, row := range window {
		if len(row) != n {
			return nil, fmt.Errorf("feature: ragged window: channel %d has %d samples, want %d", ch, len(row), n)
		}
	}

	out := make([]float64, 0, e.Length())
	for _, row := range window {
		if e.mode == Rich {
			for _, comp := range wavedec2(row) {
				out = appendComponentDescriptors(out, comp)
			}
		} else {
			out = appendCompactDescriptors(out, row)
		}
	}
	return out, nil
}
