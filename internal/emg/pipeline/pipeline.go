// Package pipeline is the composition root of the real-time gesture
// pipeline: it wires the sample ring through conditioning, windowing and
// feature extraction, feeds an external classifier's labels into the
// decision smoother, and hands accepted gesture changes to a dispatcher.
// It imports from the stage packages; none of them import pipeline.
package pipeline

import (
	"fmt"

	"github.com/openmyo/emgpipe/internal/emg/condition"
	"github.com/openmyo/emgpipe/internal/emg/decide"
	"github.com/openmyo/emgpipe/internal/emg/feature"
	"github.com/openmyo/emgpipe/internal/emg/ring"
	"github.com/openmyo/emgpipe/internal/emg/window"
)

// Classifier maps a feature vector to a gesture label. It is an external
// collaborator; the pipeline neither trains nor selects the model.
type Classifier interface {
	Classify(features []float64) (decide.Gesture, error)
}

// WindowFeatures is one extracted vector, tagged with the absolute start
// index of its source window for traceability.
type WindowFeatures struct {
	Start  int
	Vector []float64
}

// Processor runs the synchronous block path: snapshot from the ring,
// condition, segment, extract. Stages execute strictly in sequence per
// block; no two blocks are pipelined.
type Processor struct {
	buf       *ring.Buffer
	cond      *condition.Conditioner
	seg       *window.Segmenter
	extractor *feature.Extractor
}

// NewProcessor wires the stage chain. The extractor's channel count must
// match the ring's.
func NewProcessor(buf *ring.Buffer, cond *condition.Conditioner, seg *window.Segmenter, extractor *feature.Extractor) (*Processor, error) {
	if buf == nil || cond == nil || seg == nil || extractor == nil {
		return nil, fmt.Errorf("pipeline: all stages must be non-nil")
	}
	return &Processor{buf: buf, cond: cond, seg: seg, extractor: extractor}, nil
}

// Features conditions the last n buffered samples and extracts one feature
// vector per analysis window. It fails fast, wrapping
// ring.ErrInsufficientData, when fewer than n samples are buffered or when
// n is shorter than one analysis window; a block that cannot fill a single
// window is an error, never a silent truncation.
func (p *Processor) Features(n int) ([]WindowFeatures, error) {
	if n < p.seg.Size() {
		return nil, fmt.Errorf("pipeline: block of %d samples cannot fill a %d-sample window: %w",
			n, p.seg.Size(), ring.ErrInsufficientData)
	}
	samples, _, err := p.buf.Last(n)
	if err != nil {
		return nil, fmt.Errorf("pipeline: block read: %w", err)
	}

	block := transpose(samples, p.buf.Channels())
	conditioned, err := p.cond.Process(block)
	if err != nil {
		return nil, fmt.Errorf("pipeline: conditioning: %w", err)
	}

	out := make([]WindowFeatures, 0, p.seg.Count(n))
	for w := range p.seg.Segment(conditioned) {
		vec, err := p.extractor.Extract(w.Data)
		if err != nil {
			return nil, fmt.Errorf("pipeline: window at %d: %w", w.Start, err)
		}
		out = append(out, WindowFeatures{Start: w.Start, Vector: vec})
	}
	return out, nil
}

// VectorLength returns the fixed feature-vector length of the configured
// extractor, part of the contract with the classifier.
func (p *Processor) VectorLength() int {
	return p.extractor.Length()
}

// transpose converts a samples-major snapshot from the ring into the
// channels x samples layout the conditioning chain works in.
func transpose(samples [][]float64, channels int) [][]float64 {
	block := make([][]float64, channels)
	for ch := range block {
		block[ch] = make([]float64, len(samples))
	}
	for i, row := range samples {
		for ch := 0; ch < channels; ch++ {
			block[ch][i] = row[ch]
		}
	}
	return block
}
