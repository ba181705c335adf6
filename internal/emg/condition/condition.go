// Package condition implements the signal-conditioning chain applied to a
// contiguous block of buffered samples before windowing: notch filter,
// Butterworth band-limiting, optional common-average reference,
// rectification or envelope extraction, and optional per-channel z-score
// normalization. Every stage is a pure transform from a channels x samples
// block to a same-shape block; the chain never mutates its input.
package condition

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// BandMode selects the band-limiting filter shape.
type BandMode int

const (
	// Lowpass keeps everything below the upper cutoff.
	Lowpass BandMode = iota
	// Bandpass keeps the band between the low and high cutoffs.
	Bandpass
)

// EnvelopeMode selects how amplitude is recovered after filtering.
type EnvelopeMode int

const (
	// Rectify takes the absolute value of each sample.
	Rectify EnvelopeMode = iota
	// Hilbert takes the magnitude of the analytic signal.
	Hilbert
)

// DefaultNotchQ matches the quality factor of the interference notch used
// by the capture rigs this pipeline was built against (bandwidth = f0/30).
const DefaultNotchQ = 30.0

// Config describes the conditioning chain. All frequencies are in Hz.
type Config struct {
	SampleRate    float64
	NotchFreq     float64 // interference frequency to reject (e.g. mains hum)
	NotchQ        float64 // 0 selects DefaultNotchQ
	Band          BandMode
	LowCut        float64 // band-pass low edge; ignored for Lowpass
	HighCut       float64 // band-pass high edge, or the low-pass cutoff
	Order         int     // Butterworth order
	CommonAverage bool
	Envelope      EnvelopeMode
	Normalize     bool
}

// Stage is one block-to-block transform in the conditioning chain. Apply
// must return a fresh block of the same shape and leave its input intact.
type Stage interface {
	Name() string
	Apply(block [][]float64) [][]float64
}

// Conditioner runs an ordered, fixed chain of stages over a block. Callers
// choose which optional stages run at construction; the mandatory order
// (edge zeroing, notch, band-limit, CAR, envelope, normalize) cannot be
// rearranged.
type Conditioner struct {
	stages []Stage
}

// New validates the configuration and builds the stage chain. Invalid
// filter frequencies fail here, before any data is processed.
func New(cfg Config) (*Conditioner, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("condition: sampling rate must be > 0, got %g", cfg.SampleRate)
	}

	q := cfg.NotchQ
	if q == 0 {
		q = DefaultNotchQ
	}
	notch, err := designNotch(cfg.NotchFreq, q, cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("condition: notch: %w", err)
	}

	var band []sos
	switch cfg.Band {
	case Lowpass:
		band, err = designButterworth(cfg.HighCut, cfg.SampleRate, cfg.Order, false)
	case Bandpass:
		band, err = designBandpass(cfg.LowCut, cfg.HighCut, cfg.SampleRate, cfg.Order)
	default:
		return nil, fmt.Errorf("condition: unknown band mode %d", cfg.Band)
	}
	if err != nil {
		return nil, fmt.Errorf("condition: band-limit: %w", err)
	}

	stages := []Stage{
		edgeZero{samples: int(cfg.SampleRate)},
		filterStage{name: "notch", sections: []sos{notch}},
		filterStage{name: "bandlimit", sections: band},
	}
	if cfg.CommonAverage {
		stages = append(stages, carStage{})
	}
	switch cfg.Envelope {
	case Rectify:
		stages = append(stages, rectifyStage{})
	case Hilbert:
		stages = append(stages, envelopeStage{})
	default:
		return nil, fmt.Errorf("condition: unknown envelope mode %d", cfg.Envelope)
	}
	if cfg.Normalize {
		stages = append(stages, normalizeStage{})
	}

	return &Conditioner{stages: stages}, nil
}

// Process runs the full chain over the block and returns the conditioned
// copy. The input block must be rectangular and non-empty.
func (c *Conditioner) Process(block [][]float64) ([][]float64, error) {
	if len(block) == 0 || len(block[0]) == 0 {
		return nil, fmt.Errorf("condition: empty block")
	}
	n := len(block[0])
	for ch, row := range block {
		if len(row) != n {
			return nil, fmt.Errorf("condition: ragged block: channel %d has %d samples, want %d", ch, len(row), n)
		}
	}
	out := block
	for _, s := range c.stages {
		out = s.Apply(out)
	}
	return out, nil
}

// Stages lists the names of the configured chain, in execution order.
func (c *Conditioner) Stages() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.Name()
	}
	return names
}

func cloneBlock(block [][]float64) [][]float64 {
	out := make([][]float64, len(block))
	for i, row := range block {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}

// edgeZero blanks the trailing second of the block before filtering, so the
// filter transient from a cold start cannot masquerade as muscle activity.
type edgeZero struct {
	samples int
}

func (e edgeZero) Name() string { return "edgezero" }

func (e edgeZero) Apply(block [][]float64) [][]float64 {
	out := cloneBlock(block)
	for _, row := range out {
		z := e.samples
		if z > len(row) {
			z = len(row)
		}
		for i := len(row) - z; i < len(row); i++ {
			row[i] = 0
		}
	}
	return out
}

// filterStage applies a second-order-section cascade to each channel with a
// forward and a backward pass, so the conditioned block keeps zero phase
// relative to the raw signal.
type filterStage struct {
	name     string
	sections []sos
}

func (f filterStage) Name() string { return f.name }

func (f filterStage) Apply(block [][]float64) [][]float64 {
	out := make([][]float64, len(block))
	for ch, row := range block {
		out[ch] = zeroPhase(f.sections, row)
	}
	return out
}

// carStage subtracts the instantaneous cross-channel mean from every
// channel, removing noise shared across the sensor array.
type carStage struct{}

func (carStage) Name() string { return "car" }

func (carStage) Apply(block [][]float64) [][]float64 {
	out := cloneBlock(block)
	n := len(out[0])
	for i := 0; i < n; i++ {
		var sum float64
		for ch := range out {
			sum += out[ch][i]
		}
		mean := sum / float64(len(out))
		for ch := range out {
			out[ch][i] -= mean
		}
	}
	return out
}

type rectifyStage struct{}

func (rectifyStage) Name() string { return "rectify" }

func (rectifyStage) Apply(block [][]float64) [][]float64 {
	out := cloneBlock(block)
	for _, row := range out {
		for i, v := range row {
			row[i] = math.Abs(v)
		}
	}
	return out
}

// envelopeStage computes the amplitude envelope as the magnitude of the
// analytic signal: negative-frequency coefficients are zeroed, positive
// ones doubled, and the magnitude of the inverse transform taken.
type envelopeStage struct{}

func (envelopeStage) Name() string { return "envelope" }

func (envelopeStage) Apply(block [][]float64) [][]float64 {
	out := make([][]float64, len(block))
	n := len(block[0])
	fft := fourier.NewCmplxFFT(n)
	c := make([]complex128, n)
	for ch, row := range block {
		for i, v := range row {
			c[i] = complex(v, 0)
		}
		fft.Coefficients(c, c)
		for i := 1; i <= (n-1)/2; i++ {
			c[i] *= 2
		}
		for i := n/2 + 1; i < n; i++ {
			c[i] = 0
		}
		fft.Sequence(c, c)
		env := make([]float64, n)
		// The transform is unnormalized: a round trip scales by n.
		for i, v := range c {
			env[i] = cmplx.Abs(v) / float64(n)
		}
		out[ch] = env
	}
	return out
}

// normalizeStage z-scores each channel over the full block using the
// population standard deviation. A zero-variance channel is left centered
// rather than divided by zero.
type normalizeStage struct{}

func (normalizeStage) Name() string { return "normalize" }

func (normalizeStage) Apply(block [][]float64) [][]float64 {
	out := make([][]float64, len(block))
	for ch, row := range block {
		mean := stat.Mean(row, nil)
		std := stat.PopStdDev(row, nil)
		norm := make([]float64, len(row))
		for i, v := range row {
			if std == 0 {
				norm[i] = v - mean
			} else {
				norm[i] = (v - mean) / std
			}
		}
		out[ch] = norm
	}
	return out
}
