package condition

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCutoff is returned when a filter frequency falls outside the
// open interval (0, Nyquist) for the configured sampling rate.
var ErrInvalidCutoff = errors.New("cutoff frequency outside (0, Nyquist)")

// sos is one second-order (or degenerate first-order) filter section in
// direct form II transposed, with a0 normalized to 1.
type sos struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// apply runs the section over x into a fresh slice.
func (s sos) apply(x []float64) []float64 {
	y := make([]float64, len(x))
	var z1, z2 float64
	for i, v := range x {
		out := s.b0*v + z1
		z1 = s.b1*v - s.a1*out + z2
		z2 = s.b2*v - s.a2*out
		y[i] = out
	}
	return y
}

// zeroPhase applies the cascade forward, then backward over the reversed
// output, cancelling the phase distortion of a single pass.
func zeroPhase(sections []sos, x []float64) []float64 {
	y := make([]float64, len(x))
	copy(y, x)
	for _, s := range sections {
		y = s.apply(y)
	}
	reverse(y)
	for _, s := range sections {
		y = s.apply(y)
	}
	reverse(y)
	return y
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}

func validateCutoff(freq, rate float64) error {
	if freq <= 0 || freq >= rate/2 {
		return fmt.Errorf("%w: %g Hz at %g Hz sampling rate", ErrInvalidCutoff, freq, rate)
	}
	return nil
}

// designNotch builds a narrow band-reject biquad centred on freq with the
// given quality factor (bandwidth = freq/q).
func designNotch(freq, q, rate float64) (sos, error) {
	if err := validateCutoff(freq, rate); err != nil {
		return sos{}, err
	}
	if q <= 0 {
		return sos{}, fmt.Errorf("notch quality factor must be > 0, got %g", q)
	}
	w0 := 2 * math.Pi * freq / rate
	alpha := math.Sin(w0) / (2 * q)
	cw := math.Cos(w0)
	a0 := 1 + alpha
	return sos{
		b0: 1 / a0,
		b1: -2 * cw / a0,
		b2: 1 / a0,
		a1: -2 * cw / a0,
		a2: (1 - alpha) / a0,
	}, nil
}

// designButterworth builds an order-N Butterworth low-pass or high-pass as a
// cascade of bilinear-transformed second-order sections (plus one
// first-order section for odd orders). Each section is normalized to unity
// gain in its passband.
func designButterworth(cutoff, rate float64, order int, highpass bool) ([]sos, error) {
	if order < 1 {
		return nil, fmt.Errorf("filter order must be >= 1, got %d", order)
	}
	if err := validateCutoff(cutoff, rate); err != nil {
		return nil, err
	}

	k := 2 * rate
	wc := k * math.Tan(math.Pi*cutoff/rate) // prewarped analog cutoff

	sections := make([]sos, 0, (order+1)/2)
	for i := 0; i < order/2; i++ {
		// Prototype pole on the unit circle, left half plane. Conjugate
		// pairs collapse into one real-coefficient section.
		theta := math.Pi * float64(2*i+order+1) / float64(2*order)
		re, im := math.Cos(theta), math.Sin(theta)
		if highpass {
			// s -> wc/s maps the unit prototype pole p to wc/p, which has
			// magnitude wc and mirrored angle.
			im = -im
		}
		pa := complex(wc*re, wc*im)

		// Bilinear transform of the analog pole.
		pd := (1 + pa/complex(k, 0)) / (1 - pa/complex(k, 0))

		a1 := -2 * real(pd)
		a2 := real(pd)*real(pd) + imag(pd)*imag(pd)
		if highpass {
			g := (1 - a1 + a2) / 4
			sections = append(sections, sos{b0: g, b1: -2 * g, b2: g, a1: a1, a2: a2})
		} else {
			g := (1 + a1 + a2) / 4
			sections = append(sections, sos{b0: g, b1: 2 * g, b2: g, a1: a1, a2: a2})
		}
	}
	if order%2 == 1 {
		// Real prototype pole at -1 maps to the analog pole -wc for both
		// low-pass and high-pass.
		pd := (1 - wc/k) / (1 + wc/k)
		a1 := -pd
		if highpass {
			g := (1 - a1) / 2
			sections = append(sections, sos{b0: g, b1: -g, a1: a1})
		} else {
			g := (1 + a1) / 2
			sections = append(sections, sos{b0: g, b1: g, a1: a1})
		}
	}
	return sections, nil
}

// designBandpass realizes a band-pass as an order-N high-pass at the low
// edge cascaded with an order-N low-pass at the high edge.
func designBandpass(low, high, rate float64, order int) ([]sos, error) {
	if low >= high {
		return nil, fmt.Errorf("%w: band edges inverted (%g >= %g Hz)", ErrInvalidCutoff, low, high)
	}
	hp, err := designButterworth(low, rate, order, true)
	if err != nil {
		return nil, err
	}
	lp, err := designButterworth(high, rate, order, false)
	if err != nil {
		return nil, err
	}
	return append(hp, lp...), nil
}
