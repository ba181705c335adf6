package feature

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// wampThreshold is the fixed magnitude a coefficient must exceed to
	// count toward the Willison amplitude descriptor.
	wampThreshold = 0.05

	// logEpsilon keeps the log-magnitude descriptor finite on
	// zero-magnitude input.
	logEpsilon = 1e-6
)

// richDescriptors is the fixed per-component descriptor count of rich mode.
const richDescriptors = 19

// diff returns the first differences of x (length len(x)-1).
func diff(x []float64) []float64 {
	if len(x) < 2 {
		return nil
	}
	d := make([]float64, len(x)-1)
	for i := range d {
		d[i] = x[i+1] - x[i]
	}
	return d
}

func sumAbs(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += math.Abs(v)
	}
	return s
}

func meanAbs(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return sumAbs(x) / float64(len(x))
}

func sumSquares(x []float64) float64 {
	return floats.Dot(x, x)
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Sqrt(sumSquares(x) / float64(len(x)))
}

// popVariance is the population (biased) variance; exactly 0 for constant
// or single-valued input, never NaN.
func popVariance(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return stat.PopVariance(x, nil)
}

func popStdDev(x []float64) float64 {
	return math.Sqrt(popVariance(x))
}

// appendComponentDescriptors appends the 19 rich-mode descriptors of one
// decomposition component to dst, in the fixed contract order.
func appendComponentDescriptors(dst []float64, c []float64) []float64 {
	d1 := diff(c)
	d2 := diff(d1)
	d3 := diff(d2)

	var positive, wamp int
	var expAbs, logAbs, expRaw float64
	for _, v := range c {
		if v > 0 {
			positive++
		}
		if math.Abs(v) > wampThreshold {
			wamp++
		}
		expAbs += math.Exp(math.Abs(v))
		logAbs += math.Log(math.Abs(v) + logEpsilon)
		expRaw += math.Exp(v)
	}

	n := float64(len(c))
	return append(dst,
		sumAbs(c),           // integrated absolute value
		meanAbs(c),          // mean absolute value
		sumSquares(c),       // energy
		rms(c),              // root mean square
		popVariance(c),      // variance
		float64(positive)/n, // positive-value fraction
		sumAbs(d1),          // waveform length
		meanAbs(d1),         // mean absolute first difference
		sumSquares(c)/n,     // mean energy
		popVariance(d1),     // variance of first differences
		popStdDev(d1),       // std dev of first differences
		float64(wamp),       // Willison amplitude
		sumAbs(d2),          // integrated absolute second differences
		sumAbs(d3),          // integrated absolute third differences
		expAbs,              // sum of exp of magnitudes
		logAbs,              // sum of log magnitudes
		expRaw,              // sum of exp of raw values
		floats.Min(c),       // minimum
		floats.Max(c),       // maximum
	)
}
