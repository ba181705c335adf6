package feature

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
)

// compactDescriptors is the fixed per-channel descriptor count of compact
// mode: RMS, waveform length, median magnitude spectrum, sample entropy.
const compactDescriptors = 4

// medianSpectrum returns the median of the magnitude spectrum over all n
// frequency bins. The real transform yields the non-negative half; the
// negative-frequency magnitudes are its mirror.
func medianSpectrum(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, x)

	mags := make([]float64, n)
	for k := range mags {
		idx := k
		if idx > n/2 {
			idx = n - idx
		}
		re := real(coeffs[idx])
		im := imag(coeffs[idx])
		mags[k] = math.Hypot(re, im)
	}
	sort.Float64s(mags)
	if n%2 == 1 {
		return mags[n/2]
	}
	return (mags[n/2-1] + mags[n/2]) / 2
}

const (
	sampEnOrder  = 2   // template length m
	sampEnFactor = 0.2 // tolerance r as a fraction of the window std dev
)

// sampleEntropy computes SampEn(m=2, r=0.2*sigma) with the Chebyshev
// distance. A degenerate window with no template information returns 0
// rather than an infinity, keeping the feature vector finite.
func sampleEntropy(x []float64) float64 {
	n := len(x)
	m := sampEnOrder
	if n <= m+1 {
		return 0
	}
	r := sampEnFactor * popStdDev(x)

	var matchM, matchM1 float64
	for i := 0; i < n-m; i++ {
		for j := i + 1; j < n-m; j++ {
			var d float64
			for k := 0; k < m; k++ {
				if v := math.Abs(x[i+k] - x[j+k]); v > d {
					d = v
				}
			}
			if d <= r {
				matchM++
				if v := math.Abs(x[i+m] - x[j+m]); math.Max(d, v) <= r {
					matchM1++
				}
			}
		}
	}
	if matchM == 0 || matchM1 == 0 {
		return 0
	}
	return -math.Log(matchM1 / matchM)
}

// appendCompactDescriptors appends the four compact-mode descriptors of one
// channel window to dst.
func appendCompactDescriptors(dst []float64, c []float64) []float64 {
	return append(dst,
		rms(c),
		sumAbs(diff(c)),
		medianSpectrum(c),
		sampleEntropy(c),
	)
}
