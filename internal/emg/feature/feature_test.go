package feature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmyo/emgpipe/internal/testutil"
)

func noiseWindow(channels, samples int, seed int64) [][]float64 {
	w := make([][]float64, channels)
	for ch := range w {
		w[ch] = testutil.Noise(samples, seed+int64(ch))
	}
	return w
}

func constantWindow(channels, samples int, value float64) [][]float64 {
	w := make([][]float64, channels)
	for ch := range w {
		w[ch] = make([]float64, samples)
		for i := range w[ch] {
			w[ch][i] = value
		}
	}
	return w
}

func TestRichVectorLength(t *testing.T) {
	t.Parallel()

	for _, channels := range []int{1, 4, 8} {
		ext, err := NewExtractor(Rich, channels)
		require.NoError(t, err)
		assert.Equal(t, channels*3*19, ext.Length())

		// Length is a property of the configuration, not the content.
		for _, w := range [][][]float64{
			noiseWindow(channels, 400, 1),
			noiseWindow(channels, 64, 2),
			constantWindow(channels, 400, 0),
		} {
			vec, err := ext.Extract(w)
			require.NoError(t, err)
			assert.Len(t, vec, ext.Length())
		}
	}
}

func TestCompactVectorLength(t *testing.T) {
	t.Parallel()

	ext, err := NewExtractor(Compact, 8)
	require.NoError(t, err)
	assert.Equal(t, 32, ext.Length())

	vec, err := ext.Extract(noiseWindow(8, 200, 3))
	require.NoError(t, err)
	assert.Len(t, vec, 32)
}

func TestAllZeroWindowStaysFinite(t *testing.T) {
	t.Parallel()

	// The log-magnitude descriptor must not produce -Inf on silence, and
	// nothing may go NaN.
	for _, mode := range []Mode{Rich, Compact} {
		ext, err := NewExtractor(mode, 2)
		require.NoError(t, err)
		vec, err := ext.Extract(constantWindow(2, 400, 0))
		require.NoError(t, err)
		testutil.AssertAllFinite(t, vec)
	}
}

func TestConstantWindowVarianceDescriptors(t *testing.T) {
	t.Parallel()

	ext, err := NewExtractor(Rich, 1)
	require.NoError(t, err)
	vec, err := ext.Extract(constantWindow(1, 400, 2.5))
	require.NoError(t, err)

	// Per component: VAR at offset 4, DVARV at 9, DASDV at 10 must be
	// exactly zero for constant input.
	for comp := 0; comp < 3; comp++ {
		base := comp * richDescriptors
		assert.Zero(t, vec[base+4], "component %d VAR", comp)
		assert.Zero(t, vec[base+9], "component %d DVARV", comp)
		assert.Zero(t, vec[base+10], "component %d DASDV", comp)
	}
}

func TestExtractValidation(t *testing.T) {
	t.Parallel()

	ext, err := NewExtractor(Rich, 2)
	require.NoError(t, err)

	_, err = ext.Extract(noiseWindow(3, 50, 4))
	assert.Error(t, err, "channel mismatch")
	_, err = ext.Extract([][]float64{{}, {}})
	assert.Error(t, err, "empty window")
	_, err = ext.Extract([][]float64{{1, 2, 3}, {1, 2}})
	assert.Error(t, err, "ragged window")

	_, err = NewExtractor(Rich, 0)
	assert.Error(t, err)
	_, err = NewExtractor(Mode(99), 2)
	assert.Error(t, err)
}

func TestWavedecShapes(t *testing.T) {
	t.Parallel()

	comps := wavedec2(make([]float64, 400))
	require.Len(t, comps, 3)
	assert.Len(t, comps[0], 105) // cA2
	assert.Len(t, comps[1], 105) // cD2
	assert.Len(t, comps[2], 203) // cD1
}

func TestDWTConstantSignal(t *testing.T) {
	t.Parallel()

	x := make([]float64, 128)
	for i := range x {
		x[i] = 3
	}
	approx, detail := dwt(x)
	for i := range detail {
		assert.InDelta(t, 0, detail[i], 1e-12, "detail of constant signal")
		assert.InDelta(t, 3*math.Sqrt2, approx[i], 1e-12, "approximation of constant signal")
	}
}

func TestDWTLinearity(t *testing.T) {
	t.Parallel()

	x := noiseWindow(1, 100, 7)[0]
	y := noiseWindow(1, 100, 8)[0]
	sum := make([]float64, len(x))
	for i := range sum {
		sum[i] = x[i] + y[i]
	}

	ax, _ := dwt(x)
	ay, _ := dwt(y)
	asum, _ := dwt(sum)
	for i := range asum {
		assert.InDelta(t, ax[i]+ay[i], asum[i], 1e-9)
	}
}

func TestComponentDescriptorValues(t *testing.T) {
	t.Parallel()

	vec := appendComponentDescriptors(nil, []float64{1, -2, 3})
	require.Len(t, vec, richDescriptors)

	assert.InDelta(t, 6, vec[0], 1e-12)                 // IEMG
	assert.InDelta(t, 2, vec[1], 1e-12)                 // MAV
	assert.InDelta(t, 14, vec[2], 1e-12)                // SSI
	assert.InDelta(t, math.Sqrt(14.0/3), vec[3], 1e-12) // RMS
	assert.InDelta(t, 2.0/3, vec[5], 1e-12)             // positive fraction
	assert.InDelta(t, 8, vec[6], 1e-12)                 // WL: |-3| + |5|
	assert.InDelta(t, 4, vec[7], 1e-12)                 // DAMV
	assert.InDelta(t, 14.0/3, vec[8], 1e-12)            // mean energy
	assert.InDelta(t, 3, vec[11], 1e-12)                // WAMP, all above 0.05
	assert.InDelta(t, 8, vec[12], 1e-12)                // IASD: |diff2| = |8|
	assert.InDelta(t, -2, vec[17], 1e-12)               // MIN
	assert.InDelta(t, 3, vec[18], 1e-12)                // MAX
}

func TestMedianSpectrum(t *testing.T) {
	t.Parallel()

	t.Run("zero signal", func(t *testing.T) {
		assert.Zero(t, medianSpectrum(make([]float64, 64)))
	})

	t.Run("constant signal concentrates at DC", func(t *testing.T) {
		x := make([]float64, 64)
		for i := range x {
			x[i] = 2
		}
		// Only bin 0 is nonzero, so the median over 64 bins is 0.
		assert.InDelta(t, 0, medianSpectrum(x), 1e-12)
	})

	t.Run("pure tone", func(t *testing.T) {
		n := 64
		x := make([]float64, n)
		for i := range x {
			x[i] = math.Cos(2 * math.Pi * 8 * float64(i) / float64(n))
		}
		// Energy sits in two mirrored bins; the median stays near zero.
		assert.InDelta(t, 0, medianSpectrum(x), 1e-9)
	})
}

func TestSampleEntropy(t *testing.T) {
	t.Parallel()

	t.Run("constant signal has zero entropy", func(t *testing.T) {
		assert.Zero(t, sampleEntropy(make([]float64, 100)))
	})

	t.Run("short window is degenerate", func(t *testing.T) {
		assert.Zero(t, sampleEntropy([]float64{1, 2, 3}))
	})

	t.Run("noise has positive entropy", func(t *testing.T) {
		x := noiseWindow(1, 300, 11)[0]
		en := sampleEntropy(x)
		assert.Greater(t, en, 0.0)
		assert.False(t, math.IsInf(en, 0))
	})

	t.Run("regular signal has lower entropy than noise", func(t *testing.T) {
		n := 300
		regular := make([]float64, n)
		for i := range regular {
			regular[i] = math.Sin(2 * math.Pi * float64(i) / 25)
		}
		noise := noiseWindow(1, n, 12)[0]
		assert.Less(t, sampleEntropy(regular), sampleEntropy(noise))
	})
}
