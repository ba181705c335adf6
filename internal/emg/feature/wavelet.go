package feature

// Daubechies-4 analysis filter pair (8 taps). The high-pass taps sum to
// zero, so a constant signal produces all-zero detail components.
var (
	db4Lo = []float64{
		-0.010597401784997278, 0.032883011666982945,
		0.030841381835986965, -0.18703481171888114,
		-0.02798376941698385, 0.6308807679295904,
		0.7148465705525415, 0.23037781330885523,
	}
	db4Hi = []float64{
		-0.23037781330885523, 0.7148465705525415,
		-0.6308807679295904, -0.02798376941698385,
		0.18703481171888114, 0.030841381835986965,
		-0.032883011666982945, -0.010597401784997278,
	}
)

// dwtLen is the single-level coefficient length for an n-sample input:
// floor((n + filterLen - 1) / 2).
func dwtLen(n int) int {
	return (n + len(db4Lo) - 1) / 2
}

// symmetricExtend pads x by filterLen-1 samples on each side with
// half-point symmetric reflection (edge sample repeated).
func symmetricExtend(x []float64) []float64 {
	p := len(db4Lo) - 1
	n := len(x)
	ext := make([]float64, n+2*p)
	for i := 0; i < p; i++ {
		ext[i] = x[reflect(p-1-i, n)]
	}
	copy(ext[p:], x)
	for i := 0; i < p; i++ {
		ext[p+n+i] = x[reflect(n-1-i, n)]
	}
	return ext
}

// reflect clamps an out-of-range mirror index back into [0, n).
func reflect(i, n int) int {
	if i < 0 {
		i = -i - 1
	}
	if i >= n {
		i = 2*n - 1 - i
	}
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	return i
}

// dwt performs one level of decomposition, returning the approximation and
// detail coefficients.
func dwt(x []float64) (approx, detail []float64) {
	p := len(db4Lo) - 1
	ext := symmetricExtend(x)
	out := dwtLen(len(x))
	approx = make([]float64, out)
	detail = make([]float64, out)
	for i := 0; i < out; i++ {
		var lo, hi float64
		for j := 0; j < len(db4Lo); j++ {
			v := ext[2*i+p-j+1]
			lo += db4Lo[j] * v
			hi += db4Hi[j] * v
		}
		approx[i] = lo
		detail[i] = hi
	}
	return approx, detail
}

// wavedec2 performs the fixed two-level decomposition used by rich mode,
// returning the components in coarse-to-fine order: [cA2, cD2, cD1].
func wavedec2(x []float64) [][]float64 {
	a1, d1 := dwt(x)
	a2, d2 := dwt(a1)
	return [][]float64{a2, d2, d1}
}
