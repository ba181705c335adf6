// Package testutil provides shared test signal generators and numeric
// assertions.
package testutil

import (
	"math"
	"math/rand"
	"testing"
)

// Tone returns a unit sine of the given frequency sampled at rate for n
// samples.
func Tone(freq, rate float64, n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * freq * float64(i) / rate)
	}
	return x
}

// Noise returns n samples of seeded standard normal noise.
func Noise(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	x := make([]float64, n)
	for i := range x {
		x[i] = rng.NormFloat64()
	}
	return x
}

// Constant returns n copies of value.
func Constant(n int, value float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = value
	}
	return x
}

// AssertAllFinite fails the test if any element is NaN or infinite.
func AssertAllFinite(t *testing.T, x []float64) {
	t.Helper()
	for i, v := range x {
		if math.IsNaN(v) {
			t.Errorf("element %d is NaN", i)
		}
		if math.IsInf(v, 0) {
			t.Errorf("element %d is infinite", i)
		}
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
