package utils

import (
	"math"
	"math/rand"
)

// NewRand returns the seeded generator used by every builder. One
// generator per generated object, consumed in strict call order, is
// what makes runs reproducible for a given seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// ExponentRange precomputes ln(min/max) for LogUniform. The result is
// negative for min < max.
func ExponentRange(min, max Amount) float64 {
	return math.Log(float64(min) / float64(max))
}

// LogUniform draws an amount distributed log-uniformly between min and
// max: max * e^(u * ln(min/max)) with u uniform in [0, 1), truncated
// toward zero. u = 0 yields max, u -> 1 approaches min.
func LogUniform(r *rand.Rand, max Amount, exponentRange float64) Amount {
	return Amount(float64(max) * math.Exp(r.Float64()*exponentRange))
}
