package sim

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrNonUniformRandomSource is returned when the self test finds the random
// source does not look uniform on [0, 1).
var ErrNonUniformRandomSource = errors.New("random source is not uniform")

// SelfTestSamples is the number of samples the self test draws.
const SelfTestSamples = 1000

// RandomSource produces uniform samples on [0, 1).
type RandomSource interface {
	Float64() float64
}

// NewRandomSource creates a seeded random source. A zero seed seeds from the
// wall clock.
func NewRandomSource(seed uint64) RandomSource {
	s := int64(seed)
	if seed == 0 {
		s = time.Now().UnixNano()
	}

	return rand.New(rand.NewSource(s))
}

// CheckUniformity draws samples from src and fails if the mean is outside
// [0.25, 0.75].
func CheckUniformity(src RandomSource, samples int) error {
	if samples <= 0 {
		return fmt.Errorf("sample count must be positive, got %d", samples)
	}

	sum := 0.0
	for i := 0; i < samples; i++ {
		sum += src.Float64()
	}

	avg := sum / float64(samples)
	if avg < 0.25 || avg > 0.75 {
		return fmt.Errorf("%w: mean of %d samples is %f",
			ErrNonUniformRandomSource, samples, avg)
	}

	return nil
}
