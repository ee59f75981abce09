package generator

import (
	"math"
)

// ExponentialGenerator produces a sequence of longs according to an
// exponential distribution. Smaller intervals are more frequent than larger
// ones, and there is no bound on the length of an interval. When you
// construct an instance of this class, you specify a parameter gamma, which
// corresponds to the rate at which values are generated (so 1/gamma is the
// mean).
type ExponentialGenerator struct {
	*IntegerGeneratorBase
	gamma float64
}

func NewExponentialGeneratorByMean(mean float64) (*ExponentialGenerator, error) {
	if !(mean > 0) || math.IsInf(mean, 0) {
		return nil, newConstructionError("exponential", "mean", mean, "must be a positive finite value")
	}
	return &ExponentialGenerator{
		IntegerGeneratorBase: NewIntegerGeneratorBase(0),
		gamma:                1.0 / mean,
	}, nil
}

// Create an exponential generator such that `percentile` percent of the
// values fall within `theRange`.
func NewExponentialGenerator(percentile, theRange float64) (*ExponentialGenerator, error) {
	if !(percentile > 0 && percentile < 100) {
		return nil, newConstructionError("exponential", "exponential.percentile", percentile, "must be within (0, 100)")
	}
	if !(theRange > 0) || math.IsInf(theRange, 0) {
		return nil, newConstructionError("exponential", "exponential.frac", theRange, "must yield a positive range")
	}
	return &ExponentialGenerator{
		IntegerGeneratorBase: NewIntegerGeneratorBase(0),
		gamma:                -math.Log(1.0-percentile/100.0) / theRange, // 1.0/mean
	}, nil
}

func (self *ExponentialGenerator) NextInt() int64 {
	// 1-u lies in (0, 1], so the logarithm is finite
	next := int64(-math.Log(1.0-NextFloat64()) / self.gamma)
	self.SetLastInt(next)
	return next
}

func (self *ExponentialGenerator) NextString() string {
	return self.IntegerGeneratorBase.NextString(self)
}

func (self *ExponentialGenerator) Mean() float64 {
	return 1.0 / self.gamma
}
