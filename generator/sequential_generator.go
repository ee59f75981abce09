package generator

import (
	"sync/atomic"
)

// SequentialGenerator generates a sequence of integers that wraps around:
// lowerBound, lowerBound+1, ..., upperBound, lowerBound, ...
type SequentialGenerator struct {
	*IntegerGeneratorBase
	counter    int64
	lowerBound int64
	interval   int64
}

func NewSequentialGenerator(lowerBound, upperBound int64) (*SequentialGenerator, error) {
	if lowerBound > upperBound {
		return nil, newConstructionError("sequential", "upperBound", upperBound,
			"must not be less than the lower bound")
	}
	return &SequentialGenerator{
		IntegerGeneratorBase: NewIntegerGeneratorBase(lowerBound - 1),
		counter:              -1,
		lowerBound:           lowerBound,
		interval:             upperBound - lowerBound + 1,
	}, nil
}

func (self *SequentialGenerator) NextInt() int64 {
	n := atomic.AddInt64(&self.counter, 1)
	ret := self.lowerBound + n%self.interval
	self.SetLastInt(ret)
	return ret
}

func (self *SequentialGenerator) NextString() string {
	return self.IntegerGeneratorBase.NextString(self)
}

func (self *SequentialGenerator) Mean() float64 {
	return float64(self.lowerBound) + float64(self.interval-1)/2.0
}
