package generator

// UniformIntegerGenerator generates integers uniformly distributed over
// [lowerBound, upperBound].
type UniformIntegerGenerator struct {
	*IntegerGeneratorBase
	lowerBound int64
	upperBound int64
	interval   int64
}

// Create a generator that will return integers uniformly randomly from
// the interval [lowerBound, upperBound] inclusive.
// (i.e. lowerBound and upperBound are possible values)
func NewUniformIntegerGenerator(lowerBound, upperBound int64) *UniformIntegerGenerator {
	if lowerBound > upperBound {
		lowerBound, upperBound = upperBound, lowerBound
	}
	return &UniformIntegerGenerator{
		IntegerGeneratorBase: NewIntegerGeneratorBase(lowerBound - 1),
		lowerBound:           lowerBound,
		upperBound:           upperBound,
		interval:             upperBound - lowerBound + 1,
	}
}

// NewUniformGeneratorByItems returns a generator over [0, items).
func NewUniformGeneratorByItems(items int64) (*UniformIntegerGenerator, error) {
	if items <= 0 {
		return nil, newConstructionError("uniform", "items", items, "must be positive")
	}
	return NewUniformIntegerGenerator(0, items-1), nil
}

func (self *UniformIntegerGenerator) NextInt() int64 {
	ret := self.lowerBound + NextInt64(self.interval)
	self.SetLastInt(ret)
	return ret
}

func (self *UniformIntegerGenerator) NextString() string {
	return self.IntegerGeneratorBase.NextString(self)
}

func (self *UniformIntegerGenerator) Mean() float64 {
	return float64(self.lowerBound+self.upperBound) / 2.0
}
