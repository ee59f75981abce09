package generator

// SkewedLatestGenerator generates a popularity distribution of items, skewed
// to favor recent items significantly more than older items.
type SkewedLatestGenerator struct {
	*IntegerGeneratorBase
	basis   IntegerGenerator
	zipfian *ZipfianGenerator
}

// Create a generator skewed towards the latest value of `basis`, which must
// already have handed out at least one value.
func NewSkewedLatestGenerator(basis IntegerGenerator) (*SkewedLatestGenerator, error) {
	last := basis.LastInt()
	zipfian, err := NewZipfianGeneratorByItems(last + 1)
	if err != nil {
		return nil, err
	}
	return &SkewedLatestGenerator{
		IntegerGeneratorBase: NewIntegerGeneratorBase(last),
		basis:                basis,
		zipfian:              zipfian,
	}, nil
}

// Generate the next string in the distribution, skewed toward the most
// recent value of the basis.
func (self *SkewedLatestGenerator) NextInt() int64 {
	max := self.basis.LastInt()
	ret := max - self.zipfian.Next(max+1)
	self.SetLastInt(ret)
	return ret
}

func (self *SkewedLatestGenerator) NextString() string {
	return self.IntegerGeneratorBase.NextString(self)
}

func (self *SkewedLatestGenerator) Mean() float64 {
	panic("unsupported operation")
}
