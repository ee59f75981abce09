package generator

import (
	"strconv"
	"sync/atomic"
)

// Generator is the base interface of all generators: it produces a sequence
// of values rendered as strings.
type Generator interface {
	// NextString generates the next value in the sequence.
	NextString() string
	// LastString returns the previous value generated by NextString()
	// (or NextInt() for integer generators).
	LastString() string
}

// IntegerGenerator is a generator capable of generating integers and strings.
// Every implementation in this package is safe for concurrent use.
type IntegerGenerator interface {
	Generator
	// NextInt returns the next value as an int64.
	NextInt() int64
	LastInt() int64

	Mean() float64
}

// IntegerGeneratorBase keeps the last generated value for IntegerGenerator
// implementations.
type IntegerGeneratorBase struct {
	lastInt int64
}

func NewIntegerGeneratorBase(last int64) *IntegerGeneratorBase {
	return &IntegerGeneratorBase{
		lastInt: last,
	}
}

// SetLastInt sets the last value to be generated.
// IntegerGenerator implementations must use this call to properly set the last
// int value, or the LastString() and LastInt() calls won't work.
func (self *IntegerGeneratorBase) SetLastInt(value int64) {
	atomic.StoreInt64(&self.lastInt, value)
}

// NextString generates the next string in the distribution.
func (self *IntegerGeneratorBase) NextString(g IntegerGenerator) string {
	return strconv.FormatInt(g.NextInt(), 10)
}

func (self *IntegerGeneratorBase) LastInt() int64 {
	return atomic.LoadInt64(&self.lastInt)
}

func (self *IntegerGeneratorBase) LastString() string {
	return strconv.FormatInt(self.LastInt(), 10)
}

// ConstantIntegerGenerator is a trivial integer generator that always returns
// the same value.
type ConstantIntegerGenerator struct {
	*IntegerGeneratorBase
	value int64
}

func NewConstantIntegerGenerator(i int64) *ConstantIntegerGenerator {
	return &ConstantIntegerGenerator{
		IntegerGeneratorBase: NewIntegerGeneratorBase(i),
		value:                i,
	}
}

func (self *ConstantIntegerGenerator) NextInt() int64 {
	return self.value
}

func (self *ConstantIntegerGenerator) NextString() string {
	return self.IntegerGeneratorBase.NextString(self)
}

func (self *ConstantIntegerGenerator) Mean() float64 {
	return float64(self.value)
}
