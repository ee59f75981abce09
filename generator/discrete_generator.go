package generator

import (
	"math"
	"sort"
	"sync/atomic"
)

type Pair struct {
	Weight float64
	Value  string
}

// DiscreteGenerator generates a distribution by choosing from a discrete set
// of values, each with a fixed relative weight.
type DiscreteGenerator struct {
	values     []*Pair
	cumulative []float64
	lastValue  atomic.Value
}

func NewDiscreteGenerator(pairs []*Pair) (*DiscreteGenerator, error) {
	if len(pairs) == 0 {
		return nil, newConstructionError("discrete", "values", 0, "must not be empty")
	}
	var sum float64
	for _, p := range pairs {
		if math.IsNaN(p.Weight) || math.IsInf(p.Weight, 0) || p.Weight < 0 {
			return nil, newConstructionError("discrete", p.Value, p.Weight, "weight must be a finite value >= 0")
		}
		sum += p.Weight
	}
	if !(sum > 0) {
		return nil, newConstructionError("discrete", "weights", sum, "must sum to a positive value")
	}
	values := make([]*Pair, 0, len(pairs))
	cumulative := make([]float64, 0, len(pairs))
	var acc float64
	for _, p := range pairs {
		if p.Weight == 0 {
			continue
		}
		acc += p.Weight / sum
		values = append(values, &Pair{Weight: p.Weight, Value: p.Value})
		cumulative = append(cumulative, acc)
	}
	object := &DiscreteGenerator{
		values:     values,
		cumulative: cumulative,
	}
	object.lastValue.Store("")
	return object, nil
}

// NewDiscreteGeneratorFromMap builds a generator whose values are visited in
// lexical order, so the mapping from a random draw to a value does not depend
// on map iteration order.
func NewDiscreteGeneratorFromMap(weights map[string]float64) (*DiscreteGenerator, error) {
	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]*Pair, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, &Pair{Weight: weights[k], Value: k})
	}
	return NewDiscreteGenerator(pairs)
}

func (self *DiscreteGenerator) NextString() string {
	value := NextFloat64()
	i := sort.SearchFloat64s(self.cumulative, value)
	// SearchFloat64s finds the first entry >= value; an exact hit belongs
	// to the next bucket
	for i < len(self.cumulative) && self.cumulative[i] <= value {
		i++
	}
	if i >= len(self.values) {
		// rounding may leave the last cumulative weight slightly below 1.0
		i = len(self.values) - 1
	}
	ret := self.values[i].Value
	self.lastValue.Store(ret)
	return ret
}

// LastString returns the previous string generated by the distribution, or
// the empty string if nothing has been generated yet.
func (self *DiscreteGenerator) LastString() string {
	return self.lastValue.Load().(string)
}

// Values returns the values that may be generated.
func (self *DiscreteGenerator) Values() []string {
	ret := make([]string, 0, len(self.values))
	for _, p := range self.values {
		ret = append(ret, p.Value)
	}
	return ret
}
