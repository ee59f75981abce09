package generator

import (
	"strconv"
	"sync"
	"sync/atomic"
)

// CounterGenerator generates a sequence of integers 0, 1, ...
// No two calls, even from different goroutines, ever return the same value.
type CounterGenerator struct {
	*IntegerGeneratorBase
	count int64
}

// Create a counter that starts at `startCount`.
func NewCounterGenerator(startCount int64) *CounterGenerator {
	object := &CounterGenerator{
		IntegerGeneratorBase: NewIntegerGeneratorBase(startCount - 1),
		count:                startCount - 1,
	}
	return object
}

func (self *CounterGenerator) NextInt() int64 {
	return atomic.AddInt64(&self.count, 1)
}

func (self *CounterGenerator) NextString() string {
	return self.IntegerGeneratorBase.NextString(self)
}

// LastInt returns the highest value handed out so far.
func (self *CounterGenerator) LastInt() int64 {
	return atomic.LoadInt64(&self.count)
}

func (self *CounterGenerator) LastString() string {
	return strconv.FormatInt(self.LastInt(), 10)
}

func (self *CounterGenerator) Mean() float64 {
	panic("unsupported operation")
}

const (
	// The size of the window of pending acknowledgements.
	WindowSize = int64(1 << 20)
	// The mask to use to turn an id into a slot in the window.
	WindowMask = WindowSize - 1
)

// AcknowledgedCounterGenerator is a CounterGenerator which only reports a
// value through LastInt() once every value below it has been acknowledged.
// Values may be acknowledged in any order.
type AcknowledgedCounterGenerator struct {
	*CounterGenerator
	lock   sync.Mutex
	window []bool
	limit  int64
}

// Create a counter that starts at `startCount`.
func NewAcknowledgedCounterGenerator(startCount int64) *AcknowledgedCounterGenerator {
	return &AcknowledgedCounterGenerator{
		CounterGenerator: NewCounterGenerator(startCount),
		window:           make([]bool, WindowSize),
		limit:            startCount - 1,
	}
}

// LastInt returns the largest value such that it and every value below it
// have been acknowledged.
func (self *AcknowledgedCounterGenerator) LastInt() int64 {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.limit
}

func (self *AcknowledgedCounterGenerator) LastString() string {
	return strconv.FormatInt(self.LastInt(), 10)
}

func (self *AcknowledgedCounterGenerator) NextString() string {
	return self.IntegerGeneratorBase.NextString(self)
}

// Acknowledge makes a generated counter value available via LastInt().
func (self *AcknowledgedCounterGenerator) Acknowledge(value int64) {
	self.lock.Lock()
	defer self.lock.Unlock()
	slot := value & WindowMask
	if self.window[slot] {
		panic("too many unacknowledged insertion keys")
	}
	self.window[slot] = true

	// move a contiguous sequence from the window over to the limit
	index := self.limit + 1
	for ; index != self.limit+1+WindowSize; index++ {
		s := index & WindowMask
		if !self.window[s] {
			break
		}
		self.window[s] = false
	}
	self.limit = index - 1
}
