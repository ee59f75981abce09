package generator

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// ConstructionError reports a generator built with invalid parameters.
type ConstructionError struct {
	Generator string
	Param     string
	Value     interface{}
	Reason    string
}

func (self *ConstructionError) Error() string {
	return fmt.Sprintf("invalid %s generator parameter %s=%v: %s",
		self.Generator, self.Param, self.Value, self.Reason)
}

func newConstructionError(generator, param string, value interface{}, reason string) error {
	return &ConstructionError{
		Generator: generator,
		Param:     param,
		Value:     value,
		Reason:    reason,
	}
}

// lockedSource is a rand.Source64 that may be shared between goroutines.
type lockedSource struct {
	lock sync.Mutex
	src  rand.Source64
}

func newLockedSource(seed int64) *lockedSource {
	return &lockedSource{
		src: rand.NewSource(seed).(rand.Source64),
	}
}

func (self *lockedSource) Int63() int64 {
	self.lock.Lock()
	n := self.src.Int63()
	self.lock.Unlock()
	return n
}

func (self *lockedSource) Uint64() uint64 {
	self.lock.Lock()
	n := self.src.Uint64()
	self.lock.Unlock()
	return n
}

func (self *lockedSource) Seed(seed int64) {
	self.lock.Lock()
	self.src.Seed(seed)
	self.lock.Unlock()
}

var (
	source = newLockedSource(time.Now().UnixNano())
	random = rand.New(source)
)

// Seed resets the random source shared by every generator, which makes the
// produced sequences reproducible from a single goroutine.
func Seed(seed int64) {
	source.Seed(seed)
}

// NextInt64 returns a uniformly distributed value in [0, n).
func NextInt64(n int64) int64 {
	if n <= 0 {
		return 0
	}
	return random.Int63n(n)
}

// NextFloat64 returns a uniformly distributed value in [0.0, 1.0).
func NextFloat64() float64 {
	return random.Float64()
}

const alphanumerics = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomString returns a random alphanumeric string of `length` bytes drawn
// from r, or from the shared source when r is nil.
func RandomString(r *rand.Rand, length int64) string {
	if r == nil {
		r = random
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = alphanumerics[r.Intn(len(alphanumerics))]
	}
	return string(b)
}

const (
	fnvOffsetBasis64 = uint64(0xCBF29CE484222325)
	fnvPrime64       = uint64(1099511628211)
)

// FNVHash64 hashes the eight bytes of v (low byte first) with 64 bit FNV-1a.
func FNVHash64(v uint64) uint64 {
	hash := fnvOffsetBasis64
	for i := 0; i < 8; i++ {
		octet := v & 0x00ff
		v = v >> 8
		hash = hash ^ octet
		hash = hash * fnvPrime64
	}
	return hash
}

// Hash maps v to a non-negative pseudo random int64.
func Hash(v int64) int64 {
	return int64(FNVHash64(uint64(v)) >> 1)
}

// BytesHash64 hashes b with 64 bit FNV-1a.
func BytesHash64(b []byte) uint64 {
	hash := fnvOffsetBasis64
	for _, c := range b {
		hash = hash ^ uint64(c)
		hash = hash * fnvPrime64
	}
	return hash
}
