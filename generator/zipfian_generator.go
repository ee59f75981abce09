package generator

import (
	"math"
	"sync"
)

const (
	ZipfianConstant = float64(0.99)
)

// Compute the zeta constant needed for the distribution. Do this incrementally
// for a distribution that has n items now but used to have st items.
// Use the zipfian constant theta.
func zetaStatic(st, n int64, theta, initialSum float64) float64 {
	sum := initialSum
	for i := st; i < n; i++ {
		sum += 1 / math.Pow(float64(i+1), theta)
	}
	return sum
}

func checkZipfianParameters(generator string, items int64, theta float64) error {
	if items <= 0 {
		return newConstructionError(generator, "items", items, "must be positive")
	}
	if math.IsNaN(theta) || math.IsInf(theta, 0) || theta < 0 {
		return newConstructionError(generator, "zipfianconstant", theta, "must be a finite value >= 0")
	}
	if theta == 1 {
		return newConstructionError(generator, "zipfianconstant", theta, "must not be 1")
	}
	return nil
}

// A generator of a zipfian distribution. It produces a sequence of items,
// such that some items are more popular than others, according to
// a zipfian distribution. When you construct an instance of this class,
// you specify the number of items in the set to draw from, either by
// specifying an itemcount (so that the sequence is of items from 0 to
// itemcount-1) or by specifying a min and a max (so that the sequence
// is of items from min to max inclusive). After you construct the instance,
// you can change the number of items by calling Next(itemCount).
//
// Note that the popular items will be clustered together, e.g. item 0
// is the most popular, item 1 the second most popular, and so on (or min
// is the most popular, min+1 the next most popular, etc.)
// If you don't want this clustering, and instead want the popular items
// scattered throughout the item space, then use ScrambledZipfianGenerator
// instead.
//
// Be aware: initializing this generator may take a long time if there are
// lots of items to choose from (e.g. over a minute for 100 million objects).
// This is because certain mathematical values need to be computed to properly
// generate a zipfian skew, and one of those values (zeta) is a sum sequence
// from 1 to n, where n is the itemCount. Note that if you increase the number
// of items in the set, we can compute a new zeta incrementally, so it should
// be fast unless you have added millions of items. However, if you decrease
// the number of items, we recompute zeta from scratch, so this can take
// a long time.
//
// The algorithm used here is from
// "Quickly Generating Billion-Record Synthetic Databases",
// Jim Gray et al, SIGMOD 1994.
type ZipfianGenerator struct {
	*IntegerGeneratorBase
	// Number of items.
	items int64
	// Min item to generate.
	base int64
	// Computed parameters for generating the distribution.
	theta, alpha, zeta2theta float64

	// lock guards zetan, eta and countForZeta, which change when the
	// item count grows.
	lock  sync.RWMutex
	zetan float64
	eta   float64
	// The number of items used to compute zetan the last time.
	countForZeta int64

	// If you increase the number of items which the zipfian generator is
	// allowed to choose from, this code will incrementally compute a new zeta
	// value for the larger itemcount. However, if you decrease the number of
	// items, the code computes zeta from scratch; this is expensive for large
	// itemsets. A goroutine may read a stale item count and ask for fewer
	// items than another goroutine already did, so decreasing is ignored
	// unless this flag is set.
	allowItemCountDecrease bool
}

// Create a zipfian generator for the specified number of items.
func NewZipfianGeneratorByItems(items int64) (*ZipfianGenerator, error) {
	return NewZipfianGeneratorByInterval(0, items-1)
}

// Create a zipfian generator for items between min and max(inclusive).
func NewZipfianGeneratorByInterval(min, max int64) (*ZipfianGenerator, error) {
	return NewZipfianGeneratorWithConstant(min, max, ZipfianConstant)
}

// Create a zipfian generator for items between min and max(inclusive) for
// the specified zipfian constant.
func NewZipfianGeneratorWithConstant(min, max int64, zipfianConstant float64) (*ZipfianGenerator, error) {
	items := max - min + 1
	if err := checkZipfianParameters("zipfian", items, zipfianConstant); err != nil {
		return nil, err
	}
	return newZipfianGenerator(min, max, zipfianConstant, zetaStatic(0, items, zipfianConstant, 0)), nil
}

// Create a zipfian generator for items between min and max(inclusive) for
// the specified zipfian constant, using the precomputed value of zeta.
func NewZipfianGenerator(min, max int64, zipfianConstant, zetan float64) (*ZipfianGenerator, error) {
	items := max - min + 1
	if err := checkZipfianParameters("zipfian", items, zipfianConstant); err != nil {
		return nil, err
	}
	if !(zetan > 0) {
		return nil, newConstructionError("zipfian", "zetan", zetan, "must be positive")
	}
	return newZipfianGenerator(min, max, zipfianConstant, zetan), nil
}

func newZipfianGenerator(min, max int64, theta, zetan float64) *ZipfianGenerator {
	items := max - min + 1
	object := &ZipfianGenerator{
		IntegerGeneratorBase: NewIntegerGeneratorBase(min),
		items:                items,
		base:                 min,
		theta:                theta,
		alpha:                1.0 / (1.0 - theta),
		zeta2theta:           zetaStatic(0, 2, theta, 0),
		zetan:                zetan,
		countForZeta:         items,
	}
	object.eta = object.computeEta(items, zetan)
	return object
}

func (self *ZipfianGenerator) computeEta(itemCount int64, zetan float64) float64 {
	return (1 - math.Pow(2.0/float64(itemCount), 1-self.theta)) / (1 - self.zeta2theta/zetan)
}

// parameters returns zetan and eta for itemCount, growing zeta incrementally
// if needed.
func (self *ZipfianGenerator) parameters(itemCount int64) (float64, float64) {
	self.lock.RLock()
	if itemCount == self.countForZeta ||
		(itemCount < self.countForZeta && !self.allowItemCountDecrease) {
		zetan, eta := self.zetan, self.eta
		self.lock.RUnlock()
		return zetan, eta
	}
	self.lock.RUnlock()

	self.lock.Lock()
	defer self.lock.Unlock()
	if itemCount > self.countForZeta {
		self.zetan = zetaStatic(self.countForZeta, itemCount, self.theta, self.zetan)
		self.countForZeta = itemCount
		self.eta = self.computeEta(itemCount, self.zetan)
	} else if itemCount < self.countForZeta && self.allowItemCountDecrease {
		self.zetan = zetaStatic(0, itemCount, self.theta, 0)
		self.countForZeta = itemCount
		self.eta = self.computeEta(itemCount, self.zetan)
	}
	return self.zetan, self.eta
}

// Generate the next item. this distribution will be skewed toward
// lower itegers; e.g. 0 will be the most popular, 1 the next most popular, etc.
func (self *ZipfianGenerator) NextInt() int64 {
	return self.Next(self.items)
}

func (self *ZipfianGenerator) NextString() string {
	return self.IntegerGeneratorBase.NextString(self)
}

// Next generates the next item over the first itemCount items.
func (self *ZipfianGenerator) Next(itemCount int64) int64 {
	if itemCount <= 1 {
		self.SetLastInt(self.base)
		return self.base
	}
	zetan, eta := self.parameters(itemCount)

	var ret int64
	u := NextFloat64()
	uz := u * zetan
	switch {
	case uz < 1.0:
		ret = self.base
	case uz < 1.0+math.Pow(0.5, self.theta):
		ret = self.base + 1
	default:
		offset := float64(itemCount) * math.Pow(eta*u-eta+1.0, self.alpha)
		if math.IsNaN(offset) || offset < 0 {
			offset = 0
		}
		if offset > float64(itemCount-1) {
			offset = float64(itemCount - 1)
		}
		ret = self.base + int64(offset)
	}
	self.SetLastInt(ret)
	return ret
}

// SetAllowItemCountDecrease controls whether a smaller item count passed to
// Next() triggers a full recomputation of zeta.
func (self *ZipfianGenerator) SetAllowItemCountDecrease(allow bool) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.allowItemCountDecrease = allow
}

func (self *ZipfianGenerator) Mean() float64 {
	panic("unsupported operation")
}

// A generator of a zipfian distribution whose popular items are scattered
// over the item space. It draws a zipfian rank over the same number of items
// and passes it through a fixed permutation of [0, items), so the frequency
// of the i-th most popular item is the frequency of zipfian rank i, but the
// popular items are not clustered together.
type ScrambledZipfianGenerator struct {
	*IntegerGeneratorBase
	gen  *ZipfianGenerator
	min  int64
	max  int64
	perm *permutation
}

// Create a scrambled zipfian generator for the specified number of items.
func NewScrambledZipfianGeneratorByItems(items int64) (*ScrambledZipfianGenerator, error) {
	return NewScrambledZipfianGenerator(0, items-1)
}

// Create a scrambled zipfian generator for items between min and
// max(inclusive).
func NewScrambledZipfianGenerator(min, max int64) (*ScrambledZipfianGenerator, error) {
	return NewScrambledZipfianGeneratorWithConstant(min, max, ZipfianConstant)
}

// Create a scrambled zipfian generator for items between min and
// max(inclusive) for the specified zipfian constant.
func NewScrambledZipfianGeneratorWithConstant(min, max int64, zipfianConstant float64) (*ScrambledZipfianGenerator, error) {
	items := max - min + 1
	if err := checkZipfianParameters("scrambledzipfian", items, zipfianConstant); err != nil {
		return nil, err
	}
	gen, err := NewZipfianGeneratorWithConstant(0, items-1, zipfianConstant)
	if err != nil {
		return nil, err
	}
	return &ScrambledZipfianGenerator{
		IntegerGeneratorBase: NewIntegerGeneratorBase(min),
		gen:                  gen,
		min:                  min,
		max:                  max,
		perm:                 newPermutation(uint64(items)),
	}, nil
}

func (self *ScrambledZipfianGenerator) NextInt() int64 {
	ret := self.Scramble(self.gen.NextInt())
	self.SetLastInt(ret)
	return ret
}

func (self *ScrambledZipfianGenerator) NextString() string {
	return self.IntegerGeneratorBase.NextString(self)
}

// Scramble maps the zipfian rank to the item it stands for.
func (self *ScrambledZipfianGenerator) Scramble(rank int64) int64 {
	return self.min + int64(self.perm.apply(uint64(rank)))
}

func (self *ScrambledZipfianGenerator) Mean() float64 {
	return float64(self.min+self.max) / 2.0
}

const permutationRounds = 4

// permutation is a balanced Feistel network over the smallest even number of
// bits covering the domain; values outside the domain are walked along their
// cycle until they fall back inside, which keeps it a bijection on
// [0, domain).
type permutation struct {
	domain   uint64
	halfBits uint
	mask     uint64
	keys     [permutationRounds]uint64
}

func newPermutation(domain uint64) *permutation {
	bits := uint(0)
	for (uint64(1) << bits) < domain {
		bits++
	}
	halfBits := (bits + 1) / 2
	p := &permutation{
		domain:   domain,
		halfBits: halfBits,
		mask:     (uint64(1) << halfBits) - 1,
	}
	for i := range p.keys {
		p.keys[i] = FNVHash64(domain + uint64(i)*0x9E3779B97F4A7C15)
	}
	return p
}

func (self *permutation) encrypt(x uint64) uint64 {
	left := x >> self.halfBits
	right := x & self.mask
	for i := 0; i < permutationRounds; i++ {
		left, right = right, left^(FNVHash64(right^self.keys[i])&self.mask)
	}
	return (left << self.halfBits) | right
}

func (self *permutation) apply(x uint64) uint64 {
	for {
		x = self.encrypt(x)
		if x < self.domain {
			return x
		}
	}
}
