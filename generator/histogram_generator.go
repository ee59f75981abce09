package generator

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Generate integers according to a histogram distribution. The histogram
// buckets are of width one, but the values are multiplied by a block size.
// Therefore, instead of drawing sizes uniformly at random within each bucket,
// we always draw the largest value in the current bucket, so the value drawn
// is always a multiple of blockSize.
// The minimum value this distribution returns is blockSize(not zero).
type HistogramGenerator struct {
	*IntegerGeneratorBase
	blockSize    int64
	buckets      []int64
	area         int64
	weightedArea int64
	meanSize     float64
}

// NewHistogramGeneratorFromFile reads a histogram from a tab separated file.
// The first line is "BlockSize\t<n>", each following line "<bucket>\t<area>".
func NewHistogramGeneratorFromFile(file string) (*HistogramGenerator, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	lineCount := 0
	var size int64
	areas := make(map[int64]int64)
	var maxIndex int64 = -1
	malformed := func(reason string, args ...interface{}) error {
		return newConstructionError("histogram", "file", file,
			fmt.Sprintf("line %d: ", lineCount+1)+fmt.Sprintf(reason, args...))
	}
	parse := func(s string) (int64, error) {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, malformed("%q is not an integer", s)
		}
		return v, nil
	}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) != 2 {
			return nil, malformed("want two tab separated columns, got %d", len(parts))
		}
		if lineCount == 0 {
			if parts[0] != "BlockSize" {
				return nil, malformed("first line must be the BlockSize")
			}
			if size, err = parse(parts[1]); err != nil {
				return nil, err
			}
		} else {
			k, err := parse(parts[0])
			if err != nil {
				return nil, err
			}
			v, err := parse(parts[1])
			if err != nil {
				return nil, err
			}
			if k < 0 {
				return nil, malformed("negative bucket %d", k)
			}
			areas[k] = v
			if k > maxIndex {
				maxIndex = k
			}
		}
		lineCount++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	buckets := make([]int64, maxIndex+1)
	for k, v := range areas {
		buckets[k] = v
	}
	return NewHistogramGenerator(buckets, size)
}

func NewHistogramGenerator(buckets []int64, blockSize int64) (*HistogramGenerator, error) {
	if blockSize <= 0 {
		return nil, newConstructionError("histogram", "blocksize", blockSize, "must be positive")
	}
	var area, weightedArea int64
	for i, b := range buckets {
		if b < 0 {
			return nil, newConstructionError("histogram", fmt.Sprintf("bucket[%d]", i), b, "must not be negative")
		}
		area += b
		weightedArea += int64(i) * b
	}
	if area <= 0 {
		return nil, newConstructionError("histogram", "area", area, "must be positive")
	}
	return &HistogramGenerator{
		IntegerGeneratorBase: NewIntegerGeneratorBase(0),
		blockSize:            blockSize,
		buckets:              buckets,
		area:                 area,
		weightedArea:         weightedArea,
		meanSize:             float64(blockSize) * float64(weightedArea) / float64(area),
	}, nil
}

func (self *HistogramGenerator) NextInt() int64 {
	number := NextInt64(self.area)
	var i int
	for i = 0; i < len(self.buckets)-1; i++ {
		number -= self.buckets[i]
		if number < 0 {
			break
		}
	}
	next := int64(i+1) * self.blockSize
	self.SetLastInt(next)
	return next
}

func (self *HistogramGenerator) NextString() string {
	return self.IntegerGeneratorBase.NextString(self)
}

func (self *HistogramGenerator) Mean() float64 {
	return self.meanSize
}
