package generator

import (
	"strconv"
	"testing"

	"github.com/hhkbp2/testify/require"
)

func TestZipfianGenerator(t *testing.T) {
	runTestZipfianGenerator(t, func(min, max int64) (IntegerGenerator, error) {
		return NewZipfianGeneratorByInterval(min, max)
	})
}

func TestScrambledZipfianGenerator(t *testing.T) {
	runTestZipfianGenerator(t, func(min, max int64) (IntegerGenerator, error) {
		return NewScrambledZipfianGenerator(min, max)
	})
}

func runTestZipfianGenerator(t *testing.T, f func(min, max int64) (IntegerGenerator, error)) {
	min := int64(1000)
	max := int64(2000)
	g, err := f(min, max)
	require.Nil(t, err)
	total := 1000
	for i := 0; i < total; i++ {
		last := g.NextInt()
		require.True(t, last >= min && last <= max)
		require.Equal(t, last, g.LastInt())
		str := g.NextString()
		v, err := strconv.ParseInt(str, 0, 64)
		require.Nil(t, err)
		require.True(t, v >= min && v <= max)
		require.Equal(t, str, g.LastString())
	}
}

func TestZipfianGeneratorSkew(t *testing.T) {
	items := int64(10)
	g, err := NewZipfianGeneratorByItems(items)
	require.Nil(t, err)
	counts := make([]int, items)
	for i := 0; i < 200000; i++ {
		counts[g.NextInt()]++
	}
	for i := 1; i < len(counts); i++ {
		require.True(t, counts[i-1] > counts[i], "count of %d: %d, count of %d: %d",
			i-1, counts[i-1], i, counts[i])
	}
}

func TestZipfianGeneratorGrowingItemCount(t *testing.T) {
	g, err := NewZipfianGeneratorByItems(10)
	require.Nil(t, err)
	seenAbove := false
	for i := 0; i < 10000; i++ {
		v := g.Next(1000)
		require.True(t, v >= 0 && v < 1000)
		if v >= 10 {
			seenAbove = true
		}
	}
	require.True(t, seenAbove)
	// a smaller item count is still honored for the range of values
	for i := 0; i < 1000; i++ {
		require.True(t, g.Next(10) < 10)
	}
	require.Equal(t, int64(0), g.Next(1))
}

func TestZipfianGeneratorInvalid(t *testing.T) {
	_, err := NewZipfianGeneratorByItems(0)
	require.NotNil(t, err)
	_, err = NewZipfianGeneratorByItems(-5)
	require.NotNil(t, err)
	_, err = NewZipfianGeneratorWithConstant(0, 10, 1.0)
	require.NotNil(t, err)
	_, err = NewZipfianGeneratorWithConstant(0, 10, -0.5)
	require.NotNil(t, err)
	_, err = NewZipfianGenerator(0, 10, 0.99, 0)
	require.NotNil(t, err)
	_, err = NewScrambledZipfianGeneratorByItems(0)
	require.NotNil(t, err)
	cerr, ok := err.(*ConstructionError)
	require.True(t, ok)
	require.Equal(t, "items", cerr.Param)
}

func TestScrambledZipfianGeneratorCoverage(t *testing.T) {
	items := int64(100)
	g, err := NewScrambledZipfianGeneratorByItems(items)
	require.Nil(t, err)
	counts := make(map[int64]int)
	for i := 0; i < 100000; i++ {
		v := g.NextInt()
		require.True(t, v >= 0 && v < items)
		counts[v]++
	}
	require.Equal(t, int(items), len(counts))

	hottest, hottestCount := int64(-1), 0
	for k, c := range counts {
		if c > hottestCount {
			hottest, hottestCount = k, c
		}
	}
	require.Equal(t, g.Scramble(0), hottest)
	// the skew of rank 0 over rank 1 survives scrambling
	require.True(t, counts[g.Scramble(0)] > counts[g.Scramble(1)])
}

func TestScrambledZipfianGeneratorIsPermutation(t *testing.T) {
	for _, items := range []int64{1, 2, 3, 10, 1000, 1023, 1024, 1025} {
		g, err := NewScrambledZipfianGeneratorByItems(items)
		require.Nil(t, err)
		seen := make(map[int64]bool, items)
		for rank := int64(0); rank < items; rank++ {
			v := g.Scramble(rank)
			require.True(t, v >= 0 && v < items)
			require.False(t, seen[v])
			seen[v] = true
		}
	}
}
