package generator

import (
	"strconv"
	"testing"

	"github.com/hhkbp2/testify/require"
)

func TestUniformIntegerGenerator(t *testing.T) {
	lowerBound := int64(1000)
	upperBound := int64(2000)
	var g IntegerGenerator
	uig := NewUniformIntegerGenerator(lowerBound, upperBound)
	g = uig
	total := 10
	for i := 0; i < total; i++ {
		last := g.NextInt()
		require.True(t, last >= lowerBound && last <= upperBound)
		require.Equal(t, last, g.LastInt())
		str := g.NextString()
		v, err := strconv.ParseInt(str, 0, 64)
		require.Nil(t, err)
		require.True(t, v >= lowerBound && v <= upperBound)
		require.Equal(t, float64(lowerBound+upperBound)/2.0, g.Mean())
	}
}

func TestUniformGeneratorByItems(t *testing.T) {
	items := int64(16)
	g, err := NewUniformGeneratorByItems(items)
	require.Nil(t, err)
	counts := make([]int, items)
	for i := 0; i < 16000; i++ {
		v := g.NextInt()
		require.True(t, v >= 0 && v < items)
		counts[v]++
	}
	for _, c := range counts {
		require.True(t, c > 0)
	}

	_, err = NewUniformGeneratorByItems(0)
	require.NotNil(t, err)
	_, ok := err.(*ConstructionError)
	require.True(t, ok)
}

func TestSequentialGenerator(t *testing.T) {
	g, err := NewSequentialGenerator(5, 7)
	require.Nil(t, err)
	expected := []int64{5, 6, 7, 5, 6, 7, 5}
	for _, e := range expected {
		require.Equal(t, e, g.NextInt())
		require.Equal(t, e, g.LastInt())
	}
	require.Equal(t, float64(6), g.Mean())

	_, err = NewSequentialGenerator(3, 2)
	require.NotNil(t, err)
}
