package generator

import (
	"strconv"
	"testing"

	"github.com/hhkbp2/testify/require"
)

func TestHotspotIntegerGenerator(t *testing.T) {
	lowerBound := int64(1000)
	upperBound := int64(2000)
	hotsetFraction := float64(0.2)
	hotOpnFraction := float64(0.99)
	var g IntegerGenerator
	hig, err := NewHotspotIntegerGenerator(lowerBound, upperBound, hotsetFraction, hotOpnFraction)
	require.Nil(t, err)
	g = hig
	interval := upperBound - lowerBound + 1
	hotsetHigh := lowerBound + int64(float64(interval)*hotsetFraction)
	total := 10000
	hot := 0
	for i := 0; i < total; i++ {
		last := g.NextInt()
		require.True(t, last >= lowerBound && last <= upperBound)
		require.Equal(t, last, g.LastInt())
		if last < hotsetHigh {
			hot++
		}
	}
	require.True(t, float64(hot)/float64(total) > 0.97)
	str := g.NextString()
	last, err := strconv.ParseInt(str, 0, 64)
	require.Nil(t, err)
	require.True(t, last <= upperBound)
	require.Equal(t, str, g.LastString())
}

func TestHotspotIntegerGeneratorSwapsBounds(t *testing.T) {
	g, err := NewHotspotIntegerGenerator(200, 100, 0.5, 0.5)
	require.Nil(t, err)
	require.Equal(t, int64(100), g.GetLowerBound())
	require.Equal(t, int64(200), g.GetUpperBound())
	for i := 0; i < 1000; i++ {
		v := g.NextInt()
		require.True(t, v >= 100 && v <= 200)
	}
}

func TestHotspotIntegerGeneratorInvalid(t *testing.T) {
	_, err := NewHotspotIntegerGenerator(0, 100, 1.5, 0.5)
	require.NotNil(t, err)
	_, err = NewHotspotIntegerGenerator(0, 100, 0.5, -0.1)
	require.NotNil(t, err)
}
