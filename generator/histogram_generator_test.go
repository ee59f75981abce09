package generator

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/hhkbp2/testify/require"
)

func TestHistogramGenerator(t *testing.T) {
	buckets := []int64{1, 2, 3, 4}
	blockSize := int64(1)
	max := int64(len(buckets)) * blockSize
	hg, err := NewHistogramGenerator(buckets, blockSize)
	require.Nil(t, err)
	times := 10
	runTestHistogramGenerator(t, hg, times, max)

	dir, err := ioutil.TempDir("", "histogram")
	require.Nil(t, err)
	defer os.RemoveAll(dir)
	filename := filepath.Join(dir, "histogram_generator.data")
	data := "BlockSize\t1\n0\t1\n1\t2\n2\t3\n3\t4\n"
	require.Nil(t, ioutil.WriteFile(filename, []byte(data), 0644))
	hg, err = NewHistogramGeneratorFromFile(filename)
	require.Nil(t, err)
	runTestHistogramGenerator(t, hg, times, max)
	// mean over buckets weighted by area: (0*1+1*2+2*3+3*4)/10
	require.Equal(t, float64(2), hg.Mean())
}

func TestHistogramGeneratorInvalid(t *testing.T) {
	_, err := NewHistogramGenerator([]int64{0, 0}, 1)
	require.NotNil(t, err)
	_, err = NewHistogramGenerator([]int64{1}, 0)
	require.NotNil(t, err)
	_, err = NewHistogramGeneratorFromFile(filepath.Join(os.TempDir(), "no-such-histogram.data"))
	require.NotNil(t, err)
}

func TestHistogramGeneratorMalformedFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "histogram")
	require.Nil(t, err)
	defer os.RemoveAll(dir)
	filename := filepath.Join(dir, "histogram_generator.data")

	cases := map[string]string{
		"BlockSize\t1\n0\t1\t2\n": "line 2: want two tab separated columns, got 3",
		"Size\t1\n0\t1\n":         "line 1: first line must be the BlockSize",
		"BlockSize\tx\n0\t1\n":    `line 1: "x" is not an integer`,
		"BlockSize\t1\n0\ty\n":    `line 2: "y" is not an integer`,
		"BlockSize\t1\n\n-1\t1\n": "line 2: negative bucket -1",
	}
	for data, reason := range cases {
		require.Nil(t, ioutil.WriteFile(filename, []byte(data), 0644))
		_, err = NewHistogramGeneratorFromFile(filename)
		cerr, ok := err.(*ConstructionError)
		require.True(t, ok, data)
		require.Equal(t, "histogram", cerr.Generator)
		require.Equal(t, "file", cerr.Param)
		require.Equal(t, filename, cerr.Value)
		require.Equal(t, reason, cerr.Reason)
	}
}

func runTestHistogramGenerator(t *testing.T, g IntegerGenerator, times int, max int64) {
	for i := 0; i < times; i++ {
		last := g.NextInt()
		require.True(t, last >= 1 && last <= max)
		require.Equal(t, g.LastInt(), last)
		str := g.NextString()
		v, err := strconv.ParseInt(str, 0, 64)
		require.Nil(t, err)
		require.True(t, v <= max)
		require.Equal(t, str, g.LastString())
	}
}
