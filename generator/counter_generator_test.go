package generator

import (
	"fmt"
	"sync"
	"testing"

	"github.com/hhkbp2/testify/require"
)

func TestCounterGenerator(t *testing.T) {
	value := int64(100)
	var g IntegerGenerator
	g = NewCounterGenerator(value)
	require.Equal(t, value-1, g.LastInt())
	for i := int64(0); i < 5; i++ {
		require.Equal(t, value+i, g.NextInt())
		require.Equal(t, value+i, g.LastInt())
	}
	for i := int64(5); i < 10; i++ {
		require.Equal(t, fmt.Sprintf("%d", value+i), g.NextString())
		require.Equal(t, fmt.Sprintf("%d", value+i), g.LastString())
	}
	require.Panics(t, func() { g.Mean() })
}

func TestCounterGeneratorConcurrent(t *testing.T) {
	start := int64(7)
	for _, workers := range []int64{1, 2, 4, 8} {
		total := int64(8000)
		perWorker := total / workers
		g := NewCounterGenerator(start)
		results := make([][]int64, workers)
		var wg sync.WaitGroup
		for w := int64(0); w < workers; w++ {
			wg.Add(1)
			go func(w int64) {
				defer wg.Done()
				values := make([]int64, 0, perWorker)
				for i := int64(0); i < perWorker; i++ {
					values = append(values, g.NextInt())
				}
				results[w] = values
			}(w)
		}
		wg.Wait()

		seen := make(map[int64]bool, total)
		for _, values := range results {
			last := int64(-1)
			for _, v := range values {
				require.False(t, seen[v])
				// values issued to one goroutine increase monotonically
				require.True(t, v > last)
				seen[v] = true
				last = v
			}
		}
		require.Equal(t, int(total), len(seen))
		for v := start; v < start+total; v++ {
			require.True(t, seen[v])
		}
		require.Equal(t, start+total-1, g.LastInt())
	}
}

func TestAcknowledgedCounterGenerator(t *testing.T) {
	value := int64(100)
	total := int64(10)
	var g IntegerGenerator
	acg := NewAcknowledgedCounterGenerator(value)
	g = acg
	require.Equal(t, value-1, g.LastInt())
	for i := int64(0); i < total/2; i++ {
		require.Equal(t, value+i, g.NextInt())
		require.Equal(t, value-1, g.LastInt())
	}
	for i := total / 2; i < total; i++ {
		require.Equal(t, fmt.Sprintf("%d", value+i), g.NextString())
		require.Equal(t, fmt.Sprintf("%d", value-1), g.LastString())
	}
	for i := int64(0); i < total; i++ {
		acg.Acknowledge(value + i)
		require.Equal(t, value+i, g.LastInt())
		require.Equal(t, fmt.Sprintf("%d", value+i), g.LastString())
	}
	require.Equal(t, value+total, acg.NextInt())
	require.Panics(t, func() { g.Mean() })
}

func TestAcknowledgedCounterGeneratorOutOfOrder(t *testing.T) {
	acg := NewAcknowledgedCounterGenerator(0)
	for i := 0; i < 4; i++ {
		acg.NextInt()
	}
	acg.Acknowledge(2)
	acg.Acknowledge(3)
	require.Equal(t, int64(-1), acg.LastInt())
	acg.Acknowledge(0)
	require.Equal(t, int64(0), acg.LastInt())
	acg.Acknowledge(1)
	require.Equal(t, int64(3), acg.LastInt())
}
