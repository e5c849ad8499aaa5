package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistributorCoversEveryLevel(t *testing.T) {
	for _, levels := range []int{1, 3, 10, 100} {
		d := NewDistributor(levels)
		require.Equal(t, levels*(levels+1)/2, d.Len())

		counts := make([]int, levels)
		for i := 0; i < d.Len(); i++ {
			l := d.Pick(i)
			require.GreaterOrEqual(t, l, 0)
			require.Less(t, l, levels)
			counts[l]++
		}
		for l, n := range counts {
			assert.Equal(t, l+1, n, "level %d of %d", l, levels)
		}
	}
}

func TestDistributorBiasesTowardHighLevels(t *testing.T) {
	d := NewDistributor(10)
	top, bottom := 0, 0
	idx := 0
	for i := 0; i < d.Len()*3; i++ {
		switch d.Pick(idx) {
		case 9:
			top++
		case 0:
			bottom++
		}
		idx = d.Next(idx)
	}
	assert.Equal(t, 30, top)
	assert.Equal(t, 3, bottom)
}

func TestDistributorSpreadsTopLevel(t *testing.T) {
	d := NewDistributor(10)
	last := -1
	maxGap := 0
	for i := 0; i < d.Len(); i++ {
		if d.Pick(i) == 9 {
			if last >= 0 && i-last > maxGap {
				maxGap = i - last
			}
			last = i
		}
	}
	// Ten occurrences in 55 slots should never cluster into long droughts.
	assert.LessOrEqual(t, maxGap, 11)
}
