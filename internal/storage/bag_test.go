package storage

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"narsgo/internal/entity"
)

type testItem struct {
	key    string
	budget *entity.Budget
}

func (i *testItem) Key() string            { return i.key }
func (i *testItem) Budget() *entity.Budget { return i.budget }

func item(key string, p float64) *testItem {
	return &testItem{key: key, budget: entity.NewBudget(p, 0.5, 0.5)}
}

func bags(capacity int) map[string]Bag[*testItem] {
	return map[string]Bag[*testItem]{
		"level": NewLevelBag[*testItem](10, capacity, Fixed(10)),
		"curve": NewCurveBag[*testItem](capacity, Cubic, Fixed(10), WithRandom(rand.New(rand.NewPCG(7, 7)))),
	}
}

func TestEvictsLowestPriorityWhenFull(t *testing.T) {
	for name, bag := range bags(2) {
		t.Run(name, func(t *testing.T) {
			_, overflowed := bag.PutIn(item("low", 0.1))
			assert.False(t, overflowed)
			_, overflowed = bag.PutIn(item("mid", 0.5))
			assert.False(t, overflowed)

			out, overflowed := bag.PutIn(item("high", 0.9))
			require.True(t, overflowed)
			assert.Equal(t, "low", out.Key())
			assert.Equal(t, 2, bag.Size())
			assert.True(t, bag.Contains("mid"))
			assert.True(t, bag.Contains("high"))
			assert.False(t, bag.Contains("low"))
		})
	}
}

func TestRejectsNewItemBelowLowestOccupied(t *testing.T) {
	for name, bag := range bags(2) {
		t.Run(name, func(t *testing.T) {
			bag.PutIn(item("mid", 0.5))
			bag.PutIn(item("high", 0.9))

			out, overflowed := bag.PutIn(item("low", 0.1))
			require.True(t, overflowed)
			assert.Equal(t, "low", out.Key())
			assert.False(t, bag.Contains("low"))
			assert.Equal(t, 2, bag.Size())
		})
	}
}

func TestMergeKeepsSingleEntryAndNeverShrinks(t *testing.T) {
	for name, bag := range bags(5) {
		t.Run(name, func(t *testing.T) {
			first := &testItem{key: "k", budget: entity.NewBudget(0.7, 0.2, 0.4)}
			second := &testItem{key: "k", budget: entity.NewBudget(0.3, 0.6, 0.1)}
			bag.PutIn(first)
			bag.PutIn(second)

			require.Equal(t, 1, bag.Size())
			got, ok := bag.Get("k")
			require.True(t, ok)
			assert.GreaterOrEqual(t, got.Budget().Priority(), 0.7)
			assert.GreaterOrEqual(t, got.Budget().Durability(), 0.6)
			assert.GreaterOrEqual(t, got.Budget().Quality(), 0.4)
		})
	}
}

func TestRandomOperationsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 42))
	level := NewLevelBag[*testItem](10, 8, Fixed(5))
	curve := NewCurveBag[*testItem](8, Quadratic, Fixed(5), WithRandom(rand.New(rand.NewPCG(3, 3))))

	for step := 0; step < 2000; step++ {
		key := fmt.Sprintf("k%d", rng.IntN(20))
		switch rng.IntN(4) {
		case 0, 1:
			level.PutIn(item(key, rng.Float64()))
			curve.PutIn(item(key, rng.Float64()))
		case 2:
			if it, ok := level.TakeOut(); ok {
				level.PutBack(it)
			}
			if it, ok := curve.TakeOut(); ok {
				curve.PutBack(it)
			}
		case 3:
			level.PickOut(key)
			curve.TakeOut()
		}

		require.LessOrEqual(t, level.Size(), level.Capacity())
		require.Equal(t, level.Size(), level.levelCount())
		require.Equal(t, level.recomputeMass(), int(level.Mass()))
		require.GreaterOrEqual(t, level.Mass(), 0.0)

		require.LessOrEqual(t, curve.Size(), curve.Capacity())
		require.Len(t, curve.Items(), curve.Size())
		require.InDelta(t, curve.recomputeMass(), curve.Mass(), 1e-6)
		require.GreaterOrEqual(t, curve.Mass(), 0.0)
	}
}

func TestTakeOutEmpty(t *testing.T) {
	for name, bag := range bags(3) {
		t.Run(name, func(t *testing.T) {
			_, ok := bag.TakeOut()
			assert.False(t, ok)
			assert.Equal(t, 0.01, bag.AveragePriority())
		})
	}
}

func TestPickOutAndClear(t *testing.T) {
	for name, bag := range bags(4) {
		t.Run(name, func(t *testing.T) {
			bag.PutIn(item("a", 0.3))
			bag.PutIn(item("b", 0.6))

			got, ok := bag.PickOut("a")
			require.True(t, ok)
			assert.Equal(t, "a", got.Key())
			_, ok = bag.PickOut("a")
			assert.False(t, ok)

			bag.Clear()
			assert.Zero(t, bag.Size())
			assert.Zero(t, bag.Mass())
		})
	}
}

func TestItemsOrderedByPriority(t *testing.T) {
	for name, bag := range bags(4) {
		t.Run(name, func(t *testing.T) {
			bag.PutIn(item("a", 0.15))
			bag.PutIn(item("c", 0.95))
			bag.PutIn(item("b", 0.55))

			var keys []string
			for _, it := range bag.Items() {
				keys = append(keys, it.Key())
			}
			assert.Equal(t, []string{"c", "b", "a"}, keys)
		})
	}
}

func TestPutBackForgets(t *testing.T) {
	bag := NewLevelBag[*testItem](10, 4, Fixed(10))
	it := &testItem{key: "a", budget: entity.NewBudget(0.9, 0.5, 0.1)}
	bag.PutIn(it)

	got, ok := bag.TakeOut()
	require.True(t, ok)
	before := got.Budget().Priority()
	bag.PutBack(got)
	assert.Less(t, got.Budget().Priority(), before)
	assert.Greater(t, got.Budget().Priority(), got.Budget().Quality()*entity.BagThreshold)
}

// countSelections takes out and puts back n times without forgetting.
func countSelections(bag Bag[*testItem], n int) map[string]int {
	counts := map[string]int{}
	for i := 0; i < n; i++ {
		it, ok := bag.TakeOut()
		if !ok {
			break
		}
		counts[it.Key()]++
		bag.PutIn(it)
	}
	return counts
}

func TestHigherPrioritySelectedMoreOften(t *testing.T) {
	level := NewLevelBag[*testItem](100, 10, nil)
	curve := NewCurveBag[*testItem](10, Cubic, nil, WithRandom(rand.New(rand.NewPCG(11, 11))))
	for _, bag := range []Bag[*testItem]{level, curve} {
		bag.PutIn(item("low", 0.1))
		bag.PutIn(item("mid", 0.5))
		bag.PutIn(item("high", 0.95))
	}

	for name, bag := range map[string]Bag[*testItem]{"level": level, "curve": curve} {
		t.Run(name, func(t *testing.T) {
			counts := countSelections(bag, 3000)
			assert.Greater(t, counts["high"], counts["mid"])
			assert.Greater(t, counts["mid"], counts["low"])
		})
	}
}

func TestScanningCursorVisitsEveryPosition(t *testing.T) {
	bag := NewCurveBag[*testItem](4, Quadratic, nil, WithScan(0.05))
	for i, p := range []float64{0.2, 0.4, 0.6, 0.8} {
		bag.PutIn(item(fmt.Sprintf("k%d", i), p))
	}
	counts := countSelections(bag, 40)
	assert.Len(t, counts, 4)
}
