package storage

// Distributor is a precomputed level-visitation order for a LevelBag.
// Level r-1 appears r times in a sequence of length n(n+1)/2, spread as
// evenly as possible.
type Distributor struct {
	order []int
}

// NewDistributor builds the order for levels in [0, levels).
func NewDistributor(levels int) *Distributor {
	capacity := levels * (levels + 1) / 2
	order := make([]int, capacity)
	for i := range order {
		order[i] = -1
	}
	index := 0
	for rank := levels; rank > 0; rank-- {
		for n := 0; n < rank; n++ {
			index = (capacity/rank + index) % capacity
			for order[index] >= 0 {
				index = (index + 1) % capacity
			}
			order[index] = rank - 1
		}
	}
	return &Distributor{order: order}
}

// Pick returns the level at position index.
func (d *Distributor) Pick(index int) int { return d.order[index] }

// Next returns the position following index.
func (d *Distributor) Next(index int) int { return (index + 1) % len(d.order) }

// Len is the length of the sequence.
func (d *Distributor) Len() int { return len(d.order) }
