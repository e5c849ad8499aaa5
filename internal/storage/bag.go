// Package storage implements the bags that schedule attention: a
// level-bucketed bag driven by a distributor sequence and a continuous
// sorted bag driven by a focus curve.
package storage

import (
	"narsgo/internal/entity"
	"narsgo/internal/inference"
)

// Bag is a fixed-capacity, priority-biased probabilistic container keyed
// by Item.Key. All methods are safe for concurrent use.
type Bag[E entity.Item] interface {
	// PutIn inserts item, merging budgets with any item under the same
	// key. It returns the item pushed out by the insertion, which may be
	// item itself when it ranks below everything already stored.
	PutIn(item E) (overflow E, ok bool)
	// PutBack applies forgetting to item and reinserts it.
	PutBack(item E) (overflow E, ok bool)
	// TakeOut removes one item, biased towards higher priority.
	TakeOut() (E, bool)
	// PickOut removes the item stored under key.
	PickOut(key string) (E, bool)
	Get(key string) (E, bool)
	Contains(key string) bool
	Size() int
	Capacity() int
	// Mass is the tracked priority mass of all stored items.
	Mass() float64
	AveragePriority() float64
	// Items returns the stored items, highest priority first.
	Items() []E
	Clear()
}

// ForgetFunc returns the number of cycles over which an item put back
// into a bag loses most of its priority.
type ForgetFunc func() float64

// Fixed returns a ForgetFunc with a constant value.
func Fixed(cycles float64) ForgetFunc {
	return func() float64 { return cycles }
}

func forget[E entity.Item](item E, cycles ForgetFunc) {
	if cycles == nil {
		return
	}
	inference.Forget(item.Budget(), cycles(), entity.BagThreshold)
}

var (
	_ Bag[*entity.Task] = (*LevelBag[*entity.Task])(nil)
	_ Bag[*entity.Task] = (*CurveBag[*entity.Task])(nil)
)
