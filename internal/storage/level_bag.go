package storage

import (
	"fmt"
	"math"
	"sync"

	"narsgo/internal/entity"
	"narsgo/internal/logging"
)

// DefaultLevels is the number of priority buckets of a LevelBag.
const DefaultLevels = 100

// LevelBag buckets items by priority into FIFO levels and takes items out
// following a Distributor so higher levels are visited more often.
type LevelBag[E entity.Item] struct {
	mu sync.Mutex

	capacity  int
	levels    int
	threshold int
	forget    ForgetFunc

	distributor *Distributor
	items       map[string]E
	levelOf     map[string]int
	table       [][]E
	mass        int

	levelIndex     int
	currentLevel   int
	currentCounter int
}

// NewLevelBag creates an empty bag. forget may be nil for bags whose items
// never decay on PutBack.
func NewLevelBag[E entity.Item](levels, capacity int, forget ForgetFunc) *LevelBag[E] {
	if levels <= 0 {
		levels = DefaultLevels
	}
	if capacity <= 0 {
		panic(fmt.Sprintf("storage: invalid bag capacity %d", capacity))
	}
	b := &LevelBag[E]{
		capacity:    capacity,
		levels:      levels,
		threshold:   int(entity.BagThreshold * float64(levels)),
		forget:      forget,
		distributor: NewDistributor(levels),
	}
	b.init()
	return b
}

func (b *LevelBag[E]) init() {
	b.items = make(map[string]E, b.capacity)
	b.levelOf = make(map[string]int, b.capacity)
	b.table = make([][]E, b.levels)
	b.mass = 0
	b.levelIndex = b.capacity % b.levels
	b.currentLevel = b.levels - 1
	b.currentCounter = 0
}

// Level maps a priority to its bucket: ceil(p*levels)-1, clamped.
func (b *LevelBag[E]) Level(priority float64) int {
	l := int(math.Ceil(priority*float64(b.levels))) - 1
	switch {
	case l < 0:
		return 0
	case l >= b.levels:
		return b.levels - 1
	}
	return l
}

func (b *LevelBag[E]) PutIn(item E) (E, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.putIn(item)
}

func (b *LevelBag[E]) PutBack(item E) (E, bool) {
	forget(item, b.forget)
	return b.PutIn(item)
}

func (b *LevelBag[E]) putIn(item E) (E, bool) {
	var zero E
	key := item.Key()
	if old, ok := b.items[key]; ok {
		b.outOfBase(old)
		if any(old) != any(item) {
			item.Budget().Merge(old.Budget())
		}
	}
	b.items[key] = item

	inLevel := b.Level(item.Budget().Priority())
	if len(b.items) > b.capacity {
		outLevel := 0
		for len(b.table[outLevel]) == 0 {
			outLevel++
		}
		if outLevel > inLevel {
			delete(b.items, key)
			logging.BagDebug("rejected %s at level %d", key, inLevel)
			return item, true
		}
		overflow := b.takeOutFirst(outLevel)
		delete(b.items, overflow.Key())
		b.intoBase(item, inLevel)
		logging.BagDebug("evicted %s from level %d", overflow.Key(), outLevel)
		return overflow, true
	}
	b.intoBase(item, inLevel)
	return zero, false
}

func (b *LevelBag[E]) intoBase(item E, level int) {
	b.table[level] = append(b.table[level], item)
	b.levelOf[item.Key()] = level
	b.mass += level + 1
}

// outOfBase removes item from its level. The item must be present.
func (b *LevelBag[E]) outOfBase(item E) {
	key := item.Key()
	level, ok := b.levelOf[key]
	if !ok {
		panic(fmt.Sprintf("storage: %s missing from level table", key))
	}
	list := b.table[level]
	for i, e := range list {
		if e.Key() == key {
			b.table[level] = append(list[:i:i], list[i+1:]...)
			delete(b.levelOf, key)
			b.subtractMass(level)
			return
		}
	}
	panic(fmt.Sprintf("storage: %s missing from level %d", key, level))
}

func (b *LevelBag[E]) takeOutFirst(level int) E {
	item := b.table[level][0]
	b.table[level] = b.table[level][1:]
	delete(b.levelOf, item.Key())
	b.subtractMass(level)
	return item
}

func (b *LevelBag[E]) subtractMass(level int) {
	b.mass -= level + 1
	if b.mass < 0 {
		panic(fmt.Sprintf("storage: negative bag mass %d", b.mass))
	}
}

func (b *LevelBag[E]) TakeOut() (E, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var zero E
	if len(b.items) == 0 {
		return zero, false
	}
	if len(b.table[b.currentLevel]) == 0 || b.currentCounter == 0 {
		b.currentLevel = b.distributor.Pick(b.levelIndex)
		b.levelIndex = b.distributor.Next(b.levelIndex)
		for len(b.table[b.currentLevel]) == 0 {
			b.currentLevel = b.distributor.Pick(b.levelIndex)
			b.levelIndex = b.distributor.Next(b.levelIndex)
		}
		if b.currentLevel < b.threshold {
			b.currentCounter = 1
		} else {
			b.currentCounter = len(b.table[b.currentLevel])
		}
	}
	item := b.takeOutFirst(b.currentLevel)
	b.currentCounter--
	delete(b.items, item.Key())
	return item, true
}

func (b *LevelBag[E]) PickOut(key string) (E, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	item, ok := b.items[key]
	if !ok {
		return item, false
	}
	b.outOfBase(item)
	delete(b.items, key)
	return item, true
}

func (b *LevelBag[E]) Get(key string) (E, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	item, ok := b.items[key]
	return item, ok
}

func (b *LevelBag[E]) Contains(key string) bool {
	_, ok := b.Get(key)
	return ok
}

func (b *LevelBag[E]) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

func (b *LevelBag[E]) Capacity() int { return b.capacity }

// Levels is the number of buckets.
func (b *LevelBag[E]) Levels() int { return b.levels }

func (b *LevelBag[E]) Mass() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return float64(b.mass)
}

// AveragePriority is mass/(size*levels), or 0.01 for an empty bag.
func (b *LevelBag[E]) AveragePriority() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) == 0 {
		return 0.01
	}
	return math.Min(float64(b.mass)/float64(len(b.items)*b.levels), 1)
}

func (b *LevelBag[E]) Items() []E {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]E, 0, len(b.items))
	for level := b.levels - 1; level >= 0; level-- {
		out = append(out, b.table[level]...)
	}
	return out
}

func (b *LevelBag[E]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.init()
}

// recomputeMass sums the level weights from scratch.
func (b *LevelBag[E]) recomputeMass() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := 0
	for level, list := range b.table {
		m += (level + 1) * len(list)
	}
	return m
}

// levelCount is the number of items physically stored in the levels.
func (b *LevelBag[E]) levelCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, list := range b.table {
		n += len(list)
	}
	return n
}
