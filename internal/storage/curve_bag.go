package storage

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"

	"narsgo/internal/entity"
	"narsgo/internal/logging"
)

// massEpsilon absorbs floating point drift in the tracked mass.
const massEpsilon = 1e-5

// Curve maps x in [0,1] to [0,1]. Selection takes the item at
// (1-curve(x)) along the ascending priority order, so curves that stay
// low for most x focus on the highest priorities.
type Curve func(x float64) float64

// Cubic focuses strongly on the top of the bag.
func Cubic(x float64) float64 { return x * x * x }

// Quadratic spreads selection more evenly than Cubic.
func Quadratic(x float64) float64 {
	y := 1 - x
	return 1 - y*y
}

// CurveByName resolves "cubic" or "quadratic".
func CurveByName(name string) (Curve, error) {
	switch name {
	case "", "cubic":
		return Cubic, nil
	case "quadratic":
		return Quadratic, nil
	}
	return nil, fmt.Errorf("unknown bag curve %q", name)
}

// CurveOption configures a CurveBag.
type CurveOption func(*curveOptions)

type curveOptions struct {
	rng      *rand.Rand
	scanStep float64
}

// WithRandom selects with random draws from rng.
func WithRandom(rng *rand.Rand) CurveOption {
	return func(o *curveOptions) { o.rng = rng }
}

// WithScan selects with a cursor advancing by step per TakeOut.
func WithScan(step float64) CurveOption {
	return func(o *curveOptions) {
		o.rng = nil
		o.scanStep = step
	}
}

// CurveBag keeps items sorted by priority and selects a position through
// a focus curve. Selection is continuous rather than quantized by level.
type CurveBag[E entity.Item] struct {
	mu sync.Mutex

	capacity int
	curve    Curve
	forget   ForgetFunc
	rng      *rand.Rand
	scanStep float64
	cursor   float64

	// sorted and priorities are parallel slices in ascending priority.
	sorted     []E
	priorities []float64
	items      map[string]E
	mass       float64
}

// NewCurveBag creates an empty bag. Without options it draws from a
// generator seeded with 1.
func NewCurveBag[E entity.Item](capacity int, curve Curve, forget ForgetFunc, opts ...CurveOption) *CurveBag[E] {
	if capacity <= 0 {
		panic(fmt.Sprintf("storage: invalid bag capacity %d", capacity))
	}
	if curve == nil {
		curve = Cubic
	}
	o := curveOptions{rng: rand.New(rand.NewPCG(1, 1))}
	for _, opt := range opts {
		opt(&o)
	}
	b := &CurveBag[E]{
		capacity: capacity,
		curve:    curve,
		forget:   forget,
		rng:      o.rng,
		scanStep: o.scanStep,
	}
	b.init()
	return b
}

func (b *CurveBag[E]) init() {
	b.sorted = make([]E, 0, b.capacity)
	b.priorities = make([]float64, 0, b.capacity)
	b.items = make(map[string]E, b.capacity)
	b.mass = 0
	b.cursor = 0
}

func (b *CurveBag[E]) PutIn(item E) (E, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var zero E
	key := item.Key()
	if old, ok := b.items[key]; ok {
		b.remove(b.indexOf(old))
		if any(old) != any(item) {
			item.Budget().Merge(old.Budget())
		}
		delete(b.items, key)
	}
	p := item.Budget().Priority()
	var overflow E
	evicted := false
	if len(b.sorted) >= b.capacity {
		if p < b.priorities[0] {
			logging.BagDebug("rejected %s at priority %.3f", key, p)
			return item, true
		}
		overflow = b.sorted[0]
		b.remove(0)
		delete(b.items, overflow.Key())
		evicted = true
		logging.BagDebug("evicted %s", overflow.Key())
	}
	b.insert(item, p)
	b.items[key] = item
	if evicted {
		return overflow, true
	}
	return zero, false
}

func (b *CurveBag[E]) PutBack(item E) (E, bool) {
	forget(item, b.forget)
	return b.PutIn(item)
}

func (b *CurveBag[E]) insert(item E, p float64) {
	i := sort.SearchFloat64s(b.priorities, p)
	b.sorted = append(b.sorted, item)
	copy(b.sorted[i+1:], b.sorted[i:])
	b.sorted[i] = item
	b.priorities = append(b.priorities, p)
	copy(b.priorities[i+1:], b.priorities[i:])
	b.priorities[i] = p
	b.mass += p
}

// indexOf finds a stored item. The item must be present.
func (b *CurveBag[E]) indexOf(item E) int {
	key := item.Key()
	for i, e := range b.sorted {
		if e.Key() == key {
			return i
		}
	}
	panic(fmt.Sprintf("storage: %s missing from sorted table", key))
}

func (b *CurveBag[E]) remove(i int) {
	p := b.priorities[i]
	b.sorted = append(b.sorted[:i], b.sorted[i+1:]...)
	b.priorities = append(b.priorities[:i], b.priorities[i+1:]...)
	b.mass -= p
	if b.mass < 0 {
		if b.mass < -massEpsilon {
			panic(fmt.Sprintf("storage: negative bag mass %f", b.mass))
		}
		b.mass = 0
	}
	if len(b.sorted) == 0 {
		b.mass = 0
	}
}

// position maps the next draw to an index in [0, size).
func (b *CurveBag[E]) position() int {
	var x float64
	if b.rng != nil {
		x = b.rng.Float64()
	} else {
		x = b.cursor
		b.cursor += b.scanStep
		if b.cursor >= 1 {
			b.cursor -= 1
		}
	}
	y := math.Min(math.Max(b.curve(x), 0), 1)
	return int(math.Round((1 - y) * float64(len(b.sorted)-1)))
}

func (b *CurveBag[E]) TakeOut() (E, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var zero E
	if len(b.sorted) == 0 {
		return zero, false
	}
	i := b.position()
	item := b.sorted[i]
	b.remove(i)
	delete(b.items, item.Key())
	return item, true
}

func (b *CurveBag[E]) PickOut(key string) (E, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	item, ok := b.items[key]
	if !ok {
		return item, false
	}
	b.remove(b.indexOf(item))
	delete(b.items, key)
	return item, true
}

func (b *CurveBag[E]) Get(key string) (E, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	item, ok := b.items[key]
	return item, ok
}

func (b *CurveBag[E]) Contains(key string) bool {
	_, ok := b.Get(key)
	return ok
}

func (b *CurveBag[E]) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

func (b *CurveBag[E]) Capacity() int { return b.capacity }

func (b *CurveBag[E]) Mass() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mass
}

func (b *CurveBag[E]) AveragePriority() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.sorted) == 0 {
		return 0.01
	}
	return b.mass / float64(len(b.sorted))
}

func (b *CurveBag[E]) Items() []E {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]E, len(b.sorted))
	for i, e := range b.sorted {
		out[len(out)-1-i] = e
	}
	return out
}

func (b *CurveBag[E]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.init()
}

func (b *CurveBag[E]) recomputeMass() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := 0.0
	for _, p := range b.priorities {
		m += p
	}
	return m
}
