package entity

import (
	"fmt"
	"sync"
)

// Budget is the (priority, durability, quality) triple governing selection
// and decay. Values stay within [0,1]. Budgets are shared between the bag
// that holds an item and the goroutine firing it, so access is locked.
type Budget struct {
	mu         sync.RWMutex
	priority   float64
	durability float64
	quality    float64
}

// NewBudget panics on values outside [0,1].
func NewBudget(p, d, q float64) *Budget {
	checkUnit("priority", p)
	checkUnit("durability", d)
	checkUnit("quality", q)
	return &Budget{priority: p, durability: d, quality: q}
}

// NewClampedBudget clamps values into [0,1].
func NewClampedBudget(p, d, q float64) *Budget {
	return &Budget{priority: clamp01(p), durability: clamp01(d), quality: clamp01(q)}
}

func checkUnit(name string, v float64) {
	if v < 0 || v > 1 || v != v {
		panic(fmt.Sprintf("budget %s out of range: %v", name, v))
	}
}

func (b *Budget) Priority() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.priority
}

func (b *Budget) Durability() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.durability
}

func (b *Budget) Quality() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.quality
}

// Values returns all three components under one lock.
func (b *Budget) Values() (p, d, q float64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.priority, b.durability, b.quality
}

func (b *Budget) SetPriority(v float64) {
	checkUnit("priority", v)
	b.mu.Lock()
	b.priority = v
	b.mu.Unlock()
}

func (b *Budget) SetDurability(v float64) {
	checkUnit("durability", v)
	b.mu.Lock()
	b.durability = v
	b.mu.Unlock()
}

func (b *Budget) SetQuality(v float64) {
	checkUnit("quality", v)
	b.mu.Lock()
	b.quality = v
	b.mu.Unlock()
}

// Set replaces all three components.
func (b *Budget) Set(p, d, q float64) {
	checkUnit("priority", p)
	checkUnit("durability", d)
	checkUnit("quality", q)
	b.mu.Lock()
	b.priority, b.durability, b.quality = p, d, q
	b.mu.Unlock()
}

// IncPriority raises priority by Or(p, v).
func (b *Budget) IncPriority(v float64) {
	b.mu.Lock()
	b.priority = clamp01(Or(b.priority, v))
	b.mu.Unlock()
}

// DecPriority lowers priority by And(p, v).
func (b *Budget) DecPriority(v float64) {
	b.mu.Lock()
	b.priority = clamp01(And(b.priority, v))
	b.mu.Unlock()
}

func (b *Budget) IncDurability(v float64) {
	b.mu.Lock()
	b.durability = clamp01(Or(b.durability, v))
	b.mu.Unlock()
}

func (b *Budget) DecDurability(v float64) {
	b.mu.Lock()
	b.durability = clamp01(And(b.durability, v))
	b.mu.Unlock()
}

// Merge keeps the component-wise maximum, so a merged budget never shrinks.
func (b *Budget) Merge(o *Budget) {
	if o == nil || o == b {
		return
	}
	p, d, q := o.Values()
	b.mu.Lock()
	b.priority = max(b.priority, p)
	b.durability = max(b.durability, d)
	b.quality = max(b.quality, q)
	b.mu.Unlock()
}

// Summary is the geometric mean of the three components.
func (b *Budget) Summary() float64 {
	p, d, q := b.Values()
	return AveGeo(p, d, q)
}

// AboveThreshold reports Summary() >= BudgetThreshold.
func (b *Budget) AboveThreshold() bool {
	return b.Summary() >= BudgetThreshold
}

// Clone returns an independent copy.
func (b *Budget) Clone() *Budget {
	p, d, q := b.Values()
	return &Budget{priority: p, durability: d, quality: q}
}

func (b *Budget) String() string {
	p, d, q := b.Values()
	return fmt.Sprintf("$%.2f;%.2f;%.2f$", p, d, q)
}
