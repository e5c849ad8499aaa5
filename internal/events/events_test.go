package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSubscribeReceivesOnlyItsType(t *testing.T) {
	bus := NewBus()
	var got []Type
	bus.Subscribe(ConceptNew, func(e Event) { got = append(got, e.Type) })

	bus.Emit(Event{Type: ConceptNew})
	bus.Emit(Event{Type: ConceptForget})
	bus.Emit(Event{Type: ConceptNew, Cycle: 2})

	assert.Equal(t, []Type{ConceptNew, ConceptNew}, got)
	assert.True(t, bus.Active(ConceptNew))
	assert.False(t, bus.Active(Solution))
}

func TestSubscribeAllAndOrder(t *testing.T) {
	bus := NewBus()
	var order []string
	bus.SubscribeAll(func(Event) { order = append(order, "all") })
	bus.Subscribe(Answer, func(Event) { order = append(order, "answer") })

	bus.Emit(Event{Type: Answer})
	bus.Emit(Event{Type: Reset})

	assert.Equal(t, []string{"all", "answer", "all"}, order)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	bus := NewBus()
	calls := 0
	sub := bus.Subscribe(Output, func(Event) { calls++ })
	other := bus.Subscribe(Output, func(Event) {})

	sub.Unsubscribe()
	sub.Unsubscribe()
	bus.Emit(Event{Type: Output})

	assert.Zero(t, calls)
	assert.Equal(t, 1, bus.Len())
	other.Unsubscribe()
	assert.Zero(t, bus.Len())

	var nilSub *Subscription
	nilSub.Unsubscribe()
}

func TestNilBusDropsEvents(t *testing.T) {
	var bus *Bus
	bus.Emit(Event{Type: CycleEnd})
	assert.False(t, bus.Active(CycleEnd))
}

func TestConcurrentEmitAndSubscribe(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	count := 0
	bus.Subscribe(TaskDerived, func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bus.Emit(Event{Type: TaskDerived})
				s := bus.Subscribe(Reset, func(Event) {})
				s.Unsubscribe()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 800, count)
}

func TestAllTypesDistinct(t *testing.T) {
	seen := map[Type]bool{}
	for _, typ := range AllTypes {
		assert.False(t, seen[typ], typ)
		seen[typ] = true
	}
	assert.Len(t, AllTypes, 21)
}
