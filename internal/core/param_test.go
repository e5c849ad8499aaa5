package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"narsgo/internal/config"
)

func TestParamFromConfig(t *testing.T) {
	rc := config.DefaultReasonerConfig()
	p := NewParam(rc)

	assert.Equal(t, int64(100), p.NoiseLevel.Load())
	assert.Equal(t, int64(5), p.Duration.Load())
	assert.InDelta(t, 0.30, p.DecisionThreshold.Load(), 1e-9)
	assert.Equal(t, int64(7), p.ConceptBeliefsMax.Load())
	assert.InDelta(t, 10.0, p.ForgetCycles(&p.ConceptForgetDurations)(), 1e-9)
}

func TestForgetCyclesFollowsUpdates(t *testing.T) {
	p := NewParam(config.DefaultReasonerConfig())
	forget := p.ForgetCycles(&p.TaskForgetDurations)
	assert.InDelta(t, 20.0, forget(), 1e-9)

	p.Duration.Store(10)
	assert.InDelta(t, 40.0, forget(), 1e-9)

	p.TaskForgetDurations.Store(1)
	assert.InDelta(t, 10.0, forget(), 1e-9)
}

func TestApplyConfigUpdatesLiveMemory(t *testing.T) {
	m := newTestMemory(t, nil)
	rc := config.DefaultReasonerConfig()
	rc.NoiseLevel = 10
	rc.TermLinkMaxReasoned = 1
	require.NoError(t, m.ApplyConfig(rc))
	assert.Equal(t, int64(10), m.Param().NoiseLevel.Load())
	assert.Equal(t, int64(1), m.Param().TermLinkMaxReasoned.Load())

	rc.NoiseLevel = 101
	assert.Error(t, m.ApplyConfig(rc))
	assert.Equal(t, int64(10), m.Param().NoiseLevel.Load(), "invalid configs are not applied")
}

func TestAtomicFloatConcurrentAccess(t *testing.T) {
	f := NewAtomicFloat(0.5)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Store(float64(i) / 8)
			_ = f.Load()
		}()
	}
	wg.Wait()
	v := f.Load()
	assert.GreaterOrEqual(t, v, 0.0)
	assert.Less(t, v, 1.0)
}
