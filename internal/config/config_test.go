package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"NARS_SEED", "NARS_THREADS", "NARS_LOG_LEVEL", "NARS_DB", "NARS_DURATION"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "narsgo", cfg.Name)
	assert.Equal(t, 100, cfg.Reasoner.NoiseLevel)
	assert.Equal(t, 5, cfg.Reasoner.Duration)
	assert.Equal(t, 7, cfg.Reasoner.ConceptBeliefsMax)
	assert.Equal(t, 0.30, cfg.Reasoner.DecisionThreshold)
	assert.Equal(t, "discrete", cfg.Reasoner.BagKind)
	assert.Equal(t, 1000, cfg.Bags.ConceptCapacity)
	require.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "nars.yaml")

	cfg := DefaultConfig()
	cfg.Reasoner.Threads = 4
	cfg.Reasoner.BagKind = "curve"
	cfg.Store.Driver = "sqlite3"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Reasoner.Threads)
	assert.Equal(t, "curve", loaded.Reasoner.BagKind)
	assert.Equal(t, "sqlite3", loaded.Store.Driver)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nars.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reasoner:\n  noise_level: 10\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Reasoner.NoiseLevel)
	assert.Equal(t, 5, cfg.Reasoner.Duration)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nars.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reasoner: [\n"), 0644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("NARS_SEED", "99")
	t.Setenv("NARS_THREADS", "3")
	t.Setenv("NARS_DURATION", "8")
	t.Setenv("NARS_LOG_LEVEL", "debug")
	t.Setenv("NARS_DB", "/tmp/trace.db")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, uint64(99), cfg.Reasoner.Seed)
	assert.Equal(t, 3, cfg.Reasoner.Threads)
	assert.Equal(t, 8, cfg.Reasoner.Duration)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.DebugMode)
	assert.Equal(t, "/tmp/trace.db", cfg.Store.DatabasePath)
	assert.True(t, cfg.Store.Enabled)

	t.Run("malformed numbers are ignored", func(t *testing.T) {
		t.Setenv("NARS_THREADS", "many")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, 1, cfg.Reasoner.Threads)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"noise out of range", func(c *Config) { c.Reasoner.NoiseLevel = 101 }, "noise_level"},
		{"zero duration", func(c *Config) { c.Reasoner.Duration = 0 }, "duration"},
		{"zero threads", func(c *Config) { c.Reasoner.Threads = 0 }, "threads"},
		{"bad bag kind", func(c *Config) { c.Reasoner.BagKind = "heap" }, "bag_kind"},
		{"bad curve", func(c *Config) { c.Reasoner.Curve = "linear" }, "curve"},
		{"zero capacity", func(c *Config) { c.Bags.TaskLinkCapacity = 0 }, "task_link_capacity"},
		{"bad driver", func(c *Config) { c.Store.Driver = "postgres" }, "invalid store driver"},
		{"bad operator timeout", func(c *Config) { c.Operators.Timeout = "soon" }, "operator timeout"},
		{"negative operator timeout", func(c *Config) { c.Operators.Timeout = "-1s" }, "must be positive"},
		{"store without path", func(c *Config) {
			c.Store.Enabled = true
			c.Store.DatabasePath = ""
		}, "database_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestTimeoutGetters(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10*time.Second, cfg.Kernel.GetQueryTimeout())
	cfg.Kernel.QueryTimeout = "bogus"
	assert.Equal(t, 10*time.Second, cfg.Kernel.GetQueryTimeout())
	cfg.Kernel.QueryTimeout = "250ms"
	assert.Equal(t, 250*time.Millisecond, cfg.Kernel.GetQueryTimeout())

	d, err := cfg.Operators.GetTimeout()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)
	d, err = OperatorsConfig{}.GetTimeout()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)
	_, err = OperatorsConfig{Timeout: "bogus"}.GetTimeout()
	assert.Error(t, err)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nars.yaml")
	require.NoError(t, DefaultConfig().Save(path))

	var mu sync.Mutex
	var got []*Config
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := Watch(ctx, path, func(c *Config) {
		mu.Lock()
		got = append(got, c)
		mu.Unlock()
	})
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Reasoner.NoiseLevel = 42
	require.NoError(t, cfg.Save(path))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0 && got[len(got)-1].Reasoner.NoiseLevel == 42
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, w.Close())
	assert.GreaterOrEqual(t, w.Reloads(), 1)
}

func TestWatchSkipsInvalidConfig(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nars.yaml")
	require.NoError(t, DefaultConfig().Save(path))

	ctx, cancel := context.WithCancel(context.Background())
	w, err := Watch(ctx, path, func(*Config) { t.Error("invalid config delivered") })
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("reasoner:\n  threads: 0\n"), 0644))
	time.Sleep(400 * time.Millisecond)

	cancel()
	<-w.doneCh
	assert.Zero(t, w.Reloads())
}
