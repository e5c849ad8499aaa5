package config

import "time"

// KernelConfig configures the Mangle kernel over beliefs.
type KernelConfig struct {
	// RulesPath points to a .mg file appended to the belief schema
	RulesPath    string `yaml:"rules_path"`
	FactLimit    int    `yaml:"fact_limit"`
	QueryTimeout string `yaml:"query_timeout"`
}

// GetQueryTimeout returns the evaluation timeout, 10s when unset or invalid.
func (c KernelConfig) GetQueryTimeout() time.Duration {
	d, err := time.ParseDuration(c.QueryTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}
