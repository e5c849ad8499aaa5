package config

import "fmt"

// BagsConfig sizes the bags of a memory.
type BagsConfig struct {
	// Priority levels of discrete bags
	ConceptLevels  int `yaml:"concept_levels" json:"concept_levels"`
	TaskLinkLevels int `yaml:"task_link_levels" json:"task_link_levels"`
	TermLinkLevels int `yaml:"term_link_levels" json:"term_link_levels"`

	ConceptCapacity   int `yaml:"concept_capacity" json:"concept_capacity"`
	TaskLinkCapacity  int `yaml:"task_link_capacity" json:"task_link_capacity"`
	TermLinkCapacity  int `yaml:"term_link_capacity" json:"term_link_capacity"`
	NovelTaskCapacity int `yaml:"novel_task_capacity" json:"novel_task_capacity"`
}

// DefaultBagsConfig returns the standard bag sizes.
func DefaultBagsConfig() BagsConfig {
	return BagsConfig{
		ConceptLevels:     100,
		TaskLinkLevels:    100,
		TermLinkLevels:    100,
		ConceptCapacity:   1000,
		TaskLinkCapacity:  20,
		TermLinkCapacity:  100,
		NovelTaskCapacity: 10,
	}
}

// Validate checks that every bag can hold at least one item.
func (b BagsConfig) Validate() error {
	for name, v := range map[string]int{
		"concept_levels":      b.ConceptLevels,
		"task_link_levels":    b.TaskLinkLevels,
		"term_link_levels":    b.TermLinkLevels,
		"concept_capacity":    b.ConceptCapacity,
		"task_link_capacity":  b.TaskLinkCapacity,
		"term_link_capacity":  b.TermLinkCapacity,
		"novel_task_capacity": b.NovelTaskCapacity,
	} {
		if v < 1 {
			return fmt.Errorf("%s must be >= 1", name)
		}
	}
	return nil
}
