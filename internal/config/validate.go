package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for values no component can work with.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.DataDir) == "" {
		problems = append(problems, "paths.data_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		problems = append(problems, "paths.output_dir must not be empty")
	}
	if c.Incubator.HotCount < 0 {
		problems = append(problems, "incubator.hot_count must not be negative")
	}
	if c.Incubator.RegularCount < 0 {
		problems = append(problems, "incubator.regular_count must not be negative")
	}
	if c.Incubator.SimilarityThreshold <= 0 || c.Incubator.SimilarityThreshold > 1 {
		problems = append(problems, "incubator.similarity_threshold must be in (0, 1]")
	}
	if c.Pipeline.InlineCount < 0 {
		problems = append(problems, "pipeline.inline_count must not be negative")
	}
	if err := validateResolution(c.Pipeline.CoverResolution); err != nil {
		problems = append(problems, fmt.Sprintf("pipeline.cover_resolution: %v", err))
	}
	if err := validateResolution(c.Pipeline.InlineResolution); err != nil {
		problems = append(problems, fmt.Sprintf("pipeline.inline_resolution: %v", err))
	}
	if c.Dispatcher.PollInterval <= 0 {
		problems = append(problems, "dispatcher.poll_interval must be positive")
	}
	if c.Dispatcher.NotifyCooldown < 0 {
		problems = append(problems, "dispatcher.notify_cooldown must not be negative")
	}
	if c.TextGen.Temperature < 0 || c.TextGen.Temperature > 2 {
		problems = append(problems, "textgen.temperature must be in [0, 2]")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func validateResolution(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("must not be empty")
	}
	sep := strings.IndexAny(value, ":x")
	if sep <= 0 || sep == len(value)-1 {
		return fmt.Errorf("%q is not of the form WIDTH:HEIGHT", value)
	}
	return nil
}
