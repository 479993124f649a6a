package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/hearth/internal/scoring"
)

const (
	EnvScoringWeight     = "HEARTH_SCORING_WEIGHT"
	EnvScoringRecommend  = "HEARTH_SCORING_RECOMMEND"
	EnvScoringAcceptable = "HEARTH_SCORING_ACCEPTABLE"
)

// ScoringConfig holds the weighting and tier thresholds.
// Pointers distinguish an explicit zero from an unset value.
type ScoringConfig struct {
	Weight     *float64 `toml:"weight"`
	Recommend  *float64 `toml:"recommend"`
	Acceptable *float64 `toml:"acceptable"`
}

// Engine builds a scoring engine from the finalized values.
func (c *ScoringConfig) Engine() (*scoring.Engine, error) {
	return scoring.New(*c.Weight, *c.Recommend, *c.Acceptable)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ScoringConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.validate()
}

// Merge overwrites fields set in overlay.
func (c *ScoringConfig) Merge(overlay *ScoringConfig) {
	if overlay.Weight != nil {
		c.Weight = overlay.Weight
	}
	if overlay.Recommend != nil {
		c.Recommend = overlay.Recommend
	}
	if overlay.Acceptable != nil {
		c.Acceptable = overlay.Acceptable
	}
}

func (c *ScoringConfig) loadDefaults() {
	if c.Weight == nil {
		c.Weight = ptr(0.7)
	}
	if c.Recommend == nil {
		c.Recommend = ptr(4.2)
	}
	if c.Acceptable == nil {
		c.Acceptable = ptr(3.0)
	}
}

func (c *ScoringConfig) loadEnv() error {
	for _, f := range []struct {
		env string
		dst **float64
	}{
		{EnvScoringWeight, &c.Weight},
		{EnvScoringRecommend, &c.Recommend},
		{EnvScoringAcceptable, &c.Acceptable},
	} {
		v := os.Getenv(f.env)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", f.env, err)
		}
		*f.dst = ptr(n)
	}
	return nil
}

func (c *ScoringConfig) validate() error {
	_, err := c.Engine()
	return err
}

func ptr[T any](v T) *T {
	return &v
}
