package config

import (
	"fmt"
	"os"
	"strconv"
)

const EnvClockUTCOffset = "HEARTH_CLOCK_UTC_OFFSET"

// ClockConfig sets the fixed UTC offset, in hours, used for timestamps and dates.
type ClockConfig struct {
	UTCOffset *int `toml:"utc_offset"`
}

// Offset returns the finalized offset in hours.
func (c *ClockConfig) Offset() int {
	if c.UTCOffset == nil {
		return 8
	}
	return *c.UTCOffset
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ClockConfig) Finalize() error {
	if c.UTCOffset == nil {
		c.UTCOffset = ptr(8)
	}
	if v := os.Getenv(EnvClockUTCOffset); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvClockUTCOffset, err)
		}
		c.UTCOffset = ptr(n)
	}
	if *c.UTCOffset < -12 || *c.UTCOffset > 14 {
		return fmt.Errorf("utc_offset out of range: %d", *c.UTCOffset)
	}
	return nil
}

// Merge overwrites fields set in overlay.
func (c *ClockConfig) Merge(overlay *ClockConfig) {
	if overlay.UTCOffset != nil {
		c.UTCOffset = overlay.UTCOffset
	}
}
