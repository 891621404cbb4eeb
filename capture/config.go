// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"errors"
	"fmt"
	"time"
)

// Config bounds a capture session. Zero fields take the DefaultConfig value.
type Config struct {
	// MaxDuration caps the recorded target duration.
	MaxDuration time.Duration `yaml:"max_duration"`
	// Grace is added to the target to form the hard timeout.
	Grace time.Duration `yaml:"grace"`
	// Timeslice is the chunk delivery cadence requested from the device.
	Timeslice time.Duration `yaml:"timeslice"`
	// MetadataTimeout bounds the wait for the media duration.
	MetadataTimeout time.Duration `yaml:"metadata_timeout"`
	// FlushTimeout bounds the device flush on stop.
	FlushTimeout time.Duration `yaml:"flush_timeout"`
	// BurstDuration is the longest target played at normal speed.
	BurstDuration time.Duration `yaml:"burst_duration"`
	// MaxRate is the playback rate ceiling.
	MaxRate float64 `yaml:"max_rate"`
}

// DefaultConfig returns the reference bounds.
func DefaultConfig() Config {
	return Config{
		MaxDuration:     300 * time.Second,
		Grace:           5 * time.Second,
		Timeslice:       time.Second,
		MetadataTimeout: 10 * time.Second,
		FlushTimeout:    5 * time.Second,
		BurstDuration:   60 * time.Second,
		MaxRate:         2.0,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()

	if c.MaxDuration == 0 {
		c.MaxDuration = def.MaxDuration
	}
	if c.Grace == 0 {
		c.Grace = def.Grace
	}
	if c.Timeslice == 0 {
		c.Timeslice = def.Timeslice
	}
	if c.MetadataTimeout == 0 {
		c.MetadataTimeout = def.MetadataTimeout
	}
	if c.FlushTimeout == 0 {
		c.FlushTimeout = def.FlushTimeout
	}
	if c.BurstDuration == 0 {
		c.BurstDuration = def.BurstDuration
	}
	if c.MaxRate == 0 {
		c.MaxRate = def.MaxRate
	}

	return c
}

// Validate reports every negative bound and a MaxRate below 1.
// Zero values are valid and mean the default.
func (c Config) Validate() error {
	var errs []error

	for _, d := range []struct {
		name string
		v    time.Duration
	}{
		{"max_duration", c.MaxDuration},
		{"grace", c.Grace},
		{"timeslice", c.Timeslice},
		{"metadata_timeout", c.MetadataTimeout},
		{"flush_timeout", c.FlushTimeout},
		{"burst_duration", c.BurstDuration},
	} {
		if d.v < 0 {
			errs = append(errs, fmt.Errorf("%w: %s %v is negative", ErrInvalidConfig, d.name, d.v))
		}
	}

	if c.MaxRate != 0 && c.MaxRate < 1 {
		errs = append(errs, fmt.Errorf("%w: max_rate %.2f is below 1", ErrInvalidConfig, c.MaxRate))
	}

	return errors.Join(errs...)
}

// TargetDuration is the recorded duration for a source of length d:
// d capped at cfg.MaxDuration.
func TargetDuration(d time.Duration, cfg Config) time.Duration {
	return min(d, cfg.withDefaults().MaxDuration)
}

// PlaybackRate is the synthetic speed-up applied to a source with the given
// target duration. Targets up to cfg.BurstDuration play at 1x; longer ones
// speed up proportionally, never beyond cfg.MaxRate.
func PlaybackRate(target time.Duration, cfg Config) float64 {
	cfg = cfg.withDefaults()
	if target <= cfg.BurstDuration {
		return 1
	}

	return min(target.Seconds()/cfg.BurstDuration.Seconds(), cfg.MaxRate)
}

// HardTimeout is the wall-clock bound of the Recording state.
func HardTimeout(target time.Duration, cfg Config) time.Duration {
	return target + cfg.withDefaults().Grace
}
