// SPDX-License-Identifier: EPL-2.0

package audxtract

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/ik5/audxtract/capture"
)

// Config is the complete library configuration.
type Config struct {
	// LogLevel is the minimum level of NewLogger; debug, info, warn or error.
	LogLevel slog.Level `yaml:"log_level"`
	// Offline configures the decode, render and encode path.
	Offline OfflineConfig `yaml:"offline"`
	// Capture bounds live capture sessions.
	Capture capture.Config `yaml:"capture"`
}

// OfflineConfig configures an Extractor.
type OfflineConfig struct {
	// SampleRate resamples the output to this rate in Hz; zero keeps the
	// source rate.
	SampleRate int `yaml:"sample_rate"`
	// Channels remixes the output to this channel count; zero keeps the
	// source layout.
	Channels int `yaml:"channels"`
	// MaxFrames caps the rendered output; zero means unlimited.
	MaxFrames int `yaml:"max_frames"`
	// Concurrency is the number of inputs ExtractAll converts at once.
	Concurrency int `yaml:"concurrency"`
}

// DefaultMaxFrames is ten minutes at 48 kHz.
const DefaultMaxFrames = 48000 * 600

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		LogLevel: slog.LevelInfo,
		Offline: OfflineConfig{
			MaxFrames:   DefaultMaxFrames,
			Concurrency: runtime.GOMAXPROCS(0),
		},
		Capture: capture.DefaultConfig(),
	}
}

// LoadConfigFile reads and validates the YAML configuration at path.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadConfig(f)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
	}

	return cfg, nil
}

// LoadConfig decodes YAML from r over DefaultConfig and validates the
// result. Unknown keys are rejected. Durations are written as Go duration
// strings such as "5s".
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate returns a joined error listing every invalid value.
func (c Config) Validate() error {
	var errs []error

	if c.Offline.SampleRate < 0 {
		errs = append(errs, fmt.Errorf("%w: offline.sample_rate %d is negative", ErrInvalidConfig, c.Offline.SampleRate))
	}
	if c.Offline.Channels < 0 {
		errs = append(errs, fmt.Errorf("%w: offline.channels %d is negative", ErrInvalidConfig, c.Offline.Channels))
	}
	if c.Offline.MaxFrames < 0 {
		errs = append(errs, fmt.Errorf("%w: offline.max_frames %d is negative", ErrInvalidConfig, c.Offline.MaxFrames))
	}
	if c.Offline.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("%w: offline.concurrency %d is negative", ErrInvalidConfig, c.Offline.Concurrency))
	}

	if err := c.Capture.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: capture: %w", ErrInvalidConfig, err))
	}

	return errors.Join(errs...)
}

// NewLogger returns a text logger writing to w at c.LogLevel.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}
