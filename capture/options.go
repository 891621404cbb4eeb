// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ik5/audxtract/internal/observe"
)

// Option configures a Session.
type Option func(*Session)

// WithConfig sets the session bounds. Zero fields keep their defaults. An
// invalid cfg makes Run fail with ErrInvalidConfig.
func WithConfig(cfg Config) Option {
	return func(s *Session) {
		s.cfg = cfg.withDefaults()
		s.cfgErr = cfg.Validate()
	}
}

// WithClock replaces the wall clock used for timeouts and progress.
func WithClock(c Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the base logger. Session logs carry a session_id attribute.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMeterProvider records session metrics on mp instead of the global
// provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Session) { s.metrics = observe.ForProvider(mp) }
}

// WithTracerProvider records the session span on tp instead of the global
// provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Session) { s.tracer = observe.Tracer(tp) }
}

// WithStateHook registers f to be called after every state transition, on
// the goroutine running the session.
func WithStateHook(f func(id string, from, to State)) Option {
	return func(s *Session) { s.hook = f }
}
