package runner

import (
	"log/slog"
	"time"

	"github.com/aretw0/kiteflow/pkg/domain"
	"github.com/aretw0/kiteflow/pkg/ports"
)

const (
	// DefaultLockKey is the lock name used when WithLocker is given no key.
	DefaultLockKey = "dispatch"
	// DefaultLockTTL bounds how long a crashed holder blocks other replicas.
	DefaultLockTTL = 30 * time.Second
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithLocker serializes dispatches across processes.
// Empty key and zero ttl keep the defaults.
func WithLocker(locker ports.DistributedLocker, key string, ttl time.Duration) Option {
	return func(r *Runner) {
		r.Locker = locker
		if key != "" {
			r.LockKey = key
		}
		if ttl > 0 {
			r.LockTTL = ttl
		}
	}
}

// WithObserver registers a callback run after every dispatch.
func WithObserver(o Observer) Option {
	return func(r *Runner) {
		r.Observer = o
	}
}

// WithMaxEvents stops the loop after n dispatched events.
func WithMaxEvents(n int) Option {
	return func(r *Runner) {
		r.MaxEvents = n
	}
}

// WithSanitizer replaces the event validation step; nil disables it.
func WithSanitizer(fn func(domain.Event) (domain.Event, error)) Option {
	return func(r *Runner) {
		r.Sanitize = fn
	}
}

// WithRejectionSink reports events skipped before dispatch to sink as
// invalid_event failures. Usually the same sink the engine responds to.
func WithRejectionSink(sink ports.ResponseSink) Option {
	return func(r *Runner) {
		r.Rejections = sink
	}
}
