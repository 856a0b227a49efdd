package toast

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DedupePolicy determines how Add treats an id that is already
// present in the store.
type DedupePolicy int

const (
	// DedupeIgnore keeps the existing record and returns its id
	// unchanged; no mutation, no notification.
	DedupeIgnore DedupePolicy = iota

	// DedupeRefresh replaces the existing record with a fresh one at
	// the end of insertion order.
	DedupeRefresh
)

// String returns the policy name.
func (p DedupePolicy) String() string {
	switch p {
	case DedupeRefresh:
		return "refresh"
	default:
		return "ignore"
	}
}

// config holds construction-time settings for an engine.
type config struct {
	maxVisible int
	dedupe     DedupePolicy
	clock      func() time.Time
	generateID func() string
	logger     *slog.Logger
	metrics    *Metrics
	registry   *Registry
	scopeName  string
}

// defaultConfig returns the default engine configuration.
func defaultConfig() config {
	return config{
		maxVisible: 5,
		dedupe:     DedupeIgnore,
		clock:      time.Now,
		generateID: uuid.NewString,
		logger:     slog.Default(),
	}
}

// Option configures an engine at construction time.
type Option func(*config)

// WithMaxVisible sets the size of the visibility window.
// Values below 1 are coerced to 1. Default: 5.
func WithMaxVisible(n int) Option {
	return func(c *config) {
		if n < 1 {
			n = 1
		}
		c.maxVisible = n
	}
}

// WithDedupe sets the id-collision policy. Default: DedupeIgnore.
func WithDedupe(policy DedupePolicy) Option {
	return func(c *config) {
		c.dedupe = policy
	}
}

// WithClock sets the engine clock. Injectable for deterministic
// tests; multiple engines must not share a clock by reference unless
// synchronized behavior is intended. Default: time.Now.
func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithIDGenerator sets the generator used when Add receives an empty
// id. Default: uuid.NewString.
func WithIDGenerator(gen func() string) Option {
	return func(c *config) {
		if gen != nil {
			c.generateID = gen
		}
	}
}

// WithLogger sets the logger. Default: slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics attaches a metrics recorder to the engine.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithScope registers the engine under name in the process-wide
// default registry so renderers can discover it without explicit
// wiring. The engine unregisters itself on Destroy.
func WithScope(name string) Option {
	return func(c *config) {
		c.registry = Default()
		c.scopeName = name
	}
}

// WithScopeIn registers the engine under name in a specific registry
// instead of the default one.
func WithScopeIn(r *Registry, name string) Option {
	return func(c *config) {
		c.registry = r
		c.scopeName = name
	}
}
