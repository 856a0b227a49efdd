package toast

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures a Metrics recorder.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "toastkit").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures a Metrics recorder.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry. Tests pass their own
// prometheus.NewRegistry so recorders never collide.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "toastkit",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics records engine activity in Prometheus. Attach one to an
// engine with WithMetrics; a nil *Metrics is a valid recorder that
// records nothing.
//
// Series:
//   - toasts_added_total{variant}: records entering the store
//   - toasts_deduped_total{policy}: Add calls resolved by dedupe
//   - toasts_dismissed_total{reason}: records leaving the store, by
//     reason (manual, expired, replaced, cleared, destroyed)
//   - toasts_active / toasts_queued: current window depths
//   - toast_visible_duration_seconds: unpaused lifetime at removal
type Metrics struct {
	added     *prometheus.CounterVec
	deduped   *prometheus.CounterVec
	dismissed *prometheus.CounterVec
	active    prometheus.Gauge
	queued    prometheus.Gauge
	visible   prometheus.Histogram
}

// NewMetrics creates and registers a Metrics recorder.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)

	return &Metrics{
		added: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "toasts_added_total",
			Help:        "Total number of toasts added to the store",
			ConstLabels: cfg.ConstLabels,
		}, []string{"variant"}),

		deduped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "toasts_deduped_total",
			Help:        "Total number of Add calls resolved by the dedupe policy",
			ConstLabels: cfg.ConstLabels,
		}, []string{"policy"}),

		dismissed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "toasts_dismissed_total",
			Help:        "Total number of toasts removed from the store, by reason",
			ConstLabels: cfg.ConstLabels,
		}, []string{"reason"}),

		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "toasts_active",
			Help:        "Number of toasts currently in the active window",
			ConstLabels: cfg.ConstLabels,
		}),

		queued: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "toasts_queued",
			Help:        "Number of toasts waiting behind the active window",
			ConstLabels: cfg.ConstLabels,
		}),

		visible: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "toast_visible_duration_seconds",
			Help:        "Unpaused lifetime of a toast at the moment of removal",
			ConstLabels: cfg.ConstLabels,
			Buckets:     []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

func (m *Metrics) recordAdded(variant string) {
	if m == nil {
		return
	}
	m.added.WithLabelValues(variant).Inc()
}

func (m *Metrics) recordDeduped(policy string) {
	if m == nil {
		return
	}
	m.deduped.WithLabelValues(policy).Inc()
}

func (m *Metrics) recordDismissed(reason dismissReason, visible time.Duration) {
	if m == nil {
		return
	}
	m.dismissed.WithLabelValues(string(reason)).Inc()
	m.visible.Observe(visible.Seconds())
}

func (m *Metrics) setDepth(active, queued int) {
	if m == nil {
		return
	}
	m.active.Set(float64(active))
	m.queued.Set(float64(queued))
}
