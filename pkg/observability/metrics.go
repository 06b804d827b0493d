package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/kiteflow/pkg/domain"
	"github.com/aretw0/kiteflow/pkg/ports"
)

// Metrics holds the Prometheus collectors of one engine.
type Metrics struct {
	nodeVisits *prometheus.CounterVec
	dispatches *prometheus.CounterVec
	responses  *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// It panics if registration fails, like prometheus.MustRegister.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		nodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kiteflow_node_visits_total",
				Help: "Total number of runtime node visits",
			},
			[]string{"kind"},
		),
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kiteflow_dispatches_total",
				Help: "Total number of dispatched events",
			},
			[]string{"event_kind", "outcome"},
		),
		responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kiteflow_responses_total",
				Help: "Total number of event responses by error code",
			},
			[]string{"code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kiteflow_dispatch_duration_seconds",
				Help:    "Duration of event dispatches",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"event_kind"},
		),
	}
	reg.MustRegister(m.nodeVisits, m.dispatches, m.responses, m.duration)
	return m
}

// Hooks returns lifecycle hooks that record node visits and dispatch timings.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, h *domain.NodeHook) {
			m.nodeVisits.WithLabelValues(h.Kind.String()).Inc()
		},
		OnDispatch: func(ctx context.Context, h *domain.DispatchHook) {
			m.dispatches.WithLabelValues(h.EventKind, outcome(h)).Inc()
			m.duration.WithLabelValues(h.EventKind).Observe(h.Duration.Seconds())
		},
	}
}

// ObserveResponses wraps next so that every response is counted by code.
// next may be nil.
func (m *Metrics) ObserveResponses(next ports.ResponseSink) ports.ResponseSink {
	return ports.ResponseSinkFunc(func(ctx context.Context, event domain.Event, resp domain.EventResponse) error {
		code := "ok"
		if resp.Error != nil {
			code = resp.Error.Code
		}
		m.responses.WithLabelValues(code).Inc()
		if next == nil {
			return nil
		}
		return next.Respond(ctx, event, resp)
	})
}

func outcome(h *domain.DispatchHook) string {
	switch {
	case h.Err != nil:
		return "error"
	case h.Matched == 0:
		return "unhandled"
	}
	return "handled"
}
