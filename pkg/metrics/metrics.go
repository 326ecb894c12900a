// Package metrics records render and RPC outcomes as Prometheus collectors.
//
// A nil *Recorder is valid and records nothing, so callers never need to
// guard against metrics being disabled.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/isoforge/pkg/service"
)

// Render variants.
const (
	VariantServer  = "server"
	VariantBrowser = "browser"
)

// Outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeError         = "error"
	OutcomeNotAuthorized = "not_authorized"
)

// Recorder owns the collectors and the registry that exposes them.
type Recorder struct {
	registry       *prometheus.Registry
	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	calls          *prometheus.CounterVec
	callDuration   *prometheus.HistogramVec
	denied         prometheus.Counter
}

// New creates a recorder with collectors registered under namespace.
func New(namespace string) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Views rendered, by variant and outcome.",
		}, []string{"variant", "outcome"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent resolving and mounting a view.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"variant"}),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_calls_total",
			Help:      "Remote procedure calls, by method and outcome.",
		}, []string{"method", "outcome"}),
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_call_duration_seconds",
			Help:      "Remote procedure call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		denied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorization_denied_total",
			Help:      "Authorization gate denials.",
		}),
	}
	r.registry.MustRegister(r.renders, r.renderDuration, r.calls, r.callDuration, r.denied)
	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the collected metrics.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveRender records one render attempt.
func (r *Recorder) ObserveRender(variant string, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	r.renders.WithLabelValues(variant, outcome(err)).Inc()
	r.renderDuration.WithLabelValues(variant).Observe(elapsed.Seconds())
}

// ObserveCall records one RPC invocation. Its signature matches rpc.Observer.
func (r *Recorder) ObserveCall(method string, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	r.calls.WithLabelValues(method, outcome(err)).Inc()
	r.callDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveDenied records a denial at the point it reaches the caller: a
// handler error or an endpoint response. Calls only record their outcome.
func (r *Recorder) ObserveDenied() {
	if r == nil {
		return
	}
	r.denied.Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, service.ErrNotAuthorized):
		return OutcomeNotAuthorized
	default:
		return OutcomeError
	}
}

// RenderCounter returns the counter for one variant and outcome.
func (r *Recorder) RenderCounter(variant, outcome string) prometheus.Counter {
	return r.renders.WithLabelValues(variant, outcome)
}

// DeniedCounter returns the authorization denial counter.
func (r *Recorder) DeniedCounter() prometheus.Counter {
	return r.denied
}
