// Package metrics exposes Prometheus counters for the booking dialogue.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vira"

// Recorder groups the assistant's collectors. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	turns          *prometheus.CounterVec
	resolutions    *prometheus.CounterVec
	gatewayCalls   *prometheus.CounterVec
	gatewayLatency *prometheus.HistogramVec
	tokens         *prometheus.CounterVec
	handoffs       *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dialogue",
			Name:      "turns_total",
			Help:      "Dialogue turns by the step that produced the reply",
		}, []string{"outcome"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "resolutions_total",
			Help:      "Employee resolution attempts by result (parsed, fallback, skipped)",
		}, []string{"result"}),
		gatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "calls_total",
			Help:      "Language model calls by status (ok, empty, error)",
		}, []string{"model", "status"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "latency_seconds",
			Help:      "Latency of language model calls",
			Buckets:   []float64{0.25, 0.5, 1, 2, 3, 5, 8, 13, 20, 30},
		}, []string{"model"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "tokens_total",
			Help:      "Tokens used by the language model",
		}, []string{"model", "type"}),
		handoffs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "handoffs_total",
			Help:      "Booking handoffs by status (ok, error)",
		}, []string{"status"}),
	}
	if reg != nil {
		reg.MustRegister(r.Collectors()...)
	}
	return r
}

// Collectors returns every collector owned by r.
func (r *Recorder) Collectors() []prometheus.Collector {
	return []prometheus.Collector{r.turns, r.resolutions, r.gatewayCalls, r.gatewayLatency, r.tokens, r.handoffs}
}

func (r *Recorder) Turn(outcome string) {
	if r == nil {
		return
	}
	r.turns.WithLabelValues(outcome).Inc()
}

func (r *Recorder) Resolution(result string) {
	if r == nil {
		return
	}
	r.resolutions.WithLabelValues(result).Inc()
}

// GatewayCall records one model call started at start.
func (r *Recorder) GatewayCall(model, status string, start time.Time, promptTokens, responseTokens int) {
	if r == nil {
		return
	}
	r.gatewayCalls.WithLabelValues(model, status).Inc()
	r.gatewayLatency.WithLabelValues(model).Observe(time.Since(start).Seconds())
	if promptTokens > 0 {
		r.tokens.WithLabelValues(model, "input").Add(float64(promptTokens))
	}
	if responseTokens > 0 {
		r.tokens.WithLabelValues(model, "output").Add(float64(responseTokens))
	}
}

func (r *Recorder) Handoff(err error) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.handoffs.WithLabelValues(status).Inc()
}
