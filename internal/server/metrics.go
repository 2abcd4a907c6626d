package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lazypower/aria/internal/aria"
)

const metricsNamespace = "aria"

// metrics holds the counters, histogram, and gauge spec.md's "administrative
// counters" phrase makes room for. They live here, not in internal/aria,
// since the core has no business knowing Prometheus exists.
type metrics struct {
	messagesProcessed *prometheus.CounterVec
	pairEvents        *prometheus.CounterVec
	generateLatency   prometheus.Histogram
	messageCounter    prometheus.Gauge
}

// newMetrics registers its collectors against reg rather than the package-level
// prometheus.DefaultRegisterer, so every *Server owns an independent set of
// collectors. newServer passes a fresh prometheus.NewRegistry() for every
// Server, so repeated New/NewWithTuning calls in the same binary (as the
// tests make through testServer) don't collide on duplicate registration.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		messagesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "messages_processed_total",
			Help:      "Messages handed to ProcessMessage, by outcome.",
		}, []string{"outcome"}),

		pairEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "pair_events_total",
			Help:      "Pair lifecycle events, by kind.",
		}, []string{"kind"}),

		generateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "generate_response_seconds",
			Help:      "GenerateResponse wall-clock latency.",
			Buckets:   prometheus.DefBuckets,
		}),

		messageCounter: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "message_counter",
			Help:      "Current value of the message_counter singleton.",
		}),
	}
}

func (m *metrics) recordProcess(report aria.ProcessReport) {
	outcome := report.Reason
	if report.Processed {
		outcome = "processed"
	}
	m.messagesProcessed.WithLabelValues(outcome).Inc()
	if report.Processed {
		m.messageCounter.Set(float64(report.MessageIndex))
		m.pairEvents.WithLabelValues("created").Add(float64(report.NewPairs))
		m.pairEvents.WithLabelValues("reinforced").Add(float64(report.Reinforced))
		m.pairEvents.WithLabelValues("promoted").Add(float64(report.Promoted))
		m.pairEvents.WithLabelValues("decayed").Add(float64(report.Decayed))
		m.pairEvents.WithLabelValues("retired").Add(float64(report.Removed))
	}
}
