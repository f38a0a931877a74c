package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for integration and booking-link flows.
type BookingMetrics struct {
	transitionsTotal *prometheus.CounterVec
	resolutionsTotal *prometheus.CounterVec
	previewLatency   *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "videobooker",
			Subsystem: "integrations",
			Name:      "status_transitions_total",
			Help:      "Total integration status transitions",
		}, []string{"provider", "from", "to"}),
		resolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "videobooker",
			Subsystem: "bookings",
			Name:      "link_resolutions_total",
			Help:      "Total booking-link resolutions",
		}, []string{"provider", "connected", "fallback"}),
		previewLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "videobooker",
			Subsystem: "bookings",
			Name:      "preview_latency_seconds",
			Help:      "Latency of booking-link preview assembly",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transitionsTotal, m.resolutionsTotal, m.previewLatency)
	return m
}

// ObserveTransition satisfies integrations.TransitionObserver.
func (m *BookingMetrics) ObserveTransition(provider, from, to string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(provider, from, to).Inc()
}

func (m *BookingMetrics) ObserveResolution(provider string, connected, fallback bool) {
	if m == nil {
		return
	}
	m.resolutionsTotal.WithLabelValues(provider, boolLabel(connected), boolLabel(fallback)).Inc()
}

func (m *BookingMetrics) ObservePreviewLatency(provider string, seconds float64) {
	if m == nil {
		return
	}
	m.previewLatency.WithLabelValues(provider).Observe(seconds)
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
