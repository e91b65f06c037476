package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the service counters. A nil *Metrics records nothing.
type Metrics struct {
	QuotesApplied  *prometheus.CounterVec
	QuotesRejected *prometheus.CounterVec
	Books          prometheus.Gauge
	QueryDuration  *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QuotesApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "levelbook_quotes_applied_total",
			Help: "Quote updates applied to a book, by side",
		}, []string{"side"}),
		QuotesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "levelbook_quotes_rejected_total",
			Help: "Quote updates rejected before reaching a book, by reason",
		}, []string{"reason"}),
		Books: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "levelbook_books_total",
			Help: "Instruments with a live book",
		}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "levelbook_query_duration_seconds",
			Help:    "Book query latency, by query",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"query"}),
	}
	if reg != nil {
		reg.MustRegister(m.QuotesApplied, m.QuotesRejected, m.Books, m.QueryDuration)
	}
	return m
}

func (m *Metrics) QuoteApplied(side string) {
	if m == nil {
		return
	}
	m.QuotesApplied.WithLabelValues(side).Inc()
}

func (m *Metrics) QuoteRejected(reason string) {
	if m == nil {
		return
	}
	m.QuotesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) BookCreated() {
	if m == nil {
		return
	}
	m.Books.Inc()
}

// ObserveQuery is meant to be deferred: defer m.ObserveQuery("vwap", time.Now()).
func (m *Metrics) ObserveQuery(query string, start time.Time) {
	if m == nil {
		return
	}
	m.QueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}
