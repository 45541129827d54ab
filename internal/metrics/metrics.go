package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Sheet fetch metrics
	FetchRequestsTotal   *prometheus.CounterVec
	FetchDurationSeconds *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Layout inference metrics
	LayoutBuildsTotal *prometheus.CounterVec

	// Query metrics
	QueryRequestsTotal   *prometheus.CounterVec
	QueryDurationSeconds *prometheus.HistogramVec

	// Bot metrics
	BotUpdatesTotal      *prometheus.CounterVec
	BotDurationSeconds   *prometheus.HistogramVec
	BotSendFailuresTotal *prometheus.CounterVec

	// Singleflight metrics
	SingleflightDedupTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		FetchRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "schedbot_fetch_requests_total",
				Help: "Total number of spreadsheet fetches by source and status",
			},
			[]string{"source", "status"}, // status: success, error, timeout
		),

		FetchDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "schedbot_fetch_duration_seconds",
				Help:    "Spreadsheet fetch duration in seconds by source",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30}, // Matches 30s fetch timeout
			},
			[]string{"source"},
		),

		CacheHitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "schedbot_cache_hits_total",
				Help: "Total number of grid cache hits by source",
			},
			[]string{"source"},
		),

		CacheMissesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "schedbot_cache_misses_total",
				Help: "Total number of grid cache misses by source",
			},
			[]string{"source"},
		),

		LayoutBuildsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "schedbot_layout_builds_total",
				Help: "Total number of layout inference runs by source and outcome",
			},
			[]string{"source", "outcome"}, // outcome: ok, empty
		),

		QueryRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "schedbot_query_requests_total",
				Help: "Total number of schedule queries by kind and status",
			},
			[]string{"kind", "status"}, // kind: schedule, teacher, room, free_rooms, now, track
		),

		QueryDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "schedbot_query_duration_seconds",
				Help:    "Schedule query duration in seconds by kind",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"kind"},
		),

		BotUpdatesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "schedbot_bot_updates_total",
				Help: "Total number of bot updates by type and status",
			},
			[]string{"update_type", "status"}, // update_type: message, callback
		),

		BotDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "schedbot_bot_update_duration_seconds",
				Help:    "Bot update handling duration in seconds by type",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"update_type"},
		),

		BotSendFailuresTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "schedbot_bot_send_failures_total",
				Help: "Total number of failed Telegram send attempts by method",
			},
			[]string{"method"}, // method: send_message, edit_message, answer_callback
		),

		SingleflightDedupTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "schedbot_singleflight_dedup_total",
				Help: "Total number of fetches deduplicated by the in-flight lock",
			},
			[]string{"source"},
		),
	}

	return m
}

// RecordFetch records a spreadsheet fetch with status
func (m *Metrics) RecordFetch(source, status string, duration float64) {
	m.FetchRequestsTotal.WithLabelValues(source, status).Inc()
	m.FetchDurationSeconds.WithLabelValues(source).Observe(duration)
}

// RecordCacheHit records a grid cache hit
func (m *Metrics) RecordCacheHit(source string) {
	m.CacheHitsTotal.WithLabelValues(source).Inc()
}

// RecordCacheMiss records a grid cache miss
func (m *Metrics) RecordCacheMiss(source string) {
	m.CacheMissesTotal.WithLabelValues(source).Inc()
}

// RecordLayoutBuild records one layout inference run
func (m *Metrics) RecordLayoutBuild(source, outcome string) {
	m.LayoutBuildsTotal.WithLabelValues(source, outcome).Inc()
}

// RecordQuery records a schedule query with status
func (m *Metrics) RecordQuery(kind, status string, duration float64) {
	m.QueryRequestsTotal.WithLabelValues(kind, status).Inc()
	m.QueryDurationSeconds.WithLabelValues(kind).Observe(duration)
}

// RecordBotUpdate records a handled bot update
func (m *Metrics) RecordBotUpdate(updateType, status string, duration float64) {
	m.BotUpdatesTotal.WithLabelValues(updateType, status).Inc()
	m.BotDurationSeconds.WithLabelValues(updateType).Observe(duration)
}

// RecordBotSendFailure records a failed Telegram send attempt
func (m *Metrics) RecordBotSendFailure(method string) {
	m.BotSendFailuresTotal.WithLabelValues(method).Inc()
}

// RecordSingleflightDedup records a deduplicated fetch
func (m *Metrics) RecordSingleflightDedup(source string) {
	m.SingleflightDedupTotal.WithLabelValues(source).Inc()
}
