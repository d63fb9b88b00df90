// Package metrics реализует экспорт метрик в Prometheus
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus метрики
var (
	// RequestsTotal общее количество запросов
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curation_requests_total",
			Help: "Total number of requests processed",
		},
		[]string{"endpoint", "method", "status"},
	)

	// RequestDuration длительность запросов
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "curation_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"endpoint", "method"},
	)

	// InFlightRequests запросы в обработке
	InFlightRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "curation_in_flight_requests",
			Help: "Requests currently being served",
		},
	)

	// SnapshotsComposed количество собранных снапшотов
	SnapshotsComposed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "curation_snapshots_composed_total",
			Help: "Total number of curation snapshots composed",
		},
	)

	// CompositionLatency время сборки снапшота
	CompositionLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "curation_composition_latency_seconds",
			Help:    "Snapshot composition latency in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
		},
	)

	// SkippedRecords записи, отброшенные последней композицией
	SkippedRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "curation_skipped_records",
			Help: "Malformed records skipped by the latest composition",
		},
	)

	// DegradedSections секции, деградировавшие до пустых
	DegradedSections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curation_degraded_sections_total",
			Help: "Snapshot sections that failed and degraded to empty",
		},
		[]string{"section"},
	)

	// ActiveAlerts алерты последнего снапшота по уровням
	ActiveAlerts = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "curation_active_alerts",
			Help: "Alerts in the latest snapshot by severity",
		},
		[]string{"severity"},
	)

	// LiveSamples количество сгенерированных live-точек
	LiveSamples = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curation_live_samples_total",
			Help: "Total number of live samples generated",
		},
		[]string{"type"},
	)

	// AssistantResponses ответы ассистента по маршруту и режиму
	AssistantResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curation_assistant_responses_total",
			Help: "Assistant responses by route and mode (provider, fallback, error)",
		},
		[]string{"route", "mode"},
	)

	// CacheHits успешные операции с кэшем
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "curation_cache_hits_total",
			Help: "Total number of successful cache operations",
		},
	)

	// CacheMisses неудачные операции с кэшем
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "curation_cache_misses_total",
			Help: "Total number of failed cache operations",
		},
	)

	// ActiveGoroutines количество активных горутин
	ActiveGoroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "curation_active_goroutines",
			Help: "Number of active goroutines",
		},
	)
)

// ObserveSnapshot обновляет метрики по результату композиции
func ObserveSnapshot(skipped int, alertsBySeverity map[string]int, degraded []string) {
	SnapshotsComposed.Inc()
	SkippedRecords.Set(float64(skipped))
	for _, sev := range []string{"low", "medium", "high", "critical"} {
		ActiveAlerts.WithLabelValues(sev).Set(float64(alertsBySeverity[sev]))
	}
	for _, section := range degraded {
		DegradedSections.WithLabelValues(section).Inc()
	}
}
