package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	EventsConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_events_consumed_total",
			Help: "Total number of order events consumed by event type",
		},
		[]string{"event_type"},
	)
	EventsDuplicateTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "order_events_duplicate_total",
			Help: "Total number of events suppressed by the dedup window",
		},
	)
	EventsSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "order_events_skipped_total",
			Help: "Total number of events skipped by partner/unit validation",
		},
	)
	EventsCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "order_events_completed_total",
			Help: "Total number of events that finished the pipeline",
		},
	)
	EventsFailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_events_failed_total",
			Help: "Total number of events that failed by failure code",
		},
		[]string{"code"},
	)
	EventsProcessing = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "order_events_processing",
			Help: "Number of events currently in the pipeline",
		},
	)

	OrdersProcessedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_processed_total",
			Help: "Total number of orders transformed successfully",
		},
	)
	OrdersFailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_failed_total",
			Help: "Total number of orders that failed transform by error type",
		},
		[]string{"error_type"},
	)

	PublishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_publish_total",
			Help: "Total number of outbound messages by shape and outcome",
		},
		[]string{"shape", "outcome"},
	)
	DLQMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_dlq_messages_total",
			Help: "Total number of dead-letter messages by failure code",
		},
		[]string{"code"},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "order_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"stage"},
	)

	DBRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_chunk_retries_total",
			Help: "Total number of chunk retries by repository operation",
		},
		[]string{"op"},
	)
	DBChunksFailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_chunks_failed_total",
			Help: "Total number of chunks dropped after retry exhaustion",
		},
		[]string{"op"},
	)

	CacheSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of entries per cache",
		},
		[]string{"cache"},
	)
	CacheHits = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_hits_total",
			Help: "Cumulative cache hits per cache",
		},
		[]string{"cache"},
	)
	CacheMisses = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_misses_total",
			Help: "Cumulative cache misses per cache",
		},
		[]string{"cache"},
	)
)

func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(EventsConsumedTotal)
	prometheus.MustRegister(EventsDuplicateTotal)
	prometheus.MustRegister(EventsSkippedTotal)
	prometheus.MustRegister(EventsCompletedTotal)
	prometheus.MustRegister(EventsFailedTotal)
	prometheus.MustRegister(EventsProcessing)
	prometheus.MustRegister(OrdersProcessedTotal)
	prometheus.MustRegister(OrdersFailedTotal)
	prometheus.MustRegister(PublishTotal)
	prometheus.MustRegister(DLQMessagesTotal)
	prometheus.MustRegister(StageDuration)
	prometheus.MustRegister(DBRetriesTotal)
	prometheus.MustRegister(DBChunksFailedTotal)
	prometheus.MustRegister(CacheSize)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			// fallback when route pattern is unavailable
			route = r.URL.Path
		}
		method := r.Method
		status := ww.Status()
		HTTPRequestsTotal.WithLabelValues(route, method, http.StatusText(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, method).Observe(dur)
	})
}

func ConsumeEvent(eventType string) {
	EventsConsumedTotal.WithLabelValues(eventType).Inc()
	EventsProcessing.Inc()
}

func DuplicateEvent() {
	EventsDuplicateTotal.Inc()
	EventsProcessing.Dec()
}

func SkipEvent() {
	EventsSkippedTotal.Inc()
	EventsProcessing.Dec()
}

func CompleteEvent() {
	EventsCompletedTotal.Inc()
	EventsProcessing.Dec()
}

func FailEvent(code string) {
	EventsFailedTotal.WithLabelValues(code).Inc()
	EventsProcessing.Dec()
}

// ObserveStage records one pipeline stage duration.
func ObserveStage(stage string, d time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// PublishOutcome records one outbound send. shape is "grouped" or
// "individual".
func PublishOutcome(shape string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	PublishTotal.WithLabelValues(shape, outcome).Inc()
}

// UpdateCacheStats mirrors one cache's counters into the gauges. Called
// periodically from the worker loop.
func UpdateCacheStats(name string, size int, hits, misses int64) {
	CacheSize.WithLabelValues(name).Set(float64(size))
	CacheHits.WithLabelValues(name).Set(float64(hits))
	CacheMisses.WithLabelValues(name).Set(float64(misses))
}
