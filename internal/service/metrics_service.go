package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/faculty-leave-api/internal/models"
	"github.com/noah-isme/faculty-leave-api/pkg/jobs"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the leave workflow.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	leaveTransitions *prometheus.CounterVec
	mailDeliveries   *prometheus.CounterVec
	balanceApplied   prometheus.Counter
	cacheLatency     prometheus.Observer
	cacheWrite       prometheus.Observer
	cacheHitRatio    prometheus.Gauge
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	leaveTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leave_transitions_total",
		Help: "Leave application status transitions by acting role",
	}, []string{"from", "to", "role"})

	mailDeliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mail_deliveries_total",
		Help: "Outbound email delivery attempts by template and outcome",
	}, []string{"template", "outcome"})

	balanceApplied := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leave_balance_applications_total",
		Help: "Number of times approved leave was charged to a balance",
	})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, leaveTransitions, mailDeliveries, balanceApplied,
		cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		leaveTransitions: leaveTransitions,
		mailDeliveries:   mailDeliveries,
		balanceApplied:   balanceApplied,
		cacheLatency:     cacheLatency,
		cacheWrite:       cacheWrite,
		cacheHitRatio:    cacheHitRatio,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordTransition counts a committed status change.
func (m *MetricsService) RecordTransition(from, to models.LeaveStatus, role models.UserRole) {
	if m == nil {
		return
	}
	m.leaveTransitions.WithLabelValues(string(from), string(to), string(role)).Inc()
}

// RecordBalanceApplied counts a committed balance charge.
func (m *MetricsService) RecordBalanceApplied() {
	if m == nil {
		return
	}
	m.balanceApplied.Inc()
}

// RecordMailDelivery counts an email attempt.
func (m *MetricsService) RecordMailDelivery(template string, err error) {
	if m == nil {
		return
	}
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	m.mailDeliveries.WithLabelValues(template, outcome).Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveQueue exports a job queue's backlog and lifetime counters, sampled at scrape time.
func (m *MetricsService) ObserveQueue(name string, stats func() jobs.Stats) {
	if m == nil || stats == nil {
		return
	}
	labels := prometheus.Labels{"queue": name}
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "job_queue_pending",
			Help:        "Jobs buffered and not yet picked up by a worker",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Pending) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        "job_queue_processed_total",
			Help:        "Jobs completed successfully",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Processed) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        "job_queue_failed_total",
			Help:        "Jobs that exhausted their retries",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Failed) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        "job_queue_dropped_total",
			Help:        "Jobs rejected because the buffer was full or the queue stopped",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Dropped) }),
	)
}
