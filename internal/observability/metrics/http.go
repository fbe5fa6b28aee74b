package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kb"

type HTTPServerMetrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	chatTurnsTotal     *prometheus.CounterVec
	chatNoContextTotal *prometheus.CounterVec
	chatSources        *prometheus.HistogramVec
	chatDuration       *prometheus.HistogramVec
	uploadsTotal       *prometheus.CounterVec
	generationFailures *prometheus.CounterVec
	breakerState       *prometheus.GaugeVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chatTurnsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total chat turns by outcome.",
		},
		[]string{"service", "status"},
	)
	chatNoContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "no_context_total",
			Help:      "Total answered chat turns without knowledge-base sources.",
		},
		[]string{"service"},
	)
	chatSources := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "sources",
			Help:      "Distribution of cited sources per answered chat turn.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 8, 10},
		},
		[]string{"service"},
	)
	chatDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "duration_seconds",
			Help:      "Chat turn duration in seconds, generation included.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"service"},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "documents",
			Name:      "uploads_total",
			Help:      "Total document uploads by category and status.",
		},
		[]string{"service", "category", "status"},
	)
	generationFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "failures_total",
			Help:      "Total failed generation calls by provider and failure kind.",
		},
		[]string{"service", "provider", "kind"},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "breaker_open",
			Help:      "1 while the circuit breaker for an operation is open or half-open.",
		},
		[]string{"service", "operation"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		chatTurnsTotal,
		chatNoContextTotal,
		chatSources,
		chatDuration,
		uploadsTotal,
		generationFailures,
		breakerState,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		service:            service,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		chatTurnsTotal:     chatTurnsTotal,
		chatNoContextTotal: chatNoContextTotal,
		chatSources:        chatSources,
		chatDuration:       chatDuration,
		uploadsTotal:       uploadsTotal,
		generationFailures: generationFailures,
		breakerState:       breakerState,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		path := routeLabel(r)
		m.requestTotal.WithLabelValues(
			m.service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(m.service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// routeLabel keeps label cardinality bounded: the matched mux pattern when there is one,
// otherwise the path with ids collapsed.
func routeLabel(r *http.Request) string {
	if r.Pattern != "" {
		if _, path, ok := strings.Cut(r.Pattern, " "); ok {
			return path
		}
		return r.Pattern
	}
	return normalizePath(r.URL.Path)
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/chat/history/"):
		return "/api/chat/history/{sessionId}"
	case strings.HasPrefix(path, "/api/documents/"):
		rest := strings.TrimPrefix(path, "/api/documents/")
		head, tail, _ := strings.Cut(rest, "/")
		if _, err := strconv.ParseInt(head, 10, 64); err != nil {
			return path
		}
		if tail == "" {
			return "/api/documents/{id}"
		}
		return "/api/documents/{id}/" + tail
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordChatTurn(sourceCount int, duration time.Duration) {
	m.chatTurnsTotal.WithLabelValues(m.service, "ok").Inc()
	m.chatSources.WithLabelValues(m.service).Observe(float64(sourceCount))
	m.chatDuration.WithLabelValues(m.service).Observe(duration.Seconds())
	if sourceCount == 0 {
		m.chatNoContextTotal.WithLabelValues(m.service).Inc()
	}
}

func (m *HTTPServerMetrics) RecordChatFailure() {
	m.chatTurnsTotal.WithLabelValues(m.service, "error").Inc()
}

func (m *HTTPServerMetrics) RecordUpload(category, status string) {
	if category == "" {
		category = "none"
	}
	m.uploadsTotal.WithLabelValues(m.service, category, status).Inc()
}

func (m *HTTPServerMetrics) RecordGenerationFailure(provider, kind string) {
	m.generationFailures.WithLabelValues(m.service, provider, kind).Inc()
}

// RecordBreakerState matches resilience.StateObserver.
func (m *HTTPServerMetrics) RecordBreakerState(operation, _, to string) {
	value := 0.0
	if to != "closed" {
		value = 1
	}
	m.breakerState.WithLabelValues(m.service, operation).Set(value)
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
