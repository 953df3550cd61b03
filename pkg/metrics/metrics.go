package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP запросы API
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aceinterview_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aceinterview_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Отправка видео в сервисы анализа
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aceinterview_submissions_total",
			Help: "Total number of video submissions to analysis backends",
		},
		[]string{"backend", "outcome"},
	)

	// Опрос статуса задач
	PollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aceinterview_polls_total",
			Help: "Total number of task status polls",
		},
		[]string{"backend", "outcome"},
	)

	AnalysesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aceinterview_analyses_finished_total",
			Help: "Total number of analyses that reached a terminal state",
		},
		[]string{"backend", "state"},
	)

	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aceinterview_analysis_duration_seconds",
			Help:    "Time from upload start to terminal state",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1200, 1800},
		},
		[]string{"backend"},
	)

	BackendUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aceinterview_backend_up",
			Help: "Whether the analysis backend answered its health check",
		},
		[]string{"backend"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		SubmissionsTotal,
		PollsTotal,
		AnalysesFinished,
		AnalysisDuration,
		BackendUp,
	)
}

// Handler отдаёт метрики для роутера API
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer запускает отдельный metrics HTTP сервер (для воркера)
func StartMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic("failed to start metrics server: " + err.Error())
		}
	}()
	return server
}

// RecordRequest записывает метрики HTTP запроса
func RecordRequest(method, route, status string, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, route, status).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordSubmission(backend, outcome string) {
	SubmissionsTotal.WithLabelValues(backend, outcome).Inc()
}

func RecordPoll(backend, outcome string) {
	PollsTotal.WithLabelValues(backend, outcome).Inc()
}

// RecordFinished фиксирует финальное состояние анализа и его длительность
func RecordFinished(backend, state string, duration time.Duration) {
	AnalysesFinished.WithLabelValues(backend, state).Inc()
	AnalysisDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

func SetBackendUp(backend string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	BackendUp.WithLabelValues(backend).Set(v)
}
