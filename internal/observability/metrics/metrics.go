package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (o Outcome) String() string {
	return string(o)
}

var defaultHistogramBucketsSeconds = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5}

var (
	once sync.Once

	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grantflow_operation_duration_seconds",
			Help:    "Histogram of dispatched operation durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	txLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grantflow_tx_latency_seconds",
			Help:    "Transaction latency in seconds split by execution status.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"status"},
	)

	queueSendErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grantflow_queue_send_error_count",
			Help: "The total number of errors when publishing lifecycle events",
		},
	)
)

// Init registers the collectors and serves them on /metrics.
func Init(host string, port int) {
	once.Do(func() {
		prometheus.MustRegister(operationDuration, txLatency, queueSendErrorCounter)
		startServer(host, port)
	})
}

// Router returns a router exposing the default registry.
func Router() *chi.Mux {
	r := chi.NewRouter()
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	return r
}

func startServer(host string, port int) {
	addr := fmt.Sprintf("%s:%d", host, port)
	server := &http.Server{
		Addr:         addr,
		Handler:      Router(),
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	go func() {
		log.Info().Msgf("Starting metrics server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msgf("Error starting metrics server on %s", addr)
		}
	}()
}

func outcome(failure bool) Outcome {
	if failure {
		return Error
	}
	return Success
}

func RecordOperation(method string, d time.Duration, failure bool) {
	operationDuration.WithLabelValues(method, outcome(failure).String()).Observe(d.Seconds())
}

func RecordTxLatency(d time.Duration, failure bool) {
	txLatency.WithLabelValues(outcome(failure).String()).Observe(d.Seconds())
}

func RecordQueueSendError() {
	queueSendErrorCounter.Inc()
}
