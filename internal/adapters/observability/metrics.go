package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotels", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotels", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	DBQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotels", Name: "db_queries_total", Help: "Database lookups."},
		[]string{"op", "status"}, // status: ok|no_rows|error
	)
	DBLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotels", Name: "db_query_duration_seconds",
			Help:    "Database lookup duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
	SessionLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotels", Name: "session_lookups_total", Help: "Session store lookups."},
		[]string{"store", "result"}, // result: hit|miss|error|create|delete
	)
	AccessDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotels", Name: "access_denials_total", Help: "Hotel requests refused, by reason."},
		[]string{"kind"},
	)
)

// Serve starts the standalone metrics server on addr. An empty addr disables
// it and returns nil.
func Serve(addr string) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	return srv
}

// InitRegistry registers the collectors once per process on a fresh registry.
// The default registry also gets them so the standalone metrics server sees them.
func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	collectors := []prometheus.Collector{HTTPRequests, HTTPLatency, DBQueries, DBLatency, SessionLookups, AccessDenials}
	reg.MustRegister(collectors...)
	for _, c := range collectors {
		_ = prometheus.DefaultRegisterer.Register(c)
	}
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveDB(op, status string, dur time.Duration) {
	DBQueries.WithLabelValues(op, status).Inc()
	DBLatency.WithLabelValues(op).Observe(dur.Seconds())
}

func ObserveSession(store, result string) {
	SessionLookups.WithLabelValues(store, result).Inc()
}

func ObserveDenial(kind string) {
	AccessDenials.WithLabelValues(kind).Inc()
}
