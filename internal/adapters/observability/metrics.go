package observability

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const namespace = "reputation"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "external_requests_total", Help: "Outbound page/API fetches."},
		[]string{"service", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "external_request_duration_seconds",
			Help:    "Outbound fetch duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	Candidates = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "candidates_total", Help: "Score candidates kept after range filtering."},
		[]string{"source", "strategy"},
	)
	Resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "resolutions_total", Help: "Per-hotel resolution outcomes."},
		[]string{"source", "outcome"}, // outcome: scored|no-target|fetch|no-candidate|range
	)
	Runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "runs_total", Help: "Source runs by validation status."},
		[]string{"source", "status"},
	)
	LedgerWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "ledger_writes_total", Help: "Ledger saves."},
		[]string{"source", "kind"}, // kind: run|override
	)
)

// Serve exposes the default registry on METRICS_ADDR. Used by batch binaries
// that have no HTTP router of their own.
func Serve() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
		Candidates, Resolutions, Runs, LedgerWrites,
	}
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors()...)
	return reg
}

// RegisterDefault registers the collectors on the global registry used by Serve.
func RegisterDefault() {
	for _, c := range collectors() {
		_ = prometheus.Register(c)
	}
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveCandidates(source, strategy string, n int) {
	Candidates.WithLabelValues(source, strategy).Add(float64(n))
}

func ObserveResolution(source, outcome string) {
	Resolutions.WithLabelValues(source, outcome).Inc()
}

func ObserveRun(source, status string) {
	Runs.WithLabelValues(source, status).Inc()
}

func ObserveLedgerWrite(source, kind string) {
	LedgerWrites.WithLabelValues(source, kind).Inc()
}
