package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zazaborisovi/laptomania/internal/health"
)

var (
	// Auth metrics

	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "laptomania",
		Name:      "logins_total",
		Help:      "Local login attempts, by outcome.",
	}, []string{"outcome"})

	RegistrationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "laptomania",
		Name:      "registrations_total",
		Help:      "Registration attempts, by outcome.",
	}, []string{"outcome"})

	OAuthCallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "laptomania",
		Name:      "oauth_callbacks_total",
		Help:      "OAuth callback resolutions, by provider and outcome.",
	}, []string{"provider", "outcome"})

	VerificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "laptomania",
		Name:      "email_verifications_total",
		Help:      "Verification code redemptions, by outcome.",
	}, []string{"outcome"})

	SweptCodesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "laptomania",
		Name:      "swept_verification_codes_total",
		Help:      "Expired verification codes cleared by the sweeper.",
	})

	// Catalog metrics

	ImageUploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "laptomania",
		Name:      "image_uploads_total",
		Help:      "Product image uploads, by outcome.",
	}, []string{"outcome"})

	CatalogCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "laptomania",
		Name:      "catalog_cache_total",
		Help:      "Catalog list cache lookups, by result.",
	}, []string{"result"})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "laptomania",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "laptomania",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		LoginsTotal,
		RegistrationsTotal,
		OAuthCallbacksTotal,
		VerificationsTotal,
		SweptCodesTotal,
		ImageUploadsTotal,
		CatalogCacheTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves /metrics plus liveness and readiness probes on a
// separate port, away from the public API.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	if result.Status != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(result)
}
