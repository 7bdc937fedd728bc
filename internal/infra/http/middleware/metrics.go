package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xavierca1/leadhub/internal/usecase"
)

// rotas fora do chi viram um único label
const unmatchedRoute = "unmatched"

func counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
}

func histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}, labels)
}

// HTTP
var (
	httpRequestsTotal   = counterVec("http_requests_total", "Total number of HTTP requests", "method", "path", "status")
	httpRequestDuration = histogramVec("http_request_duration_seconds", "Duration of HTTP requests in seconds",
		prometheus.DefBuckets, "method", "path")
	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_active_connections",
		Help: "Requests currently being served",
	})
)

// Leads
var (
	leadUploads         = counterVec("lead_uploads_total", "Lead spreadsheet uploads by final status", "status")
	leadUploadRows      = counterVec("lead_upload_rows_total", "Rows processed by lead uploads, by outcome", "outcome")
	leadEventsPublished = counterVec("lead_events_published_total", "Lead events published to the broker", "type", "status")
	integrationErrors   = counterVec("integration_errors_total", "Failed calls to external services", "service")

	leadUploadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lead_upload_duration_seconds",
		Help:    "Processing time of lead uploads in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	})
)

// Sondas não entram nas métricas HTTP.
var skipPaths = map[string]bool{"/metrics": true, "/health": true}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start).Seconds()

		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(code)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(elapsed)
	})
}

// routePattern devolve o padrão do chi (ex.: /api/leads/{id}/stage), nunca o
// path cru, para manter a cardinalidade fixa.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return unmatchedRoute
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}

// Recorder expõe os contadores de domínio para os use cases e a fila.
type Recorder struct{}

func (Recorder) RecordUpload(status string, result *usecase.ImportResult) {
	leadUploads.WithLabelValues(status).Inc()
	if result == nil {
		return
	}
	for outcome, n := range map[string]int{
		"inserted": result.InsertedRows,
		"updated":  result.UpdatedRows,
		"skipped":  result.SkippedRows,
		"error":    result.ErrorRows,
	} {
		leadUploadRows.WithLabelValues(outcome).Add(float64(n))
	}
	leadUploadDuration.Observe(float64(result.ProcessingTime) / 1000)
}

func (Recorder) RecordEventPublished(eventType string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	leadEventsPublished.WithLabelValues(eventType, status).Inc()
}

func (Recorder) RecordIntegrationError(service string) {
	RecordIntegrationError(service)
}
