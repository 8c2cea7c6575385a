package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// HubMetrics reports websocket hub counters. The hub implements it.
type HubMetrics interface {
	GetHubMetrics() map[string]interface{}
}

// MetricsHandler exposes the Prometheus scrape endpoint and hub counters
type MetricsHandler struct {
	prometheus http.Handler
	hub        HubMetrics
}

// NewMetricsHandler creates a new metrics handler. prometheus may be nil when
// the metric exporter is disabled.
func NewMetricsHandler(prometheus http.Handler, hub HubMetrics) *MetricsHandler {
	return &MetricsHandler{
		prometheus: prometheus,
		hub:        hub,
	}
}

// Routes sets up the metrics routes
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Prometheus)
	r.Get("/websocket", h.WebSocket)
	return r
}

// Prometheus serves the OpenTelemetry Prometheus exporter output
func (h *MetricsHandler) Prometheus(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		http.Error(w, "metrics exporter disabled", http.StatusServiceUnavailable)
		return
	}
	h.prometheus.ServeHTTP(w, r)
}

// WebSocket returns hub connection counters
func (h *MetricsHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		http.Error(w, "websocket hub disabled", http.StatusServiceUnavailable)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.hub.GetHubMetrics(),
	})
}
