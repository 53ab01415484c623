package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires up the HTTP API of the rotation service
func NewRouter(rotationHandler *RotationHandler, statsHandler *StatsHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /sessions", rotationHandler.StartSession)
	mux.HandleFunc("GET /sessions/{id}", rotationHandler.GetSession)
	mux.HandleFunc("POST /sessions/{id}/pause", rotationHandler.PauseSession)
	mux.HandleFunc("POST /sessions/{id}/resume", rotationHandler.ResumeSession)
	mux.HandleFunc("POST /sessions/{id}/stop", rotationHandler.StopSession)
	mux.HandleFunc("POST /sessions/{id}/check", rotationHandler.CheckSession)
	mux.HandleFunc("POST /sessions/{id}/enqueue-check", rotationHandler.EnqueueCheck)
	mux.HandleFunc("GET /sessions/{id}/results", rotationHandler.GetSessionResults)

	mux.HandleFunc("GET /campaigns/{id}/stats", statsHandler.GetCampaignStats)
	mux.HandleFunc("POST /campaigns/{id}/stats/collect", statsHandler.CollectCampaignStats)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		JSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return mux
}
