package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/JoshOsborne1/partysync/internal/hub"
	"github.com/JoshOsborne1/partysync/internal/ws"
)

func SetupRoutes(h *hub.Hub, log *zap.Logger, originPatterns []string) http.Handler {
	r := chi.NewRouter()

	r.Post("/rooms", CreateRoom(h, log))
	r.Get("/healthz", Healthz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/ws", ws.Handler(h, log, originPatterns))
	return r
}
