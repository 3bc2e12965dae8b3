package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dispatch-service/internal/http/handlers"
	"dispatch-service/internal/http/middleware"
	"dispatch-service/internal/logx"
)

// New constructs a chi-based http.Handler with base middleware and routes.
func New(
	h *handlers.Handlers,
	couriers *handlers.CourierHandler,
	dispatcher *handlers.DispatchHandler,
	logger logx.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.Observability(logger))

	r.Get("/ping", h.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(h.HealthcheckHead))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/couriers", func(r chi.Router) {
		r.Get("/", couriers.List)
		r.Post("/", couriers.Create)
		r.Get("/{id}", couriers.GetByID)
		r.Patch("/{id}", couriers.Update)
		r.Post("/{id}/location", couriers.UpdateLocation)
	})

	r.Post("/delivery/assign", dispatcher.Assign)

	r.Route("/assignments", func(r chi.Router) {
		r.Get("/", dispatcher.List)
		r.Get("/{id}", dispatcher.GetByID)
		r.Put("/{id}", dispatcher.UpdateStatus)
	})

	r.NotFound(http.HandlerFunc(h.NotFound))

	return r
}
