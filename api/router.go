// Package api exposes availability documents and schedule layouts over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kilianp07/shiftboard/app"
	"github.com/kilianp07/shiftboard/config"
	"github.com/kilianp07/shiftboard/core/availability"
	"github.com/kilianp07/shiftboard/core/layout"
	"github.com/kilianp07/shiftboard/core/logger"
	"github.com/kilianp07/shiftboard/core/model"
	"github.com/kilianp07/shiftboard/core/shifts"
	"github.com/kilianp07/shiftboard/core/storage"
)

// Service is what the handlers need from the application layer.
type Service interface {
	Grid() config.GridConfig
	GetAvailability(ctx context.Context, employee string) (availability.Snapshot, error)
	ListAvailability(ctx context.Context) ([]availability.Snapshot, error)
	SaveAvailability(ctx context.Context, employee string, doc availability.Document) (availability.Snapshot, error)
	ToggleSlot(ctx context.Context, employee string, day model.Day, at model.ClockTime) (model.Category, availability.Snapshot, error)
	GetSchedule(ctx context.Context) (storage.Schedule, error)
	UpdateSchedule(ctx context.Context, feed shifts.Feed) (app.UpdateResult, error)
	DayLayout(ctx context.Context, day model.Day) (layout.DayLayout, error)
	Week(ctx context.Context) ([]layout.DayLayout, error)
	Conflicts(ctx context.Context, day model.Day) ([]layout.Conflict, error)
}

var _ Service = (*app.Service)(nil)

// Handler serves the REST API.
type Handler struct {
	svc     Service
	log     logger.Logger
	maxBody int64
}

// NewRouter returns the routes of the API mounted under /api/v1, plus /healthz.
func NewRouter(svc Service, log logger.Logger, maxBody int64) chi.Router {
	if log == nil {
		log = logger.NopLogger{}
	}
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	h := &Handler{svc: svc, log: log, maxBody: maxBody}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/availability", func(r chi.Router) {
			r.Get("/", h.listAvailability)
			r.Get("/{employee}", h.getAvailability)
			r.Put("/{employee}", h.putAvailability)
			r.Get("/{employee}/grid", h.availabilityGrid)
			r.Post("/{employee}/toggle", h.toggleSlot)
		})
		r.Route("/schedule", func(r chi.Router) {
			r.Get("/", h.getSchedule)
			r.Put("/", h.putSchedule)
			r.Get("/days", h.week)
			r.Get("/days/{day}/lanes", h.dayLanes)
			r.Get("/days/{day}/conflicts", h.dayConflicts)
		})
	})
	return r
}

func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			log.Debugw("http request", map[string]any{
				"method":      r.Method,
				"route":       route,
				"status":      ww.Status(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  middleware.GetReqID(r.Context()),
			})
		})
	}
}
