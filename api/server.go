/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the dashboard
  5. Metrics:    Prometheus request counter and latency histogram

ROUTE GROUPS:
  /api/members/*        Members, attendance, rating
  /api/earnings/*       Earnings and split preview
  /api/day-statuses/*   Day status intervals
  /api/work-slots/*     Work slots
  /api/rating/*         Ad-hoc scoring, calibration, leaderboard
  /api/rollup/*         Category and contributor rollups
  /api/admin/*          Admin operations
  /api/scenarios/*      Demo scenarios
  /metrics              Prometheus scrape endpoint

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - monitoring/metrics.go: Metric definitions
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dexim234/apevaultteams/monitoring"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured. An empty
// origins list allows every origin.
func NewRouter(h *Handler, origins []string) *chi.Mux {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))
	r.Use(metricsMiddleware)

	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Member routes
		r.Route("/members", func(r chi.Router) {
			r.Get("/", h.ListMembers)
			r.Post("/", h.CreateMember)
			r.Get("/{id}", h.GetMember)
			r.Delete("/{id}", h.DeleteMember)
			r.Get("/{id}/attendance", h.GetAttendance)
			r.Get("/{id}/hours", h.GetHours)
			r.Get("/{id}/rating", h.GetMemberRating)
			r.Get("/{id}/snapshot", h.GetSnapshot)
			r.Put("/{id}/counters", h.UpdateCounters)
		})

		// Earning routes
		r.Route("/earnings", func(r chi.Router) {
			r.Get("/", h.ListEarnings)
			r.Post("/", h.CreateEarning)
			r.Post("/split", h.SplitEarning)
			r.Get("/{id}", h.GetEarning)
			r.Put("/{id}", h.UpdateEarning)
			r.Delete("/{id}", h.DeleteEarning)
		})

		// Attendance record routes
		r.Route("/day-statuses", func(r chi.Router) {
			r.Get("/", h.ListDayStatuses)
			r.Post("/", h.CreateDayStatus)
			r.Put("/{id}", h.UpdateDayStatus)
			r.Delete("/{id}", h.DeleteDayStatus)
		})
		r.Route("/work-slots", func(r chi.Router) {
			r.Get("/", h.ListWorkSlots)
			r.Post("/", h.CreateWorkSlot)
			r.Put("/{id}", h.UpdateWorkSlot)
			r.Delete("/{id}", h.DeleteWorkSlot)
		})

		// Rating routes
		r.Route("/rating", func(r chi.Router) {
			r.Post("/compute", h.ComputeRating)
			r.Get("/calibration", h.GetCalibration)
			r.Get("/leaderboard", h.GetLeaderboard)
		})

		// Rollup routes
		r.Route("/rollup", func(r chi.Router) {
			r.Get("/categories", h.GetCategoryRollup)
			r.Get("/contributors", h.GetContributorRanking)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/recompute", h.RecomputeAll)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}

// metricsMiddleware records every request under its route pattern, so
// /api/members/{id} is one series rather than one per member.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		monitoring.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		monitoring.ResponseTimeHistogram.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
