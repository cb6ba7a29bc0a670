package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes builds the full route tree.
func (h *Handler) Routes(allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/ranking", func(r chi.Router) {
			r.Get("/novel", h.GetNovelRanking)
			r.Get("/user", h.GetUserRanking)
			r.Get("/author", h.GetAuthorRanking)
			r.Get("/novel/{novelId}/rank", h.GetNovelRank)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/ranking/rebuild", h.TriggerRebuild)

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/users/daily", h.GetDailyActiveUsers)
				r.Get("/users/trends", h.GetUserTrends)
				r.Get("/reading/activity", h.GetReadingActivity)
				r.Get("/summary", h.GetAnalyticsSummary)
				r.Get("/content/top", h.GetTopContent)
				r.Get("/platform", h.GetPlatformStatistics)
			})
		})
	})

	return r
}

// requestLogger logs each request with its status and latency.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		h.logger.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
