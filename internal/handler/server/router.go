package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/systemhub/member-api/internal/handler"
)

func NewRouter(h *handler.Handler, metrics *Metrics, log *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(h.Authenticate)
		r.Route("/v1", func(r chi.Router) {
			r.Get("/a/{aid}", h.GetSystemByAccount)
			SetupMemberRoutes(r, h)
		})
		SetupMemberRoutes(r, h)
	})

	return r
}

// SetupMemberRoutes mounts the member endpoints under /m on r.
func SetupMemberRoutes(r chi.Router, h *handler.Handler) {
	r.Route("/m", func(r chi.Router) {
		r.Get("/{hid}", h.GetMember)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireSystem)
			r.Post("/", h.CreateMember)
			r.Patch("/{hid}", h.UpdateMember)
			r.Delete("/{hid}", h.DeleteMember)
		})
	})
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
