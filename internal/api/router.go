// Package api serves the affordability engine over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/zipafford/internal/dataset"
	"github.com/sells-group/zipafford/internal/model"
	"github.com/sells-group/zipafford/internal/pipeline"
	"github.com/sells-group/zipafford/internal/store"
)

// Options wires the router's collaborators.
type Options struct {
	Pipeline *pipeline.Pipeline
	// Store backs the profile and run endpoints; nil disables them.
	Store store.Store
	// Cache is reported by /api/cache/stats; nil reports an empty cache.
	Cache *dataset.TableCache
	// Defaults are the inputs a request starts from before its own fields.
	Defaults       model.AffordabilityInputs
	AllowedOrigins []string
}

// Server holds the handler dependencies.
type Server struct {
	pipeline *pipeline.Pipeline
	store    store.Store
	cache    *dataset.TableCache
	defaults model.AffordabilityInputs
}

// NewRouter builds the HTTP handler.
func NewRouter(opts Options) http.Handler {
	s := &Server{
		pipeline: opts.Pipeline,
		store:    opts.Store,
		cache:    opts.Cache,
		defaults: opts.Defaults,
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/max-price", s.maxPrice)
		r.Post("/tier", s.tier)
		r.Post("/nationwide", s.nationwide)
		r.Get("/nationwide/states/{state}", s.stateDetail)
		r.Get("/zips/{zip}", s.zipDetail)
		r.Post("/commute", s.commute)
		r.Get("/cache/stats", s.cacheStats)

		r.Group(func(r chi.Router) {
			r.Use(s.requireStore)
			r.Get("/profiles", s.listProfiles)
			r.Get("/profiles/{name}", s.getProfile)
			r.Put("/profiles/{name}", s.saveProfile)
			r.Delete("/profiles/{name}", s.deleteProfile)
			r.Get("/runs", s.listRuns)
			r.Get("/runs/{id}", s.getRun)
		})
	})

	return r
}

func (s *Server) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil {
			writeError(w, http.StatusServiceUnavailable, "store is not configured")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
