package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/futureview-api/internal/api/middleware"
	"github.com/phrazzld/futureview-api/internal/metrics"
	"github.com/phrazzld/futureview-api/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds what NewRouter needs to build the HTTP surface.
type RouterConfig struct {
	Viewings           service.FutureViewingService
	Screens            service.ScreenService
	Logger             *slog.Logger
	CORSAllowedOrigins []string

	// StaticDir is served under /static/ when set.
	StaticDir string

	// HealthCheck reports readiness; nil means always healthy.
	HealthCheck func(r *http.Request) error

	// MetricsRegisterer receives the HTTP collectors. Nil leaves them
	// unregistered, which lets tests build many routers.
	MetricsRegisterer prometheus.Registerer
}

// NewRouter creates the application router with all routes and middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	httpMetrics := metrics.NewMiddleware("api")
	if cfg.MetricsRegisterer != nil {
		if err := httpMetrics.Register(cfg.MetricsRegisterer); err != nil {
			log.Warn("failed to register HTTP metrics", slog.String("error", err.Error()))
		}
	}

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{middleware.TraceHeader},
		MaxAge:         300,
	}))
	r.Use(httpMetrics.Handler)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewTraceMiddleware(log))

	viewingHandler := NewFutureViewingHandler(cfg.Viewings, log)
	screenHandler := NewScreenHandler(cfg.Screens, cfg.Viewings, log)

	r.Route("/api", func(r chi.Router) {
		r.Route("/future-viewings", func(r chi.Router) {
			r.Post("/", viewingHandler.Submit)
			r.Get("/", viewingHandler.List)
			r.Get("/{id}", viewingHandler.Get)
		})
		r.Route("/screens", func(r chi.Router) {
			r.Post("/", screenHandler.Register)
			r.Get("/{id}", screenHandler.Get)
			r.Get("/{id}/recent", screenHandler.Recent)
		})
	})

	if cfg.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	}

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if cfg.HealthCheck != nil {
			if err := cfg.HealthCheck(req); err != nil {
				log.Error("health check failed", slog.String("error", err.Error()))
				http.Error(w, "UNAVAILABLE", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}
