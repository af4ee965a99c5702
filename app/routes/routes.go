package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"blogapi/app/controllers"
	"blogapi/app/metrics"
	"blogapi/app/middleware"
	"blogapi/app/repositories"
	"blogapi/app/services"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Options configures SetupRoutes.
type Options struct {
	Store  *repositories.Store
	Logger *zap.Logger

	// Registry enables /metrics and HTTP metrics when set.
	Registry *prometheus.Registry

	// Ping backs /health. Nil means always healthy.
	Ping func(ctx context.Context) error
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(opts Options) *mux.Router {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var m *metrics.Metrics
	if opts.Registry != nil {
		m = metrics.NewWithRegistry(opts.Registry, logger)
		metrics.RegisterPostsTotal(opts.Registry, opts.Store.Posts, logger)
	}

	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.ContentTypeJSON)
	if m != nil {
		router.Use(middleware.Metrics(m))
	}

	postController := controllers.NewPostController(
		services.NewPostService(opts.Store.Posts), logger, m)
	commentController := controllers.NewCommentController(
		services.NewCommentService(opts.Store.Comments, opts.Store.Posts), logger, m)

	// Posts endpoints
	posts := router.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("", postController.Index).Methods("GET")
	posts.HandleFunc("", postController.Create).Methods("POST")
	posts.HandleFunc("/{id}", postController.Show).Methods("GET")
	posts.HandleFunc("/{id}", postController.Update).Methods("PUT", "PATCH")
	posts.HandleFunc("/{id}", postController.Delete).Methods("DELETE")

	// Comments endpoints
	posts.HandleFunc("/{post_id}/comments", commentController.Index).Methods("GET")
	posts.HandleFunc("/{post_id}/comments", commentController.Create).Methods("POST")
	router.HandleFunc("/comments/{id}", commentController.Show).Methods("GET")
	router.HandleFunc("/comments/{id}", commentController.Update).Methods("PUT", "PATCH")
	router.HandleFunc("/comments/{id}", commentController.Delete).Methods("DELETE")

	router.HandleFunc("/health", healthHandler(opts.Ping)).Methods("GET")
	if opts.Registry != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})).Methods("GET")
	}

	// Middleware does not run for unmatched routes, so these set their own headers.
	router.NotFoundHandler = jsonStatus(http.StatusNotFound, "not found")
	router.MethodNotAllowedHandler = jsonStatus(http.StatusMethodNotAllowed, "method not allowed")

	return router
}

func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, "ok"
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				status, body = http.StatusServiceUnavailable, "unavailable"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"status": body})
	}
}

func jsonStatus(status int, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": message})
	})
}
