package router

import (
	"net/http"

	"github.com/BerylCAtieno/document-compliance-api/internal/handlers"
	"github.com/BerylCAtieno/document-compliance-api/internal/middleware"
	"github.com/BerylCAtieno/document-compliance-api/internal/services"
	"github.com/BerylCAtieno/document-compliance-api/internal/utils"

	"github.com/gorilla/mux"
)

type Options struct {
	MaxFileSize int64
	// Health checks reported by /health, keyed by component name.
	Checkers map[string]middleware.HealthChecker
}

func NewRouter(service services.ReviewService, opts Options, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	sessionHandler := handlers.NewSessionHandler(service, logger, opts.MaxFileSize)

	// Routes
	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", middleware.HealthHandler(opts.Checkers)).Methods(http.MethodGet)

	api.HandleFunc("/criteria", sessionHandler.ListCriteria).Methods(http.MethodGet)

	// Session endpoints
	api.HandleFunc("/sessions", sessionHandler.CreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", sessionHandler.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", sessionHandler.EndSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/document", sessionHandler.UploadDocument).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/document", sessionHandler.DownloadDocument).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/analyze", sessionHandler.AnalyzeDocument).Methods(http.MethodPost)

	// CORS wraps the mux so preflight requests are answered even though no
	// route is registered for OPTIONS.
	return middleware.CORS()(r)
}
