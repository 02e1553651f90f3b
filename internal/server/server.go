// Package server exposes the dashboard page, the dataset API and the chat
// endpoints over HTTP.
package server

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"samarkand-dashboard/internal/chat"
	"samarkand-dashboard/internal/common/database"
	apperrors "samarkand-dashboard/internal/common/errors"
	"samarkand-dashboard/internal/common/logger"
	"samarkand-dashboard/internal/common/observability"
	"samarkand-dashboard/internal/common/validation"
	"samarkand-dashboard/internal/dataset"
)

//go:embed web
var webFS embed.FS

// maxBodyBytes bounds chat request bodies.
const maxBodyBytes = 1 << 20

// Info identifies the running service in /health.
type Info struct {
	Name    string
	Version string
}

type Server struct {
	info       Info
	store      *dataset.Store
	contexts   *chat.ContextCache
	responder  *chat.Responder
	obs        *observability.Observability
	logger     logger.Logger
	errors     *apperrors.ErrorHandler
	chatSchema *validation.Schema
	checks     []database.Check
	mux        *http.ServeMux
}

type Option func(*Server)

// WithReadinessChecks adds external connections that /ready must reach.
func WithReadinessChecks(checks ...database.Check) Option {
	return func(s *Server) {
		s.checks = append(s.checks, checks...)
	}
}

func New(info Info, store *dataset.Store, contexts *chat.ContextCache, responder *chat.Responder, obs *observability.Observability, log logger.Logger, opts ...Option) *Server {
	log = log.WithFields(map[string]interface{}{"component": "http"})
	s := &Server{
		info:       info,
		store:      store,
		contexts:   contexts,
		responder:  responder,
		obs:        obs,
		logger:     log,
		errors:     apperrors.NewErrorHandler(log),
		chatSchema: validation.MustCompile(validation.ChatRequestSchema),
		mux:        http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	static, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err)
	}

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	s.mux.HandleFunc("GET /api/hospital-insights", s.handleHospitalInsights)
	s.mux.HandleFunc("GET /api/{slug}/filters", s.handleFilters)
	s.mux.HandleFunc("GET /api/{slug}", s.handleDataset)

	s.mux.HandleFunc("POST /chat", s.chatHandler(chatRoute{
		replyKey: "reply",
		errorKey: "error",
	}))
	s.mux.HandleFunc("POST /deepseek_chat_bot", s.chatHandler(chatRoute{
		replyKey:     "response",
		errorKey:     "response",
		blankMessage: "No message provided.",
	}))

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /ready", s.handleReady)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// Handler returns the routes wrapped in request-id, logging and metrics middleware.
func (s *Server) Handler() http.Handler {
	return s.requestID(s.instrument(s.mux))
}
