// Package api exposes the practice engine over HTTP: session lifecycle
// control, transcription submission, scoring summaries, and the review
// history of archived sessions.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rfweber/qsotrainer/internal/config"
	"github.com/rfweber/qsotrainer/internal/session"
	"github.com/rfweber/qsotrainer/internal/storage/sqlite"
	"github.com/rfweber/qsotrainer/internal/websocket"
	"github.com/rfweber/qsotrainer/pkg/logger"
)

// Router is the API router
type Router struct {
	handler    *Handler
	middleware *Middleware
	config     *config.Config
	logger     *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(manager *session.Manager, storage *sqlite.SessionStorage, wsServer *websocket.Server, cfg *config.Config, log *logger.Logger) *Router {
	return &Router{
		handler:    NewHandler(manager, storage, wsServer, cfg, log),
		middleware: NewMiddleware(log),
		config:     cfg,
		logger:     log.Named("api-router"),
	}
}

// Routes returns the API routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(r.middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Recoverer)
	router.Use(r.middleware.CORS(r.config.Server.CORSAllowedOrigins))

	// API routes
	router.Route("/api/v1", func(router chi.Router) {
		// Session lifecycle
		router.Post("/sessions", r.handler.CreateSession)
		router.Get("/sessions/{id}", r.handler.GetSession)
		router.Delete("/sessions/{id}", r.handler.DeleteSession)
		router.Post("/sessions/{id}/start", r.handler.StartSession)
		router.Post("/sessions/{id}/pause", r.handler.PauseSession)
		router.Post("/sessions/{id}/resume", r.handler.ResumeSession)
		router.Post("/sessions/{id}/replay", r.handler.ReplaySession)
		router.Post("/sessions/{id}/skip", r.handler.SkipExchange)
		router.Post("/sessions/{id}/stop", r.handler.StopSession)

		// Scoring
		router.Post("/sessions/{id}/submit", r.handler.SubmitTranscription)
		router.Get("/sessions/{id}/exchange", r.handler.GetCurrentExchange)
		router.Get("/sessions/{id}/summary", r.handler.GetSummary)

		// Archived sessions
		router.Get("/history", r.handler.GetHistory)
		router.Get("/history/{id}", r.handler.GetHistoryExchanges)

		// WebSocket route
		router.Get("/ws", r.handler.HandleWebSocket)

		// Health check
		router.Get("/health", r.handler.GetHealth)
	})

	return router
}
