package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rfweber/qsotrainer/internal/config"
	"github.com/rfweber/qsotrainer/internal/qso"
	"github.com/rfweber/qsotrainer/internal/session"
	"github.com/rfweber/qsotrainer/internal/storage/sqlite"
	"github.com/rfweber/qsotrainer/internal/websocket"
	"github.com/rfweber/qsotrainer/pkg/logger"
)

// Handler contains the HTTP request handlers
type Handler struct {
	manager  *session.Manager
	storage  *sqlite.SessionStorage
	wsServer *websocket.Server
	config   *config.Config
	logger   *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(manager *session.Manager, storage *sqlite.SessionStorage, wsServer *websocket.Server, cfg *config.Config, log *logger.Logger) *Handler {
	return &Handler{
		manager:  manager,
		storage:  storage,
		wsServer: wsServer,
		config:   cfg,
		logger:   log.Named("api-handler"),
	}
}

// createSessionRequest is the body of POST /sessions. Zero fields fall
// back to the configured session defaults.
type createSessionRequest struct {
	Count          int      `json:"count"`
	Verbosity      string   `json:"verbosity"`
	FuzzyThreshold *float64 `json:"fuzzy_threshold"`
	PartialCredit  *bool    `json:"partial_credit"`
	CaseSensitive  *bool    `json:"case_sensitive"`
	Region1        string   `json:"region1"`
	Region2        string   `json:"region2"`
	Seed           int64    `json:"seed"`
}

type sessionResponse struct {
	ID      string               `json:"id"`
	State   session.SessionState `json:"state"`
	Current int                  `json:"current"`
	Total   int                  `json:"total"`
}

type exchangeResponse struct {
	Verbosity qso.Verbosity `json:"verbosity"`
	Text      string        `json:"text"`
	Tokens    []string      `json:"tokens"`
}

type submitRequest struct {
	Answers map[string]string `json:"answers"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// CreateSession creates a new practice session.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	// An empty body means "use the configured defaults".
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg := h.config.SessionDefaults()
	if req.Count != 0 {
		cfg.Count = req.Count
	}
	if req.Verbosity != "" {
		cfg.Verbosity = qso.Verbosity(req.Verbosity)
	}
	if req.FuzzyThreshold != nil {
		cfg.FuzzyThreshold = *req.FuzzyThreshold
	}
	if req.PartialCredit != nil {
		cfg.PartialCredit = *req.PartialCredit
	}
	if req.CaseSensitive != nil {
		cfg.CaseSensitive = *req.CaseSensitive
	}

	id, sess, err := h.manager.Create(session.CreateParams{
		Config:  cfg,
		Region1: req.Region1,
		Region2: req.Region2,
		Seed:    req.Seed,
	})
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	current, total := sess.Progress()
	h.writeJSON(w, http.StatusCreated, sessionResponse{
		ID:      id,
		State:   sess.State(),
		Current: current,
		Total:   total,
	})
}

// GetSession returns the state and progress of a live session.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, id, ok := h.session(w, r)
	if !ok {
		return
	}
	current, total := sess.Progress()
	h.writeJSON(w, http.StatusOK, sessionResponse{
		ID:      id,
		State:   sess.State(),
		Current: current,
		Total:   total,
	})
}

// StartSession begins playback.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, func(sess *session.PracticeSession) error { return sess.Start() })
}

// PauseSession suspends playback.
func (h *Handler) PauseSession(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, func(sess *session.PracticeSession) error { return sess.Pause() })
}

// ResumeSession continues playback after a pause.
func (h *Handler) ResumeSession(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, func(sess *session.PracticeSession) error { return sess.Resume() })
}

// ReplaySession restarts the current exchange from its first token.
func (h *Handler) ReplaySession(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, func(sess *session.PracticeSession) error { return sess.Replay() })
}

// SkipExchange abandons the current exchange and advances.
func (h *Handler) SkipExchange(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, func(sess *session.PracticeSession) error { return sess.Skip() })
}

// StopSession terminates the session.
func (h *Handler) StopSession(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, func(sess *session.PracticeSession) error { return sess.Stop() })
}

// SubmitTranscription grades the caller's answers for the current
// exchange and returns the per-element result.
func (h *Handler) SubmitTranscription(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.session(w, r)
	if !ok {
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := sess.Submit(req.Answers)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// GetCurrentExchange returns the text being played. The ground truth is
// withheld; it comes back element by element in the scoring result.
func (h *Handler) GetCurrentExchange(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.session(w, r)
	if !ok {
		return
	}
	exchange, ok := sess.CurrentExchange()
	if !ok {
		h.writeError(w, http.StatusNotFound, "no current exchange")
		return
	}
	h.writeJSON(w, http.StatusOK, exchangeResponse{
		Verbosity: exchange.Verbosity,
		Text:      exchange.Text,
		Tokens:    exchange.Tokens,
	})
}

// GetSummary returns the scoring summary so far.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, sess.Summary())
}

// DeleteSession stops and removes a live session.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.manager.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

// GetHistory lists archived sessions, newest first.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		h.writeError(w, http.StatusNotFound, "session history is not enabled")
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}
	sessions, err := h.storage.ListSessions(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list archived sessions", logger.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []sqlite.SessionRow{}
	}
	h.writeJSON(w, http.StatusOK, sessions)
}

// GetHistoryExchanges returns the stored exchanges and results of one
// archived session.
func (h *Handler) GetHistoryExchanges(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		h.writeError(w, http.StatusNotFound, "session history is not enabled")
		return
	}
	id := chi.URLParam(r, "id")
	exchanges, err := h.storage.GetSessionExchanges(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load archived session",
			logger.String("session_id", id),
			logger.Error(err),
		)
		h.writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if len(exchanges) == 0 {
		h.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	h.writeJSON(w, http.StatusOK, exchanges)
}

// GetHealth is the health check endpoint.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleWebSocket upgrades the connection for session event delivery.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.wsServer.HandleWS(w, r)
}

// session resolves the {id} route parameter to a live session.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.PracticeSession, string, bool) {
	id := chi.URLParam(r, "id")
	sess, ok := h.manager.Get(id)
	if !ok {
		h.writeError(w, http.StatusNotFound, "session not found")
		return nil, "", false
	}
	return sess, id, true
}

// control runs a state transition and reports the resulting state.
func (h *Handler) control(w http.ResponseWriter, r *http.Request, op func(*session.PracticeSession) error) {
	sess, id, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := op(sess); err != nil {
		h.writeSessionError(w, err)
		return
	}
	current, total := sess.Progress()
	h.writeJSON(w, http.StatusOK, sessionResponse{
		ID:      id,
		State:   sess.State(),
		Current: current,
		Total:   total,
	})
}

// writeSessionError maps session errors to HTTP statuses. Operations
// invalid for the current state are conflicts, not client mistakes.
func (h *Handler) writeSessionError(w http.ResponseWriter, err error) {
	var stateErr *session.StateError
	if errors.As(err, &stateErr) {
		h.writeError(w, http.StatusConflict, err.Error())
		return
	}
	var concErr *session.ConcurrencyError
	if errors.As(err, &concErr) {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeError(w, http.StatusInternalServerError, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", logger.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}
