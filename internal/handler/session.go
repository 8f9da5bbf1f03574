package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/smartprep/interview-server-go/internal/errors"
	"github.com/smartprep/interview-server-go/internal/middleware"
	"github.com/smartprep/interview-server-go/internal/service"
)

type SessionHandler struct {
	sessionService *service.SessionService
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{sessionID}", h.Get)
	r.Delete("/{sessionID}", h.Delete)

	return r
}

type createSessionRequest struct {
	Role              string   `json:"role"`
	Experience        string   `json:"experience"`
	TopicsToFocus     []string `json:"topicsToFocus"`
	Description       string   `json:"description"`
	NumberOfQuestions int      `json:"numberOfQuestions"`
}

// POST /api/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	detail, err := h.sessionService.Create(r.Context(), middleware.GetUserID(r.Context()), service.CreateSessionParams{
		Role:          req.Role,
		Experience:    req.Experience,
		TopicsToFocus: req.TopicsToFocus,
		Description:   req.Description,
		QuestionCount: req.NumberOfQuestions,
	})
	if err != nil {
		log.Error().Err(err).Msg("create session failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, detail)
}

// GET /api/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessionService.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		log.Error().Err(err).Msg("list sessions failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// GET /api/sessions/{sessionID}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	detail, err := h.sessionService.Get(r.Context(), middleware.GetUserID(r.Context()), sessionID)
	if err != nil {
		log.Error().Err(err).Str("sessionId", sessionID).Msg("get session failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// DELETE /api/sessions/{sessionID}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.sessionService.Delete(r.Context(), middleware.GetUserID(r.Context()), sessionID); err != nil {
		log.Error().Err(err).Str("sessionId", sessionID).Msg("delete session failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Session deleted"})
}
