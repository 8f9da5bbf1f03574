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

type QuestionHandler struct {
	questionService *service.QuestionService
}

func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

func (h *QuestionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/add", h.AddToSession)
	r.Post("/{questionID}/pin", h.TogglePin)
	r.Post("/{questionID}/note", h.UpdateNote)
	r.Post("/{questionID}/learn-more", h.LearnMore)

	return r
}

type addQuestionsRequest struct {
	SessionID string                        `json:"sessionId"`
	Questions []service.QuestionAnswerInput `json:"questions"`
}

// POST /api/questions/add
func (h *QuestionHandler) AddToSession(w http.ResponseWriter, r *http.Request) {
	var req addQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		writeError(w, apperrors.MissingRequired("sessionId"))
		return
	}

	total, err := h.questionService.AddToSession(r.Context(), req.SessionID, req.Questions)
	if err != nil {
		log.Error().Err(err).Str("sessionId", req.SessionID).Msg("add questions failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "Questions added to session",
		"totalQuestions": total,
	})
}

// POST /api/questions/{questionID}/pin
func (h *QuestionHandler) TogglePin(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")

	question, err := h.questionService.TogglePin(r.Context(), questionID)
	if err != nil {
		log.Error().Err(err).Str("questionId", questionID).Msg("toggle pin failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, question)
}

type updateNoteRequest struct {
	Note string `json:"note"`
}

// POST /api/questions/{questionID}/note
func (h *QuestionHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")

	var req updateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	question, err := h.questionService.UpdateNote(r.Context(), questionID, req.Note)
	if err != nil {
		log.Error().Err(err).Str("questionId", questionID).Msg("update note failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, question)
}

// POST /api/questions/{questionID}/learn-more
// Called only after a Learn More explanation has actually been shown.
func (h *QuestionHandler) LearnMore(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")

	question, err := h.questionService.LearnMore(r.Context(), questionID)
	if err != nil {
		log.Error().Err(err).Str("questionId", questionID).Msg("learn more increment failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, question)
}

type explainRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// POST /api/ai/explain
func (h *QuestionHandler) Explain(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	explanation, err := h.questionService.Explain(r.Context(), middleware.GetUserID(r.Context()), req.Question, req.Answer)
	if err != nil {
		log.Error().Err(err).Msg("concept explanation failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, explanation)
}
