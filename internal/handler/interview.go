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

type InterviewHandler struct {
	interviewService *service.InterviewService
}

func NewInterviewHandler(interviewService *service.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviewService: interviewService}
}

func (h *InterviewHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/start", h.Start)
	r.Get("/{sessionID}/current", h.CurrentQuestion)
	r.Post("/submit", h.SubmitAnswer)
	r.Post("/finish", h.Finish)
	r.Get("/{sessionID}/summary", h.Summary)
	r.Post("/load-more", h.LoadMore)

	return r
}

type sessionIDRequest struct {
	SessionID string `json:"sessionId"`
}

// POST /api/interview/start
func (h *InterviewHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req sessionIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		writeError(w, apperrors.MissingRequired("sessionId"))
		return
	}

	result, err := h.interviewService.Start(r.Context(), req.SessionID)
	if err != nil {
		log.Error().Err(err).Str("sessionId", req.SessionID).Msg("start interview failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GET /api/interview/{sessionID}/current
func (h *InterviewHandler) CurrentQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	result, err := h.interviewService.CurrentQuestion(r.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Str("sessionId", sessionID).Msg("get current question failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type submitAnswerRequest struct {
	SessionID       string   `json:"sessionId"`
	Transcript      string   `json:"transcript"`
	ConfidenceScore *float64 `json:"confidenceScore"`
	ClarityScore    *float64 `json:"clarityScore"`
	AudioSampleID   *string  `json:"audioSampleId"`
	Duration        *float64 `json:"duration"`
	SpeakingRate    *float64 `json:"speakingRate"`
	RMSEnergy       *float64 `json:"rmsEnergy"`
}

// POST /api/interview/submit
func (h *InterviewHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		writeError(w, apperrors.MissingRequired("sessionId"))
		return
	}

	result, err := h.interviewService.SubmitAnswer(r.Context(), service.SubmitAnswerParams{
		SessionID:       req.SessionID,
		Transcript:      req.Transcript,
		ConfidenceScore: req.ConfidenceScore,
		ClarityScore:    req.ClarityScore,
		AudioSampleID:   req.AudioSampleID,
		Duration:        req.Duration,
		SpeakingRate:    req.SpeakingRate,
		RMSEnergy:       req.RMSEnergy,
	})
	if err != nil {
		log.Error().Err(err).Str("sessionId", req.SessionID).Msg("submit answer failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// POST /api/interview/finish
func (h *InterviewHandler) Finish(w http.ResponseWriter, r *http.Request) {
	var req sessionIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		writeError(w, apperrors.MissingRequired("sessionId"))
		return
	}

	result, err := h.interviewService.Finish(r.Context(), req.SessionID)
	if err != nil {
		log.Error().Err(err).Str("sessionId", req.SessionID).Msg("finish interview failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GET /api/interview/{sessionID}/summary
func (h *InterviewHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	result, err := h.interviewService.Summarize(r.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Str("sessionId", sessionID).Msg("interview summary failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type loadMoreRequest struct {
	SessionID string `json:"sessionId"`
	Count     int    `json:"count"`
}

// POST /api/interview/load-more
func (h *InterviewHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	var req loadMoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		writeError(w, apperrors.MissingRequired("sessionId"))
		return
	}

	result, err := h.interviewService.LoadMore(r.Context(), service.LoadMoreParams{
		SessionID: req.SessionID,
		Count:     req.Count,
		UserID:    middleware.GetUserID(r.Context()),
	})
	if err != nil {
		log.Error().Err(err).Str("sessionId", req.SessionID).Msg("load more questions failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
