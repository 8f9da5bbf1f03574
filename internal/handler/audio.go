package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/smartprep/interview-server-go/internal/ai"
	"github.com/smartprep/interview-server-go/internal/audit"
	"github.com/smartprep/interview-server-go/internal/config"
	apperrors "github.com/smartprep/interview-server-go/internal/errors"
)

// AudioProcessor is the transcription/scoring collaborator boundary.
type AudioProcessor interface {
	Transcribe(ctx context.Context, audio []byte, filename, contentType string) (*ai.Transcription, error)
	Score(ctx context.Context, audio []byte, filename, contentType string) (*ai.AudioScores, error)
}

type AudioHandler struct {
	processor AudioProcessor
}

func NewAudioHandler(processor AudioProcessor) *AudioHandler {
	return &AudioHandler{processor: processor}
}

func (h *AudioHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/transcribe", h.Transcribe)

	return r
}

type transcribeResponse struct {
	Transcript      string             `json:"transcript"`
	SampleID        string             `json:"sampleId"`
	Features        map[string]float64 `json:"features,omitempty"`
	ConfidenceScore float64            `json:"confidenceScore"`
	ClarityScore    float64            `json:"clarityScore"`
}

// POST /api/audio/transcribe
// Accepts a multipart "audio" file and proxies it to the Whisper/ML sidecar
// for a transcript plus confidence/clarity scores.
func (h *AudioHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.MaxAudioUploadBytes); err != nil {
		writeError(w, apperrors.ValidationError("Invalid multipart body"))
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, apperrors.MissingRequired("audio file"))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeError(w, apperrors.ValidationError("Failed to read audio file"))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	transcription, err := h.processor.Transcribe(r.Context(), audio, header.Filename, contentType)
	if err != nil {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventTranscribeFailed})
		log.Error().Err(err).Msg("audio transcription failed")
		writeError(w, err)
		return
	}

	scores, err := h.processor.Score(r.Context(), audio, header.Filename, contentType)
	if err != nil {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventTranscribeFailed})
		log.Error().Err(err).Msg("audio scoring failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transcribeResponse{
		Transcript:      transcription.Transcript,
		SampleID:        transcription.SampleID,
		Features:        transcription.Features,
		ConfidenceScore: scores.Confidence,
		ClarityScore:    scores.Clarity,
	})
}
