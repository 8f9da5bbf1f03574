package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/smartprep/interview-server-go/internal/config"
	apperrors "github.com/smartprep/interview-server-go/internal/errors"
)

// Transcriber proxies audio to the Whisper/ML sidecar: /transcribe for the
// transcript and audio features, /predict for confidence/clarity scores.
type Transcriber struct {
	httpClient *http.Client
	baseURL    string
}

func NewTranscriber(baseURL string) *Transcriber {
	return &Transcriber{
		httpClient: &http.Client{Timeout: config.TranscribeTimeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

type Transcription struct {
	Transcript string             `json:"transcript"`
	SampleID   string             `json:"sample_id"`
	Features   map[string]float64 `json:"features"`
}

type AudioScores struct {
	Confidence float64 `json:"confidence"`
	Clarity    float64 `json:"clarity"`
}

func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, filename, contentType string) (*Transcription, error) {
	var result Transcription
	if err := t.postAudio(ctx, "/transcribe", "audio", audio, filename, contentType, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (t *Transcriber) Score(ctx context.Context, audio []byte, filename, contentType string) (*AudioScores, error) {
	var result AudioScores
	if err := t.postAudio(ctx, "/predict", "file", audio, filename, contentType, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (t *Transcriber) postAudio(ctx context.Context, path, field string, audio []byte, filename, contentType string, dest any) error {
	body, formContentType, err := buildMultipart(field, filename, contentType, audio)
	if err != nil {
		return fmt.Errorf("build multipart body: %w", err)
	}

	var status int
	for attempt := 1; attempt <= config.AIMaxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", formContentType)

		resp, err := t.httpClient.Do(req)
		if err != nil {
			return apperrors.AIUnavailable(err)
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return apperrors.AIUnavailable(readErr)
		}

		status = resp.StatusCode
		if retryableStatus(status) && attempt < config.AIMaxAttempts {
			log.Warn().Int("status", status).Str("path", path).Msg("retrying audio service call")
			continue
		}

		if status != http.StatusOK {
			return apperrors.AIUnavailable(fmt.Errorf("audio service %s returned status %d", path, status))
		}

		if err := json.Unmarshal(data, dest); err != nil {
			return apperrors.AIUnavailable(fmt.Errorf("decode audio service response: %w", err))
		}
		return nil
	}

	return apperrors.AIUnavailable(fmt.Errorf("audio service %s returned status %d after %d attempts", path, status, config.AIMaxAttempts))
}

func buildMultipart(field, filename, contentType string, data []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}
