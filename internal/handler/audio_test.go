package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/smartprep/interview-server-go/internal/ai"
	apperrors "github.com/smartprep/interview-server-go/internal/errors"
)

type mockAudioProcessor struct {
	mock.Mock
}

func (m *mockAudioProcessor) Transcribe(ctx context.Context, audio []byte, filename, contentType string) (*ai.Transcription, error) {
	args := m.Called(ctx, audio, filename, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.Transcription), args.Error(1)
}

func (m *mockAudioProcessor) Score(ctx context.Context, audio []byte, filename, contentType string) (*ai.AudioScores, error) {
	args := m.Called(ctx, audio, filename, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.AudioScores), args.Error(1)
}

func multipartAudioRequest(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, "answer.webm")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/transcribe", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestTranscribeHandler(t *testing.T) {
	t.Run("returns transcript and scores", func(t *testing.T) {
		processor := new(mockAudioProcessor)
		handler := NewAudioHandler(processor)

		processor.On("Transcribe", mock.Anything, []byte("fake audio"), "answer.webm", mock.Anything).Return(&ai.Transcription{
			Transcript: "hello world",
			SampleID:   "s-1",
			Features:   map[string]float64{"duration": 4.2},
		}, nil)
		processor.On("Score", mock.Anything, []byte("fake audio"), "answer.webm", mock.Anything).Return(&ai.AudioScores{
			Confidence: 78.5,
			Clarity:    82.0,
		}, nil)

		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, multipartAudioRequest(t, "audio", []byte("fake audio")))

		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "hello world", body["transcript"])
		assert.Equal(t, "s-1", body["sampleId"])
		assert.Equal(t, 78.5, body["confidenceScore"])
		assert.Equal(t, 82.0, body["clarityScore"])
	})

	t.Run("missing audio field is a 400", func(t *testing.T) {
		handler := NewAudioHandler(new(mockAudioProcessor))

		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, multipartAudioRequest(t, "wrong-field", []byte("data")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("transcription failure is a 502", func(t *testing.T) {
		processor := new(mockAudioProcessor)
		handler := NewAudioHandler(processor)

		processor.On("Transcribe", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, apperrors.AIUnavailable(nil))

		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, multipartAudioRequest(t, "audio", []byte("data")))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		processor.AssertNotCalled(t, "Score", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("scoring failure is a 502", func(t *testing.T) {
		processor := new(mockAudioProcessor)
		handler := NewAudioHandler(processor)

		processor.On("Transcribe", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(&ai.Transcription{Transcript: "hello"}, nil)
		processor.On("Score", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, apperrors.AIUnavailable(nil))

		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, multipartAudioRequest(t, "audio", []byte("data")))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}
