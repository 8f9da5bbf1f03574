package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/smartprep/interview-server-go/internal/errors"
)

func chatReply(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(body)
}

func TestComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the assistant reply", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")

			var req chatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "test-model", req.Model)
			require.Len(t, req.Messages, 1)
			assert.Equal(t, "user", req.Messages[0].Role)

			w.Write([]byte(chatReply("hello")))
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-key", "test-model")
		reply, err := client.Complete(ctx, "prompt", 0.6)

		assert.NoError(t, err)
		assert.Equal(t, "hello", reply)
		assert.Equal(t, "Bearer test-key", gotAuth)
	})

	t.Run("retries once on 500 then succeeds", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(chatReply("recovered")))
		}))
		defer server.Close()

		client := NewClient(server.URL, "key", "model")
		reply, err := client.Complete(ctx, "prompt", 0.6)

		assert.NoError(t, err)
		assert.Equal(t, "recovered", reply)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("retries once on 429 then succeeds", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(chatReply("recovered")))
		}))
		defer server.Close()

		client := NewClient(server.URL, "key", "model")
		reply, err := client.Complete(ctx, "prompt", 0.6)

		assert.NoError(t, err)
		assert.Equal(t, "recovered", reply)
	})

	t.Run("persistent 500 fails after two attempts", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(server.URL, "key", "model")
		_, err := client.Complete(ctx, "prompt", 0.6)

		assert.Equal(t, apperrors.ErrCodeAIUnavailable, apperrors.GetCode(err))
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("400 is not retried", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := NewClient(server.URL, "key", "model")
		_, err := client.Complete(ctx, "prompt", 0.6)

		assert.Equal(t, apperrors.ErrCodeAIUnavailable, apperrors.GetCode(err))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("transport error is not retried", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client := NewClient(server.URL, "key", "model")
		_, err := client.Complete(ctx, "prompt", 0.6)

		assert.Equal(t, apperrors.ErrCodeAIUnavailable, apperrors.GetCode(err))
	})

	t.Run("empty choices is a provider failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "key", "model")
		_, err := client.Complete(ctx, "prompt", 0.6)

		assert.Equal(t, apperrors.ErrCodeAIUnavailable, apperrors.GetCode(err))
	})
}
