package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/smartprep/interview-server-go/internal/errors"
)

func newTestGenerator(t *testing.T, reply string) *Generator {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply(reply)))
	}))
	t.Cleanup(server.Close)
	return NewGenerator(NewClient(server.URL, "key", "model"))
}

func TestGenerateQuestions(t *testing.T) {
	ctx := context.Background()
	params := GenerateParams{
		Role:          "Backend Engineer",
		Experience:    "3 years",
		TopicsToFocus: []string{"Go"},
		Count:         2,
	}

	t.Run("parses a plain JSON batch", func(t *testing.T) {
		g := newTestGenerator(t, `[{"question":"Q1","answer":"A1"},{"question":"Q2","answer":"A2"}]`)

		pairs, err := g.GenerateQuestions(ctx, params)

		require.NoError(t, err)
		require.Len(t, pairs, 2)
		assert.Equal(t, "Q1", pairs[0].Question)
		assert.Equal(t, "A2", pairs[1].Answer)
	})

	t.Run("strips a markdown code fence", func(t *testing.T) {
		g := newTestGenerator(t, "```json\n[{\"question\":\"Q1\",\"answer\":\"A1\"}]\n```")

		pairs, err := g.GenerateQuestions(ctx, params)

		require.NoError(t, err)
		require.Len(t, pairs, 1)
		assert.Equal(t, "Q1", pairs[0].Question)
	})

	t.Run("drops pairs with blank questions", func(t *testing.T) {
		g := newTestGenerator(t, `[{"question":"  ","answer":"A1"},{"question":"Q2","answer":"A2"}]`)

		pairs, err := g.GenerateQuestions(ctx, params)

		require.NoError(t, err)
		require.Len(t, pairs, 1)
		assert.Equal(t, "Q2", pairs[0].Question)
	})

	t.Run("unparseable output is an upstream failure", func(t *testing.T) {
		g := newTestGenerator(t, "Sure! Here are your questions: 1. What is Go?")

		_, err := g.GenerateQuestions(ctx, params)

		assert.Equal(t, apperrors.ErrCodeAIUnavailable, apperrors.GetCode(err))
	})

	t.Run("empty batch is an upstream failure", func(t *testing.T) {
		g := newTestGenerator(t, `[{"question":"","answer":""}]`)

		_, err := g.GenerateQuestions(ctx, params)

		assert.Equal(t, apperrors.ErrCodeAIUnavailable, apperrors.GetCode(err))
	})
}

func TestExplain(t *testing.T) {
	ctx := context.Background()

	t.Run("parses a structured explanation", func(t *testing.T) {
		g := newTestGenerator(t, `{"title":"Goroutines","explanation":"Lightweight threads."}`)

		explanation, err := g.Explain(ctx, "What is a goroutine?", "A lightweight thread")

		require.NoError(t, err)
		assert.Equal(t, "Goroutines", explanation.Title)
		assert.Equal(t, "Lightweight threads.", explanation.Explanation)
	})

	t.Run("fenced structured output is parsed", func(t *testing.T) {
		g := newTestGenerator(t, "```json\n{\"title\":\"GC\",\"explanation\":\"Reclaims memory.\"}\n```")

		explanation, err := g.Explain(ctx, "What is GC?", "Garbage collection")

		require.NoError(t, err)
		assert.Equal(t, "GC", explanation.Title)
	})

	t.Run("raw prose falls back to the default title", func(t *testing.T) {
		g := newTestGenerator(t, "A goroutine is a lightweight thread managed by the runtime.")

		explanation, err := g.Explain(ctx, "What is a goroutine?", "A lightweight thread")

		require.NoError(t, err)
		assert.Equal(t, "Concept Explanation", explanation.Title)
		assert.Equal(t, "A goroutine is a lightweight thread managed by the runtime.", explanation.Explanation)
	})

	t.Run("missing title gets the default", func(t *testing.T) {
		g := newTestGenerator(t, `{"explanation":"Reclaims memory."}`)

		explanation, err := g.Explain(ctx, "What is GC?", "Garbage collection")

		require.NoError(t, err)
		assert.Equal(t, "Concept Explanation", explanation.Title)
		assert.Equal(t, "Reclaims memory.", explanation.Explanation)
	})
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, stripCodeFence("  {\"a\":1}  "))
}
