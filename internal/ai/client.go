package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/smartprep/interview-server-go/internal/config"
	apperrors "github.com/smartprep/interview-server-go/internal/errors"
)

// Client is a thin OpenRouter chat-completions client. Every call carries the
// request context plus the client timeout, and is retried at most once when the
// provider answers with a 5xx or 429. Transport errors and other 4xx responses
// are surfaced immediately.
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
	model      string
}

func NewClient(url, apiKey, model string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: config.AIRequestTimeout},
		url:        url,
		apiKey:     apiKey,
		model:      model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends a single user prompt and returns the assistant's text reply.
func (c *Client) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	var status int
	for attempt := 1; attempt <= config.AIMaxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("create chat request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return "", apperrors.AIUnavailable(err)
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return "", apperrors.AIUnavailable(readErr)
		}

		status = resp.StatusCode
		if retryableStatus(status) && attempt < config.AIMaxAttempts {
			log.Warn().Int("status", status).Int("attempt", attempt).Msg("retrying AI call")
			continue
		}

		if status != http.StatusOK {
			return "", apperrors.AIUnavailable(fmt.Errorf("provider returned status %d", status))
		}

		var parsed chatResponse
		if err := json.Unmarshal(data, &parsed); err != nil {
			return "", apperrors.AIUnavailable(fmt.Errorf("decode provider response: %w", err))
		}
		if len(parsed.Choices) == 0 {
			return "", apperrors.AIUnavailable(fmt.Errorf("provider response has no choices"))
		}
		return parsed.Choices[0].Message.Content, nil
	}

	return "", apperrors.AIUnavailable(fmt.Errorf("provider returned status %d after %d attempts", status, config.AIMaxAttempts))
}

func retryableStatus(status int) bool {
	return status >= 500 || status == http.StatusTooManyRequests
}
