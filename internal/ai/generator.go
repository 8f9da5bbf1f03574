package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/smartprep/interview-server-go/internal/config"
	apperrors "github.com/smartprep/interview-server-go/internal/errors"
	"github.com/smartprep/interview-server-go/internal/util"
)

const (
	generationTemperature = 0.6
	defaultExplainTitle   = "Concept Explanation"
	maxExplainQuestion    = 1000
	maxExplainAnswer      = 3000
)

// QuestionAnswer is one generated prompt/reference-answer pair.
type QuestionAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// GenerateParams describes one question-generation request. Inputs are assumed
// to be sanitized by the caller; the prompt itself is still length-capped here.
type GenerateParams struct {
	Role          string
	Experience    string
	TopicsToFocus []string
	Description   string
	Count         int
}

// Explanation is a concept deep-dive for one question/answer pair.
type Explanation struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
}

// Generator turns model text output into structured interview content.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

// GenerateQuestions asks the model for a batch of question/answer pairs. An
// unparseable or empty batch is an upstream failure; nothing is ever invented
// locally to fill the gap.
func (g *Generator) GenerateQuestions(ctx context.Context, params GenerateParams) ([]QuestionAnswer, error) {
	prompt := questionAnswerPrompt(
		params.Role, params.Experience, params.TopicsToFocus, params.Description, params.Count,
	)
	prompt = util.Truncate(prompt, config.MaxPromptChars)

	raw, err := g.client.Complete(ctx, prompt, generationTemperature)
	if err != nil {
		return nil, err
	}

	var pairs []QuestionAnswer
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &pairs); err != nil {
		return nil, apperrors.AIUnavailable(fmt.Errorf("parse generated questions: %w", err))
	}

	valid := pairs[:0]
	for _, p := range pairs {
		if strings.TrimSpace(p.Question) == "" {
			continue
		}
		valid = append(valid, p)
	}
	if len(valid) == 0 {
		return nil, apperrors.AIUnavailable(fmt.Errorf("generation returned an empty batch"))
	}

	return valid, nil
}

// Explain asks the model to expand a question/answer pair into an explanation.
// The decode is two-stage: a strict structured parse first, then a raw-text
// fallback with a default title. A malformed but human-readable explanation is
// still a valid product response, so the fallback never fails.
func (g *Generator) Explain(ctx context.Context, question, answer string) (*Explanation, error) {
	prompt := conceptExplainPrompt(
		util.Truncate(question, maxExplainQuestion),
		util.Truncate(answer, maxExplainAnswer),
	)

	raw, err := g.client.Complete(ctx, prompt, generationTemperature)
	if err != nil {
		return nil, err
	}

	cleaned := stripCodeFence(raw)

	var parsed Explanation
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil || parsed.Explanation == "" {
		return &Explanation{
			Title:       defaultExplainTitle,
			Explanation: cleaned,
		}, nil
	}

	if parsed.Title == "" {
		parsed.Title = defaultExplainTitle
	}
	return &parsed, nil
}

var (
	openFenceRegex  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	closeFenceRegex = regexp.MustCompile("```\\s*$")
)

// stripCodeFence removes a leading ```json marker and a trailing ``` marker,
// which models routinely wrap around JSON output despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = openFenceRegex.ReplaceAllString(s, "")
	s = closeFenceRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
