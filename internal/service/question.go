package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/smartprep/interview-server-go/internal/ai"
	apperrors "github.com/smartprep/interview-server-go/internal/errors"
	"github.com/smartprep/interview-server-go/internal/model"
	"github.com/smartprep/interview-server-go/internal/repository"
)

// ConceptExplainer expands a question/answer pair into a concept deep-dive via
// an external model.
type ConceptExplainer interface {
	Explain(ctx context.Context, question, answer string) (*ai.Explanation, error)
}

type QuestionAnswerInput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QuestionService covers per-question operations outside the interview flow:
// pinning, notes, learn-more tracking, manual additions and concept
// explanations. Explanations are metered under the learnMore action.
type QuestionService struct {
	interview    *InterviewService
	questionRepo repository.QuestionRepository
	explainer    ConceptExplainer
	guard        *UsageGuard
}

func NewQuestionService(
	interview *InterviewService,
	questionRepo repository.QuestionRepository,
	explainer ConceptExplainer,
	guard *UsageGuard,
) *QuestionService {
	return &QuestionService{
		interview:    interview,
		questionRepo: questionRepo,
		explainer:    explainer,
		guard:        guard,
	}
}

func (s *QuestionService) TogglePin(ctx context.Context, questionID string) (*model.Question, error) {
	question, err := s.questionRepo.TogglePin(ctx, questionID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if question == nil {
		return nil, apperrors.NotFound("Question")
	}
	return question, nil
}

func (s *QuestionService) UpdateNote(ctx context.Context, questionID, note string) (*model.Question, error) {
	question, err := s.questionRepo.UpdateNote(ctx, questionID, strings.TrimSpace(note))
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if question == nil {
		return nil, apperrors.NotFound("Question")
	}
	return question, nil
}

// LearnMore increments the question's learn-more counter. Callers invoke it
// only after a Learn More explanation has actually been delivered.
func (s *QuestionService) LearnMore(ctx context.Context, questionID string) (*model.Question, error) {
	question, err := s.questionRepo.IncrementLearnMore(ctx, questionID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if question == nil {
		return nil, apperrors.NotFound("Question")
	}
	return question, nil
}

// AddToSession appends caller-supplied question/answer pairs to a session's
// question list. No AI call is involved, so the action is unmetered.
func (s *QuestionService) AddToSession(ctx context.Context, sessionID string, pairs []QuestionAnswerInput) (int, error) {
	createParams := make([]model.CreateQuestionParams, 0, len(pairs))
	for _, p := range pairs {
		question := strings.TrimSpace(p.Question)
		if question == "" {
			continue
		}
		createParams = append(createParams, model.CreateQuestionParams{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Question:  question,
			Answer:    p.Answer,
		})
	}
	if len(createParams) == 0 {
		return 0, apperrors.ValidationError("At least one question is required")
	}

	return s.interview.appendQuestions(ctx, sessionID, createParams)
}

// Explain produces a concept explanation for a question/answer pair under the
// learnMore quota. The guard is checked before the model is contacted and
// committed only after a successful response.
func (s *QuestionService) Explain(ctx context.Context, userID, question, answer string) (*ai.Explanation, error) {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return nil, apperrors.ValidationError("Invalid question or answer")
	}

	if err := s.guard.CheckQuota(ctx, userID, ActionLearnMore); err != nil {
		return nil, err
	}

	explanation, err := s.explainer.Explain(ctx, question, answer)
	if err != nil {
		return nil, err
	}

	s.guard.Commit(ctx, userID, ActionLearnMore)

	return explanation, nil
}
