package service

import (
	"context"
	"math"

	apperrors "github.com/smartprep/interview-server-go/internal/errors"
	"github.com/smartprep/interview-server-go/internal/model"
)

type SummaryAnswer struct {
	model.Answer
	Question *QuestionView `json:"question,omitempty"`
}

type SummaryResult struct {
	TotalQuestions    int             `json:"totalQuestions"`
	TotalAnswered     int             `json:"totalAnswered"`
	EvaluatedAnswered int             `json:"evaluatedAnswered"`
	AverageConfidence float64         `json:"averageConfidence"`
	AverageClarity    float64         `json:"averageClarity"`
	Answers           []SummaryAnswer `json:"answers"`
}

// Summarize computes completion and scoring statistics for a session without
// mutating it. Averages cover only answers where both scores are present;
// unevaluated answers are excluded from numerator and denominator alike rather
// than counted as zero.
func (s *InterviewService) Summarize(ctx context.Context, sessionID string) (*SummaryResult, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session")
	}

	result := &SummaryResult{
		TotalQuestions: len(session.QuestionIDs),
		TotalAnswered:  len(session.Answers),
		Answers:        []SummaryAnswer{},
	}

	if result.TotalAnswered == 0 {
		return result, nil
	}

	var sumConfidence, sumClarity float64
	for _, a := range session.Answers {
		if a.ConfidenceScore != nil && a.ClarityScore != nil {
			result.EvaluatedAnswered++
			sumConfidence += *a.ConfidenceScore
			sumClarity += *a.ClarityScore
		}
	}

	if result.EvaluatedAnswered > 0 {
		result.AverageConfidence = round2(sumConfidence / float64(result.EvaluatedAnswered))
		result.AverageClarity = round2(sumClarity / float64(result.EvaluatedAnswered))
	}

	questionText := make(map[string]string)
	questions, err := s.questionRepo.FindByIDs(ctx, session.QuestionIDs)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	for _, q := range questions {
		questionText[q.ID] = q.Question
	}

	for _, a := range session.Answers {
		summary := SummaryAnswer{Answer: a}
		if text, ok := questionText[a.QuestionID]; ok {
			summary.Question = &QuestionView{
				QuestionID:   a.QuestionID,
				QuestionText: text,
			}
		}
		result.Answers = append(result.Answers, summary)
	}

	return result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
