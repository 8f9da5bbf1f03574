package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/smartprep/interview-server-go/internal/ai"
	"github.com/smartprep/interview-server-go/internal/config"
	"github.com/smartprep/interview-server-go/internal/database"
	apperrors "github.com/smartprep/interview-server-go/internal/errors"
	"github.com/smartprep/interview-server-go/internal/model"
	"github.com/smartprep/interview-server-go/internal/repository"
)

// QuestionGenerator produces interview question batches via an external model.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, params ai.GenerateParams) ([]ai.QuestionAnswer, error)
}

// TxRunner runs a function within a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

var _ TxRunner = (*database.DB)(nil)

// errVersionConflict signals that a compare-and-swap session write lost to a
// concurrent transition. It never leaves this package.
var errVersionConflict = errors.New("session version conflict")

// InterviewService drives a session through its interview transitions. Each
// transition is a single read-modify-write of one session record, serialized
// per session via the version column; a detected conflict is retried once.
type InterviewService struct {
	db           TxRunner
	sessionRepo  repository.SessionRepository
	questionRepo repository.QuestionRepository
	generator    QuestionGenerator
	guard        *UsageGuard
}

func NewInterviewService(
	db TxRunner,
	sessionRepo repository.SessionRepository,
	questionRepo repository.QuestionRepository,
	generator QuestionGenerator,
	guard *UsageGuard,
) *InterviewService {
	return &InterviewService{
		db:           db,
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		generator:    generator,
		guard:        guard,
	}
}

type StartResult struct {
	Message              string `json:"message"`
	CurrentQuestionIndex int    `json:"currentQuestionIndex"`
	TotalQuestions       int    `json:"totalQuestions"`
}

type QuestionView struct {
	QuestionID   string `json:"questionId"`
	QuestionText string `json:"questionText"`
}

type EndOptions struct {
	CanLoadMore bool `json:"canLoadMore"`
	CanFinish   bool `json:"canFinish"`
}

type CurrentQuestionResult struct {
	EndOfInterview bool        `json:"endOfInterview,omitempty"`
	Options        *EndOptions `json:"options,omitempty"`
	QuestionID     string      `json:"questionId,omitempty"`
	QuestionText   string      `json:"questionText,omitempty"`
}

type SubmitAnswerParams struct {
	SessionID       string
	Transcript      string
	ConfidenceScore *float64
	ClarityScore    *float64
	AudioSampleID   *string
	Duration        *float64
	SpeakingRate    *float64
	RMSEnergy       *float64
}

type SubmitAnswerResult struct {
	ConfidenceScore *float64      `json:"confidenceScore"`
	ClarityScore    *float64      `json:"clarityScore"`
	HasNextQuestion bool          `json:"hasNextQuestion"`
	NextQuestion    *QuestionView `json:"nextQuestion"`
	EndOfInterview  bool          `json:"endOfInterview"`
}

type FinishResult struct {
	Message              string `json:"message"`
	IsInterviewCompleted bool   `json:"isInterviewCompleted"`
}

type LoadMoreParams struct {
	SessionID string
	Count     int
	UserID    string
}

type LoadMoreResult struct {
	Message        string `json:"message"`
	TotalQuestions int    `json:"totalQuestions"`
}

// Start resets the interview: index back to zero, answers cleared, completion
// flag cleared. The question list itself is untouched.
func (s *InterviewService) Start(ctx context.Context, sessionID string) (*StartResult, error) {
	session, err := s.updateSession(ctx, sessionID, func(sess *model.Session) error {
		if len(sess.QuestionIDs) == 0 {
			return apperrors.EmptyQuestionSet()
		}
		sess.CurrentQuestionIndex = 0
		sess.Answers = model.AnswerList{}
		sess.IsInterviewCompleted = false
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("sessionId", sessionID).Int("totalQuestions", len(session.QuestionIDs)).Msg("interview started")

	return &StartResult{
		Message:              "Interview started",
		CurrentQuestionIndex: 0,
		TotalQuestions:       len(session.QuestionIDs),
	}, nil
}

// CurrentQuestion returns the question at the current index, or the
// end-of-interview indicator once the index has run past the question list.
// The reference answer is withheld.
func (s *InterviewService) CurrentQuestion(ctx context.Context, sessionID string) (*CurrentQuestionResult, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session")
	}

	index := session.CurrentQuestionIndex
	if index >= len(session.QuestionIDs) {
		return &CurrentQuestionResult{
			EndOfInterview: true,
			Options: &EndOptions{
				CanLoadMore: true,
				CanFinish:   true,
			},
		}, nil
	}

	question, err := s.questionRepo.FindByID(ctx, session.QuestionIDs[index])
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if question == nil {
		return nil, apperrors.Internal("Current question not found")
	}

	return &CurrentQuestionResult{
		QuestionID:   question.ID,
		QuestionText: question.Question,
	}, nil
}

// SubmitAnswer records one answer for the question at the current index and
// advances the index by exactly one. Scores are caller-supplied pass-throughs
// from the external scoring collaborator; nil means unevaluated.
func (s *InterviewService) SubmitAnswer(ctx context.Context, params SubmitAnswerParams) (*SubmitAnswerResult, error) {
	transcript := strings.TrimSpace(params.Transcript)

	session, err := s.updateSession(ctx, params.SessionID, func(sess *model.Session) error {
		if sess.IsInterviewCompleted {
			return apperrors.InterviewCompleted()
		}
		if transcript == "" {
			return apperrors.EmptyTranscript()
		}
		if sess.CurrentQuestionIndex >= len(sess.QuestionIDs) {
			return apperrors.NoQuestionsRemaining()
		}

		sess.Answers = append(sess.Answers, model.Answer{
			QuestionID:      sess.QuestionIDs[sess.CurrentQuestionIndex],
			Transcript:      transcript,
			ConfidenceScore: params.ConfidenceScore,
			ClarityScore:    params.ClarityScore,
			AudioSampleID:   params.AudioSampleID,
			Duration:        params.Duration,
			SpeakingRate:    params.SpeakingRate,
			RMSEnergy:       params.RMSEnergy,
			CreatedAt:       time.Now(),
		})
		sess.CurrentQuestionIndex++
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &SubmitAnswerResult{
		ConfidenceScore: params.ConfidenceScore,
		ClarityScore:    params.ClarityScore,
		HasNextQuestion: session.CurrentQuestionIndex < len(session.QuestionIDs),
	}
	result.EndOfInterview = !result.HasNextQuestion

	if result.HasNextQuestion {
		next, err := s.questionRepo.FindByID(ctx, session.QuestionIDs[session.CurrentQuestionIndex])
		if err != nil {
			return nil, apperrors.Database(err)
		}
		if next == nil {
			return nil, apperrors.Internal("Next question not found")
		}
		result.NextQuestion = &QuestionView{
			QuestionID:   next.ID,
			QuestionText: next.Question,
		}
	}

	return result, nil
}

// Finish marks the session completed. Finishing an already-completed session
// is a no-op that re-confirms completion, not an error.
func (s *InterviewService) Finish(ctx context.Context, sessionID string) (*FinishResult, error) {
	_, err := s.updateSession(ctx, sessionID, func(sess *model.Session) error {
		sess.IsInterviewCompleted = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("sessionId", sessionID).Msg("interview finished")

	return &FinishResult{
		Message:              "Interview marked as completed",
		IsInterviewCompleted: true,
	}, nil
}

// LoadMore generates a fresh question batch for the session and appends it
// after the existing questions. The usage guard is checked before the
// generator is contacted and committed only after the new questions have been
// persisted; on any failure the quota is untouched and nothing is stored.
func (s *InterviewService) LoadMore(ctx context.Context, params LoadMoreParams) (*LoadMoreResult, error) {
	session, err := s.sessionRepo.FindByID(ctx, params.SessionID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session")
	}
	if session.IsInterviewCompleted {
		return nil, apperrors.InterviewCompleted()
	}

	if err := s.guard.CheckQuota(ctx, params.UserID, ActionLoadMoreQuestions); err != nil {
		return nil, err
	}

	count := params.Count
	if count <= 0 {
		count = config.MaxQuestionsPerBatch
	}
	if count > config.MaxQuestionsPerBatch {
		count = config.MaxQuestionsPerBatch
	}

	pairs, err := s.generator.GenerateQuestions(ctx, ai.GenerateParams{
		Role:          session.Role,
		Experience:    session.Experience,
		TopicsToFocus: session.TopicsToFocus,
		Description:   session.Description,
		Count:         count,
	})
	if err != nil {
		return nil, err
	}

	createParams := make([]model.CreateQuestionParams, 0, len(pairs))
	for _, p := range pairs {
		createParams = append(createParams, model.CreateQuestionParams{
			ID:        uuid.NewString(),
			SessionID: session.ID,
			Question:  p.Question,
			Answer:    p.Answer,
		})
	}

	total, err := s.appendQuestions(ctx, session.ID, createParams)
	if err != nil {
		return nil, err
	}

	s.guard.Commit(ctx, params.UserID, ActionLoadMoreQuestions)

	log.Info().
		Str("sessionId", session.ID).
		Int("added", len(createParams)).
		Int("totalQuestions", total).
		Msg("loaded more questions")

	return &LoadMoreResult{
		Message:        "New AI questions added",
		TotalQuestions: total,
	}, nil
}

// appendQuestions persists a question batch and appends its ids to the
// session's ordered list in one transaction, so a lost version race rolls the
// rows back instead of leaving orphans. The whole transaction is retried once
// on conflict.
func (s *InterviewService) appendQuestions(ctx context.Context, sessionID string, params []model.CreateQuestionParams) (int, error) {
	var total int

	attempt := func() error {
		return s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
			sess, err := s.sessionRepo.WithTx(tx).FindByID(ctx, sessionID)
			if err != nil {
				return apperrors.Database(err)
			}
			if sess == nil {
				return apperrors.NotFound("Session")
			}
			if sess.IsInterviewCompleted {
				return apperrors.InterviewCompleted()
			}

			created, err := s.questionRepo.WithTx(tx).InsertBatch(ctx, params)
			if err != nil {
				return apperrors.Database(err)
			}

			ids := append(model.StringList{}, sess.QuestionIDs...)
			for _, q := range created {
				ids = append(ids, q.ID)
			}

			ok, err := s.sessionRepo.WithTx(tx).UpdateState(ctx, model.SessionStateUpdate{
				ID:                   sess.ID,
				ExpectedVersion:      sess.Version,
				QuestionIDs:          ids,
				CurrentQuestionIndex: sess.CurrentQuestionIndex,
				Answers:              sess.Answers,
				IsInterviewCompleted: sess.IsInterviewCompleted,
			})
			if err != nil {
				return apperrors.Database(err)
			}
			if !ok {
				return errVersionConflict
			}

			total = len(ids)
			return nil
		})
	}

	err := attempt()
	if errors.Is(err, errVersionConflict) {
		log.Warn().Str("sessionId", sessionID).Msg("session version conflict, retrying append")
		err = attempt()
	}
	if errors.Is(err, errVersionConflict) {
		return 0, apperrors.Conflict("session")
	}
	if err != nil {
		return 0, err
	}
	return total, nil
}

// updateSession reads the session, applies one transition, and writes it back
// guarded by the version observed at read time. A lost race re-reads and
// re-applies exactly once; a second loss is surfaced as a conflict.
func (s *InterviewService) updateSession(
	ctx context.Context,
	sessionID string,
	apply func(*model.Session) error,
) (*model.Session, error) {
	for attempt := 0; attempt < 2; attempt++ {
		session, err := s.sessionRepo.FindByID(ctx, sessionID)
		if err != nil {
			return nil, apperrors.Database(err)
		}
		if session == nil {
			return nil, apperrors.NotFound("Session")
		}

		if err := apply(session); err != nil {
			return nil, err
		}

		ok, err := s.sessionRepo.UpdateState(ctx, model.SessionStateUpdate{
			ID:                   session.ID,
			ExpectedVersion:      session.Version,
			QuestionIDs:          session.QuestionIDs,
			CurrentQuestionIndex: session.CurrentQuestionIndex,
			Answers:              session.Answers,
			IsInterviewCompleted: session.IsInterviewCompleted,
		})
		if err != nil {
			return nil, apperrors.Database(err)
		}
		if ok {
			return session, nil
		}

		log.Warn().Str("sessionId", sessionID).Int("attempt", attempt+1).Msg("session version conflict")
	}

	return nil, apperrors.Conflict("session")
}
