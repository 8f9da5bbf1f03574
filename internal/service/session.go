package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/smartprep/interview-server-go/internal/ai"
	"github.com/smartprep/interview-server-go/internal/audit"
	"github.com/smartprep/interview-server-go/internal/config"
	apperrors "github.com/smartprep/interview-server-go/internal/errors"
	"github.com/smartprep/interview-server-go/internal/model"
	"github.com/smartprep/interview-server-go/internal/repository"
	"github.com/smartprep/interview-server-go/internal/util"
)

type CreateSessionParams struct {
	Role          string
	Experience    string
	TopicsToFocus []string
	Description   string
	QuestionCount int
}

type SessionDetail struct {
	Session   *model.Session   `json:"session"`
	Questions []model.Question `json:"questions"`
}

// SessionService owns the session lifecycle around the interview state
// machine: creation with the initial AI-generated batch, lookup, listing and
// deletion. Creation is metered under the createSession action.
type SessionService struct {
	db           TxRunner
	sessionRepo  repository.SessionRepository
	questionRepo repository.QuestionRepository
	generator    QuestionGenerator
	guard        *UsageGuard
}

func NewSessionService(
	db TxRunner,
	sessionRepo repository.SessionRepository,
	questionRepo repository.QuestionRepository,
	generator QuestionGenerator,
	guard *UsageGuard,
) *SessionService {
	return &SessionService{
		db:           db,
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		generator:    generator,
		guard:        guard,
	}
}

func (s *SessionService) Create(ctx context.Context, userID string, params CreateSessionParams) (*SessionDetail, error) {
	role := strings.TrimSpace(params.Role)
	experience := strings.TrimSpace(params.Experience)
	topics := util.SanitizeTopics(params.TopicsToFocus, config.MaxTopics, config.MaxTopicChars)

	if role == "" {
		return nil, apperrors.MissingRequired("role")
	}
	if experience == "" {
		return nil, apperrors.MissingRequired("experience")
	}
	if len(topics) == 0 {
		return nil, apperrors.MissingRequired("topicsToFocus")
	}

	role = util.Truncate(role, config.MaxRoleChars)
	experience = util.Truncate(experience, config.MaxExperienceChars)
	description := util.Truncate(strings.TrimSpace(params.Description), config.MaxDescriptionChars)

	count := params.QuestionCount
	if count <= 0 {
		count = config.MaxQuestionsPerBatch
	}
	if count > config.MaxQuestionsPerBatch {
		count = config.MaxQuestionsPerBatch
	}

	if err := s.guard.CheckQuota(ctx, userID, ActionCreateSession); err != nil {
		return nil, err
	}

	pairs, err := s.generator.GenerateQuestions(ctx, ai.GenerateParams{
		Role:          role,
		Experience:    experience,
		TopicsToFocus: topics,
		Description:   description,
		Count:         count,
	})
	if err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	var ownerID *string
	if userID != "" {
		ownerID = &userID
	}

	createParams := make([]model.CreateQuestionParams, 0, len(pairs))
	for _, p := range pairs {
		createParams = append(createParams, model.CreateQuestionParams{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Question:  p.Question,
			Answer:    p.Answer,
		})
	}

	var detail SessionDetail
	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		session, err := s.sessionRepo.WithTx(tx).Create(ctx, model.CreateSessionParams{
			ID:            sessionID,
			UserID:        ownerID,
			Role:          role,
			Experience:    experience,
			TopicsToFocus: topics,
			Description:   description,
		})
		if err != nil {
			return apperrors.Database(err)
		}

		questions, err := s.questionRepo.WithTx(tx).InsertBatch(ctx, createParams)
		if err != nil {
			return apperrors.Database(err)
		}

		ids := make(model.StringList, 0, len(questions))
		for _, q := range questions {
			ids = append(ids, q.ID)
		}

		ok, err := s.sessionRepo.WithTx(tx).UpdateState(ctx, model.SessionStateUpdate{
			ID:              session.ID,
			ExpectedVersion: session.Version,
			QuestionIDs:     ids,
		})
		if err != nil {
			return apperrors.Database(err)
		}
		if !ok {
			return apperrors.Conflict("session")
		}

		session.QuestionIDs = ids
		session.Version++
		detail = SessionDetail{Session: session, Questions: questions}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.guard.Commit(ctx, userID, ActionCreateSession)

	audit.Log(ctx, audit.Event{
		Type:   audit.EventSessionCreate,
		UserID: userID,
		Details: map[string]interface{}{
			"sessionId":      sessionID,
			"totalQuestions": len(detail.Questions),
		},
	})

	return &detail, nil
}

// Get returns the session with its questions in presentation order.
func (s *SessionService) Get(ctx context.Context, userID, sessionID string) (*SessionDetail, error) {
	session, err := s.findOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.FindByIDs(ctx, session.QuestionIDs)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	return &SessionDetail{
		Session:   session,
		Questions: orderQuestions(session.QuestionIDs, questions),
	}, nil
}

func (s *SessionService) List(ctx context.Context, userID string) ([]model.Session, error) {
	sessions, err := s.sessionRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return sessions, nil
}

func (s *SessionService) Delete(ctx context.Context, userID, sessionID string) error {
	if _, err := s.findOwned(ctx, userID, sessionID); err != nil {
		return err
	}

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.questionRepo.WithTx(tx).DeleteBySessionID(ctx, sessionID); err != nil {
			return apperrors.Database(err)
		}
		if _, err := s.sessionRepo.WithTx(tx).Delete(ctx, sessionID); err != nil {
			return apperrors.Database(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	audit.Log(ctx, audit.Event{
		Type:   audit.EventSessionDelete,
		UserID: userID,
		Details: map[string]interface{}{
			"sessionId": sessionID,
		},
	})

	log.Info().Str("sessionId", sessionID).Msg("session deleted")
	return nil
}

func (s *SessionService) findOwned(ctx context.Context, userID, sessionID string) (*model.Session, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session")
	}
	if session.UserID != nil && userID != "" && *session.UserID != userID {
		return nil, apperrors.Forbidden("You do not own this session")
	}
	return session, nil
}

// orderQuestions arranges questions to match the session's id list, which is
// the source of presentation order regardless of storage order.
func orderQuestions(ids []string, questions []model.Question) []model.Question {
	byID := make(map[string]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	ordered := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered
}
