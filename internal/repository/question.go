package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/smartprep/interview-server-go/internal/model"
)

type QuestionRepository interface {
	FindByID(ctx context.Context, id string) (*model.Question, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Question, error)
	InsertBatch(ctx context.Context, params []model.CreateQuestionParams) ([]model.Question, error)
	TogglePin(ctx context.Context, id string) (*model.Question, error)
	UpdateNote(ctx context.Context, id string, note string) (*model.Question, error)
	IncrementLearnMore(ctx context.Context, id string) (*model.Question, error)
	DeleteBySessionID(ctx context.Context, sessionID string) (int64, error)
	DeleteOrphaned(ctx context.Context) (int64, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) QuestionRepository
}

type questionDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type questionRepo struct {
	db questionDB
}

func NewQuestionRepository(db *sqlx.DB) QuestionRepository {
	return &questionRepo{db: db}
}

func (r *questionRepo) WithTx(tx *sqlx.Tx) QuestionRepository {
	return &questionRepo{db: tx}
}

func (r *questionRepo) FindByID(ctx context.Context, id string) (*model.Question, error) {
	var question model.Question
	err := r.db.GetContext(ctx, &question, `
		SELECT * FROM questions WHERE id = $1
	`, id)
	return HandleNotFound(&question, err)
}

// FindByIDs returns the questions in storage order; callers that need the
// session's presentation order must reorder by the session's question-id list.
func (r *questionRepo) FindByIDs(ctx context.Context, ids []string) ([]model.Question, error) {
	questions := []model.Question{}
	if len(ids) == 0 {
		return questions, nil
	}
	err := r.db.SelectContext(ctx, &questions, `
		SELECT * FROM questions WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepo) InsertBatch(ctx context.Context, params []model.CreateQuestionParams) ([]model.Question, error) {
	questions := make([]model.Question, 0, len(params))
	for _, p := range params {
		var question model.Question
		err := r.db.GetContext(ctx, &question, `
			INSERT INTO questions (id, session_id, question, answer)
			VALUES ($1, $2, $3, $4)
			RETURNING *
		`, p.ID, p.SessionID, p.Question, p.Answer)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, nil
}

func (r *questionRepo) TogglePin(ctx context.Context, id string) (*model.Question, error) {
	var question model.Question
	err := r.db.GetContext(ctx, &question, `
		UPDATE questions SET
			is_pinned = NOT is_pinned,
			updated_at = $2
		WHERE id = $1
		RETURNING *
	`, id, time.Now())
	return HandleNotFound(&question, err)
}

func (r *questionRepo) UpdateNote(ctx context.Context, id string, note string) (*model.Question, error) {
	var question model.Question
	err := r.db.GetContext(ctx, &question, `
		UPDATE questions SET
			note = $2,
			updated_at = $3
		WHERE id = $1
		RETURNING *
	`, id, note, time.Now())
	return HandleNotFound(&question, err)
}

func (r *questionRepo) IncrementLearnMore(ctx context.Context, id string) (*model.Question, error) {
	var question model.Question
	err := r.db.GetContext(ctx, &question, `
		UPDATE questions SET
			learn_more_count = learn_more_count + 1,
			updated_at = $2
		WHERE id = $1
		RETURNING *
	`, id, time.Now())
	return HandleNotFound(&question, err)
}

func (r *questionRepo) DeleteBySessionID(ctx context.Context, sessionID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM questions WHERE session_id = $1
	`, sessionID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *questionRepo) DeleteOrphaned(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM questions q
		WHERE NOT EXISTS (
			SELECT 1 FROM sessions s WHERE s.id = q.session_id
		)
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
