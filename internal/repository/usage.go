package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// UsageRepository tracks per-user, per-action AI call counters. Counters only
// ever grow; resets are an administrative action outside this service.
type UsageRepository interface {
	GetCount(ctx context.Context, userID, action string) (int, error)
	Increment(ctx context.Context, userID, action string) error
}

type usageRepo struct {
	db *sqlx.DB
}

func NewUsageRepository(db *sqlx.DB) UsageRepository {
	return &usageRepo{db: db}
}

func (r *usageRepo) GetCount(ctx context.Context, userID, action string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT count FROM ai_usage WHERE user_id = $1 AND action = $2
	`, userID, action)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *usageRepo) Increment(ctx context.Context, userID, action string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ai_usage (user_id, action, count, updated_at)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (user_id, action)
		DO UPDATE SET count = ai_usage.count + 1, updated_at = $3
	`, userID, action, time.Now())
	return err
}
