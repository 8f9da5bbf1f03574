package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/smartprep/interview-server-go/internal/audit"
	apperrors "github.com/smartprep/interview-server-go/internal/errors"
	"github.com/smartprep/interview-server-go/internal/repository"
)

// Action is a metered AI action kind.
type Action string

const (
	ActionCreateSession     Action = "createSession"
	ActionLoadMoreQuestions Action = "loadMoreQuestions"
	ActionLearnMore         Action = "learnMore"
)

// UsageGuard gates expensive external AI calls behind per-user, per-action
// quotas. CheckQuota runs before the call and never contacts the provider
// itself; Commit runs only after the call has succeeded, so a failed call
// never consumes quota. Commit is not idempotent: callers must invoke it at
// most once per successful call.
type UsageGuard struct {
	usageRepo repository.UsageRepository
	limits    map[string]int
}

// NewUsageGuard builds a guard over the given action→limit mapping. The map is
// treated as read-only; actions absent from it are unmetered.
func NewUsageGuard(usageRepo repository.UsageRepository, limits map[string]int) *UsageGuard {
	return &UsageGuard{
		usageRepo: usageRepo,
		limits:    limits,
	}
}

// CheckQuota fails with AI_PREVIEW_LIMIT_REACHED once the user's counter for
// the action has reached its configured limit. Anonymous callers (empty
// userID) and unmetered actions always pass.
func (g *UsageGuard) CheckQuota(ctx context.Context, userID string, action Action) error {
	if userID == "" {
		return nil
	}
	limit, ok := g.limits[string(action)]
	if !ok {
		return nil
	}

	count, err := g.usageRepo.GetCount(ctx, userID, string(action))
	if err != nil {
		return apperrors.Database(err)
	}

	if count >= limit {
		audit.Log(ctx, audit.Event{
			Type:   audit.EventQuotaExceeded,
			UserID: userID,
			Details: map[string]interface{}{
				"action": string(action),
				"limit":  limit,
			},
		})
		return apperrors.UsageLimitReached()
	}

	return nil
}

// Commit increments the user's counter for the action by one. A failed
// increment is logged and swallowed: the AI result has already been delivered
// and quota accuracy is best-effort, never worth failing the request over.
func (g *UsageGuard) Commit(ctx context.Context, userID string, action Action) {
	if userID == "" {
		return
	}
	if _, ok := g.limits[string(action)]; !ok {
		return
	}

	if err := g.usageRepo.Increment(ctx, userID, string(action)); err != nil {
		log.Error().Err(err).
			Str("userId", userID).
			Str("action", string(action)).
			Msg("failed to commit AI usage counter")
	}
}
