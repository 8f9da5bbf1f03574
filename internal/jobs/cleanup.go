package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smartprep/interview-server-go/internal/repository"
)

// CleanupJob periodically removes question rows whose owning session is gone.
// Session deletion removes the session's own questions transactionally, but an
// external administrative delete of a session row can leave orphans behind.
type CleanupJob struct {
	questionRepo repository.QuestionRepository
	interval     time.Duration
	done         chan struct{}
}

func NewCleanupJob(questionRepo repository.QuestionRepository, interval time.Duration) *CleanupJob {
	return &CleanupJob{
		questionRepo: questionRepo,
		interval:     interval,
		done:         make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-ticker.C:
			j.cleanup()
		case <-j.done:
			return
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := j.questionRepo.DeleteOrphaned(ctx)
	if err != nil {
		log.Error().Err(err).Msg("cleanup: delete orphaned questions failed")
		return
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Msg("cleanup: removed orphaned questions")
	}
}
