package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// External AI call budget: every call carries an explicit timeout and at most
// one retry (AIMaxAttempts total attempts) on 5xx/429.
const (
	AIRequestTimeout  = 60 * time.Second
	TranscribeTimeout = 120 * time.Second
	AIMaxAttempts     = 2
)

// Input sanitization bounds applied before any prompt is built
const (
	MaxQuestionsPerBatch = 5
	MaxTopics            = 5
	MaxRoleChars         = 100
	MaxExperienceChars   = 50
	MaxTopicChars        = 50
	MaxDescriptionChars  = 300
	MaxPromptChars       = 4000
)

// Audio upload cap for the transcription endpoint
const MaxAudioUploadBytes = 15 << 20 // 15MB

// Background job intervals
const CleanupJobInterval = 1 * time.Hour

// Free-preview quotas per metered AI action. Actions absent from this map are
// unmetered. Read-only after process start.
var AIUsageLimits = map[string]int{
	"createSession":     2,
	"loadMoreQuestions": 2,
	"learnMore":         1,
}
