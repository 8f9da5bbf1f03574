package model

import "time"

// Question is a prompt/reference-answer pair belonging to a session. Questions
// are addressable independently of the session's answer history so they can be
// pinned and annotated on their own.
type Question struct {
	ID             string    `db:"id" json:"id"`
	SessionID      string    `db:"session_id" json:"sessionId"`
	Question       string    `db:"question" json:"question"`
	Answer         string    `db:"answer" json:"answer"`
	IsPinned       bool      `db:"is_pinned" json:"isPinned"`
	LearnMoreCount int       `db:"learn_more_count" json:"learnMoreCount"`
	Note           *string   `db:"note" json:"note,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateQuestionParams struct {
	ID        string
	SessionID string
	Question  string
	Answer    string
}
