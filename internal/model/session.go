package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Session is one user's interview attempt. The ordered question-id list is the
// source of presentation order; answers are embedded in insertion order and
// track currentQuestionIndex exactly (len(answers) == index under normal flow).
type Session struct {
	ID                   string     `db:"id" json:"id"`
	UserID               *string    `db:"user_id" json:"userId,omitempty"`
	Role                 string     `db:"role" json:"role"`
	Experience           string     `db:"experience" json:"experience"`
	TopicsToFocus        StringList `db:"topics_to_focus" json:"topicsToFocus"`
	Description          string     `db:"description" json:"description,omitempty"`
	QuestionIDs          StringList `db:"question_ids" json:"questionIds"`
	CurrentQuestionIndex int        `db:"current_question_index" json:"currentQuestionIndex"`
	Answers              AnswerList `db:"answers" json:"answers"`
	IsInterviewCompleted bool       `db:"is_interview_completed" json:"isInterviewCompleted"`
	Version              int        `db:"version" json:"-"`
	CreatedAt            time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updatedAt"`
}

type CreateSessionParams struct {
	ID            string
	UserID        *string
	Role          string
	Experience    string
	TopicsToFocus []string
	Description   string
}

// SessionStateUpdate carries one transition's read-modify-write payload along
// with the version observed at read time, for optimistic concurrency control.
type SessionStateUpdate struct {
	ID                   string
	ExpectedVersion      int
	QuestionIDs          StringList
	CurrentQuestionIndex int
	Answers              AnswerList
	IsInterviewCompleted bool
}

// Answer is a recorded response to one question. Scores come from the external
// scoring collaborator and are passed through untouched; nil means the answer
// was never evaluated and is excluded from summary averages.
type Answer struct {
	QuestionID      string    `json:"questionId"`
	Transcript      string    `json:"transcript"`
	ConfidenceScore *float64  `json:"confidenceScore"`
	ClarityScore    *float64  `json:"clarityScore"`
	AudioSampleID   *string   `json:"audioSampleId,omitempty"`
	Duration        *float64  `json:"duration,omitempty"`
	SpeakingRate    *float64  `json:"speakingRate,omitempty"`
	RMSEnergy       *float64  `json:"rmsEnergy,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// StringList stores an ordered list of strings as a JSONB column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src any) error {
	return scanJSON(src, l)
}

// AnswerList stores the embedded answer history as a JSONB column.
type AnswerList []Answer

func (l AnswerList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *AnswerList) Scan(src any) error {
	return scanJSON(src, l)
}

func scanJSON(src, dest any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported scan type %T", src)
	}
}
