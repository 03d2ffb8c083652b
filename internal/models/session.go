package models

import "time"

// TaskType tags which question task renders and scores a question.
type TaskType string

const (
	TaskChoice     TaskType = "choice"
	TaskDefinition TaskType = "definition"
)

// SessionState is the position of a session in the ask/answer/grade cycle.
type SessionState string

const (
	StateReady          SessionState = "ready"
	StateAwaitingAnswer SessionState = "awaiting_answer"
	StateAwaitingText   SessionState = "awaiting_text"
	StateAwaitingGrade  SessionState = "awaiting_grade"
	StateComplete       SessionState = "complete"
)

type Session struct {
	ID                int64        `json:"id"`
	UserID            int64        `json:"user_id"`
	ModuleID          int64        `json:"module_id"`
	Completed         bool         `json:"completed"`
	State             SessionState `json:"state"`
	Cursor            int          `json:"cursor"`
	PendingQuestionID *int64       `json:"pending_question_id"`
	StartedAt         time.Time    `json:"started_at"`
	EndedAt           *time.Time   `json:"ended_at"`
	Questions         []Question   `json:"questions"`
}

// Pending reports whether questionID is the question the session waits on.
func (s Session) Pending(questionID int64) bool {
	return s.PendingQuestionID != nil && *s.PendingQuestionID == questionID
}

// PendingIndex returns the position of the pending question in Questions,
// or -1 when nothing is pending or the question is gone.
func (s Session) PendingIndex() int {
	if s.PendingQuestionID == nil {
		return -1
	}
	for i, q := range s.Questions {
		if q.ID == *s.PendingQuestionID {
			return i
		}
	}
	return -1
}

// Question returns the session's question with the given id.
func (s Session) Question(id int64) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

type Question struct {
	ID         int64    `json:"id"`
	SessionID  int64    `json:"session_id"`
	CardID     int64    `json:"card_id"`
	Position   int      `json:"position"`
	Type       TaskType `json:"type"`
	Answered   bool     `json:"answered"`
	Correct    *bool    `json:"correct"`
	Difficulty *int     `json:"difficulty"`
}

type QuestionOption struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Text       string `json:"text"`
	Value      string `json:"value"`
	IsCorrect  bool   `json:"is_correct"`
}
