// Package repository declares the store the services depend on.
// Single-row getters return nil, nil when the row does not exist.
package repository

import (
	"context"
	"time"

	"github.com/vytor/vocabflash/internal/models"
)

// UserRepository handles chat user records
type UserRepository interface {
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	Insert(ctx context.Context, user models.User) (int64, error)
	UpdateInfo(ctx context.Context, id int64, info models.UserInfo) error
}

// ModuleRepository handles modules and their custom field definitions
type ModuleRepository interface {
	Get(ctx context.Context, id int64) (*models.Module, error)
	ListByUser(ctx context.Context, userID int64) ([]models.ModuleSummary, error)
	Insert(ctx context.Context, module models.Module) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// CardRepository handles card data access. Cards are returned with their
// custom field values joined.
type CardRepository interface {
	Get(ctx context.Context, id int64) (*models.Card, error)
	ListByModule(ctx context.Context, moduleID int64) ([]models.Card, error)
	Page(ctx context.Context, moduleID int64, limit, offset int) ([]models.Card, error)
	CountByModule(ctx context.Context, moduleID int64) (int, error)
	// UnreviewedIDs returns ids of module cards the user has no progress for.
	UnreviewedIDs(ctx context.Context, userID, moduleID int64, limit int) ([]int64, error)
	Insert(ctx context.Context, card models.Card) (int64, error)
	Update(ctx context.Context, card models.Card) error
	Delete(ctx context.Context, id int64) error
}

// ProgressRepository handles per-user card memory state. Every lookup is
// scoped by user.
type ProgressRepository interface {
	Get(ctx context.Context, userID, cardID int64) (*models.Progress, error)
	// DueCardIDs returns module cards whose progress is due at or before now.
	DueCardIDs(ctx context.Context, userID, moduleID int64, now time.Time) ([]int64, error)
	Upsert(ctx context.Context, progress models.Progress) error
}

// SessionRepository handles practice sessions and their question lists
type SessionRepository interface {
	// Insert stores the session and its questions, filling in the generated ids.
	Insert(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id int64) (*models.Session, error)
	// UpdateState persists the cursor, state machine fields and completion.
	UpdateState(ctx context.Context, session models.Session) error
}

// QuestionRepository handles question results and choice options
type QuestionRepository interface {
	Get(ctx context.Context, id int64) (*models.Question, error)
	MarkAnswered(ctx context.Context, id int64, correct bool) error
	SetDifficulty(ctx context.Context, id int64, difficulty int) error
	InsertOptions(ctx context.Context, questionID int64, options []models.QuestionOption) error
	Options(ctx context.Context, questionID int64) ([]models.QuestionOption, error)
}

// StatsRepository handles learning statistics
type StatsRepository interface {
	TotalCards(ctx context.Context, userID int64) (int, error)
	CompletedSessions(ctx context.Context, userID int64) (int, error)
	DueCount(ctx context.Context, userID int64, now time.Time) (int, error)
	ModuleStats(ctx context.Context, userID int64, learnedInterval int) ([]models.ModuleStats, error)
}

// Store groups the repositories over one connection or transaction.
type Store interface {
	Users() UserRepository
	Modules() ModuleRepository
	Cards() CardRepository
	Progress() ProgressRepository
	Sessions() SessionRepository
	Questions() QuestionRepository
	Stats() StatsRepository
	// WithTx runs fn against a Store bound to a single transaction.
	// A nested call reuses the outer transaction.
	WithTx(ctx context.Context, fn func(Store) error) error
}
