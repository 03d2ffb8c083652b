package mocks

import (
	"context"

	"github.com/vytor/vocabflash/internal/repository"
)

// Store is a repository.Store assembled from mock repositories. Unset
// repositories are nil. WithTx calls fn with the same store.
type Store struct {
	UserRepo     repository.UserRepository
	ModuleRepo   repository.ModuleRepository
	CardRepo     repository.CardRepository
	ProgressRepo repository.ProgressRepository
	SessionRepo  repository.SessionRepository
	QuestionRepo repository.QuestionRepository
	StatsRepo    repository.StatsRepository
}

func (s *Store) Users() repository.UserRepository         { return s.UserRepo }
func (s *Store) Modules() repository.ModuleRepository     { return s.ModuleRepo }
func (s *Store) Cards() repository.CardRepository         { return s.CardRepo }
func (s *Store) Progress() repository.ProgressRepository  { return s.ProgressRepo }
func (s *Store) Sessions() repository.SessionRepository   { return s.SessionRepo }
func (s *Store) Questions() repository.QuestionRepository { return s.QuestionRepo }
func (s *Store) Stats() repository.StatsRepository        { return s.StatsRepo }

func (s *Store) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(s)
}
