package sqlite

import (
	"context"
	"database/sql"

	"github.com/vytor/vocabflash/internal/repository"
)

type store struct {
	db   *sql.DB
	q    DBTX
	inTx bool
}

// NewStore creates a repository.Store backed by db.
func NewStore(db *sql.DB) repository.Store {
	return &store{db: db, q: db}
}

func (s *store) Users() repository.UserRepository         { return &userRepository{db: s.q} }
func (s *store) Modules() repository.ModuleRepository     { return &moduleRepository{db: s.q} }
func (s *store) Cards() repository.CardRepository         { return &cardRepository{db: s.q} }
func (s *store) Progress() repository.ProgressRepository  { return &progressRepository{db: s.q} }
func (s *store) Sessions() repository.SessionRepository   { return &sessionRepository{db: s.q} }
func (s *store) Questions() repository.QuestionRepository { return &questionRepository{db: s.q} }
func (s *store) Stats() repository.StatsRepository        { return &statsRepository{db: s.q} }

func (s *store) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return tx(ctx, s.db, func(t *sql.Tx) error {
		return fn(&store{db: s.db, q: t, inTx: true})
	})
}
