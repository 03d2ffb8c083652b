package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
)

type sessionRepository struct {
	db DBTX
}

func (r *sessionRepository) Insert(ctx context.Context, s *models.Session) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("inserting session: user_id=%d, module_id=%d, questions=%d", s.UserID, s.ModuleID, len(s.Questions))

	if s.State == "" {
		s.State = models.StateReady
	}
	res, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (user_id, module_id, completed, state, cursor, pending_question_id, started_at, ended_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, s.UserID, s.ModuleID, s.Completed, string(s.State), s.Cursor, nullInt64(s.PendingQuestionID), utc(s.StartedAt), nullTime(s.EndedAt))
	if err != nil {
		log.Error("failed to insert session: %v", err)
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = id

	for i := range s.Questions {
		q := &s.Questions[i]
		q.SessionID = id
		q.Position = i
		res, err := r.db.ExecContext(ctx, `
INSERT INTO questions (session_id, card_id, position, type, answered)
VALUES (?, ?, ?, ?, ?)
`, id, q.CardID, q.Position, string(q.Type), q.Answered)
		if err != nil {
			log.Error("failed to insert question %d: %v", i, err)
			return err
		}
		if q.ID, err = res.LastInsertId(); err != nil {
			return err
		}
	}
	log.Debug("session inserted: id=%d", id)
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id int64) (*models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("getting session: id=%d", id)

	var s models.Session
	var state string
	var pending sql.NullInt64
	var ended sql.NullTime
	err := r.db.QueryRowContext(ctx, `
SELECT id, user_id, module_id, completed, state, cursor, pending_question_id, started_at, ended_at
FROM sessions
WHERE id = ?
`, id).Scan(&s.ID, &s.UserID, &s.ModuleID, &s.Completed, &state, &s.Cursor, &pending, &s.StartedAt, &ended)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("session not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	s.State = models.SessionState(state)
	s.PendingQuestionID = int64Ptr(pending)
	s.EndedAt = timePtr(ended)

	questions, err := r.questions(ctx, id)
	if err != nil {
		log.Error("failed to load questions: %v", err)
		return nil, err
	}
	s.Questions = questions
	return &s, nil
}

func (r *sessionRepository) questions(ctx context.Context, sessionID int64) ([]models.Question, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, session_id, card_id, position, type, answered, correct, difficulty
FROM questions
WHERE session_id = ?
ORDER BY position
`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *sessionRepository) UpdateState(ctx context.Context, s models.Session) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("updating session: id=%d, state=%s, cursor=%d", s.ID, s.State, s.Cursor)

	_, err := r.db.ExecContext(ctx, `
UPDATE sessions
SET completed = ?, state = ?, cursor = ?, pending_question_id = ?, ended_at = ?
WHERE id = ?
`, s.Completed, string(s.State), s.Cursor, nullInt64(s.PendingQuestionID), nullTime(s.EndedAt), s.ID)
	if err != nil {
		log.Error("failed to update session: %v", err)
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (models.Question, error) {
	var q models.Question
	var typ string
	var correct sql.NullBool
	var difficulty sql.NullInt64
	if err := row.Scan(&q.ID, &q.SessionID, &q.CardID, &q.Position, &typ, &q.Answered, &correct, &difficulty); err != nil {
		return q, err
	}
	q.Type = models.TaskType(typ)
	if correct.Valid {
		c := correct.Bool
		q.Correct = &c
	}
	if difficulty.Valid {
		d := int(difficulty.Int64)
		q.Difficulty = &d
	}
	return q, nil
}
