package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
)

type questionRepository struct {
	db DBTX
}

func (r *questionRepository) Get(ctx context.Context, id int64) (*models.Question, error) {
	log := logger.FromContext(ctx).WithPrefix("question_repo")

	q, err := scanQuestion(r.db.QueryRowContext(ctx, `
SELECT id, session_id, card_id, position, type, answered, correct, difficulty
FROM questions
WHERE id = ?
`, id))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("question not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get question: %v", err)
		return nil, err
	}
	return &q, nil
}

func (r *questionRepository) MarkAnswered(ctx context.Context, id int64, correct bool) error {
	log := logger.FromContext(ctx).WithPrefix("question_repo")
	log.Debug("marking question answered: id=%d, correct=%t", id, correct)

	_, err := r.db.ExecContext(ctx, `UPDATE questions SET answered = 1, correct = ? WHERE id = ?`, correct, id)
	if err != nil {
		log.Error("failed to mark question: %v", err)
	}
	return err
}

func (r *questionRepository) SetDifficulty(ctx context.Context, id int64, difficulty int) error {
	log := logger.FromContext(ctx).WithPrefix("question_repo")
	log.Debug("setting difficulty: id=%d, difficulty=%d", id, difficulty)

	_, err := r.db.ExecContext(ctx, `UPDATE questions SET difficulty = ? WHERE id = ?`, difficulty, id)
	if err != nil {
		log.Error("failed to set difficulty: %v", err)
	}
	return err
}

func (r *questionRepository) InsertOptions(ctx context.Context, questionID int64, options []models.QuestionOption) error {
	log := logger.FromContext(ctx).WithPrefix("question_repo")
	log.Debug("inserting %d options: question_id=%d", len(options), questionID)

	for _, o := range options {
		if _, err := r.db.ExecContext(ctx, `
INSERT INTO question_options (question_id, text, value, is_correct)
VALUES (?, ?, ?, ?)
`, questionID, o.Text, o.Value, o.IsCorrect); err != nil {
			log.Error("failed to insert option: %v", err)
			return err
		}
	}
	return nil
}

// Options returns the question's options in insertion order.
func (r *questionRepository) Options(ctx context.Context, questionID int64) ([]models.QuestionOption, error) {
	log := logger.FromContext(ctx).WithPrefix("question_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, question_id, text, value, is_correct
FROM question_options
WHERE question_id = ?
ORDER BY id
`, questionID)
	if err != nil {
		log.Error("failed to query options: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.QuestionOption
	for rows.Next() {
		var o models.QuestionOption
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.Value, &o.IsCorrect); err != nil {
			log.Error("failed to scan option: %v", err)
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
