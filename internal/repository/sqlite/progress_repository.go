package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
)

type progressRepository struct {
	db DBTX
}

func (r *progressRepository) Get(ctx context.Context, userID, cardID int64) (*models.Progress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("getting progress: user_id=%d, card_id=%d", userID, cardID)

	var p models.Progress
	var last sql.NullTime
	err := r.db.QueryRowContext(ctx, `
SELECT id, user_id, card_id, repetitions, ease_factor, interval_days, next_review, last_reviewed
FROM progress
WHERE user_id = ? AND card_id = ?
`, userID, cardID).Scan(&p.ID, &p.UserID, &p.CardID, &p.Repetitions, &p.EaseFactor, &p.IntervalDays, &p.NextReview, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get progress: %v", err)
		return nil, err
	}
	p.LastReviewed = timePtr(last)
	return &p, nil
}

func (r *progressRepository) DueCardIDs(ctx context.Context, userID, moduleID int64, now time.Time) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("finding due cards: user_id=%d, module_id=%d", userID, moduleID)

	query, args, err := sqlBuilder.
		Select("p.card_id").
		From("progress p").
		Join("cards c ON c.id = p.card_id").
		Where(squirrel.Eq{"p.user_id": userID, "c.module_id": moduleID}).
		Where(squirrel.LtOrEq{"p.next_review": utc(now)}).
		OrderBy("p.next_review", "p.card_id").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query due cards: %v", err)
		return nil, err
	}
	ids, err := scanIDs(rows)
	if err != nil {
		log.Error("failed to scan card ids: %v", err)
		return nil, err
	}
	log.Debug("found %d due cards", len(ids))
	return ids, nil
}

// Upsert writes the progress row for (user, card), replacing any existing one.
func (r *progressRepository) Upsert(ctx context.Context, p models.Progress) error {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("upserting progress: user_id=%d, card_id=%d, reps=%d, interval=%d", p.UserID, p.CardID, p.Repetitions, p.IntervalDays)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO progress (user_id, card_id, repetitions, ease_factor, interval_days, next_review, last_reviewed)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, card_id) DO UPDATE SET
    repetitions = excluded.repetitions,
    ease_factor = excluded.ease_factor,
    interval_days = excluded.interval_days,
    next_review = excluded.next_review,
    last_reviewed = excluded.last_reviewed
`, p.UserID, p.CardID, p.Repetitions, p.EaseFactor, p.IntervalDays, utc(p.NextReview), nullTime(p.LastReviewed))
	if err != nil {
		log.Error("failed to upsert progress: %v", err)
	}
	return err
}
