package sqlite

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
)

type statsRepository struct {
	db DBTX
}

func (r *statsRepository) count(ctx context.Context, b squirrel.SelectBuilder) (int, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *statsRepository) TotalCards(ctx context.Context, userID int64) (int, error) {
	n, err := r.count(ctx, sqlBuilder.
		Select("COUNT(*)").
		From("cards c").
		Join("modules m ON m.id = c.module_id").
		Where(squirrel.Eq{"m.user_id": userID}))
	if err != nil {
		logger.FromContext(ctx).WithPrefix("stats_repo").Error("failed to count cards: %v", err)
	}
	return n, err
}

func (r *statsRepository) CompletedSessions(ctx context.Context, userID int64) (int, error) {
	n, err := r.count(ctx, sqlBuilder.
		Select("COUNT(*)").
		From("sessions").
		Where(squirrel.Eq{"user_id": userID, "completed": true}))
	if err != nil {
		logger.FromContext(ctx).WithPrefix("stats_repo").Error("failed to count sessions: %v", err)
	}
	return n, err
}

func (r *statsRepository) DueCount(ctx context.Context, userID int64, now time.Time) (int, error) {
	n, err := r.count(ctx, sqlBuilder.
		Select("COUNT(*)").
		From("progress").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.LtOrEq{"next_review": utc(now)}))
	if err != nil {
		logger.FromContext(ctx).WithPrefix("stats_repo").Error("failed to count due cards: %v", err)
	}
	return n, err
}

// ModuleStats groups the user's progress rows by module. Modules without any
// reviewed card are left out.
func (r *statsRepository) ModuleStats(ctx context.Context, userID int64, learnedInterval int) ([]models.ModuleStats, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("computing module stats: user_id=%d", userID)

	query, args, err := sqlBuilder.
		Select("m.id", "m.name", "COUNT(p.id)").
		Column(squirrel.Expr("SUM(CASE WHEN p.interval_days >= ? THEN 1 ELSE 0 END)", learnedInterval)).
		From("progress p").
		Join("cards c ON c.id = p.card_id").
		Join("modules m ON m.id = c.module_id").
		Where(squirrel.Eq{"p.user_id": userID}).
		GroupBy("m.id", "m.name").
		OrderBy("m.id").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query module stats: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.ModuleStats
	for rows.Next() {
		var s models.ModuleStats
		if err := rows.Scan(&s.ModuleID, &s.Name, &s.Reviewed, &s.Learned); err != nil {
			log.Error("failed to scan module stats: %v", err)
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
