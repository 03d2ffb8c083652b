package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
)

type userRepository struct {
	db DBTX
}

func (r *userRepository) get(ctx context.Context, where string, arg any) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, `
SELECT id, external_id, name, username, created_at
FROM users
WHERE `+where+` = ?
`, arg).Scan(&u.ID, &u.ExternalID, &u.Name, &u.Username, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	u, err := r.get(ctx, "id", id)
	if err != nil {
		log.Error("failed to get user: id=%d: %v", id, err)
	}
	return u, err
}

func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	u, err := r.get(ctx, "external_id", externalID)
	if err != nil {
		log.Error("failed to get user: external_id=%s: %v", externalID, err)
	}
	return u, err
}

func (r *userRepository) Insert(ctx context.Context, u models.User) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("inserting user: external_id=%s", u.ExternalID)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (external_id, name, username, created_at)
VALUES (?, ?, ?, ?)
`, u.ExternalID, u.Name, u.Username, utc(u.CreatedAt))
	if err != nil {
		log.Error("failed to insert user: %v", err)
		return 0, err
	}
	return res.LastInsertId()
}

func (r *userRepository) UpdateInfo(ctx context.Context, id int64, info models.UserInfo) error {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("updating user info: id=%d", id)

	_, err := r.db.ExecContext(ctx, `UPDATE users SET name = ?, username = ? WHERE id = ?`, info.Name, info.Username, id)
	if err != nil {
		log.Error("failed to update user: %v", err)
	}
	return err
}
