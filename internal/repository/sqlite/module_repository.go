package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
)

type moduleRepository struct {
	db DBTX
}

func (r *moduleRepository) Get(ctx context.Context, id int64) (*models.Module, error) {
	log := logger.FromContext(ctx).WithPrefix("module_repo")
	log.Debug("getting module: id=%d", id)

	var m models.Module
	err := r.db.QueryRowContext(ctx, `
SELECT id, user_id, name, description, created_at
FROM modules
WHERE id = ?
`, id).Scan(&m.ID, &m.UserID, &m.Name, &m.Description, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("module not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get module: %v", err)
		return nil, err
	}

	fields, err := r.customFields(ctx, id)
	if err != nil {
		log.Error("failed to load custom fields: %v", err)
		return nil, err
	}
	m.CustomFields = fields
	return &m, nil
}

func (r *moduleRepository) customFields(ctx context.Context, moduleID int64) ([]models.CustomField, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, module_id, name, position
FROM custom_fields
WHERE module_id = ?
ORDER BY position, id
`, moduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := []models.CustomField{}
	for rows.Next() {
		var f models.CustomField
		if err := rows.Scan(&f.ID, &f.ModuleID, &f.Name, &f.Position); err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

func (r *moduleRepository) ListByUser(ctx context.Context, userID int64) ([]models.ModuleSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("module_repo")
	log.Debug("listing modules: user_id=%d", userID)

	query, args, err := sqlBuilder.
		Select("m.id", "m.user_id", "m.name", "m.description", "m.created_at", "COUNT(c.id)").
		From("modules m").
		LeftJoin("cards c ON c.module_id = m.id").
		Where("m.user_id = ?", userID).
		GroupBy("m.id").
		OrderBy("m.created_at DESC", "m.id DESC").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list modules: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.ModuleSummary
	for rows.Next() {
		var m models.ModuleSummary
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Description, &m.CreatedAt, &m.CardCount); err != nil {
			log.Error("failed to scan module row: %v", err)
			return nil, err
		}
		out = append(out, m)
	}
	log.Debug("found %d modules", len(out))
	return out, rows.Err()
}

// Insert stores the module together with its custom field definitions.
func (r *moduleRepository) Insert(ctx context.Context, m models.Module) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("module_repo")
	log.Debug("inserting module: user_id=%d, name=%s, fields=%d", m.UserID, m.Name, len(m.CustomFields))

	res, err := r.db.ExecContext(ctx, `
INSERT INTO modules (user_id, name, description, created_at)
VALUES (?, ?, ?, ?)
`, m.UserID, m.Name, m.Description, utc(m.CreatedAt))
	if err != nil {
		log.Error("failed to insert module: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, f := range m.CustomFields {
		if _, err := r.db.ExecContext(ctx, `
INSERT INTO custom_fields (module_id, name, position)
VALUES (?, ?, ?)
`, id, f.Name, i); err != nil {
			log.Error("failed to insert custom field %q: %v", f.Name, err)
			return 0, err
		}
	}
	log.Debug("module inserted: id=%d", id)
	return id, nil
}

func (r *moduleRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("module_repo")
	log.Debug("deleting module: id=%d", id)

	_, err := r.db.ExecContext(ctx, `DELETE FROM modules WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete module: %v", err)
	}
	return err
}
