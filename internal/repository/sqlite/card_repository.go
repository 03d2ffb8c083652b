package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
)

type cardRepository struct {
	db DBTX
}

var cardColumns = []string{"id", "module_id", "phrase", "definition", "hint", "created_at"}

func (r *cardRepository) Get(ctx context.Context, id int64) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("getting card: id=%d", id)

	cards, err := r.query(ctx, sqlBuilder.Select(cardColumns...).From("cards").Where(squirrel.Eq{"id": id}))
	if err != nil {
		log.Error("failed to get card: %v", err)
		return nil, err
	}
	if len(cards) == 0 {
		log.Debug("card not found: id=%d", id)
		return nil, nil
	}
	return &cards[0], nil
}

func (r *cardRepository) ListByModule(ctx context.Context, moduleID int64) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("listing cards: module_id=%d", moduleID)

	cards, err := r.query(ctx, sqlBuilder.Select(cardColumns...).
		From("cards").
		Where(squirrel.Eq{"module_id": moduleID}).
		OrderBy("id"))
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, err
	}
	log.Debug("found %d cards", len(cards))
	return cards, nil
}

func (r *cardRepository) Page(ctx context.Context, moduleID int64, limit, offset int) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("paging cards: module_id=%d, limit=%d, offset=%d", moduleID, limit, offset)

	cards, err := r.query(ctx, sqlBuilder.Select(cardColumns...).
		From("cards").
		Where(squirrel.Eq{"module_id": moduleID}).
		OrderBy("id").
		Limit(uint64(limit)).
		Offset(uint64(offset)))
	if err != nil {
		log.Error("failed to page cards: %v", err)
		return nil, err
	}
	return cards, nil
}

func (r *cardRepository) CountByModule(ctx context.Context, moduleID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards WHERE module_id = ?`, moduleID).Scan(&n)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("card_repo").Error("failed to count cards: %v", err)
	}
	return n, err
}

func (r *cardRepository) UnreviewedIDs(ctx context.Context, userID, moduleID int64, limit int) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("finding unreviewed cards: user_id=%d, module_id=%d, limit=%d", userID, moduleID, limit)

	query, args, err := sqlBuilder.
		Select("c.id").
		From("cards c").
		Where(squirrel.Eq{"c.module_id": moduleID}).
		Where("NOT EXISTS (SELECT 1 FROM progress p WHERE p.card_id = c.id AND p.user_id = ?)", userID).
		OrderBy("c.id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query unreviewed cards: %v", err)
		return nil, err
	}
	ids, err := scanIDs(rows)
	if err != nil {
		log.Error("failed to scan card ids: %v", err)
		return nil, err
	}
	log.Debug("found %d unreviewed cards", len(ids))
	return ids, nil
}

func (r *cardRepository) Insert(ctx context.Context, c models.Card) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("inserting card: module_id=%d, phrase=%s", c.ModuleID, c.Phrase)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO cards (module_id, phrase, definition, hint, created_at)
VALUES (?, ?, ?, ?, ?)
`, c.ModuleID, c.Phrase, c.Definition, nullString(c.Hint), utc(c.CreatedAt))
	if err != nil {
		log.Error("failed to insert card: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := r.insertFields(ctx, id, c.Fields); err != nil {
		log.Error("failed to insert field values: %v", err)
		return 0, err
	}
	return id, nil
}

// Update replaces the card's text columns and its custom field values.
func (r *cardRepository) Update(ctx context.Context, c models.Card) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("updating card: id=%d", c.ID)

	if _, err := r.db.ExecContext(ctx, `
UPDATE cards SET phrase = ?, definition = ?, hint = ?
WHERE id = ?
`, c.Phrase, c.Definition, nullString(c.Hint), c.ID); err != nil {
		log.Error("failed to update card: %v", err)
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM custom_field_values WHERE card_id = ?`, c.ID); err != nil {
		log.Error("failed to clear field values: %v", err)
		return err
	}
	return r.insertFields(ctx, c.ID, c.Fields)
}

func (r *cardRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("deleting card: id=%d", id)

	_, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete card: %v", err)
	}
	return err
}

func (r *cardRepository) insertFields(ctx context.Context, cardID int64, fields []models.CustomFieldValue) error {
	for _, f := range fields {
		if _, err := r.db.ExecContext(ctx, `
INSERT INTO custom_field_values (card_id, custom_field_id, value)
VALUES (?, ?, ?)
`, cardID, f.FieldID, f.Value); err != nil {
			return err
		}
	}
	return nil
}

// query runs a card select and attaches the custom field values. Rows are
// drained before the values are fetched since the pool holds one connection.
func (r *cardRepository) query(ctx context.Context, b squirrel.SelectBuilder) ([]models.Card, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	cards, err := r.scanCards(ctx, query, args)
	if err != nil || len(cards) == 0 {
		return cards, err
	}

	ids := make([]int64, len(cards))
	index := make(map[int64]int, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
		index[c.ID] = i
	}
	values, err := r.fieldValues(ctx, ids)
	if err != nil {
		return nil, err
	}
	for cardID, vs := range values {
		cards[index[cardID]].Fields = vs
	}
	return cards, nil
}

func (r *cardRepository) scanCards(ctx context.Context, query string, args []any) ([]models.Card, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var c models.Card
		var hint sql.NullString
		if err := rows.Scan(&c.ID, &c.ModuleID, &c.Phrase, &c.Definition, &hint, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Hint = stringPtr(hint)
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (r *cardRepository) fieldValues(ctx context.Context, cardIDs []int64) (map[int64][]models.CustomFieldValue, error) {
	query, args, err := sqlBuilder.
		Select("v.card_id", "f.id", "f.name", "v.value").
		From("custom_field_values v").
		Join("custom_fields f ON f.id = v.custom_field_id").
		Where(squirrel.Eq{"v.card_id": cardIDs}).
		OrderBy("v.card_id", "f.position", "f.id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]models.CustomFieldValue)
	for rows.Next() {
		var cardID int64
		var v models.CustomFieldValue
		if err := rows.Scan(&cardID, &v.FieldID, &v.Name, &v.Value); err != nil {
			return nil, err
		}
		out[cardID] = append(out[cardID], v)
	}
	return out, rows.Err()
}
