package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vytor/vocabflash/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// Foreign keys are enabled, so deletes cascade as in production.
func NewTestDB(t *testing.T) *db.DB {
	d, err := db.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	return d
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// SeedUser inserts a user and returns its id.
func SeedUser(t *testing.T, d *sql.DB, externalID string) int64 {
	res, err := d.Exec(`INSERT INTO users (external_id, created_at) VALUES (?, ?)`, externalID, time.Now().UTC())
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// SeedModule inserts an empty module owned by userID and returns its id.
func SeedModule(t *testing.T, d *sql.DB, userID int64, name string) int64 {
	res, err := d.Exec(`INSERT INTO modules (user_id, name, created_at) VALUES (?, ?, ?)`, userID, name, time.Now().UTC())
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// SeedCards inserts n cards named "phrase N" with definition "definition N"
// and returns their ids in insertion order.
func SeedCards(t *testing.T, d *sql.DB, moduleID int64, n int) []int64 {
	ids := make([]int64, 0, n)
	for i := 1; i <= n; i++ {
		res, err := d.Exec(`INSERT INTO cards (module_id, phrase, definition, created_at) VALUES (?, ?, ?, ?)`,
			moduleID, fmt.Sprintf("phrase %d", i), fmt.Sprintf("definition %d", i), time.Now().UTC())
		require.NoError(t, err)
		id, err := res.LastInsertId()
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

// SeedProgress inserts a progress row for (userID, cardID).
func SeedProgress(t *testing.T, d *sql.DB, userID, cardID int64, repetitions, interval int, nextReview time.Time) {
	_, err := d.Exec(`
INSERT INTO progress (user_id, card_id, repetitions, ease_factor, interval_days, next_review)
VALUES (?, ?, ?, 2.5, ?, ?)
`, userID, cardID, repetitions, interval, nextReview.UTC())
	require.NoError(t, err)
}
