package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestDB(t *testing.T) *MYSQLStore {
	dsn := os.Getenv("METRICS_TEST_DSN")
	if dsn == "" {
		t.Skip("METRICS_TEST_DSN not set, skipping store integration test")
	}

	db, err := New(context.Background(), Config{
		DSN:         dsn,
		Automigrate: true,
	})
	assert.NoError(t, err)

	_, err = db.db.ExecContext(context.Background(), "SET FOREIGN_KEY_CHECKS = 0")
	assert.NoError(t, err)
	_, err = db.db.ExecContext(context.Background(), "DELETE FROM metric_snapshots")
	assert.NoError(t, err)
	_, err = db.db.ExecContext(context.Background(), "DELETE FROM orders")
	assert.NoError(t, err)
	_, err = db.db.ExecContext(context.Background(), "DELETE FROM merchants")
	assert.NoError(t, err)
	_, err = db.db.ExecContext(context.Background(), "SET FOREIGN_KEY_CHECKS = 1")
	assert.NoError(t, err)

	return db
}
