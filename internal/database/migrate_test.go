package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	script := `-- header
CREATE TABLE a (
    id INT
);

CREATE TABLE b (id INT);
SELECT 1`

	got := splitStatements(script)

	require.Len(t, got, 3)
	assert.Equal(t, "CREATE TABLE a (\n    id INT\n)", got[0])
	assert.Equal(t, "CREATE TABLE b (id INT)", got[1])
	assert.Equal(t, "SELECT 1", got[2])
}

func TestEmbeddedSchemaCoversTables(t *testing.T) {
	stmts := splitStatements(schemaSQL)
	for _, table := range []string{
		"users", "vendors", "menu_items", "menu_item_price_tiers", "orders",
		"order_status_history", "admin_notifications", "notification_reads", "support_tickets",
		"system_settings", "activity_logs",
	} {
		found := false
		for _, s := range stmts {
			if regexp.MustCompile(`CREATE TABLE IF NOT EXISTS ` + table + ` \(`).MatchString(s) {
				found = true
			}
		}
		assert.True(t, found, "missing table %s", table)
	}
}

func TestMigrateStopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(errors.New("access denied"))

	err = Migrate(context.Background(), db)
	assert.ErrorContains(t, err, "schema statement 1: access denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}
