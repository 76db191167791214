package store

import (
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/01moynul/taptoeat-golang/internal/realtime"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	orig := now
	now = func() time.Time { return testNow }
	t.Cleanup(func() {
		now = orig
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

type recorder struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (r *recorder) Publish(e realtime.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) tables() []realtime.Table {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []realtime.Table
	for _, e := range r.events {
		out = append(out, e.Table)
	}
	return out
}

func expectActivity(mock sqlmock.Sqlmock, id int64) {
	mock.ExpectExec("INSERT INTO activity_logs").WillReturnResult(sqlmock.NewResult(id, 1))
}

func TestBackendErr(t *testing.T) {
	dup := backendErr("Failed", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	assert.True(t, apperr.IsKind(dup, apperr.KindConflict))

	other := backendErr("Failed to load", errors.New("connection reset"))
	assert.True(t, apperr.IsKind(other, apperr.KindBackend))
	assert.Equal(t, "Failed to load", apperr.Message(other))
}

func TestTxErrKeepsDomainErrors(t *testing.T) {
	nf := apperr.NotFound("Ticket not found")
	assert.Same(t, nf, txErr("Failed", nf))
	assert.True(t, apperr.IsKind(txErr("Failed", sql.ErrConnDone), apperr.KindBackend))
}

func TestDecodeJSON(t *testing.T) {
	m, err := decodeJSON("metadata", nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = decodeJSON("metadata", []byte("null"))
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = decodeJSON("metadata", []byte(`{"orderId": 12}`))
	require.NoError(t, err)
	assert.Equal(t, 12.0, m["orderId"])

	_, err = decodeJSON("metadata", []byte(`[1, 2`))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindFormat))
	assert.Equal(t, "Failed to load data", apperr.Message(err))

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "metadata", appErr.Field)
}

func TestEncodeJSON(t *testing.T) {
	v, err := encodeJSON("metadata", nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = encodeJSON("metadata", map[string]any{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, v)
}
