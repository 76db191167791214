package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/01moynul/taptoeat-golang/internal/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ticketCols = []string{"id", "ticket_number", "user_id", "subject", "description", "category", "priority", "status",
	"assigned_to", "resolution_notes", "resolved_at", "metadata", "created_at", "updated_at"}

func ticketRow(status models.TicketStatus, notes any, resolvedAt any) *sqlmock.Rows {
	return sqlmock.NewRows(ticketCols).AddRow(
		7, "TKT-1A2B3C4D", int64(30), "Cold food", "My nasi lemak arrived cold", "delivery", "normal", string(status),
		nil, notes, resolvedAt, nil, testNow, testNow)
}

func TestCreateTicket(t *testing.T) {
	db, mock := newMock(t)
	rec := &recorder{}
	s := NewTicketStore(db, rec)

	orig := newTicketNumber
	newTicketNumber = func() string { return "TKT-DEADBEEF" }
	t.Cleanup(func() { newTicketNumber = orig })

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO support_tickets").
		WithArgs("TKT-DEADBEEF", int64(30), "Cold food", "My nasi lemak arrived cold", "delivery", "normal", "open", nil, testNow, testNow).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO activity_logs").
		WithArgs(int64(30), "ticket_created", "ticket", "7", sqlmock.AnyArg(), "", testNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tk, err := s.Create(context.Background(), 30, NewTicket{
		Subject:     "Cold food",
		Description: "My nasi lemak arrived cold",
		Category:    models.TicketCategoryDelivery,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), tk.ID)
	assert.Equal(t, models.TicketOpen, tk.Status)
	assert.Equal(t, models.PriorityNormal, tk.Priority)
	assert.Len(t, rec.tables(), 2)
}

func TestNewTicketValidation(t *testing.T) {
	tests := []struct {
		name string
		in   NewTicket
	}{
		{"short subject", NewTicket{Subject: "Hi", Description: "long enough text"}},
		{"short description", NewTicket{Subject: "Refund please", Description: "now"}},
		{"whitespace only", NewTicket{Subject: "     ", Description: "long enough text"}},
		{"bad category", NewTicket{Subject: "Refund please", Description: "long enough text", Category: "misc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.validate()
			assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		})
	}
}

func TestTicketNumberFormat(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^TKT-[0-9A-F]{12}$`), newTicketNumber())
}

func TestResolveTicketStampsResolvedAt(t *testing.T) {
	db, mock := newMock(t)
	s := NewTicketStore(db, nil)
	notes := "Refunded delivery fee"

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM support_tickets WHERE id = \? FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(ticketRow(models.TicketInProgress, nil, nil))
	mock.ExpectExec(`UPDATE support_tickets SET status = \?, resolved_at = \?, resolution_notes = COALESCE\(\?, resolution_notes\), updated_at = \?`).
		WithArgs("resolved", testNow, notes, testNow, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectActivity(mock, 1)
	mock.ExpectQuery(`FROM support_tickets WHERE id = \?$`).
		WillReturnRows(ticketRow(models.TicketResolved, notes, testNow))
	mock.ExpectCommit()

	tk, err := s.UpdateStatus(context.Background(), 1, 7, models.TicketResolved, &notes)
	require.NoError(t, err)
	assert.Equal(t, models.TicketResolved, tk.Status)
	require.NotNil(t, tk.ResolvedAt)
	assert.Equal(t, testNow, *tk.ResolvedAt)
	assert.Equal(t, notes, *tk.ResolutionNotes)
}

func TestReopenTicketClearsResolvedAt(t *testing.T) {
	db, mock := newMock(t)
	s := NewTicketStore(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(ticketRow(models.TicketResolved, "done", testNow))
	mock.ExpectExec(`SET status = \?, resolved_at = NULL, updated_at = \?`).
		WithArgs("in_progress", testNow, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectActivity(mock, 1)
	mock.ExpectQuery("FROM support_tickets").WillReturnRows(ticketRow(models.TicketInProgress, "done", nil))
	mock.ExpectCommit()

	tk, err := s.UpdateStatus(context.Background(), 1, 7, models.TicketInProgress, nil)
	require.NoError(t, err)
	assert.Nil(t, tk.ResolvedAt)
}

func TestUpdateTicketStatusErrors(t *testing.T) {
	t.Run("unknown status", func(t *testing.T) {
		db, _ := newMock(t)
		_, err := NewTicketStore(db, nil).UpdateStatus(context.Background(), 1, 7, "reopened", nil)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("missing ticket", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows(ticketCols))
		mock.ExpectRollback()

		_, err := NewTicketStore(db, nil).UpdateStatus(context.Background(), 1, 7, models.TicketClosed, nil)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestAssignTicketRequiresActiveAdmin(t *testing.T) {
	db, mock := newMock(t)
	s := NewTicketStore(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(ticketRow(models.TicketOpen, nil, nil))
	mock.ExpectQuery("SELECT role, is_active FROM users").
		WithArgs(int64(30)).
		WillReturnRows(sqlmock.NewRows([]string{"role", "is_active"}).AddRow("customer", true))
	mock.ExpectRollback()

	_, err := s.Assign(context.Background(), 1, 7, 30)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

// ticketNumbers makes newTicketNumber hand out nums in order.
func ticketNumbers(t *testing.T, nums ...string) {
	orig := newTicketNumber
	i := 0
	newTicketNumber = func() string {
		n := nums[i]
		i++
		return n
	}
	t.Cleanup(func() { newTicketNumber = orig })
}

func TestCreateTicketRetriesDuplicateNumber(t *testing.T) {
	db, mock := newMock(t)
	s := NewTicketStore(db, nil)
	ticketNumbers(t, "TKT-00000000000A", "TKT-00000000000B")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO support_tickets").
		WithArgs("TKT-00000000000A", int64(30), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectExec("INSERT INTO support_tickets").
		WithArgs("TKT-00000000000B", int64(30), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectExec("INSERT INTO activity_logs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tk, err := s.Create(context.Background(), 30, NewTicket{Subject: "Cold food", Description: "My nasi lemak arrived cold"})
	require.NoError(t, err)
	assert.Equal(t, int64(8), tk.ID)
	assert.Equal(t, "TKT-00000000000B", tk.TicketNumber)
}

func TestCreateTicketGivesUpAfterRepeatedCollisions(t *testing.T) {
	db, mock := newMock(t)
	s := NewTicketStore(db, nil)
	ticketNumbers(t, "TKT-00000000000A", "TKT-00000000000B", "TKT-00000000000C")

	mock.ExpectBegin()
	for range ticketNumberAttempts {
		mock.ExpectExec("INSERT INTO support_tickets").
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	}
	mock.ExpectRollback()

	_, err := s.Create(context.Background(), 30, NewTicket{Subject: "Cold food", Description: "My nasi lemak arrived cold"})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}
