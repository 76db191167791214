package store

import (
	"context"
	"testing"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/01moynul/taptoeat-golang/internal/models"
	"github.com/01moynul/taptoeat-golang/internal/realtime"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vendorCols = []string{"id", "owner_id", "name", "address", "status", "rejection_reason", "created_at", "updated_at"}

func vendorRow(status models.VendorStatus) *sqlmock.Rows {
	return sqlmock.NewRows(vendorCols).AddRow(3, int64(50), "Roti Canai Corner", "Jalan Alor", string(status), nil, testNow, testNow)
}

func TestRejectVendorNotifiesOwner(t *testing.T) {
	db, mock := newMock(t)
	rec := &recorder{}
	s := NewVendorStore(db, rec)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM vendors WHERE id = \? FOR UPDATE`).WithArgs(int64(3)).WillReturnRows(vendorRow(models.VendorPending))
	mock.ExpectExec("UPDATE vendors SET status = ?").
		WithArgs("rejected", "Missing halal certificate", testNow, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO admin_notifications").
		WithArgs(int64(50), "Vendor application update",
			"Your restaurant 'Roti Canai Corner' was rejected. Reason: Missing halal certificate",
			"vendor", "normal", 0, nil, `{"status":"rejected","vendorId":3}`, testNow).
		WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectExec("INSERT INTO activity_logs").
		WithArgs(int64(1), "vendor_rejected", "vendor", "3", sqlmock.AnyArg(), "", testNow).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	v, err := s.Reject(context.Background(), 1, 3, "Missing halal certificate")
	require.NoError(t, err)
	assert.Equal(t, models.VendorRejected, v.Status)
	require.NotNil(t, v.RejectionReason)
	assert.Equal(t, []realtime.Table{realtime.TableNotifications, realtime.TableActivityLogs}, rec.tables())
}

func TestApproveProcessedVendor(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(vendorRow(models.VendorApproved))
	mock.ExpectRollback()

	_, err := NewVendorStore(db, nil).Approve(context.Background(), 1, 3)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestRejectVendorNeedsReason(t *testing.T) {
	db, _ := newMock(t)
	_, err := NewVendorStore(db, nil).Reject(context.Background(), 1, 3, " ")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestMenuItemWithTiers(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM menu_items m JOIN vendors v").
		WithArgs("curry-puff").
		WillReturnRows(sqlmock.NewRows([]string{"id", "vendor_id", "vendor_name", "name", "description", "price", "min", "max"}).
			AddRow("curry-puff", int64(3), "Roti Canai Corner", "Curry Puff", "Spicy potato", 2.0, 5, nil))
	mock.ExpectQuery("FROM menu_item_price_tiers").
		WithArgs("curry-puff").
		WillReturnRows(sqlmock.NewRows([]string{"min_quantity", "price"}).AddRow(20, 1.8).AddRow(50, 1.5))

	m, vendor, err := NewMenuStore(db).MenuItem(context.Background(), "curry-puff")
	require.NoError(t, err)
	assert.Equal(t, "Roti Canai Corner", vendor)
	assert.Equal(t, "3", m.VendorID)
	assert.Equal(t, 5, m.MinOrderQuantity)
	assert.Zero(t, m.MaxOrderQuantity)
	assert.Len(t, m.BulkTiers, 2)
}

func TestMenuItemMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM menu_items").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := NewMenuStore(db).MenuItem(context.Background(), "nope")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
