package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/01moynul/taptoeat-golang/internal/database"
	"github.com/01moynul/taptoeat-golang/internal/delivery"
	"github.com/01moynul/taptoeat-golang/internal/models"
	"github.com/01moynul/taptoeat-golang/internal/realtime"
)

type OrderStore struct {
	db  *sql.DB
	pub Publisher
}

func NewOrderStore(db *sql.DB, pub Publisher) *OrderStore {
	return &OrderStore{db: db, pub: orNop(pub)}
}

var _ delivery.Backend = (*OrderStore)(nil)

// OrderColumns are the columns order lists may be filtered on.
var OrderColumns = []string{"status", "driver_id", "customer_id", "payment_status", "order_number", "created_at"}

const orderSelect = `id, order_number, customer_id, driver_id, vendor_name, vendor_address, customer_name,
	customer_phone, delivery_address, total_amount, delivery_fee, special_instructions, status, payment_status,
	assigned_at, picked_up_at, delivered_at, created_at, updated_at`

func (s *OrderStore) List(ctx context.Context, f *Filter, p Page) ([]models.DriverOrder, int, error) {
	list, args, count, countArgs, err := selectPage(orderSelect, "orders", f, p)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, count, countArgs...).Scan(&total); err != nil {
		return nil, 0, backendErr("Failed to load orders", err)
	}

	rows, err := s.db.QueryContext(ctx, list, args...)
	if err != nil {
		return nil, 0, backendErr("Failed to load orders", err)
	}
	defer rows.Close()

	out := []models.DriverOrder{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, backendErr("Failed to load orders", err)
	}
	return out, total, nil
}

func (s *OrderStore) GetOrder(ctx context.Context, id int64) (models.DriverOrder, error) {
	return getOrder(ctx, s.db, id, false)
}

// UpdateOrderStatus applies a driver transition. The row is locked and the
// transition re-checked against the stored status, so two racing requests
// cannot both move the order out of the same state.
func (s *OrderStore) UpdateOrderStatus(ctx context.Context, t delivery.Transition) (models.DriverOrder, error) {
	var (
		o     models.DriverOrder
		entry models.ActivityLog
	)
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		// 1. --- Lock the order ---
		current, err := getOrder(ctx, tx, t.OrderID, true)
		if err != nil {
			return err
		}
		if current.Status != t.From {
			return delivery.ErrStaleStatus
		}
		if !delivery.CanTransition(t.From, t.To) {
			return apperr.Validationf("Cannot move order from %s to %s", delivery.DisplayName(t.From), delivery.DisplayName(t.To))
		}

		// 2. --- Update status and its timestamps ---
		if err := setOrderStatus(ctx, tx, t.OrderID, t.To, t.ActorID); err != nil {
			return err
		}

		// 3. --- History and audit ---
		if err := insertStatusHistory(ctx, tx, t.OrderID, t.From, t.To, t.ActorID); err != nil {
			return err
		}
		entry, err = insertActivity(ctx, tx, ActivityEntry{
			ActorID:  t.ActorID,
			Action:   models.ActionOrderStatusChanged,
			Target:   models.TargetOrder,
			TargetID: t.OrderID,
			Details:  map[string]any{"from": string(t.From), "to": string(t.To)},
		})
		if err != nil {
			return err
		}

		// 4. --- Re-read inside the transaction ---
		o, err = getOrder(ctx, tx, t.OrderID, false)
		return err
	})
	if err != nil {
		return models.DriverOrder{}, txErr("Could not update order status", err)
	}

	s.publishOrder(o, realtime.EventUpdate)
	s.pub.Publish(activityEvent(entry))
	return o, nil
}

// Refund marks a paid order refunded, cancels the delivery if it is still
// running and tells the customer.
func (s *OrderStore) Refund(ctx context.Context, actorID, orderID int64, reason string) (models.DriverOrder, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.DriverOrder{}, apperr.Validation("A refund reason is required")
	}

	var (
		o     models.DriverOrder
		note  models.AdminNotification
		entry models.ActivityLog
	)
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		// 1. --- Lock the order ---
		current, err := getOrder(ctx, tx, orderID, true)
		if err != nil {
			return err
		}
		if current.PaymentStatus != models.PaymentPaid {
			return apperr.Conflict("Only paid orders can be refunded")
		}

		// 2. --- Refund, cancelling an unfinished delivery ---
		if _, err := tx.ExecContext(ctx,
			"UPDATE orders SET payment_status = ?, updated_at = ? WHERE id = ?",
			models.PaymentRefunded, now(), orderID); err != nil {
			return err
		}
		if !delivery.IsTerminal(current.Status) {
			if err := setOrderStatus(ctx, tx, orderID, models.OrderCancelled, actorID); err != nil {
				return err
			}
			if err := insertStatusHistory(ctx, tx, orderID, current.Status, models.OrderCancelled, actorID); err != nil {
				return err
			}
		}

		// 3. --- Notify the customer ---
		customer := current.CustomerID
		note, err = insertNotification(ctx, tx, NewNotification{
			UserID:   &customer,
			Title:    "Refund issued",
			Message:  "Your order " + current.OrderNumber + " has been refunded. Reason: " + reason,
			Type:     models.NotificationPayment,
			Priority: models.PriorityHigh,
			Metadata: map[string]any{"orderId": orderID},
		})
		if err != nil {
			return err
		}

		// 4. --- Audit ---
		entry, err = insertActivity(ctx, tx, ActivityEntry{
			ActorID:  actorID,
			Action:   models.ActionOrderRefunded,
			Target:   models.TargetOrder,
			TargetID: orderID,
			Details:  map[string]any{"reason": reason, "amount": current.TotalAmount, "status": string(current.Status)},
		})
		if err != nil {
			return err
		}

		o, err = getOrder(ctx, tx, orderID, false)
		return err
	})
	if err != nil {
		return models.DriverOrder{}, txErr("Could not refund order", err)
	}

	s.publishOrder(o, realtime.EventUpdate)
	s.pub.Publish(notificationEvent(note))
	s.pub.Publish(activityEvent(entry))
	return o, nil
}

// CountActive counts orders a driver is currently working on.
func (s *OrderStore) CountActive(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM orders WHERE status NOT IN (?, ?, ?)",
		models.OrderAvailable, models.OrderDelivered, models.OrderCancelled).Scan(&n)
	if err != nil {
		return 0, backendErr("Failed to count orders", err)
	}
	return n, nil
}

// publishOrder sends the change to the driver and customer. Orders back in
// the pool go to every driver.
func (s *OrderStore) publishOrder(o models.DriverOrder, typ realtime.EventType) {
	e := realtime.Event{Table: realtime.TableOrders, Type: typ, UserIDs: []int64{o.CustomerID}, Record: o}
	if o.DriverID != nil {
		e.UserIDs = append(e.UserIDs, *o.DriverID)
	}
	if o.Status == models.OrderAvailable {
		e.Broadcast = true
		e.Roles = []models.Role{models.RoleDriver}
	}
	s.pub.Publish(e)
}

func setOrderStatus(ctx context.Context, q database.Querier, orderID int64, to models.OrderStatus, actorID int64) error {
	ts := now()
	set := "status = ?, updated_at = ?"
	args := []any{to, ts}

	switch to {
	case models.OrderAssigned:
		set += ", driver_id = ?, assigned_at = ?"
		args = append(args, actorID, ts)
	case models.OrderAvailable:
		set += ", driver_id = NULL, assigned_at = NULL"
	case models.OrderPickedUp:
		set += ", picked_up_at = ?"
		args = append(args, ts)
	case models.OrderDelivered:
		set += ", delivered_at = ?"
		args = append(args, ts)
	}
	args = append(args, orderID)

	if _, err := q.ExecContext(ctx, "UPDATE orders SET "+set+" WHERE id = ?", args...); err != nil {
		return err
	}
	return nil
}

func insertStatusHistory(ctx context.Context, q database.Querier, orderID int64, from, to models.OrderStatus, actorID int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO order_status_history (order_id, from_status, to_status, changed_by, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		orderID, from, to, actorID, now())
	return err
}

func getOrder(ctx context.Context, q database.Querier, id int64, lock bool) (models.DriverOrder, error) {
	query := "SELECT " + orderSelect + " FROM orders WHERE id = ?"
	if lock {
		query += " FOR UPDATE"
	}
	o, err := scanOrder(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return o, apperr.NotFound("Order not found")
	}
	return o, err
}

func scanOrder(r interface{ Scan(...any) error }) (models.DriverOrder, error) {
	var o models.DriverOrder
	err := r.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.DriverID, &o.VendorName, &o.VendorAddress, &o.CustomerName,
		&o.CustomerPhone, &o.DeliveryAddress, &o.TotalAmount, &o.DeliveryFee, &o.SpecialInstructions, &o.Status,
		&o.PaymentStatus, &o.AssignedAt, &o.PickedUpAt, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return o, err
	}
	if err != nil {
		return o, backendErr("Failed to read order", err)
	}
	return o, nil
}
