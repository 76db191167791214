package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/01moynul/taptoeat-golang/internal/auth"
	"github.com/01moynul/taptoeat-golang/internal/models"
)

// ErrSuperseded is returned when a newer request for the same order started
// while this one was in flight. Its response is discarded.
var ErrSuperseded = apperr.Conflict("A newer update for this order is in progress")

// ErrStaleStatus is returned by a Backend when the stored status no longer
// matches Transition.From.
var ErrStaleStatus = apperr.Conflict("Order status has changed, please refresh")

// Transition is one status change requested against the backend. The backend
// applies it only if the order is still in From.
type Transition struct {
	OrderID int64
	From    models.OrderStatus
	To      models.OrderStatus
	ActorID int64
}

// Backend is the source of truth for driver orders.
type Backend interface {
	GetOrder(ctx context.Context, orderID int64) (models.DriverOrder, error)
	UpdateOrderStatus(ctx context.Context, t Transition) (models.DriverOrder, error)
}

// Result is the order after a driver action. Transitioned is false when the
// action did not change the order itself: navigation was only reopened, or a
// concurrent request had already made the same move. Superseded marks a
// committed update whose request was overtaken by a newer one; Order is still
// what this request wrote.
type Result struct {
	Order        models.DriverOrder `json:"order"`
	Transitioned bool               `json:"transitioned"`
	Superseded   bool               `json:"superseded,omitempty"`
}

type Workflow struct {
	backend Backend
	logger  *slog.Logger

	mu     sync.Mutex
	seq    uint64
	latest map[int64]uint64
}

func NewWorkflow(backend Backend, logger *slog.Logger) *Workflow {
	return &Workflow{
		backend: backend,
		logger:  logger,
		latest:  make(map[int64]uint64),
	}
}

func (w *Workflow) Accept(ctx context.Context, s auth.Session, orderID int64) (Result, error) {
	return w.run(ctx, s, orderID, "accept", func(o models.DriverOrder) (models.OrderStatus, bool, error) {
		if o.Status != models.OrderAvailable {
			return "", false, apperr.Conflict("Order is no longer available")
		}
		return models.OrderAssigned, true, nil
	})
}

func (w *Workflow) Reject(ctx context.Context, s auth.Session, orderID int64) (Result, error) {
	return w.run(ctx, s, orderID, "reject", w.expect(s, models.OrderAvailable, "reject", models.OrderAssigned))
}

func (w *Workflow) StartNavigationToVendor(ctx context.Context, s auth.Session, orderID int64) (Result, error) {
	return w.run(ctx, s, orderID, "navigate to vendor", w.navigate(s, models.OrderAssigned, models.OrderOnRouteToVendor))
}

func (w *Workflow) MarkArrivedAtVendor(ctx context.Context, s auth.Session, orderID int64) (Result, error) {
	return w.run(ctx, s, orderID, "arrive at vendor",
		w.expect(s, models.OrderArrivedAtVendor, "mark arrival", models.OrderAssigned, models.OrderOnRouteToVendor))
}

func (w *Workflow) ConfirmPickup(ctx context.Context, s auth.Session, orderID int64) (Result, error) {
	return w.run(ctx, s, orderID, "confirm pickup",
		w.expect(s, models.OrderPickedUp, "confirm pickup", models.OrderArrivedAtVendor))
}

// StartNavigationToCustomer moves a picked up order onto the road. If the
// driver is already on the way it only reopens the map; from any other
// status it fails without calling the backend.
func (w *Workflow) StartNavigationToCustomer(ctx context.Context, s auth.Session, orderID int64) (Result, error) {
	return w.run(ctx, s, orderID, "navigate to customer", w.navigate(s, models.OrderPickedUp, models.OrderOnRouteToCustomer))
}

func (w *Workflow) MarkArrivedAtCustomer(ctx context.Context, s auth.Session, orderID int64) (Result, error) {
	return w.run(ctx, s, orderID, "arrive at customer",
		w.expect(s, models.OrderArrivedAtCustomer, "mark arrival", models.OrderPickedUp, models.OrderOnRouteToCustomer))
}

func (w *Workflow) ConfirmDelivery(ctx context.Context, s auth.Session, orderID int64) (Result, error) {
	return w.run(ctx, s, orderID, "confirm delivery",
		w.expect(s, models.OrderDelivered, "confirm delivery", models.OrderArrivedAtCustomer))
}

// Cancel is available to admins on any order and to the assigned driver.
func (w *Workflow) Cancel(ctx context.Context, s auth.Session, orderID int64) (Result, error) {
	return w.run(ctx, s, orderID, "cancel", func(o models.DriverOrder) (models.OrderStatus, bool, error) {
		if !s.IsAdmin() {
			if err := ownedBy(o, s); err != nil {
				return "", false, err
			}
		}
		return models.OrderCancelled, true, nil
	})
}

// decideFunc picks the next status for the order as currently stored. A false
// second result means no backend call is needed.
type decideFunc func(o models.DriverOrder) (models.OrderStatus, bool, error)

func (w *Workflow) expect(s auth.Session, to models.OrderStatus, verb string, from ...models.OrderStatus) decideFunc {
	return func(o models.DriverOrder) (models.OrderStatus, bool, error) {
		if err := ownedBy(o, s); err != nil {
			return "", false, err
		}
		for _, f := range from {
			if o.Status == f {
				return to, true, nil
			}
		}
		return "", false, apperr.Validationf("Cannot %s from current status", verb)
	}
}

func (w *Workflow) navigate(s auth.Session, from, onRoute models.OrderStatus) decideFunc {
	return func(o models.DriverOrder) (models.OrderStatus, bool, error) {
		if err := ownedBy(o, s); err != nil {
			return "", false, err
		}
		switch o.Status {
		case from:
			return onRoute, true, nil
		case onRoute:
			return "", false, nil
		default:
			return "", false, apperr.Validation("Cannot start navigation from current status")
		}
	}
}

func (w *Workflow) run(ctx context.Context, s auth.Session, orderID int64, action string, decide decideFunc) (Result, error) {
	gen := w.begin(orderID)
	defer w.release(orderID, gen)

	// 1. --- Read the current order ---
	order, err := w.backend.GetOrder(ctx, orderID)
	if err != nil {
		return Result{}, err
	}

	// 2. --- Terminal orders never move again ---
	if IsTerminal(order.Status) {
		return Result{}, apperr.Conflict(fmt.Sprintf("Order is already %s", DisplayName(order.Status)))
	}

	// 3. --- Decide the next status ---
	next, call, err := decide(order)
	if err != nil {
		return Result{}, err
	}
	if !call {
		return Result{Order: order}, nil
	}
	if !CanTransition(order.Status, next) {
		return Result{}, apperr.Validationf("Cannot %s from current status", action)
	}
	if !w.isLatest(orderID, gen) {
		return Result{}, ErrSuperseded
	}

	// 4. --- Apply it on the backend ---
	updated, err := w.backend.UpdateOrderStatus(ctx, Transition{
		OrderID: orderID,
		From:    order.Status,
		To:      next,
		ActorID: s.UserID,
	})
	if errors.Is(err, ErrStaleStatus) {
		return w.settle(ctx, orderID, next, action)
	}
	if err != nil {
		w.logger.Warn("order status update failed",
			"order_id", orderID, "action", action, "from", order.Status, "to", next, "error", err)
		return Result{}, err
	}

	// 5. --- The update is committed; a newer request only marks it stale ---
	if !w.isLatest(orderID, gen) {
		w.logger.Info("order update superseded after commit", "order_id", orderID, "action", action)
		return Result{Order: updated, Transitioned: true, Superseded: true}, nil
	}

	return Result{Order: updated, Transitioned: true}, nil
}

// settle handles a transition the backend refused because the order moved
// under it. If a concurrent request already made the same move (a double
// tap) the action succeeded; anything else is still a conflict.
func (w *Workflow) settle(ctx context.Context, orderID int64, next models.OrderStatus, action string) (Result, error) {
	current, err := w.backend.GetOrder(ctx, orderID)
	if err != nil {
		return Result{}, err
	}
	if current.Status == next {
		w.logger.Info("order already moved by a concurrent request", "order_id", orderID, "action", action, "status", next)
		return Result{Order: current}, nil
	}
	return Result{}, ErrStaleStatus
}

func (w *Workflow) begin(orderID int64) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seq++
	w.latest[orderID] = w.seq
	return w.seq
}

func (w *Workflow) isLatest(orderID int64, gen uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.latest[orderID] == gen
}

func (w *Workflow) release(orderID int64, gen uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.latest[orderID] == gen {
		delete(w.latest, orderID)
	}
}

func ownedBy(o models.DriverOrder, s auth.Session) error {
	if o.DriverID == nil || *o.DriverID != s.UserID {
		return apperr.Forbidden("This order is not assigned to you")
	}
	return nil
}
