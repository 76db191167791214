package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/01moynul/taptoeat-golang/internal/audit"
	"github.com/01moynul/taptoeat-golang/internal/auth"
	"github.com/01moynul/taptoeat-golang/internal/cart"
	"github.com/01moynul/taptoeat-golang/internal/delivery"
	"github.com/01moynul/taptoeat-golang/internal/logger"
	"github.com/01moynul/taptoeat-golang/internal/middleware"
	"github.com/01moynul/taptoeat-golang/internal/models"
	"github.com/01moynul/taptoeat-golang/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type maintenanceOff struct{}

func (maintenanceOff) MaintenanceMode(context.Context) (bool, error) { return false, nil }

type auditLog struct {
	mu      sync.Mutex
	entries []store.ActivityEntry
	err     error
}

func (a *auditLog) Record(_ context.Context, e store.ActivityEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, e)
	return nil
}

// testApp wires Handlers to a gin engine behind the real auth middleware.
type testApp struct {
	*Handlers
	issuer *auth.Issuer
	audit  *auditLog
	router *gin.Engine
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.Discard()
	issuer := auth.NewIssuer("handler-test-secret", time.Hour)
	writes := &auditLog{}
	app := &testApp{
		Handlers: &Handlers{
			Logger: log,
			Tokens: issuer,
			Audit:  audit.NewRecorder(writes, log),
			Carts:  cart.NewStore(),
		},
		issuer: issuer,
		audit:  writes,
		router: gin.New(),
	}
	return app
}

// withOrders installs an order repository that also backs the workflow.
func (a *testApp) withOrders(o *fakeOrders) *testApp {
	a.Orders = o
	a.Workflow = delivery.NewWorkflow(o, a.Logger)
	return a
}

// protected returns a route group behind AuthMiddleware.
func (a *testApp) protected() *gin.RouterGroup {
	return a.router.Group("/v1", middleware.AuthMiddleware(a.issuer, maintenanceOff{}, a.Logger))
}

func (a *testApp) token(t *testing.T, userID int64, role models.Role) string {
	t.Helper()
	tok, err := a.issuer.GenerateToken(userID, role)
	require.NoError(t, err)
	return tok
}

func (a *testApp) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}

//
// --- Fakes ---
//
// Each fake embeds its repository interface so only the methods a test needs
// are implemented; calling anything else panics.
//

type fakeMenu struct {
	items map[string]cart.MenuItem
}

func (m fakeMenu) MenuItem(_ context.Context, id string) (cart.MenuItem, string, error) {
	item, ok := m.items[id]
	if !ok {
		return cart.MenuItem{}, "", apperr.NotFound("Menu item not found")
	}
	return item, "Kedai Mak Cik", nil
}

type fakeOrders struct {
	OrderRepository

	mu      sync.Mutex
	orders  map[int64]models.DriverOrder
	updates []delivery.Transition
	active  int
}

func newFakeOrders(orders ...models.DriverOrder) *fakeOrders {
	f := &fakeOrders{orders: map[int64]models.DriverOrder{}}
	for _, o := range orders {
		f.orders[o.ID] = o
	}
	return f
}

func (f *fakeOrders) GetOrder(_ context.Context, id int64) (models.DriverOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return models.DriverOrder{}, apperr.NotFound("Order not found")
	}
	return o, nil
}

func (f *fakeOrders) UpdateOrderStatus(_ context.Context, tr delivery.Transition) (models.DriverOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.orders[tr.OrderID]
	o.Status = tr.To
	if tr.To == models.OrderAssigned {
		o.DriverID = &tr.ActorID
	}
	f.orders[tr.OrderID] = o
	f.updates = append(f.updates, tr)
	return o, nil
}

func (f *fakeOrders) CountActive(context.Context) (int, error) { return f.active, nil }

type fakeUsers struct {
	UserRepository
	byEmail map[string]models.User
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return models.User{}, apperr.NotFound("User not found")
	}
	return u, nil
}

type fakeNotifications struct {
	NotificationRepository
	unread int
}

func (f fakeNotifications) UnreadCount(context.Context, int64) (int, error) { return f.unread, nil }

type fakeTickets struct {
	TicketRepository
	open int
	err  error
}

func (f fakeTickets) CountOpen(context.Context) (int, error) { return f.open, f.err }

type fakeVendors struct {
	VendorRepository
	pending int
}

func (f fakeVendors) CountPending(context.Context) (int, error) { return f.pending, nil }
