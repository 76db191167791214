package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/01moynul/taptoeat-golang/internal/auth"
	"github.com/01moynul/taptoeat-golang/internal/logger"
	"github.com/01moynul/taptoeat-golang/internal/models"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func received(c *Client) []Event {
	var out []Event
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return out
			}
			var e Event
			if err := json.Unmarshal(msg, &e); err == nil {
				out = append(out, e)
			}
		default:
			return out
		}
	}
}

func TestClientFiltering(t *testing.T) {
	admin := auth.Session{UserID: 1, Role: models.RoleAdmin}
	driver := auth.Session{UserID: 4, Role: models.RoleDriver}
	customer := auth.Session{UserID: 30, Role: models.RoleCustomer}

	tests := []struct {
		name    string
		session auth.Session
		tables  []Table
		event   Event
		want    bool
	}{
		{"not subscribed", customer, []Table{TableTickets}, Event{Table: TableNotifications, UserIDs: []int64{30}}, false},
		{"own row", customer, []Table{TableNotifications}, Event{Table: TableNotifications, UserIDs: []int64{30}}, true},
		{"someone else's row", customer, []Table{TableNotifications}, Event{Table: TableNotifications, UserIDs: []int64{31}}, false},
		{"broadcast", customer, []Table{TableNotifications}, Event{Table: TableNotifications, Broadcast: true}, true},
		{"admin sees all", admin, []Table{TableTickets}, Event{Table: TableTickets, UserIDs: []int64{30}}, true},
		{"pool order to driver", driver, []Table{TableOrders}, Event{Table: TableOrders, Broadcast: true, Roles: []models.Role{models.RoleDriver}}, true},
		{"pool order hidden from customer", customer, []Table{TableOrders}, Event{Table: TableOrders, Broadcast: true, Roles: []models.Role{models.RoleDriver}}, false},
		{"counts are personal even for admins", admin, []Table{TableCounts}, Event{Table: TableCounts, UserIDs: []int64{30}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newClient(tt.session, tt.tables).wants(tt.event))
		})
	}
}

func TestDispatch(t *testing.T) {
	h := NewHub(logger.Discard())
	mine := newClient(auth.Session{UserID: 30, Role: models.RoleCustomer}, []Table{TableNotifications})
	other := newClient(auth.Session{UserID: 31, Role: models.RoleCustomer}, []Table{TableNotifications})
	h.register(mine)
	h.register(other)

	h.dispatch(Event{Table: TableNotifications, Type: EventInsert, UserIDs: []int64{30}, Record: map[string]any{"id": 1}})

	got := received(mine)
	require.Len(t, got, 1)
	assert.Equal(t, EventInsert, got[0].Type)
	assert.Empty(t, received(other))
}

func TestSlowClientIsDropped(t *testing.T) {
	h := NewHub(logger.Discard())
	c := newClient(auth.Session{UserID: 30, Role: models.RoleCustomer}, []Table{TableNotifications})
	h.register(c)

	for i := 0; i < sendBuffer+1; i++ {
		h.dispatch(Event{Table: TableNotifications, Broadcast: true})
	}

	assert.Empty(t, h.ConnectedUsers(TableNotifications))
	assert.Len(t, received(c), sendBuffer)
	_, open := <-c.send
	assert.False(t, open)
}

func TestConnectedUsers(t *testing.T) {
	h := NewHub(logger.Discard())
	h.register(newClient(auth.Session{UserID: 9}, []Table{TableCounts}))
	h.register(newClient(auth.Session{UserID: 3}, []Table{TableCounts, TableNotifications}))
	h.register(newClient(auth.Session{UserID: 9}, []Table{TableCounts}))
	h.register(newClient(auth.Session{UserID: 5}, []Table{TableTickets}))

	assert.Equal(t, []int64{3, 9}, h.ConnectedUsers(TableCounts))
}

func TestParseTables(t *testing.T) {
	got, err := ParseTables("notifications, counts")
	require.NoError(t, err)
	assert.Equal(t, []Table{TableNotifications, TableCounts}, got)

	_, err = ParseTables("payments")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = ParseTables(" , ")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

type fakeCounter map[int64]int

func (f fakeCounter) UnreadCounts(_ context.Context, ids []int64) (map[int64]int, error) {
	out := map[int64]int{}
	for _, id := range ids {
		if n, ok := f[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

func TestCountsRefresh(t *testing.T) {
	h := NewHub(logger.Discard())
	a := newClient(auth.Session{UserID: 3}, []Table{TableCounts})
	b := newClient(auth.Session{UserID: 9}, []Table{TableCounts})
	h.register(a)
	h.register(b)

	NewCountsRefresher(h, fakeCounter{3: 2}, time.Minute, logger.Discard()).Refresh(context.Background())
	close(h.events)
	for e := range h.events {
		h.dispatch(e)
	}

	gotA := received(a)
	require.Len(t, gotA, 1)
	assert.Equal(t, EventCounts, gotA[0].Type)
	assert.Equal(t, 2.0, gotA[0].Record.(map[string]any)["unreadNotifications"])

	gotB := received(b)
	require.Len(t, gotB, 1)
	assert.Equal(t, 0.0, gotB[0].Record.(map[string]any)["unreadNotifications"])
}

func TestServeWS(t *testing.T) {
	h := NewHub(logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	upgrader := &websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = ServeWS(h, upgrader, w, r, auth.Session{UserID: 30, Role: models.RoleCustomer}, []Table{TableNotifications})
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return len(h.ConnectedUsers(TableNotifications)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	h.Publish(Event{Table: TableNotifications, Type: EventInsert, UserIDs: []int64{30}, Record: map[string]any{"title": "Order ready"}})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var e Event
	require.NoError(t, conn.ReadJSON(&e))
	assert.Equal(t, TableNotifications, e.Table)
	assert.Equal(t, "Order ready", e.Record.(map[string]any)["title"])
}
