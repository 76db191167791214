// Package store holds the MySQL repositories. Every method catches driver
// errors once and returns apperr values, and every admin mutation writes its
// activity log row inside the same transaction as the change itself.
package store

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/01moynul/taptoeat-golang/internal/models"
	"github.com/01moynul/taptoeat-golang/internal/realtime"
	"github.com/go-sql-driver/mysql"
)

// Publisher receives change events after a transaction commits.
type Publisher interface {
	Publish(e realtime.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(realtime.Event) {}

func orNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// now is swapped in tests.
var now = func() time.Time { return time.Now().UTC().Truncate(time.Second) }

const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}

// backendErr wraps a driver error. Unique key violations become conflicts.
func backendErr(msg string, err error) error {
	if isDuplicate(err) {
		return &apperr.Error{Kind: apperr.KindConflict, Message: "Record already exists", Err: err}
	}
	return apperr.Backend(msg, err)
}

// encodeJSON renders a metadata map for a JSON column. Nil maps store NULL.
func encodeJSON(field string, m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, apperr.Validationf("Invalid %s", field)
	}
	return string(b), nil
}

// decodeJSON parses a JSON column. NULL decodes to a nil map; anything that is
// not a JSON object is a format error naming the column.
func decodeJSON(field string, raw []byte) (map[string]any, error) {
	if len(raw) == 0 || strings.TrimSpace(string(raw)) == "null" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, apperr.Format(field, err)
	}
	return m, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// txErr passes domain errors raised inside a transaction through untouched and
// wraps everything else.
func txErr(msg string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return backendErr(msg, err)
}

func activityEvent(l models.ActivityLog) realtime.Event {
	return realtime.Event{Table: realtime.TableActivityLogs, Type: realtime.EventInsert, Record: l}
}
