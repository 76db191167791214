package store

import (
	"testing"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterWhere(t *testing.T) {
	tests := []struct {
		name  string
		build func(f *Filter) *Filter
		where string
		args  []any
	}{
		{
			name:  "empty",
			build: func(f *Filter) *Filter { return f },
		},
		{
			name: "eq and range",
			build: func(f *Filter) *Filter {
				return f.Eq("status", "open").Gte("created_at", "2025-01-01").Lte("created_at", "2025-02-01")
			},
			where: " WHERE status = ? AND created_at >= ? AND created_at <= ?",
			args:  []any{"open", "2025-01-01", "2025-02-01"},
		},
		{
			name:  "or group",
			build: func(f *Filter) *Filter { return f.Eq("is_read", 0).Or(Eq("user_id", int64(4)), Eq("is_broadcast", 1)) },
			where: " WHERE is_read = ? AND (user_id = ? OR is_broadcast = ?)",
			args:  []any{0, int64(4), 1},
		},
		{
			name:  "ilike escapes wildcards",
			build: func(f *Filter) *Filter { return f.ILike("subject", "50% Off_") },
			where: " WHERE LOWER(subject) LIKE ?",
			args:  []any{`%50\% off\_%`},
		},
		{
			name:  "nil is IS NULL",
			build: func(f *Filter) *Filter { return f.Eq("assigned_to", nil) },
			where: " WHERE assigned_to IS NULL",
		},
		{
			name:  "search across columns",
			build: func(f *Filter) *Filter { return f.Or(ILike("subject", "refund"), ILike("description", "refund")) },
			where: " WHERE (LOWER(subject) LIKE ? OR LOWER(description) LIKE ?)",
			args:  []any{"%refund%", "%refund%"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := []string{"status", "created_at", "subject", "description", "assigned_to", "user_id", "is_read", "is_broadcast"}
			where, args, err := tt.build(NewFilter(cols...)).Where()
			require.NoError(t, err)
			assert.Equal(t, tt.where, where)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestFilterRejectsUnknownColumns(t *testing.T) {
	_, _, err := NewFilter("status").Eq("status", "open").Eq("password_hash", "x").Where()
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, _, err = NewFilter("status").Or(Eq("status", "open"), Eq("1=1; DROP TABLE users; --", 1)).Where()
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestPage(t *testing.T) {
	assert.Equal(t, Page{Limit: 20}, Page{}.Normalize())
	assert.Equal(t, Page{Limit: 100}, Page{Limit: 1000, Offset: -5}.Normalize())

	tail, args := Page{Limit: 10, Offset: 30}.tail("created_at")
	assert.Equal(t, " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?", tail)
	assert.Equal(t, []any{10, 30}, args)

	tail, _ = Page{Ascending: true}.tail("created_at")
	assert.Contains(t, tail, "created_at ASC")
}

func TestSelectPage(t *testing.T) {
	f := NewFilter(TicketColumns...).Eq("status", "open")
	list, listArgs, count, countArgs, err := selectPage("id", "support_tickets", f, Page{Limit: 5})
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM support_tickets WHERE status = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?", list)
	assert.Equal(t, []any{"open", 5, 0}, listArgs)
	assert.Equal(t, "SELECT COUNT(*) FROM support_tickets WHERE status = ?", count)
	assert.Equal(t, []any{"open"}, countArgs)
}
