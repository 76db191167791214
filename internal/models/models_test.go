package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionAndTargetTablesAreExhaustive(t *testing.T) {
	for _, a := range ActionTypes() {
		assert.NotEmpty(t, a.DisplayName(), "action %s", a)
	}
	for _, tt := range TargetTypes() {
		assert.NotEmpty(t, tt.DisplayName(), "target %s", tt)
	}
	assert.False(t, ActionType("dropped_table").Valid())
}

func TestActivityLogDescribe(t *testing.T) {
	l := ActivityLog{ActionType: ActionVendorApproved, TargetType: TargetVendor, TargetID: "12"}
	assert.Equal(t, "Approved vendor (Vendor #12)", l.Describe())

	unknown := ActivityLog{ActionType: "legacy", TargetType: "thing", TargetID: "1"}
	assert.Equal(t, "legacy (thing #1)", unknown.Describe())
}

func TestTicketStatus(t *testing.T) {
	assert.True(t, TicketResolved.Resolves())
	assert.True(t, TicketClosed.Resolves())
	assert.False(t, TicketInProgress.Resolves())
	assert.Equal(t, "Waiting for Customer", TicketWaitingCustomer.DisplayName())
	assert.False(t, TicketStatus("reopened").Valid())
}

func TestPassword(t *testing.T) {
	var p Password
	require.NoError(t, p.Set("correct horse"))

	ok, err := p.Matches("correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Matches("wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}
