package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrderStatus(t *testing.T) {
	for _, status := range AllOrderStatuses {
		parsed, ok := ParseOrderStatus(string(status))
		assert.True(t, ok, "expected %s to parse", status)
		assert.Equal(t, status, parsed)
	}

	_, ok := ParseOrderStatus("SHIPPED")
	assert.False(t, ok)
	_, ok = ParseOrderStatus("")
	assert.False(t, ok)
	_, ok = ParseOrderStatus("order_created")
	assert.False(t, ok, "status parsing is case sensitive")
}

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{"created to approved", StatusOrderCreated, StatusApproved, true},
		{"created to cancelled", StatusOrderCreated, StatusCancelled, true},
		{"created to on hold", StatusOrderCreated, StatusOnHold, true},
		{"created skips to production", StatusOrderCreated, StatusProduction, false},
		{"created skips to delivered", StatusOrderCreated, StatusDelivered, false},
		{"approved to production", StatusApproved, StatusProduction, true},
		{"approved back to created", StatusApproved, StatusOrderCreated, false},
		{"production to qa", StatusProduction, StatusQA, true},
		{"production skips to ready", StatusProduction, StatusReady, false},
		{"qa passes to ready", StatusQA, StatusReady, true},
		{"qa fails back to production", StatusQA, StatusProduction, true},
		{"ready to booking", StatusReady, StatusBooking, true},
		{"booking to delivered", StatusBooking, StatusDelivered, true},
		{"booking to returned", StatusBooking, StatusReturned, true},
		{"delivered to returned", StatusDelivered, StatusReturned, true},
		{"delivered cannot cancel", StatusDelivered, StatusCancelled, false},
		{"returned is terminal", StatusReturned, StatusOnHold, false},
		{"returned cannot reopen", StatusReturned, StatusOrderCreated, false},
		{"cancelled is terminal", StatusCancelled, StatusOnHold, false},
		{"cancelled cannot deliver", StatusCancelled, StatusDelivered, false},
		{"on hold resumes production", StatusOnHold, StatusProduction, true},
		{"on hold resumes booking", StatusOnHold, StatusBooking, true},
		{"on hold can cancel", StatusOnHold, StatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, IsValidTransition(tt.from, tt.to))
		})
	}
}

func TestIsValidTransitionSameStatusIsNoOp(t *testing.T) {
	for _, status := range AllOrderStatuses {
		assert.True(t, IsValidTransition(status, status),
			"%s to itself should be a legal no-op", status)
	}
}

func TestValidNextStatuses(t *testing.T) {
	assert.Empty(t, ValidNextStatuses(StatusReturned))
	assert.Empty(t, ValidNextStatuses(StatusCancelled))

	next := ValidNextStatuses(StatusBooking)
	assert.ElementsMatch(t, []OrderStatus{
		StatusDelivered, StatusReturned, StatusCancelled, StatusOnHold,
	}, next)

	fromHold := ValidNextStatuses(StatusOnHold)
	assert.Len(t, fromHold, len(AllOrderStatuses)-1)
	assert.NotContains(t, fromHold, StatusOnHold)
}

func TestValidNextStatusesReturnsCopy(t *testing.T) {
	next := ValidNextStatuses(StatusOrderCreated)
	next[0] = StatusDelivered

	assert.False(t, IsValidTransition(StatusOrderCreated, StatusDelivered),
		"mutating the returned slice must not affect the graph")
}

func TestStatusTransitionError(t *testing.T) {
	err := &StatusTransitionError{Current: StatusOrderCreated, Attempted: StatusDelivered}
	assert.EqualError(t, err, "invalid status transition from ORDER_CREATED to DELIVERED")
}
