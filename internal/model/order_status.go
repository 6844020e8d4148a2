package model

import "fmt"

// OrderStatus is the lifecycle status of a garment production order.
type OrderStatus string

const (
	StatusOrderCreated OrderStatus = "ORDER_CREATED"
	StatusApproved     OrderStatus = "APPROVED"
	StatusProduction   OrderStatus = "PRODUCTION"
	StatusQA           OrderStatus = "QA"
	StatusReady        OrderStatus = "READY"
	StatusBooking      OrderStatus = "BOOKING"
	StatusDelivered    OrderStatus = "DELIVERED"
	StatusReturned     OrderStatus = "RETURNED"
	StatusCancelled    OrderStatus = "CANCELLED"
	StatusOnHold       OrderStatus = "ON_HOLD"
)

// AllOrderStatuses lists every known order status.
var AllOrderStatuses = []OrderStatus{
	StatusOrderCreated,
	StatusApproved,
	StatusProduction,
	StatusQA,
	StatusReady,
	StatusBooking,
	StatusDelivered,
	StatusReturned,
	StatusCancelled,
	StatusOnHold,
}

// ParseOrderStatus maps a raw string to a known order status.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(s)
	for _, known := range AllOrderStatuses {
		if status == known {
			return status, true
		}
	}
	return "", false
}

// statusGraph encodes the legal outbound transitions per status.
// RETURNED and CANCELLED are terminal: no outbound edges. ON_HOLD is a
// parking state reachable from every non-terminal status; leaving it,
// any status except ON_HOLD itself is allowed.
var statusGraph = map[OrderStatus][]OrderStatus{
	StatusOrderCreated: {StatusApproved, StatusCancelled, StatusOnHold},
	StatusApproved:     {StatusProduction, StatusCancelled, StatusOnHold},
	StatusProduction:   {StatusQA, StatusCancelled, StatusOnHold},
	StatusQA:           {StatusReady, StatusProduction, StatusCancelled, StatusOnHold},
	StatusReady:        {StatusBooking, StatusCancelled, StatusOnHold},
	StatusBooking:      {StatusDelivered, StatusReturned, StatusCancelled, StatusOnHold},
	StatusDelivered:    {StatusReturned, StatusOnHold},
	StatusReturned:     {},
	StatusCancelled:    {},
	StatusOnHold: {
		StatusOrderCreated, StatusApproved, StatusProduction, StatusQA,
		StatusReady, StatusBooking, StatusDelivered, StatusReturned, StatusCancelled,
	},
}

// IsValidTransition reports whether an order may move from current to next.
// A transition to the same status is always a legal no-op.
func IsValidTransition(current, next OrderStatus) bool {
	if current == next {
		return true
	}
	for _, allowed := range statusGraph[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidNextStatuses returns the statuses reachable from current,
// excluding the no-op transition to current itself.
func ValidNextStatuses(current OrderStatus) []OrderStatus {
	allowed := statusGraph[current]
	out := make([]OrderStatus, len(allowed))
	copy(out, allowed)
	return out
}

// StatusTransitionError reports an attempt to move an order along an
// edge the transition graph does not allow.
type StatusTransitionError struct {
	Current   OrderStatus
	Attempted OrderStatus
}

func (e *StatusTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.Current, e.Attempted)
}
