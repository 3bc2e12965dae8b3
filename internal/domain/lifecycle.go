package domain

import (
	"fmt"
	"time"

	"dispatch-service/internal/apperr"
)

// AssignmentStatus represents the lifecycle state of an assignment.
type AssignmentStatus string

// Assignment lifecycle states. Progression is strictly forward through the
// listed sequence; cancelled is reachable from any non-terminal state.
const (
	AssignmentAssigned  AssignmentStatus = "assigned"
	AssignmentAccepted  AssignmentStatus = "accepted"
	AssignmentPickedUp  AssignmentStatus = "picked_up"
	AssignmentOnTheWay  AssignmentStatus = "on_the_way"
	AssignmentDelivered AssignmentStatus = "delivered"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// forward is the single allowed next state for each non-terminal state.
var forward = map[AssignmentStatus]AssignmentStatus{
	AssignmentAssigned: AssignmentAccepted,
	AssignmentAccepted: AssignmentPickedUp,
	AssignmentPickedUp: AssignmentOnTheWay,
	AssignmentOnTheWay: AssignmentDelivered,
}

// activeAssignmentStatuses are the non-terminal states that count toward a
// courier's current load.
var activeAssignmentStatuses = [...]AssignmentStatus{
	AssignmentAssigned, AssignmentAccepted, AssignmentPickedUp, AssignmentOnTheWay,
}

// Valid checks if the AssignmentStatus is valid.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentAssigned, AssignmentAccepted, AssignmentPickedUp,
		AssignmentOnTheWay, AssignmentDelivered, AssignmentCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether the state admits no further transitions.
func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentDelivered || s == AssignmentCancelled
}

// Active reports whether the state counts toward a courier's load and blocks
// a second assignment for the same order.
func (s AssignmentStatus) Active() bool {
	for _, v := range activeAssignmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ActiveAssignmentStatuses returns the non-terminal states, for store queries.
func ActiveAssignmentStatuses() []AssignmentStatus {
	return activeAssignmentStatuses[:]
}

// InvalidTransitionError names the current and requested states of a
// rejected lifecycle transition. It matches apperr.ErrInvalid.
type InvalidTransitionError struct {
	From AssignmentStatus
	To   AssignmentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid assignment transition: %s -> %s", e.From, e.To)
}

// Unwrap lets errors.Is treat the rejection as a validation error.
func (e *InvalidTransitionError) Unwrap() error { return apperr.ErrInvalid }

// CanTransitionTo validates a requested transition. It returns an
// *InvalidTransitionError when the move is not permitted.
func (s AssignmentStatus) CanTransitionTo(next AssignmentStatus) error {
	if s.Terminal() {
		return &InvalidTransitionError{From: s, To: next}
	}
	if next == AssignmentCancelled {
		return nil
	}
	if forward[s] == next {
		return nil
	}
	return &InvalidTransitionError{From: s, To: next}
}

// OrderStatusFor maps an assignment transition to the order status it
// implies. The second return is false for transitions that leave the order
// status untouched (currently only assignment on_the_way: the order already
// moved to on_the_way at pickup).
func OrderStatusFor(s AssignmentStatus) (OrderStatus, bool) {
	switch s {
	case AssignmentAssigned:
		return OrderPreparing, true
	case AssignmentAccepted:
		return OrderConfirmed, true
	case AssignmentPickedUp:
		return OrderOnTheWay, true
	case AssignmentDelivered:
		return OrderDelivered, true
	case AssignmentCancelled:
		return OrderCancelled, true
	default:
		return "", false
	}
}

// Transition applies a validated lifecycle transition to the assignment:
// sets the new status and stamps exactly the one timestamp belonging to the
// transition. Previously set timestamps are left untouched.
func (a *Assignment) Transition(next AssignmentStatus, now time.Time) error {
	if err := a.Status.CanTransitionTo(next); err != nil {
		return err
	}
	a.Status = next
	switch next {
	case AssignmentAccepted:
		a.AcceptedAt = &now
	case AssignmentPickedUp:
		a.PickedUpAt = &now
	case AssignmentDelivered:
		a.DeliveredAt = &now
	case AssignmentCancelled:
		a.CancelledAt = &now
	}
	return nil
}
