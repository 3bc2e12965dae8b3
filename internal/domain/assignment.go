package domain

import "time"

// Assignment binds one order to one courier for delivery. It is created by
// the dispatch coordinator, mutated only through validated lifecycle
// transitions, and never deleted: cancellation is a status, not a removal.
type Assignment struct {
	ID           int64
	OrderID      string
	CourierID    int64
	RestaurantID int64
	Status       AssignmentStatus
	Fee          float64
	DistanceKm   float64
	EstimatedAt  *time.Time
	AcceptedAt   *time.Time
	PickedUpAt   *time.Time
	DeliveredAt  *time.Time
	CancelledAt  *time.Time
	Notes        string
	CreatedAt    time.Time
}

// Terminal reports whether the assignment can no longer change.
func (a *Assignment) Terminal() bool {
	return a.Status.Terminal()
}

// Candidate is a courier joined with per-dispatch context: distance to the
// restaurant, current active-assignment load and the derived delivery fee.
// Built fresh for every dispatch attempt, never persisted.
type Candidate struct {
	Courier           Courier
	DistanceKm        float64
	ActiveAssignments int
	Fee               float64
	EtaMinutes        int
}

// DispatchResult is the outcome of an assign request. A dispatch that finds
// no eligible courier is a legitimate business outcome, not an error, so it
// is carried here rather than through the error path.
type DispatchResult struct {
	Assigned     bool
	Reason       string
	AssignmentID int64
	CourierID    int64
	CourierName  string
	Fee          float64
	DistanceKm   float64
	EtaMinutes   int
	Rationale    string
	Confidence   *float64
}

// ReasonNoEligibleCourier marks a dispatch that found nobody to assign.
const ReasonNoEligibleCourier = "no_eligible_courier"

// CourierNotification is the message pushed to a courier when an assignment
// is created. Delivery is best-effort from the dispatcher's point of view.
type CourierNotification struct {
	CourierID    int64   `json:"courier_id"`
	Type         string  `json:"type"`
	Title        string  `json:"title"`
	Body         string  `json:"body"`
	AssignmentID int64   `json:"assignment_id"`
	OrderID      string  `json:"order_id"`
	Restaurant   string  `json:"restaurant"`
	Fee          float64 `json:"fee"`
	DistanceKm   float64 `json:"distance_km"`
	Rationale    string  `json:"rationale,omitempty"`
}

// NotificationTypeNewAssignment is the type tag of a new-assignment push.
const NotificationTypeNewAssignment = "new_assignment"

// AssignmentEvent is a domain event emitted after an assignment is created
// or transitioned, for external relays (dashboards, event buses).
type AssignmentEvent struct {
	Type       string     `json:"type"`
	Assignment Assignment `json:"assignment"`
	At         time.Time  `json:"at"`
}

// Assignment event types.
const (
	EventAssignmentCreated = "assignment_created"
	EventAssignmentUpdated = "assignment_updated"
)
