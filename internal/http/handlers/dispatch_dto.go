package handlers

import (
	"time"

	"dispatch-service/internal/domain"
)

type assignRequest struct {
	OrderID       string `json:"order_id"`
	Strategy      string `json:"strategy,omitempty"`
	ForceReassign bool   `json:"force_reassign,omitempty"`
}

type updateAssignmentRequest struct {
	Status domain.AssignmentStatus `json:"status"`
	Notes  string                  `json:"notes,omitempty"`
}

type dispatchResultDTO struct {
	Assigned     bool     `json:"assigned"`
	Reason       string   `json:"reason,omitempty"`
	AssignmentID int64    `json:"assignment_id,omitempty"`
	CourierID    int64    `json:"courier_id,omitempty"`
	CourierName  string   `json:"courier_name,omitempty"`
	Fee          float64  `json:"fee,omitempty"`
	DistanceKm   float64  `json:"distance_km,omitempty"`
	EtaMinutes   int      `json:"eta_minutes,omitempty"`
	Rationale    string   `json:"rationale,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"`
}

type assignmentDTO struct {
	ID           int64                   `json:"id"`
	OrderID      string                  `json:"order_id"`
	CourierID    int64                   `json:"courier_id"`
	RestaurantID int64                   `json:"restaurant_id"`
	Status       domain.AssignmentStatus `json:"status"`
	Fee          float64                 `json:"fee"`
	DistanceKm   float64                 `json:"distance_km"`
	EstimatedAt  *time.Time              `json:"estimated_at,omitempty"`
	AcceptedAt   *time.Time              `json:"accepted_at,omitempty"`
	PickedUpAt   *time.Time              `json:"picked_up_at,omitempty"`
	DeliveredAt  *time.Time              `json:"delivered_at,omitempty"`
	CancelledAt  *time.Time              `json:"cancelled_at,omitempty"`
	Notes        string                  `json:"notes,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
}

func dispatchResultToResponse(res domain.DispatchResult) dispatchResultDTO {
	return dispatchResultDTO{
		Assigned:     res.Assigned,
		Reason:       res.Reason,
		AssignmentID: res.AssignmentID,
		CourierID:    res.CourierID,
		CourierName:  res.CourierName,
		Fee:          res.Fee,
		DistanceKm:   res.DistanceKm,
		EtaMinutes:   res.EtaMinutes,
		Rationale:    res.Rationale,
		Confidence:   res.Confidence,
	}
}

func assignmentToResponse(a domain.Assignment) assignmentDTO {
	return assignmentDTO{
		ID:           a.ID,
		OrderID:      a.OrderID,
		CourierID:    a.CourierID,
		RestaurantID: a.RestaurantID,
		Status:       a.Status,
		Fee:          a.Fee,
		DistanceKm:   a.DistanceKm,
		EstimatedAt:  a.EstimatedAt,
		AcceptedAt:   a.AcceptedAt,
		PickedUpAt:   a.PickedUpAt,
		DeliveredAt:  a.DeliveredAt,
		CancelledAt:  a.CancelledAt,
		Notes:        a.Notes,
		CreatedAt:    a.CreatedAt,
	}
}

func assignmentsToResponse(list []domain.Assignment) []assignmentDTO {
	out := make([]assignmentDTO, 0, len(list))
	for _, a := range list {
		out = append(out, assignmentToResponse(a))
	}
	return out
}
