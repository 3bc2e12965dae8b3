package dispatch

// DecisionRequest is the structured scoring request sent to the decision
// oracle: order context plus every candidate the directory produced.
type DecisionRequest struct {
	OrderID         string              `json:"order_id"`
	OrderTotal      float64             `json:"order_total"`
	RestaurantID    int64               `json:"restaurant_id"`
	RestaurantName  string              `json:"restaurant_name"`
	TodayOrderCount int                 `json:"today_order_count"`
	Candidates      []DecisionCandidate `json:"candidates"`
}

// DecisionCandidate is one courier's context in a DecisionRequest.
type DecisionCandidate struct {
	CourierID         int64   `json:"courier_id"`
	DistanceKm        float64 `json:"distance_km"`
	ActiveAssignments int     `json:"active_assignments"`
	Rating            float64 `json:"rating"`
	TotalDeliveries   int     `json:"total_deliveries"`
	Vehicle           string  `json:"vehicle"`
	EtaMinutes        int     `json:"eta_minutes"`
	Fee               float64 `json:"fee"`
}

// Decision is the oracle's structured answer. A nil SelectedCourierID means
// "no suitable courier". Confidence is advisory and audit-only: it is
// persisted into the assignment notes, never used to gate acceptance.
type Decision struct {
	SelectedCourierID *int64   `json:"selected_courier_id"`
	Reasoning         string   `json:"reasoning"`
	EtaMinutes        *int     `json:"eta_minutes"`
	Factors           []string `json:"factors"`
	Confidence        float64  `json:"confidence"`
}
