package orders

import (
	"time"
)

// Event is a single order event consumed from the order stream.
type Event struct {
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Order event statuses the processor reacts to.
const (
	EventCreated   = "created"
	EventCancelled = "cancelled"
)
