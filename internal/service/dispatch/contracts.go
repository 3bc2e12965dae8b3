package dispatch

import (
	"context"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/geo"
	"dispatch-service/internal/ports/dispatchtx"
)

// TxRunner runs the dispatch transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx dispatchtx.Repository) error) error
}

// AssignmentReader serves the non-transactional assignment queries.
type AssignmentReader interface {
	GetAssignment(ctx context.Context, id int64) (*domain.Assignment, error)
	ListByOrderID(ctx context.Context, orderID string, limit, offset int) ([]domain.Assignment, error)
	ListByCourierID(ctx context.Context, courierID int64, limit, offset int) ([]domain.Assignment, error)
}

// DirectoryPort yields dispatch candidates for an origin point.
type DirectoryPort interface {
	FindEligible(ctx context.Context, origin geo.Point) ([]domain.Candidate, error)
}

// Notifier pushes a message to a courier. Best-effort: a failed notification
// never rolls back an assignment.
type Notifier interface {
	NotifyAssignment(ctx context.Context, n domain.CourierNotification) error
}

// EventSink receives assignment domain events for external relays.
type EventSink interface {
	Publish(ctx context.Context, e domain.AssignmentEvent) error
}

// DecisionOracle scores candidates externally and picks one (or none). The
// call is an I/O boundary and must respect the context deadline.
type DecisionOracle interface {
	Decide(ctx context.Context, req DecisionRequest) (*Decision, error)
}

// OutcomeCounter counts dispatch outcomes.
type OutcomeCounter interface {
	Inc(outcome string)
}

type counter interface {
	Inc()
}
