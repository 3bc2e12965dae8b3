package orders

import (
	"context"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/service/dispatch"
)

// DispatchPort abstracts the subset of dispatch operations needed by the
// Processor when handling order events.
type DispatchPort interface {
	Assign(ctx context.Context, req dispatch.AssignRequest) (domain.DispatchResult, error)
	CancelActiveByOrder(ctx context.Context, orderID, note string) (*domain.Assignment, error)
}
