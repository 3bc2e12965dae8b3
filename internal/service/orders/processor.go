package orders

import (
	"context"
	"errors"

	"dispatch-service/internal/apperr"
	"dispatch-service/internal/logx"
	"dispatch-service/internal/service/dispatch"
)

// Processor reacts to order events: newly created orders are auto-dispatched,
// cancelled orders release their courier.
type Processor struct {
	dispatch DispatchPort
	logger   logx.Logger
	actions  map[string]func(context.Context, Event) error
}

// NewProcessor creates a new orders.Processor.
func NewProcessor(d DispatchPort, logger logx.Logger) *Processor {
	p := &Processor{dispatch: d, logger: logger}
	p.actions = map[string]func(context.Context, Event) error{
		EventCreated:   p.onCreated,
		EventCancelled: p.onCancelled,
	}
	return p
}

// Handle processes a single order event. Events with no registered action
// are skipped.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	fn, ok := p.actions[e.Status]
	if !ok {
		return nil
	}
	return fn(ctx, e)
}

func (p *Processor) onCreated(ctx context.Context, e Event) error {
	res, err := p.dispatch.Assign(ctx, dispatch.AssignRequest{OrderID: e.OrderID})
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrConflict):
		// Already dispatched, nothing to do.
		return nil
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrFailedPrecondition):
		// Retrying won't help until the data is fixed; drop the event.
		p.logger.Warn("auto-dispatch skipped",
			logx.String("order_id", e.OrderID),
			logx.Any("err", err),
		)
		return nil
	default:
		return err
	}

	if !res.Assigned {
		// Legitimate outcome; an external sweep re-dispatches later.
		p.logger.Info("auto-dispatch found no courier",
			logx.String("order_id", e.OrderID))
	}
	return nil
}

func (p *Processor) onCancelled(ctx context.Context, e Event) error {
	_, err := p.dispatch.CancelActiveByOrder(ctx, e.OrderID, "order cancelled upstream")
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	return err
}
