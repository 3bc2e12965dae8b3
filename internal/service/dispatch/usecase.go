package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch-service/internal/apperr"
	"dispatch-service/internal/domain"
	"dispatch-service/internal/geo"
	"dispatch-service/internal/logx"
	"dispatch-service/internal/ports/dispatchtx"
)

// Dispatch outcome labels for metrics.
const (
	OutcomeAssigned        = "assigned"
	OutcomeNoCourier       = "no_eligible_courier"
	OutcomeAlreadyAssigned = "already_assigned"
	OutcomeError           = "error"
)

// Counter is an increment-only metric.
type Counter interface {
	Inc()
}

// Metrics groups the dispatch service counters. Any field may be nil.
type Metrics struct {
	Outcomes             OutcomeCounter
	NotificationFailures Counter
}

// Config carries the coordinator policy knobs.
type Config struct {
	DefaultStrategy  string
	OperationTimeout time.Duration
}

// AssignRequest asks for a courier to be dispatched to an order.
type AssignRequest struct {
	OrderID       string
	Strategy      string
	ForceReassign bool
}

// Service coordinates the end-to-end assignment transaction and owns the
// assignment lifecycle.
type Service struct {
	repo       TxRunner
	reader     AssignmentReader
	directory  DirectoryPort
	strategies map[string]Strategy
	notifier   Notifier
	events     EventSink
	metrics    Metrics
	cfg        Config
	logger     logx.Logger
	now        func() time.Time
}

// NewService creates the dispatch coordinator. notifier and events may be
// nil: notification and event relay are best-effort side channels.
func NewService(
	repo TxRunner,
	reader AssignmentReader,
	directory DirectoryPort,
	strategies []Strategy,
	notifier Notifier,
	events EventSink,
	metrics Metrics,
	cfg Config,
	logger logx.Logger,
) *Service {
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 10 * time.Second
	}
	byName := make(map[string]Strategy, len(strategies))
	for _, st := range strategies {
		byName[st.Name()] = st
	}
	if cfg.DefaultStrategy == "" {
		cfg.DefaultStrategy = StrategyNearest
	}
	return &Service{
		repo:       repo,
		reader:     reader,
		directory:  directory,
		strategies: byName,
		notifier:   notifier,
		events:     events,
		metrics:    metrics,
		cfg:        cfg,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.OperationTimeout)
}

func (s *Service) strategyFor(name string) (Strategy, error) {
	if name == "" {
		name = s.cfg.DefaultStrategy
	}
	st, ok := s.strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q: %w", name, apperr.ErrInvalid)
	}
	return st, nil
}

// Assign dispatches a courier to the order. The whole decision (idempotency
// guard, candidate selection, assignment insert, order transition) runs in
// one transaction holding the order row lock, so two concurrent calls for
// the same order cannot both create an assignment. Returning a DispatchResult
// with Assigned=false (and no error) means no eligible courier was found.
func (s *Service) Assign(ctx context.Context, req AssignRequest) (domain.DispatchResult, error) {
	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		return domain.DispatchResult{}, fmt.Errorf("order id required: %w", apperr.ErrInvalid)
	}
	strat, err := s.strategyFor(req.Strategy)
	if err != nil {
		return domain.DispatchResult{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		result  domain.DispatchResult
		created *domain.Assignment
		origin  *domain.Restaurant
	)

	err = s.repo.WithTx(ctx, func(tx dispatchtx.Repository) error {
		ord, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if ord == nil {
			return fmt.Errorf("order %q: %w", orderID, apperr.ErrNotFound)
		}

		existing, err := tx.GetActiveAssignmentByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if existing != nil {
			if !req.ForceReassign {
				return fmt.Errorf("order %q already assigned to courier %d: %w",
					orderID, existing.CourierID, apperr.ErrConflict)
			}
			if err := s.cancelInTx(ctx, tx, existing, "superseded by forced reassignment"); err != nil {
				return err
			}
		}

		rest, err := tx.GetRestaurant(ctx, ord.RestaurantID)
		if err != nil {
			return err
		}
		if rest == nil {
			return fmt.Errorf("restaurant %d: %w", ord.RestaurantID, apperr.ErrNotFound)
		}
		if !rest.HasLocation() {
			return fmt.Errorf("restaurant %d has no coordinates: %w",
				rest.ID, apperr.ErrFailedPrecondition)
		}
		origin = rest

		candidates, err := s.directory.FindEligible(ctx, geo.Point{Lat: *rest.Lat, Lng: *rest.Lng})
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			result = domain.DispatchResult{Reason: domain.ReasonNoEligibleCourier}
			return nil
		}

		todayCount, err := tx.CountRestaurantOrdersToday(ctx, rest.ID)
		if err != nil {
			return err
		}

		sel, err := strat.Select(ctx, Input{
			Order:           *ord,
			Restaurant:      *rest,
			Candidates:      candidates,
			TodayOrderCount: todayCount,
		})
		if err != nil {
			return err
		}
		if sel == nil {
			result = domain.DispatchResult{Reason: domain.ReasonNoEligibleCourier}
			return nil
		}

		now := s.now()
		eta := now.Add(time.Duration(sel.EtaMinutes) * time.Minute)
		a := &domain.Assignment{
			OrderID:      ord.ID,
			CourierID:    sel.Candidate.Courier.ID,
			RestaurantID: rest.ID,
			Status:       domain.AssignmentAssigned,
			Fee:          sel.Candidate.Fee,
			DistanceKm:   sel.Candidate.DistanceKm,
			EstimatedAt:  &eta,
			Notes:        sel.Rationale,
		}
		if err := tx.InsertAssignment(ctx, a); err != nil {
			return err
		}
		if err := tx.UpdateOrderStatus(ctx, ord.ID, domain.OrderPreparing); err != nil {
			return err
		}

		created = a
		result = domain.DispatchResult{
			Assigned:     true,
			AssignmentID: a.ID,
			CourierID:    sel.Candidate.Courier.ID,
			CourierName:  sel.Candidate.Courier.Name,
			Fee:          a.Fee,
			DistanceKm:   a.DistanceKm,
			EtaMinutes:   sel.EtaMinutes,
			Rationale:    sel.Rationale,
			Confidence:   sel.Confidence,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			s.countOutcome(OutcomeAlreadyAssigned)
		} else {
			s.countOutcome(OutcomeError)
		}
		return domain.DispatchResult{}, err
	}

	if !result.Assigned {
		s.countOutcome(OutcomeNoCourier)
		s.logger.Info("dispatch found no eligible courier",
			logx.String("order_id", orderID),
			logx.String("strategy", strat.Name()),
		)
		return result, nil
	}

	s.countOutcome(OutcomeAssigned)
	s.logger.Info("courier assigned",
		logx.String("event", "courier_assigned"),
		logx.String("order_id", orderID),
		logx.Int64("courier_id", result.CourierID),
		logx.Int64("assignment_id", result.AssignmentID),
		logx.String("strategy", strat.Name()),
		logx.Float64("fee", result.Fee),
		logx.Float64("distance_km", result.DistanceKm),
	)

	s.notifyAssigned(ctx, created, origin, result)
	s.publishEvent(ctx, domain.EventAssignmentCreated, created)

	return result, nil
}

// UpdateStatus applies a lifecycle transition to the assignment, stamps the
// transition timestamp, synchronizes the linked order's status and applies
// the courier-side effect of the transition.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status domain.AssignmentStatus, notes string) (*domain.Assignment, error) {
	if id <= 0 {
		return nil, fmt.Errorf("assignment id required: %w", apperr.ErrInvalid)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("unknown assignment status %q: %w", status, apperr.ErrInvalid)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var updated *domain.Assignment
	err := s.repo.WithTx(ctx, func(tx dispatchtx.Repository) error {
		a, err := tx.GetAssignmentForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("assignment %d: %w", id, apperr.ErrNotFound)
		}

		if err := a.Transition(status, s.now()); err != nil {
			return err
		}
		appendNote(a, notes)

		if err := tx.UpdateAssignment(ctx, a); err != nil {
			return err
		}
		if orderStatus, ok := domain.OrderStatusFor(status); ok {
			if err := tx.UpdateOrderStatus(ctx, a.OrderID, orderStatus); err != nil {
				return err
			}
		}
		if err := applyCourierEffect(ctx, tx, a.CourierID, status); err != nil {
			return err
		}

		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("assignment transitioned",
		logx.Int64("assignment_id", updated.ID),
		logx.String("order_id", updated.OrderID),
		logx.String("status", string(updated.Status)),
	)
	s.publishEvent(ctx, domain.EventAssignmentUpdated, updated)

	return updated, nil
}

// CancelActiveByOrder cancels the order's active assignment, if any. Used
// when an order is cancelled upstream.
func (s *Service) CancelActiveByOrder(ctx context.Context, orderID, note string) (*domain.Assignment, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, fmt.Errorf("order id required: %w", apperr.ErrInvalid)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var cancelled *domain.Assignment
	err := s.repo.WithTx(ctx, func(tx dispatchtx.Repository) error {
		a, err := tx.GetActiveAssignmentByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("no active assignment for order %q: %w", orderID, apperr.ErrNotFound)
		}
		if err := s.cancelInTx(ctx, tx, a, note); err != nil {
			return err
		}
		if err := tx.UpdateOrderStatus(ctx, orderID, domain.OrderCancelled); err != nil {
			return err
		}
		cancelled = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("assignment cancelled",
		logx.Int64("assignment_id", cancelled.ID),
		logx.String("order_id", cancelled.OrderID),
	)
	s.publishEvent(ctx, domain.EventAssignmentUpdated, cancelled)

	return cancelled, nil
}

// Get returns an assignment by ID.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Assignment, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	a, err := s.reader.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("assignment %d: %w", id, apperr.ErrNotFound)
	}
	return a, nil
}

// ListByOrder returns the order's assignments, most recent first.
func (s *Service) ListByOrder(ctx context.Context, orderID string, limit, offset int) ([]domain.Assignment, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	limit, offset = clampPage(limit, offset)
	return s.reader.ListByOrderID(ctx, orderID, limit, offset)
}

// ListByCourier returns the courier's assignments, most recent first.
func (s *Service) ListByCourier(ctx context.Context, courierID int64, limit, offset int) ([]domain.Assignment, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	limit, offset = clampPage(limit, offset)
	return s.reader.ListByCourierID(ctx, courierID, limit, offset)
}

// cancelInTx transitions an assignment to cancelled inside the current
// transaction and releases the courier if the delivery was already underway.
func (s *Service) cancelInTx(ctx context.Context, tx dispatchtx.Repository, a *domain.Assignment, note string) error {
	wasUnderway := a.Status != domain.AssignmentAssigned
	if err := a.Transition(domain.AssignmentCancelled, s.now()); err != nil {
		return err
	}
	appendNote(a, note)
	if err := tx.UpdateAssignment(ctx, a); err != nil {
		return err
	}
	if wasUnderway {
		return tx.UpdateCourierStatus(ctx, a.CourierID, domain.CourierAvailable)
	}
	return nil
}

func applyCourierEffect(ctx context.Context, tx dispatchtx.Repository, courierID int64, status domain.AssignmentStatus) error {
	switch status {
	case domain.AssignmentAccepted:
		return tx.UpdateCourierStatus(ctx, courierID, domain.CourierBusy)
	case domain.AssignmentPickedUp:
		return tx.UpdateCourierStatus(ctx, courierID, domain.CourierOnDelivery)
	case domain.AssignmentDelivered:
		if err := tx.UpdateCourierStatus(ctx, courierID, domain.CourierAvailable); err != nil {
			return err
		}
		return tx.IncrementCourierDeliveries(ctx, courierID)
	case domain.AssignmentCancelled:
		return tx.UpdateCourierStatus(ctx, courierID, domain.CourierAvailable)
	default:
		return nil
	}
}

func appendNote(a *domain.Assignment, note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	if a.Notes == "" {
		a.Notes = note
		return
	}
	a.Notes += "\n" + note
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *Service) countOutcome(outcome string) {
	if s.metrics.Outcomes != nil {
		s.metrics.Outcomes.Inc(outcome)
	}
}

func (s *Service) notifyAssigned(ctx context.Context, a *domain.Assignment, rest *domain.Restaurant, res domain.DispatchResult) {
	if s.notifier == nil || a == nil {
		return
	}
	n := domain.CourierNotification{
		CourierID:    a.CourierID,
		Type:         domain.NotificationTypeNewAssignment,
		Title:        "New delivery assignment",
		Body:         fmt.Sprintf("Pick up order %s at %s, fee %.2f", a.OrderID, rest.Name, a.Fee),
		AssignmentID: a.ID,
		OrderID:      a.OrderID,
		Restaurant:   rest.Name,
		Fee:          a.Fee,
		DistanceKm:   a.DistanceKm,
		Rationale:    res.Rationale,
	}
	if err := s.notifier.NotifyAssignment(ctx, n); err != nil {
		// The assignment stands; delivery of the push is not our guarantee.
		if s.metrics.NotificationFailures != nil {
			s.metrics.NotificationFailures.Inc()
		}
		s.logger.Error("courier notification failed",
			logx.Int64("courier_id", a.CourierID),
			logx.Int64("assignment_id", a.ID),
			logx.Any("err", err),
		)
	}
}

func (s *Service) publishEvent(ctx context.Context, eventType string, a *domain.Assignment) {
	if s.events == nil || a == nil {
		return
	}
	ev := domain.AssignmentEvent{Type: eventType, Assignment: *a, At: s.now()}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn("assignment event publish failed",
			logx.String("type", eventType),
			logx.Int64("assignment_id", a.ID),
			logx.Any("err", err),
		)
	}
}
