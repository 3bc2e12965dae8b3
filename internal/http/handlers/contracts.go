package handlers

import (
	"context"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/service/courier"
	"dispatch-service/internal/service/dispatch"
)

type courierUsecase interface {
	Get(ctx context.Context, id int64) (*domain.Courier, error)
	List(ctx context.Context, limit, offset *int) ([]domain.Courier, error)
	Create(ctx context.Context, c *domain.Courier) (int64, error)
	UpdatePartial(ctx context.Context, u domain.PartialCourierUpdate) (bool, error)
	UpdateLocation(ctx context.Context, id int64, lat, lng float64) error
}

// NewCourierUsecase wires a courier Service into a courierUsecase.
func NewCourierUsecase(service *courier.Service) courierUsecase {
	return service
}

type dispatchUsecase interface {
	Assign(ctx context.Context, req dispatch.AssignRequest) (domain.DispatchResult, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AssignmentStatus, notes string) (*domain.Assignment, error)
	Get(ctx context.Context, id int64) (*domain.Assignment, error)
	ListByOrder(ctx context.Context, orderID string, limit, offset int) ([]domain.Assignment, error)
	ListByCourier(ctx context.Context, courierID int64, limit, offset int) ([]domain.Assignment, error)
}

// NewDispatchUsecase wires a dispatch Service into a dispatchUsecase.
func NewDispatchUsecase(svc *dispatch.Service) dispatchUsecase {
	return svc
}
