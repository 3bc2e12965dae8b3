package dispatchtx

import (
	"context"

	"dispatch-service/internal/domain"
)

// Repository is the per-transaction view of the dispatch stores. Everything
// here runs inside one database transaction so the order-row lock taken by
// GetOrderForUpdate serializes concurrent dispatches of the same order.
type Repository interface {
	GetOrderForUpdate(ctx context.Context, orderID string) (*domain.Order, error)
	GetActiveAssignmentByOrder(ctx context.Context, orderID string) (*domain.Assignment, error)
	GetAssignmentForUpdate(ctx context.Context, id int64) (*domain.Assignment, error)
	InsertAssignment(ctx context.Context, a *domain.Assignment) error
	UpdateAssignment(ctx context.Context, a *domain.Assignment) error
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
	GetRestaurant(ctx context.Context, id int64) (*domain.Restaurant, error)
	UpdateCourierStatus(ctx context.Context, id int64, status domain.CourierStatus) error
	IncrementCourierDeliveries(ctx context.Context, id int64) error
	CountRestaurantOrdersToday(ctx context.Context, restaurantID int64) (int, error)
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
