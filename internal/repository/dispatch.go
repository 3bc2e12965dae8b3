package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dispatch-service/internal/apperr"
	"dispatch-service/internal/domain"
	"dispatch-service/internal/ports/dispatchtx"
)

// DispatchRepo represents the assignment/order/restaurant repository.
type DispatchRepo struct {
	db *pgxpool.Pool
}

// NewDispatchRepo creates a new DispatchRepo.
func NewDispatchRepo(db *pgxpool.Pool) *DispatchRepo {
	return &DispatchRepo{db: db}
}

// WithTx opens a transaction and executes fn within it.
func (r *DispatchRepo) WithTx(ctx context.Context, fn func(tx dispatchtx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			err = tx.Rollback(ctx)
			if err != nil {
				panic(err)
			}
			panic(p)
		}
	}()

	wrapped := &TxRepo{tx: tx}

	if err := fn(wrapped); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// TxRepo represents transaction repository.
type TxRepo struct {
	tx pgx.Tx
}

const assignmentColumns = `id, order_id, courier_id, restaurant_id, status, fee,
	distance_km, estimated_at, accepted_at, picked_up_at, delivered_at,
	cancelled_at, notes, created_at`

func scanAssignment(row interface{ Scan(...any) error }, a *domain.Assignment) error {
	return row.Scan(&a.ID, &a.OrderID, &a.CourierID, &a.RestaurantID, &a.Status,
		&a.Fee, &a.DistanceKm, &a.EstimatedAt, &a.AcceptedAt, &a.PickedUpAt,
		&a.DeliveredAt, &a.CancelledAt, &a.Notes, &a.CreatedAt)
}

// GetOrderForUpdate loads the order and takes a row lock for the duration of
// the transaction. The lock serializes concurrent dispatches per order.
func (r *TxRepo) GetOrderForUpdate(ctx context.Context, orderID string) (*domain.Order, error) {
	row := r.tx.QueryRow(ctx, `
        SELECT id, restaurant_id, status, delivery_lat, delivery_lng, total, created_at
        FROM orders
        WHERE id = $1
        FOR UPDATE
    `, orderID)

	var o domain.Order
	if err := row.Scan(&o.ID, &o.RestaurantID, &o.Status, &o.Lat, &o.Lng, &o.Total, &o.CreatedAt); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %q for update: %w", orderID, err)
	}
	return &o, nil
}

// GetActiveAssignmentByOrder returns the non-cancelled assignment for the
// order, if any. At most one exists (enforced by the partial unique index).
func (r *TxRepo) GetActiveAssignmentByOrder(ctx context.Context, orderID string) (*domain.Assignment, error) {
	row := r.tx.QueryRow(ctx, `
        SELECT `+assignmentColumns+`
        FROM assignments
        WHERE order_id = $1 AND status <> 'cancelled'
    `, orderID)

	var a domain.Assignment
	if err := scanAssignment(row, &a); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active assignment for order %q: %w", orderID, err)
	}
	return &a, nil
}

// GetAssignmentForUpdate loads an assignment and locks its row.
func (r *TxRepo) GetAssignmentForUpdate(ctx context.Context, id int64) (*domain.Assignment, error) {
	row := r.tx.QueryRow(ctx, `
        SELECT `+assignmentColumns+`
        FROM assignments
        WHERE id = $1
        FOR UPDATE
    `, id)

	var a domain.Assignment
	if err := scanAssignment(row, &a); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get assignment %d for update: %w", id, err)
	}
	return &a, nil
}

// InsertAssignment - insert a new assignment. A unique-index violation means
// another dispatch won the race for this order and maps to a conflict.
func (r *TxRepo) InsertAssignment(ctx context.Context, a *domain.Assignment) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO assignments
            (order_id, courier_id, restaurant_id, status, fee, distance_km, estimated_at, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at
    `, a.OrderID, a.CourierID, a.RestaurantID, a.Status, a.Fee, a.DistanceKm,
		a.EstimatedAt, a.Notes).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if IsDuplicate(err) {
			return fmt.Errorf("order %q already has an active assignment: %w", a.OrderID, apperr.ErrConflict)
		}
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

// UpdateAssignment persists status, transition timestamps and notes.
func (r *TxRepo) UpdateAssignment(ctx context.Context, a *domain.Assignment) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE assignments
        SET status = $2, accepted_at = $3, picked_up_at = $4,
            delivered_at = $5, cancelled_at = $6, notes = $7
        WHERE id = $1
    `, a.ID, a.Status, a.AcceptedAt, a.PickedUpAt, a.DeliveredAt, a.CancelledAt, a.Notes)
	if err != nil {
		return fmt.Errorf("update assignment %d: %w", a.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("assignment %d not found", a.ID)
	}
	return nil
}

// UpdateOrderStatus - update order status.
func (r *TxRepo) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE orders
        SET status = $2, updated_at = now()
        WHERE id = $1
    `, orderID, string(status))
	if err != nil {
		return fmt.Errorf("update order %q status: %w", orderID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order %q not found", orderID)
	}
	return nil
}

// GetRestaurant - get restaurant by ID.
func (r *TxRepo) GetRestaurant(ctx context.Context, id int64) (*domain.Restaurant, error) {
	row := r.tx.QueryRow(ctx,
		`SELECT id, name, lat, lng FROM restaurants WHERE id = $1`, id)

	var rest domain.Restaurant
	if err := row.Scan(&rest.ID, &rest.Name, &rest.Lat, &rest.Lng); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get restaurant %d: %w", id, err)
	}
	return &rest, nil
}

// UpdateCourierStatus - update courier operational status.
func (r *TxRepo) UpdateCourierStatus(ctx context.Context, id int64, status domain.CourierStatus) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE couriers
        SET status = $2, updated_at = now()
        WHERE id = $1
    `, id, string(status))
	if err != nil {
		return fmt.Errorf("update courier status %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("courier %d not found", id)
	}
	return nil
}

// IncrementCourierDeliveries bumps the lifetime delivery counter.
func (r *TxRepo) IncrementCourierDeliveries(ctx context.Context, id int64) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE couriers
        SET total_deliveries = total_deliveries + 1, updated_at = now()
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("increment courier %d deliveries: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("courier %d not found", id)
	}
	return nil
}

// CountRestaurantOrdersToday counts the restaurant's orders created today,
// context for the weighted decision oracle.
func (r *TxRepo) CountRestaurantOrdersToday(ctx context.Context, restaurantID int64) (int, error) {
	var n int
	err := r.tx.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM orders
        WHERE restaurant_id = $1
          AND created_at >= date_trunc('day', now())
    `, restaurantID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count today's orders for restaurant %d: %w", restaurantID, err)
	}
	return n, nil
}

// GetAssignment - get assignment by ID (outside a transaction).
func (r *DispatchRepo) GetAssignment(ctx context.Context, id int64) (*domain.Assignment, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id)

	var a domain.Assignment
	if err := scanAssignment(row, &a); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get assignment %d: %w", id, err)
	}
	return &a, nil
}

// ListByOrderID returns the order's assignments, most recent first.
func (r *DispatchRepo) ListByOrderID(ctx context.Context, orderID string, limit, offset int) ([]domain.Assignment, error) {
	return r.list(ctx,
		`SELECT `+assignmentColumns+`
         FROM assignments WHERE order_id = $1
         ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		orderID, limit, offset)
}

// ListByCourierID returns the courier's assignments, most recent first.
func (r *DispatchRepo) ListByCourierID(ctx context.Context, courierID int64, limit, offset int) ([]domain.Assignment, error) {
	return r.list(ctx,
		`SELECT `+assignmentColumns+`
         FROM assignments WHERE courier_id = $1
         ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		courierID, limit, offset)
}

func (r *DispatchRepo) list(ctx context.Context, q string, args ...any) ([]domain.Assignment, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var out []domain.Assignment
	for rows.Next() {
		var a domain.Assignment
		if err := scanAssignment(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
