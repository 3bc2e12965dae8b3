package repository

import (
	"context"
	"fmt"
	"time"

	"dispatch-service/internal/apperr"
	"dispatch-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CourierRepo represents courier repository.
type CourierRepo struct{ db *pgxpool.Pool }

// NewCourierRepo creates a new CourierRepo.
func NewCourierRepo(db *pgxpool.Pool) *CourierRepo { return &CourierRepo{db: db} }

const courierColumns = `id, name, phone, active, available, status, lat, lng,
	location_at, vehicle, rating, total_deliveries`

func scanCourier(row interface{ Scan(...any) error }, c *domain.Courier) error {
	return row.Scan(&c.ID, &c.Name, &c.Phone, &c.Active, &c.Available, &c.Status,
		&c.Lat, &c.Lng, &c.LocationAt, &c.Vehicle, &c.Rating, &c.TotalDeliveries)
}

// Get - returns courier by its ID.
func (r *CourierRepo) Get(ctx context.Context, id int64) (*domain.Courier, error) {
	var c domain.Courier
	row := r.db.QueryRow(ctx,
		`SELECT `+courierColumns+` FROM couriers WHERE id=$1`, id)
	if err := scanCourier(row, &c); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get courier %d: %w", id, err)
	}
	return &c, nil
}

// List returns couriers ordered by id. If limit/offset are nil, returns the full list.
func (r *CourierRepo) List(ctx context.Context, limit, offset *int) ([]domain.Courier, error) {
	q := `SELECT ` + courierColumns + ` FROM couriers ORDER BY id`
	args := make([]any, 0, 2)
	if limit != nil {
		q += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, *limit)
	}
	if offset != nil {
		q += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, *offset)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	capacity := 0
	if limit != nil && *limit > 0 {
		capacity = *limit
	}
	out := make([]domain.Courier, 0, capacity)
	for rows.Next() {
		var c domain.Courier
		if err := scanCourier(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create - creates a new courier.
func (r *CourierRepo) Create(ctx context.Context, c *domain.Courier) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO couriers(name, phone, active, available, status, vehicle, rating)
		VALUES($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		c.Name, c.Phone, c.Active, c.Available, c.Status, c.Vehicle, c.Rating).Scan(&id)
	if err != nil {
		if IsDuplicate(err) {
			return 0, apperr.ErrConflict
		}
		return 0, fmt.Errorf("create courier: %w", err)
	}
	return id, nil
}

// UpdatePartial applies a partial update to a courier and returns true if a row was affected.
func (r *CourierRepo) UpdatePartial(ctx context.Context, u domain.PartialCourierUpdate) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE couriers
        SET
            name       = COALESCE($2, name),
            phone      = COALESCE($3, phone),
            active     = COALESCE($4, active),
            available  = COALESCE($5, available),
            status     = COALESCE($6, status),
            vehicle    = COALESCE($7, vehicle),
            updated_at = now()
        WHERE id = $1
    `, u.ID, u.Name, u.Phone, u.Active, u.Available, u.Status, u.Vehicle)

	if err != nil {
		if IsDuplicate(err) {
			return false, apperr.ErrConflict
		}
		return false, fmt.Errorf("update courier %d: %w", u.ID, err)
	}
	return ct.RowsAffected() > 0, nil
}

// UpdateLocation stores the courier's last-known position. Last writer wins;
// location updates arrive independently of lifecycle transitions.
func (r *CourierRepo) UpdateLocation(ctx context.Context, id int64, lat, lng float64, at time.Time) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE couriers
        SET lat = $2, lng = $3, location_at = $4, updated_at = now()
        WHERE id = $1
    `, id, lat, lng, at)
	if err != nil {
		return false, fmt.Errorf("update courier %d location: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

// ListEligible returns couriers satisfying the hard dispatch constraints:
// active, available, operational status not excluded, location known.
// Radius and freshness filtering happen in-process in the directory.
func (r *CourierRepo) ListEligible(ctx context.Context) ([]domain.Courier, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+courierColumns+`
        FROM couriers
        WHERE active
          AND available
          AND status <> ALL($1)
          AND lat IS NOT NULL
          AND lng IS NOT NULL
        ORDER BY id
    `, statusStrings(domain.IneligibleCourierStatuses()))
	if err != nil {
		return nil, fmt.Errorf("list eligible couriers: %w", err)
	}
	defer rows.Close()

	var out []domain.Courier
	for rows.Next() {
		var c domain.Courier
		if err := scanCourier(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountActiveAssignments returns, per courier, the number of assignments in
// a non-terminal status.
func (r *CourierRepo) CountActiveAssignments(ctx context.Context, courierIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(courierIDs))
	if len(courierIDs) == 0 {
		return counts, nil
	}

	rows, err := r.db.Query(ctx, `
        SELECT courier_id, COUNT(*)
        FROM assignments
        WHERE courier_id = ANY($1)
          AND status = ANY($2)
        GROUP BY courier_id
    `, courierIDs, assignmentStatusStrings(domain.ActiveAssignmentStatuses()))
	if err != nil {
		return nil, fmt.Errorf("count active assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func statusStrings(in []domain.CourierStatus) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}

func assignmentStatusStrings(in []domain.AssignmentStatus) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}
