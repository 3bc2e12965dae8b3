//go:build integration

package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"dispatch-service/internal/apperr"
	"dispatch-service/internal/domain"
	"dispatch-service/internal/logx"
	"dispatch-service/internal/ports/dispatchtx"
	"dispatch-service/internal/pricing"
	"dispatch-service/internal/repository"
	"dispatch-service/internal/service/directory"
	"dispatch-service/internal/service/dispatch"
)

type DispatchRepositorySuite struct {
	suite.Suite
	pool         *pgxpool.Pool
	dispatchRepo *repository.DispatchRepo
	courierRepo  *repository.CourierRepo
}

func (s *DispatchRepositorySuite) SetupSuite() {
	s.Require().NotNil(tcPool, "testcontainer pool must be initialized by TestMain")
	s.pool = tcPool
	s.dispatchRepo = repository.NewDispatchRepo(s.pool)
	s.courierRepo = repository.NewCourierRepo(s.pool)
}

func (s *DispatchRepositorySuite) SetupTest() {
	ctx := context.Background()
	_, err := s.pool.Exec(ctx, `TRUNCATE assignments, orders, restaurants, couriers RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
}

func (s *DispatchRepositorySuite) createRestaurant(name string, lat, lng float64) int64 {
	var id int64
	err := s.pool.QueryRow(context.Background(), `
		INSERT INTO restaurants (name, lat, lng) VALUES ($1, $2, $3) RETURNING id
	`, name, lat, lng).Scan(&id)
	s.Require().NoError(err)
	return id
}

func (s *DispatchRepositorySuite) createOrder(orderID string, restaurantID int64) {
	_, err := s.pool.Exec(context.Background(), `
		INSERT INTO orders (id, restaurant_id, status) VALUES ($1, $2, 'pending')
	`, orderID, restaurantID)
	s.Require().NoError(err)
}

func (s *DispatchRepositorySuite) createCourier(name, phone string, lat, lng float64) int64 {
	ctx := context.Background()
	id, err := s.courierRepo.Create(ctx, &domain.Courier{
		Name:      name,
		Phone:     phone,
		Active:    true,
		Available: true,
		Status:    domain.CourierAvailable,
		Vehicle:   domain.VehicleBicycle,
	})
	s.Require().NoError(err)

	ok, err := s.courierRepo.UpdateLocation(ctx, id, lat, lng, time.Now().UTC())
	s.Require().NoError(err)
	s.Require().True(ok)
	return id
}

func (s *DispatchRepositorySuite) newDispatchService() *dispatch.Service {
	estimator := pricing.NewEstimator(pricing.Policy{
		BaseFee:              5,
		PerKmFee:             2,
		MinutesPerKm:         4,
		FixedOverheadMinutes: 10,
	})
	dir := directory.New(s.courierRepo, estimator, directory.Config{
		MaxRadiusKm:       10,
		LocationFreshness: 15 * time.Minute,
	}, logx.Nop())

	return dispatch.NewService(
		s.dispatchRepo,
		s.dispatchRepo,
		dir,
		[]dispatch.Strategy{dispatch.NewNearestAvailable(dispatch.NewRanker(10))},
		nil, nil,
		dispatch.Metrics{},
		dispatch.Config{},
		logx.Nop(),
	)
}

func (s *DispatchRepositorySuite) countActiveAssignments(orderID string) int {
	var n int
	err := s.pool.QueryRow(context.Background(), `
		SELECT COUNT(*) FROM assignments WHERE order_id = $1 AND status <> 'cancelled'
	`, orderID).Scan(&n)
	s.Require().NoError(err)
	return n
}

// Two dispatches racing for one order must end with exactly one live
// assignment: the order row lock serializes them and the loser sees the
// winner's row as an active-assignment conflict.
func (s *DispatchRepositorySuite) TestAssign_ConcurrentSameOrder() {
	ctx := context.Background()

	restID := s.createRestaurant("Pizza Maria", 55.75, 37.61)
	s.createOrder("order-race", restID)
	s.createCourier("C1", "+70000000001", 55.751, 37.611)
	s.createCourier("C2", "+70000000002", 55.752, 37.612)

	svc := s.newDispatchService()

	type outcome struct {
		res domain.DispatchResult
		err error
	}
	results := make([]outcome, 2)

	var start sync.WaitGroup
	start.Add(1)
	var done sync.WaitGroup
	for i := range results {
		done.Add(1)
		go func(i int) {
			defer done.Done()
			start.Wait()
			res, err := svc.Assign(ctx, dispatch.AssignRequest{OrderID: "order-race"})
			results[i] = outcome{res: res, err: err}
		}(i)
	}
	start.Done()
	done.Wait()

	var assigned, conflicts int
	for _, o := range results {
		switch {
		case o.err == nil && o.res.Assigned:
			assigned++
		case errors.Is(o.err, apperr.ErrConflict):
			conflicts++
		default:
			s.Failf("unexpected outcome", "res=%+v err=%v", o.res, o.err)
		}
	}
	s.Equal(1, assigned, "exactly one dispatch must win")
	s.Equal(1, conflicts, "the loser must surface a conflict")
	s.Equal(1, s.countActiveAssignments("order-race"))
}

// The partial unique index is the backstop below the order lock: a direct
// second insert for an order with a live assignment must come back as a
// conflict, and cancelling the first row frees the slot.
func (s *DispatchRepositorySuite) TestInsertAssignment_ActiveIndexBlocksSecond() {
	ctx := context.Background()

	restID := s.createRestaurant("Pizza Maria", 55.75, 37.61)
	s.createOrder("order-idx", restID)
	courierID := s.createCourier("C1", "+70000000001", 55.751, 37.611)

	insert := func() error {
		return s.dispatchRepo.WithTx(ctx, func(tx dispatchtx.Repository) error {
			return tx.InsertAssignment(ctx, &domain.Assignment{
				OrderID:      "order-idx",
				CourierID:    courierID,
				RestaurantID: restID,
				Status:       domain.AssignmentAssigned,
			})
		})
	}

	s.Require().NoError(insert())

	err := insert()
	s.Require().Error(err)
	s.ErrorIs(err, apperr.ErrConflict)
	s.Equal(1, s.countActiveAssignments("order-idx"))

	_, err = s.pool.Exec(ctx, `UPDATE assignments SET status = 'cancelled', cancelled_at = now() WHERE order_id = 'order-idx'`)
	s.Require().NoError(err)

	s.Require().NoError(insert())
	s.Equal(1, s.countActiveAssignments("order-idx"))
}

// Force reassign supersedes the live assignment in the same transaction, so
// the index never sees two non-cancelled rows.
func (s *DispatchRepositorySuite) TestAssign_ForceReassignSupersedes() {
	ctx := context.Background()

	restID := s.createRestaurant("Pizza Maria", 55.75, 37.61)
	s.createOrder("order-force", restID)
	s.createCourier("C1", "+70000000001", 55.751, 37.611)
	s.createCourier("C2", "+70000000002", 55.752, 37.612)

	svc := s.newDispatchService()

	first, err := svc.Assign(ctx, dispatch.AssignRequest{OrderID: "order-force"})
	s.Require().NoError(err)
	s.Require().True(first.Assigned)

	second, err := svc.Assign(ctx, dispatch.AssignRequest{OrderID: "order-force", ForceReassign: true})
	s.Require().NoError(err)
	s.Require().True(second.Assigned)
	s.NotEqual(first.AssignmentID, second.AssignmentID)

	s.Equal(1, s.countActiveAssignments("order-force"))

	var total int
	err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM assignments WHERE order_id = 'order-force'`).Scan(&total)
	s.Require().NoError(err)
	s.Equal(2, total, "the superseded row stays, cancelled")
}

func TestDispatchRepositorySuite(t *testing.T) {
	suite.Run(t, new(DispatchRepositorySuite))
}
