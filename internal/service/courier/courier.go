package courier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dispatch-service/internal/apperr"
	"dispatch-service/internal/domain"
)

// Service coordinates courier business logic and orchestrates repository calls.
type Service struct {
	repo             courierRepository
	operationTimeout time.Duration
	now              func() time.Time
}

// NewService creates and configures a courier Service.
func NewService(r courierRepository, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{
		repo:             r,
		operationTimeout: timeout,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// validateCreate validates a courier for creation.
func validateCreate(c *domain.Courier) error {
	if c == nil {
		return apperr.ErrInvalid
	}
	if strings.TrimSpace(c.Name) == "" {
		return apperr.ErrInvalid
	}
	if !domain.ValidatePhone(c.Phone) {
		return apperr.ErrInvalid
	}
	if c.Status == "" {
		c.Status = domain.CourierOffline
	}
	if !c.Status.Valid() {
		return apperr.ErrInvalid
	}
	if c.Vehicle == "" {
		c.Vehicle = domain.VehicleOnFoot
	}
	if !c.Vehicle.Valid() {
		return apperr.ErrInvalid
	}
	if c.Rating < 0 || c.Rating > 5 {
		return apperr.ErrInvalid
	}
	return nil
}

func validateUpdate(u *domain.PartialCourierUpdate) error {
	if u.ID <= 0 {
		return apperr.ErrInvalid
	}
	if u.Name == nil && u.Phone == nil && u.Active == nil &&
		u.Available == nil && u.Status == nil && u.Vehicle == nil {
		return apperr.ErrInvalid
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return apperr.ErrInvalid
	}
	if u.Phone != nil && !domain.ValidatePhone(*u.Phone) {
		return apperr.ErrInvalid
	}
	if u.Status != nil && !u.Status.Valid() {
		return apperr.ErrInvalid
	}
	if u.Vehicle != nil && !u.Vehicle.Valid() {
		return apperr.ErrInvalid
	}
	return nil
}

// Get retrieves a courier by its ID.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Courier, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}

// List returns couriers with optional pagination
func (s *Service) List(ctx context.Context, limit, offset *int) ([]domain.Courier, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.List(ctx, limit, offset)
}

// Create persists a new courier and returns its generated ID.
func (s *Service) Create(ctx context.Context, c *domain.Courier) (int64, error) {
	if err := validateCreate(c); err != nil {
		return 0, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.Create(ctx, c)
}

// UpdatePartial applies a partial update to a courier. It returns true if a row was updated.
func (s *Service) UpdatePartial(ctx context.Context, u domain.PartialCourierUpdate) (bool, error) {
	if err := validateUpdate(&u); err != nil {
		return false, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	ok, err := s.repo.UpdatePartial(ctx, u)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, apperr.ErrNotFound
	}
	return true, nil
}

// UpdateLocation records a courier position report. Coordinates are degrees;
// the update timestamp feeds the dispatch freshness window.
func (s *Service) UpdateLocation(ctx context.Context, id int64, lat, lng float64) error {
	if id <= 0 {
		return apperr.ErrInvalid
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return fmt.Errorf("coordinates out of range: %w", apperr.ErrInvalid)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	ok, err := s.repo.UpdateLocation(ctx, id, lat, lng, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}
	return nil
}
