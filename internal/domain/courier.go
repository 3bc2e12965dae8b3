package domain

import "time"

type (
	// CourierStatus represents the operational status of a courier.
	CourierStatus string
	// VehicleType represents the vehicle a courier delivers with.
	VehicleType string
)

// Courier represents a delivery courier.
type Courier struct {
	ID              int64
	Name            string
	Phone           string
	Active          bool
	Available       bool
	Status          CourierStatus
	Lat             *float64
	Lng             *float64
	LocationAt      *time.Time
	Vehicle         VehicleType
	Rating          float64
	TotalDeliveries int
}

// HasLocation reports whether the courier has a known position.
func (c *Courier) HasLocation() bool {
	return c.Lat != nil && c.Lng != nil
}

// LocationFresh reports whether the courier's last position update is within
// the given freshness window. A courier without a location is never fresh.
func (c *Courier) LocationFresh(now time.Time, window time.Duration) bool {
	if !c.HasLocation() {
		return false
	}
	if window <= 0 {
		// Freshness check disabled: a non-null location is enough.
		return true
	}
	if c.LocationAt == nil {
		return false
	}
	return now.Sub(*c.LocationAt) <= window
}

// PartialCourierUpdate carries optional fields to update a courier.
// A nil field means the attribute is left unchanged.
type PartialCourierUpdate struct {
	ID        int64
	Name      *string
	Phone     *string
	Active    *bool
	Available *bool
	Status    *CourierStatus
	Vehicle   *VehicleType
}
