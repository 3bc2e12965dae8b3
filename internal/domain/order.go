package domain

import "time"

// OrderStatus represents the status of a customer order.
type OrderStatus string

// Order represents a customer purchase request. Orders are created by the
// ordering flow; dispatch only reads them and moves their status.
type Order struct {
	ID           string
	RestaurantID int64
	Status       OrderStatus
	Lat          *float64
	Lng          *float64
	Total        float64
	CreatedAt    time.Time
}

// Restaurant is the dispatch origin for an order.
type Restaurant struct {
	ID   int64
	Name string
	Lat  *float64
	Lng  *float64
}

// HasLocation reports whether the restaurant has known coordinates.
func (r *Restaurant) HasLocation() bool {
	return r.Lat != nil && r.Lng != nil
}
