package handlers

import (
	"time"

	"dispatch-service/internal/domain"
)

type courierDTO struct {
	ID              int64                `json:"id"`
	Name            string               `json:"name"`
	Phone           string               `json:"phone"`
	Active          bool                 `json:"active"`
	Available       bool                 `json:"available"`
	Status          domain.CourierStatus `json:"status"`
	Lat             *float64             `json:"lat,omitempty"`
	Lng             *float64             `json:"lng,omitempty"`
	LocationAt      *time.Time           `json:"location_at,omitempty"`
	Vehicle         domain.VehicleType   `json:"vehicle"`
	Rating          float64              `json:"rating"`
	TotalDeliveries int                  `json:"total_deliveries"`
}

type createCourierRequest struct {
	Name    string               `json:"name"`
	Phone   string               `json:"phone"`
	Status  domain.CourierStatus `json:"status"`
	Vehicle domain.VehicleType   `json:"vehicle"`
	Rating  float64              `json:"rating"`
}

type updateCourierRequest struct {
	Name      *string               `json:"name,omitempty"`
	Phone     *string               `json:"phone,omitempty"`
	Active    *bool                 `json:"active,omitempty"`
	Available *bool                 `json:"available,omitempty"`
	Status    *domain.CourierStatus `json:"status,omitempty"`
	Vehicle   *domain.VehicleType   `json:"vehicle,omitempty"`
}

type updateLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
