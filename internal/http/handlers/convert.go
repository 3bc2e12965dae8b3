package handlers

import "dispatch-service/internal/domain"

func (r createCourierRequest) toModel() *domain.Courier {
	return &domain.Courier{
		Name:    r.Name,
		Phone:   r.Phone,
		Status:  r.Status,
		Vehicle: r.Vehicle,
		Rating:  r.Rating,
	}
}

func (r updateCourierRequest) toModel(id int64) domain.PartialCourierUpdate {
	return domain.PartialCourierUpdate{
		ID:        id,
		Name:      r.Name,
		Phone:     r.Phone,
		Active:    r.Active,
		Available: r.Available,
		Status:    r.Status,
		Vehicle:   r.Vehicle,
	}
}

func courierToResponse(c domain.Courier) courierDTO {
	return courierDTO{
		ID:              c.ID,
		Name:            c.Name,
		Phone:           c.Phone,
		Active:          c.Active,
		Available:       c.Available,
		Status:          c.Status,
		Lat:             c.Lat,
		Lng:             c.Lng,
		LocationAt:      c.LocationAt,
		Vehicle:         c.Vehicle,
		Rating:          c.Rating,
		TotalDeliveries: c.TotalDeliveries,
	}
}

func couriersToResponse(list []domain.Courier) []courierDTO {
	out := make([]courierDTO, 0, len(list))
	for _, c := range list {
		out = append(out, courierToResponse(c))
	}
	return out
}
