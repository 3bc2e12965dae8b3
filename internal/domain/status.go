package domain

import "regexp"

// List of possible courier operational statuses
const (
	CourierOffline    CourierStatus = "offline"
	CourierAvailable  CourierStatus = "available"
	CourierBusy       CourierStatus = "busy"
	CourierOnDelivery CourierStatus = "on_delivery"
	CourierOnBreak    CourierStatus = "break"
	CourierInactive   CourierStatus = "inactive"
)

// List of possible vehicle types
const (
	VehicleOnFoot     VehicleType = "on_foot"
	VehicleBicycle    VehicleType = "bicycle"
	VehicleScooter    VehicleType = "scooter"
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleCar        VehicleType = "car"
)

// List of possible order statuses
const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderConfirmed OrderStatus = "confirmed"
	OrderOnTheWay  OrderStatus = "on_the_way"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

var allowedCourierStatuses = [...]CourierStatus{
	CourierOffline, CourierAvailable, CourierBusy,
	CourierOnDelivery, CourierOnBreak, CourierInactive,
}

var allowedVehicleTypes = [...]VehicleType{
	VehicleOnFoot, VehicleBicycle, VehicleScooter, VehicleMotorcycle, VehicleCar,
}

// ineligibleCourierStatuses are operational statuses that exclude a courier
// from new assignments even when the availability flag is still set.
var ineligibleCourierStatuses = [...]CourierStatus{
	CourierBusy, CourierOnDelivery, CourierInactive,
}

// Valid checks if the CourierStatus is valid
func (s CourierStatus) Valid() bool {
	for _, v := range allowedCourierStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// EligibleForDispatch reports whether the operational status allows taking
// new work.
func (s CourierStatus) EligibleForDispatch() bool {
	for _, v := range ineligibleCourierStatuses {
		if s == v {
			return false
		}
	}
	return true
}

// IneligibleCourierStatuses returns the statuses excluded from dispatch,
// for use in store queries.
func IneligibleCourierStatuses() []CourierStatus {
	return ineligibleCourierStatuses[:]
}

// Valid checks if the VehicleType is valid
func (t VehicleType) Valid() bool {
	for _, v := range allowedVehicleTypes {
		if t == v {
			return true
		}
	}
	return false
}

// rePhone is a regex to validate phone numbers
var rePhone = regexp.MustCompile(`^\+[0-9]{11}$`)

// ValidatePhone validates the phone number format
func ValidatePhone(s string) bool {
	return rePhone.MatchString(s)
}
