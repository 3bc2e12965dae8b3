// Package geo holds pure geospatial helpers used by dispatch.
package geo

import "math"

// earthRadiusKm is the mean Earth radius used by the Haversine formula.
const earthRadiusKm = 6371.0

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// DistanceKm returns the great-circle distance between two coordinates in
// kilometers (Haversine). Inputs are degrees. The function is total: callers
// guard against unknown coordinates before calling.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Distance is DistanceKm over Points.
func Distance(a, b Point) float64 {
	return DistanceKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
