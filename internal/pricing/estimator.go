// Package pricing computes delivery fees and duration estimates from
// distance. All coefficients are policy, injected at construction.
package pricing

import (
	"fmt"
	"math"

	"dispatch-service/internal/apperr"
)

// Policy holds the tunable pricing and ETA coefficients.
type Policy struct {
	BaseFee              float64
	PerKmFee             float64
	MinutesPerKm         float64
	FixedOverheadMinutes int
}

// Estimator derives fee and duration from distance under a fixed Policy.
type Estimator struct {
	policy Policy
}

// NewEstimator creates an Estimator with the given policy.
func NewEstimator(p Policy) *Estimator {
	return &Estimator{policy: p}
}

// Fee returns base fee + per-km fee * distance. Negative distance is a
// caller contract violation and fails fast.
func (e *Estimator) Fee(distanceKm float64) (float64, error) {
	if distanceKm < 0 || math.IsNaN(distanceKm) {
		return 0, fmt.Errorf("%w: negative distance %f", apperr.ErrInvalid, distanceKm)
	}
	return e.policy.BaseFee + e.policy.PerKmFee*distanceKm, nil
}

// DurationMinutes returns a linear travel-time estimate for the distance:
// distance * minutes-per-km + fixed overhead, rounded up to a whole minute.
func (e *Estimator) DurationMinutes(distanceKm float64) (int, error) {
	if distanceKm < 0 || math.IsNaN(distanceKm) {
		return 0, fmt.Errorf("%w: negative distance %f", apperr.ErrInvalid, distanceKm)
	}
	return int(math.Ceil(distanceKm*e.policy.MinutesPerKm)) + e.policy.FixedOverheadMinutes, nil
}
