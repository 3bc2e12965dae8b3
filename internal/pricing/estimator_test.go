package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dispatch-service/internal/apperr"
	"dispatch-service/internal/pricing"
)

func testPolicy() pricing.Policy {
	return pricing.Policy{
		BaseFee:              5,
		PerKmFee:             2,
		MinutesPerKm:         4,
		FixedOverheadMinutes: 10,
	}
}

func TestEstimator_Fee(t *testing.T) {
	t.Parallel()

	e := pricing.NewEstimator(testPolicy())

	cases := []struct {
		name       string
		distanceKm float64
		want       float64
	}{
		{"zero distance is base fee", 0, 5},
		{"two km", 2, 9},
		{"fractional", 3.5, 12},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := e.Fee(tc.distanceKm)
			require.NoError(t, err)
			require.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestEstimator_FeeStrictlyIncreasing(t *testing.T) {
	t.Parallel()

	e := pricing.NewEstimator(testPolicy())

	prev := -1.0
	for _, d := range []float64{0, 0.5, 1, 2, 5, 10, 25} {
		fee, err := e.Fee(d)
		require.NoError(t, err)
		require.Greater(t, fee, prev)
		prev = fee
	}
}

func TestEstimator_NegativeDistanceFailsFast(t *testing.T) {
	t.Parallel()

	e := pricing.NewEstimator(testPolicy())

	_, err := e.Fee(-1)
	require.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = e.DurationMinutes(-0.1)
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestEstimator_DurationMinutes(t *testing.T) {
	t.Parallel()

	e := pricing.NewEstimator(testPolicy())

	got, err := e.DurationMinutes(0)
	require.NoError(t, err)
	require.Equal(t, 10, got)

	got, err = e.DurationMinutes(2.2)
	require.NoError(t, err)
	// ceil(2.2*4) + 10
	require.Equal(t, 19, got)
}
