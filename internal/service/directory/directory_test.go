package directory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/geo"
	"dispatch-service/internal/logx"
	"dispatch-service/internal/pricing"
	"dispatch-service/internal/service/directory"
)

type stubSource struct {
	couriers []domain.Courier
	loads    map[int64]int
	listErr  error
	loadsErr error
	loadIDs  []int64
}

func (s *stubSource) ListEligible(context.Context) ([]domain.Courier, error) {
	return s.couriers, s.listErr
}

func (s *stubSource) CountActiveAssignments(_ context.Context, ids []int64) (map[int64]int, error) {
	s.loadIDs = ids
	return s.loads, s.loadsErr
}

func ptrF(v float64) *float64 { return &v }

func ptrT(v time.Time) *time.Time { return &v }

func testEstimator() *pricing.Estimator {
	return pricing.NewEstimator(pricing.Policy{
		BaseFee:              5,
		PerKmFee:             2,
		MinutesPerKm:         4,
		FixedOverheadMinutes: 10,
	})
}

func courierAt(id int64, lat, lng float64, locatedAt time.Time) domain.Courier {
	return domain.Courier{
		ID:  id,
		Lat: ptrF(lat), Lng: ptrF(lng),
		LocationAt: ptrT(locatedAt),
	}
}

func TestDirectory_FindEligible(t *testing.T) {
	t.Parallel()

	origin := geo.Point{Lat: 55.75, Lng: 37.61}
	now := time.Now().UTC()

	src := &stubSource{
		couriers: []domain.Courier{
			courierAt(1, 55.75, 37.61, now),      // at the restaurant
			courierAt(2, 55.76, 37.61, now),      // about 1.1 km north
			courierAt(3, 55.95, 37.61, now),      // about 22 km, outside radius
		},
		loads: map[int64]int{1: 2},
	}
	d := directory.New(src, testEstimator(), directory.Config{
		MaxRadiusKm:       10,
		LocationFreshness: 15 * time.Minute,
	}, logx.Nop())

	got, err := d.FindEligible(context.Background(), origin)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, int64(1), got[0].Courier.ID)
	require.InDelta(t, 0, got[0].DistanceKm, 1e-9)
	require.InDelta(t, 5, got[0].Fee, 1e-9)
	require.Equal(t, 10, got[0].EtaMinutes)
	require.Equal(t, 2, got[0].ActiveAssignments)

	require.Equal(t, int64(2), got[1].Courier.ID)
	require.InDelta(t, 1.11, got[1].DistanceKm, 0.02)
	require.InDelta(t, 5+2*got[1].DistanceKm, got[1].Fee, 1e-9)
	require.Equal(t, 15, got[1].EtaMinutes)
	require.Zero(t, got[1].ActiveAssignments)

	require.Equal(t, []int64{1, 2, 3}, src.loadIDs, "load query runs before the radius cut")
}

func TestDirectory_FindEligible_FreshnessFilter(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	src := &stubSource{
		couriers: []domain.Courier{
			courierAt(1, 55.75, 37.61, now.Add(-20*time.Minute)), // stale
			{ID: 2, Lat: ptrF(55.75), Lng: ptrF(37.61)},          // location never stamped
			courierAt(3, 55.75, 37.61, now.Add(-time.Minute)),
		},
	}
	d := directory.New(src, testEstimator(), directory.Config{
		MaxRadiusKm:       10,
		LocationFreshness: 15 * time.Minute,
	}, logx.Nop())

	got, err := d.FindEligible(context.Background(), geo.Point{Lat: 55.75, Lng: 37.61})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(3), got[0].Courier.ID)
}

func TestDirectory_FindEligible_FreshnessDisabled(t *testing.T) {
	t.Parallel()

	src := &stubSource{
		couriers: []domain.Courier{
			{ID: 1, Lat: ptrF(55.75), Lng: ptrF(37.61)}, // no timestamp, still accepted
		},
	}
	d := directory.New(src, testEstimator(), directory.Config{MaxRadiusKm: 10}, logx.Nop())

	got, err := d.FindEligible(context.Background(), geo.Point{Lat: 55.75, Lng: 37.61})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestDirectory_FindEligible_Empty(t *testing.T) {
	t.Parallel()

	d := directory.New(&stubSource{}, testEstimator(), directory.Config{MaxRadiusKm: 10}, logx.Nop())
	got, err := d.FindEligible(context.Background(), geo.Point{})
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestDirectory_FindEligible_AllStale(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	src := &stubSource{
		couriers: []domain.Courier{
			courierAt(1, 55.75, 37.61, now.Add(-time.Hour)),
		},
	}
	d := directory.New(src, testEstimator(), directory.Config{
		MaxRadiusKm:       10,
		LocationFreshness: 15 * time.Minute,
	}, logx.Nop())

	got, err := d.FindEligible(context.Background(), geo.Point{Lat: 55.75, Lng: 37.61})
	require.NoError(t, err)
	require.Nil(t, got)
	require.Nil(t, src.loadIDs, "no load query when nobody is fresh")
}

func TestDirectory_FindEligible_SourceError(t *testing.T) {
	t.Parallel()

	src := &stubSource{listErr: errors.New("db down")}
	d := directory.New(src, testEstimator(), directory.Config{MaxRadiusKm: 10}, logx.Nop())

	_, err := d.FindEligible(context.Background(), geo.Point{})
	require.Error(t, err)
}
