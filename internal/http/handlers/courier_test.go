package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"dispatch-service/internal/apperr"
	"dispatch-service/internal/domain"
	"dispatch-service/internal/http/handlers"
)

type stubCourierUsecase struct {
	getFn      func(ctx context.Context, id int64) (*domain.Courier, error)
	listFn     func(ctx context.Context, limit, offset *int) ([]domain.Courier, error)
	createFn   func(ctx context.Context, c *domain.Courier) (int64, error)
	updateFn   func(ctx context.Context, u domain.PartialCourierUpdate) (bool, error)
	locationFn func(ctx context.Context, id int64, lat, lng float64) error
}

func (s *stubCourierUsecase) Get(ctx context.Context, id int64) (*domain.Courier, error) {
	return s.getFn(ctx, id)
}
func (s *stubCourierUsecase) List(ctx context.Context, limit, offset *int) ([]domain.Courier, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *stubCourierUsecase) Create(ctx context.Context, c *domain.Courier) (int64, error) {
	return s.createFn(ctx, c)
}
func (s *stubCourierUsecase) UpdatePartial(ctx context.Context, u domain.PartialCourierUpdate) (bool, error) {
	return s.updateFn(ctx, u)
}
func (s *stubCourierUsecase) UpdateLocation(ctx context.Context, id int64, lat, lng float64) error {
	return s.locationFn(ctx, id, lat, lng)
}

func TestCourierHandler_GetByID_OK(t *testing.T) {
	t.Parallel()

	uc := &stubCourierUsecase{
		getFn: func(_ context.Context, id int64) (*domain.Courier, error) {
			require.Equal(t, int64(99), id)
			return &domain.Courier{ID: 99, Name: "Artem", Phone: "+70000000000"}, nil
		},
	}
	h := handlers.NewCourierHandler(uc, testLogger())

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/couriers/99", nil), "id", "99")
	rr := httptest.NewRecorder()

	h.GetByID(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Equal(t, int64(99), resp.ID)
	require.Equal(t, "Artem", resp.Name)
}

func TestCourierHandler_GetByID_NotFound(t *testing.T) {
	t.Parallel()

	uc := &stubCourierUsecase{
		getFn: func(context.Context, int64) (*domain.Courier, error) {
			return nil, apperr.ErrNotFound
		},
	}
	h := handlers.NewCourierHandler(uc, testLogger())

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/couriers/99", nil), "id", "99")
	rr := httptest.NewRecorder()

	h.GetByID(rr, req)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCourierHandler_GetByID_InvalidID(t *testing.T) {
	t.Parallel()

	h := handlers.NewCourierHandler(&stubCourierUsecase{
		getFn: func(context.Context, int64) (*domain.Courier, error) {
			require.FailNow(t, "usecase.Get must not be called on invalid id")
			return nil, nil
		},
	}, testLogger())

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/couriers/abc", nil), "id", "abc")
	rr := httptest.NewRecorder()

	h.GetByID(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCourierHandler_Create_OK(t *testing.T) {
	t.Parallel()

	uc := &stubCourierUsecase{
		createFn: func(_ context.Context, c *domain.Courier) (int64, error) {
			require.Equal(t, "Ivan", c.Name)
			require.Equal(t, domain.VehicleBicycle, c.Vehicle)
			return 5, nil
		},
	}
	h := handlers.NewCourierHandler(uc, testLogger())

	body := `{"name":"Ivan","phone":"+79991234567","vehicle":"bicycle"}`
	req := httptest.NewRequest(http.MethodPost, "/couriers", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h.Create(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "/couriers/5", rr.Header().Get("Location"))
}

func TestCourierHandler_Create_Invalid(t *testing.T) {
	t.Parallel()

	uc := &stubCourierUsecase{
		createFn: func(context.Context, *domain.Courier) (int64, error) {
			return 0, fmt.Errorf("phone: %w", apperr.ErrInvalid)
		},
	}
	h := handlers.NewCourierHandler(uc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/couriers", strings.NewReader(`{"name":"Ivan","phone":"bad"}`))
	rr := httptest.NewRecorder()

	h.Create(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCourierHandler_Update_OK(t *testing.T) {
	t.Parallel()

	uc := &stubCourierUsecase{
		updateFn: func(_ context.Context, u domain.PartialCourierUpdate) (bool, error) {
			require.Equal(t, int64(5), u.ID)
			require.NotNil(t, u.Available)
			require.True(t, *u.Available)
			return true, nil
		},
	}
	h := handlers.NewCourierHandler(uc, testLogger())

	req := httptest.NewRequest(http.MethodPatch, "/couriers/5", strings.NewReader(`{"available":true}`))
	req = withURLParam(req, "id", "5")
	rr := httptest.NewRecorder()

	h.Update(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestCourierHandler_UpdateLocation_OK(t *testing.T) {
	t.Parallel()

	uc := &stubCourierUsecase{
		locationFn: func(_ context.Context, id int64, lat, lng float64) error {
			require.Equal(t, int64(5), id)
			require.InDelta(t, 55.75, lat, 1e-9)
			require.InDelta(t, 37.61, lng, 1e-9)
			return nil
		},
	}
	h := handlers.NewCourierHandler(uc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/couriers/5/location", strings.NewReader(`{"lat":55.75,"lng":37.61}`))
	req = withURLParam(req, "id", "5")
	rr := httptest.NewRecorder()

	h.UpdateLocation(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestCourierHandler_UpdateLocation_OutOfRange(t *testing.T) {
	t.Parallel()

	uc := &stubCourierUsecase{
		locationFn: func(context.Context, int64, float64, float64) error {
			return fmt.Errorf("coordinates out of range: %w", apperr.ErrInvalid)
		},
	}
	h := handlers.NewCourierHandler(uc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/couriers/5/location", strings.NewReader(`{"lat":95,"lng":37.61}`))
	req = withURLParam(req, "id", "5")
	rr := httptest.NewRecorder()

	h.UpdateLocation(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCourierHandler_List_OK(t *testing.T) {
	t.Parallel()

	uc := &stubCourierUsecase{
		listFn: func(_ context.Context, limit, offset *int) ([]domain.Courier, error) {
			require.NotNil(t, limit)
			require.Equal(t, 2, *limit)
			require.Nil(t, offset)
			return []domain.Courier{{ID: 1}, {ID: 2}}, nil
		},
	}
	h := handlers.NewCourierHandler(uc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/couriers?limit=2", nil)
	rr := httptest.NewRecorder()

	h.List(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp []json.RawMessage
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp, 2)
}

func TestCourierHandler_List_BadPagination(t *testing.T) {
	t.Parallel()

	h := handlers.NewCourierHandler(&stubCourierUsecase{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/couriers?limit=-1", nil)
	rr := httptest.NewRecorder()

	h.List(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
