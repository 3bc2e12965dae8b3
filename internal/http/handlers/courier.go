package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"dispatch-service/internal/apperr"
	"dispatch-service/internal/logx"
)

// CourierHandler serves HTTP endpoints for courier resources.
type CourierHandler struct {
	uc     courierUsecase
	logger logx.Logger
}

// NewCourierHandler wires a courierUsecase into HTTP handlers.
func NewCourierHandler(uc courierUsecase, logger logx.Logger) *CourierHandler {
	return &CourierHandler{uc: uc, logger: logger}
}

// GetByID handles GET /couriers/{id}.
func (h *CourierHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, reasonInvalidInput, "invalid id")
		return
	}

	c, err := h.uc.Get(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, courierToResponse(*c))
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, reasonNotFound, "courier not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, reasonInternal, "internal error")
	}
}

// List handles GET /couriers.
func (h *CourierHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var limitPtr, offsetPtr *int
	if s := q.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			writeError(h.logger, w, r, http.StatusBadRequest, reasonInvalidInput, "invalid limit")
			return
		}
		limitPtr = &v
	}
	if s := q.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			writeError(h.logger, w, r, http.StatusBadRequest, reasonInvalidInput, "invalid offset")
			return
		}
		offsetPtr = &v
	}

	list, err := h.uc.List(r.Context(), limitPtr, offsetPtr)
	if err != nil {
		writeError(h.logger, w, r, http.StatusInternalServerError, reasonInternal, "internal error")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, couriersToResponse(list))
}

// Create handles POST /couriers.
func (h *CourierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCourierRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	id, err := h.uc.Create(r.Context(), req.toModel())
	switch {
	case err == nil:
		w.Header().Set("Location", "/couriers/"+strconv.FormatInt(id, 10))
		writeJSON(h.logger, w, r, http.StatusCreated, map[string]any{"id": id})
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, reasonInvalidInput, err.Error())
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, reasonInvalidInput, "phone already exists")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, reasonInternal, "internal error")
	}
}

// Update handles PATCH /couriers/{id} with partial updates.
func (h *CourierHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, reasonInvalidInput, "invalid id")
		return
	}
	var req updateCourierRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	_, err = h.uc.UpdatePartial(r.Context(), req.toModel(id))
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, reasonInvalidInput, err.Error())
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, reasonInvalidInput, "phone already exists")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, reasonNotFound, "courier not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, reasonInternal, "internal error")
	}
}

// UpdateLocation handles POST /couriers/{id}/location.
func (h *CourierHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, reasonInvalidInput, "invalid id")
		return
	}
	var req updateLocationRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	err = h.uc.UpdateLocation(r.Context(), id, req.Lat, req.Lng)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, reasonInvalidInput, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, reasonNotFound, "courier not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, reasonInternal, "internal error")
	}
}
