package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"dispatch-service/internal/apperr"
	"dispatch-service/internal/domain"
	"dispatch-service/internal/logx"
	"dispatch-service/internal/service/dispatch"
)

// DispatchHandler serves the assignment endpoints: dispatching an order to a
// courier and moving an assignment through its lifecycle.
type DispatchHandler struct {
	uc     dispatchUsecase
	logger logx.Logger
}

// NewDispatchHandler wires a dispatchUsecase into HTTP handlers.
func NewDispatchHandler(uc dispatchUsecase, logger logx.Logger) *DispatchHandler {
	return &DispatchHandler{uc: uc, logger: logger}
}

// Assign handles POST /delivery/assign. A dispatch that finds no eligible
// courier is still a 200: the caller reads assigned=false and the reason.
func (h *DispatchHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if strings.TrimSpace(req.OrderID) == "" {
		writeError(h.logger, w, r, http.StatusBadRequest, reasonInvalidInput, "order_id is required")
		return
	}

	res, err := h.uc.Assign(r.Context(), dispatch.AssignRequest{
		OrderID:       req.OrderID,
		Strategy:      req.Strategy,
		ForceReassign: req.ForceReassign,
	})
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, dispatchResultToResponse(res))
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, reasonInvalidInput, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, reasonNotFound, err.Error())
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, reasonAlreadyAssigned, err.Error())
	case errors.Is(err, apperr.ErrFailedPrecondition):
		writeError(h.logger, w, r, http.StatusUnprocessableEntity, reasonLocationMissing, err.Error())
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, reasonInternal, "internal error")
	}
}

// UpdateStatus handles PUT /assignments/{id}.
func (h *DispatchHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, reasonInvalidInput, "invalid id")
		return
	}
	var req updateAssignmentRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	a, err := h.uc.UpdateStatus(r.Context(), id, req.Status, req.Notes)
	var transitionErr *domain.InvalidTransitionError
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, assignmentToResponse(*a))
	case errors.As(err, &transitionErr):
		writeError(h.logger, w, r, http.StatusBadRequest, reasonInvalidTransition, transitionErr.Error())
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, reasonInvalidInput, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, reasonNotFound, "assignment not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, reasonInternal, "internal error")
	}
}

// GetByID handles GET /assignments/{id}.
func (h *DispatchHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, reasonInvalidInput, "invalid id")
		return
	}

	a, err := h.uc.Get(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, assignmentToResponse(*a))
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, reasonNotFound, "assignment not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, reasonInternal, "internal error")
	}
}

// List handles GET /assignments filtered by order_id or courier_id.
func (h *DispatchHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orderID := strings.TrimSpace(q.Get("order_id"))
	courierStr := strings.TrimSpace(q.Get("courier_id"))
	if (orderID == "") == (courierStr == "") {
		writeError(h.logger, w, r, http.StatusBadRequest, reasonInvalidInput,
			"exactly one of order_id or courier_id is required")
		return
	}

	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	var (
		list []domain.Assignment
		err  error
	)
	if orderID != "" {
		list, err = h.uc.ListByOrder(r.Context(), orderID, limit, offset)
	} else {
		courierID, perr := strconv.ParseInt(courierStr, 10, 64)
		if perr != nil || courierID <= 0 {
			writeError(h.logger, w, r, http.StatusBadRequest, reasonInvalidInput, "invalid courier_id")
			return
		}
		list, err = h.uc.ListByCourier(r.Context(), courierID, limit, offset)
	}
	if err != nil {
		writeError(h.logger, w, r, http.StatusInternalServerError, reasonInternal, "internal error")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, assignmentsToResponse(list))
}
