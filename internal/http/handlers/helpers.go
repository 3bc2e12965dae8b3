package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dispatch-service/internal/logx"
)

// Machine-readable reason codes carried alongside error messages so callers
// can tell "no courier right now" from "system error".
const (
	reasonInvalidInput      = "invalid_input"
	reasonNotFound          = "not_found"
	reasonAlreadyAssigned   = "already_assigned"
	reasonLocationMissing   = "restaurant_location_missing"
	reasonInvalidTransition = "invalid_transition"
	reasonInternal          = "internal_error"
)

func reqID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return "-"
}

func writeJSON(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Error("json encode error",
			logx.String("req_id", reqID(r.Context())),
			logx.Any("err", err),
		)
	}
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

func writeError(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, reason, msg string) {
	logger.Warn("http error",
		logx.String("req_id", reqID(r.Context())),
		logx.Int("status", status),
		logx.String("reason", reason),
		logx.String("msg", msg),
	)
	writeJSON(logger, w, r, status, ErrorResponse{Error: msg, Reason: reason})
}

const (
	bodyLimit = 1 << 20
)

func decodeJSON[T any](logger logx.Logger, w http.ResponseWriter, r *http.Request, dst *T) bool {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(logger, w, r, http.StatusBadRequest, reasonInvalidInput, "invalid json")
		return false
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		writeError(logger, w, r, http.StatusBadRequest, reasonInvalidInput, "invalid json: trailing data")
		return false
	}
	return true
}

func idFromURL(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
