package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"hearth/internal/budget"
	"hearth/internal/core"
	applog "hearth/internal/log"
	"hearth/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses: validation failures
// are 400, missing entities 404, rejected preconditions 409, and
// aggregator trouble 502. Anything unrecognized is a 500 with the detail
// kept out of the response body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var pre *budget.PreconditionError
	switch {
	case errors.As(err, &pre):
		writeJSON(w, http.StatusConflict, errorResponse{Error: pre.Reason})
	case errors.Is(err, storage.ErrMonthSealed):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "month is already sealed"})
	case errors.Is(err, budget.ErrNotLinked):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "no bank link configured"})
	case errors.Is(err, budget.ErrUpstream):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case isValidationError(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err,
			applog.FieldPath, r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidMonthFormat,
		core.ErrInvalidAmount,
		core.ErrEmptyName,
		core.ErrEmptyID,
		core.ErrZeroDate,
		core.ErrInvalidAccountType,
		core.ErrMissingIncomeMonth,
		core.ErrSplitOverAllocated,
		core.ErrInvalidFundPosition,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// badRequest reports a malformed request body or parameter.
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// monthParam parses the required ?month=MM/YYYY query parameter.
func monthParam(r *http.Request) (core.Month, error) {
	return core.ParseMonth(r.URL.Query().Get("month"))
}
