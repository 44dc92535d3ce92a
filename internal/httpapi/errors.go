package httpapi

import (
	"encoding/json"
	"net/http"

	"ttsd/internal/runtime"
	"ttsd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// serviceErrorStatus maps runtime error kinds to HTTP status codes.
func serviceErrorStatus(err error) int {
	switch {
	case runtime.IsInvalidRequest(err):
		return http.StatusBadRequest
	case runtime.IsConflict(err):
		return http.StatusConflict
	case runtime.IsNotReady(err):
		return http.StatusServiceUnavailable
	case runtime.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError maps a runtime error onto the wire and returns the
// status it wrote. Not-ready rejections carry a Retry-After hint so clients
// can poll a load in flight.
func writeServiceError(w http.ResponseWriter, err error) int {
	if he, ok := err.(HTTPError); ok {
		writeJSONError(w, he.StatusCode(), he.Error())
		return he.StatusCode()
	}
	status := serviceErrorStatus(err)
	switch {
	case runtime.IsNotReady(err):
		w.Header().Set("Retry-After", "5")
		IncrementRejection("not_ready")
	case runtime.IsConflict(err):
		IncrementRejection("conflict")
	case runtime.IsDependencyUnavailable(err):
		IncrementRejection("dependency_unavailable")
	}
	writeJSONError(w, status, err.Error())
	return status
}
