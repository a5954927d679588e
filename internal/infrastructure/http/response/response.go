package response

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

var errorTypes = map[int]string{
	http.StatusBadRequest:          "bad_request",
	http.StatusNotFound:            "not_found",
	http.StatusTooManyRequests:     "rate_limited",
	http.StatusInternalServerError: "internal_server_error",
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends an error response tagged with the request id, when one is set
func Error(w http.ResponseWriter, r *http.Request, status int, err error) {
	errorType, ok := errorTypes[status]
	if !ok {
		errorType = "error"
	}

	JSON(w, status, ErrorResponse{
		Error:     errorType,
		Message:   err.Error(),
		RequestID: middleware.GetReqID(r.Context()),
	})
}
