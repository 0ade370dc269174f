package utils

import (
	"encoding/json"
	"net/http"
)

// Envelope is the success body. Data is always written, so an absent
// value goes out as null.
type Envelope struct {
	Data interface{} `json:"data"`
}

// ErrorResponse is the error body of every endpoint
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type errorKind struct {
	code     string
	fallback string
}

var errorKinds = map[int]errorKind{
	http.StatusBadRequest:          {"bad_request", "Bad request"},
	http.StatusUnauthorized:        {"unauthorized", "Authentication required"},
	http.StatusForbidden:           {"forbidden", "Access forbidden"},
	http.StatusNotFound:            {"not_found", "Resource not found"},
	http.StatusBadGateway:          {"bad_gateway", "Upstream service error"},
	http.StatusServiceUnavailable:  {"service_unavailable", "Service unavailable"},
	http.StatusInternalServerError: {"internal_error", "Internal server error"},
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}

// WriteData writes data inside the success envelope
func WriteData(w http.ResponseWriter, status int, data interface{}) error {
	return writeJSON(w, status, Envelope{Data: data})
}

// WriteOK writes a 200 response
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteData(w, http.StatusOK, data)
}

// WriteCreated writes a 201 response
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteData(w, http.StatusCreated, data)
}

// WriteError writes the error envelope. The error code follows the status;
// unknown statuses are reported as internal errors. An empty message falls
// back to the status default.
func WriteError(w http.ResponseWriter, status int, message string, details map[string]interface{}) error {
	kind, ok := errorKinds[status]
	if !ok {
		kind = errorKinds[http.StatusInternalServerError]
	}
	if message == "" {
		message = kind.fallback
	}
	return writeJSON(w, status, ErrorResponse{
		Error:   kind.code,
		Message: message,
		Details: details,
	})
}
