// Package response provides the JSON envelope written by every rubrica
// endpoint. Successful responses carry "success": true next to their
// payload fields; failures carry "success": false and a single error string.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/agentstation/rubrica/pkg/errors"
)

// Failure is the body of every error response.
type Failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Fail creates an error body.
func Fail(message string) Failure {
	return Failure{Success: false, Error: message}
}

// Success merges the payload fields with "success": true.
func Success(fields map[string]any) map[string]any {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	return body
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// Encoding errors are ignored as headers are already sent (best effort)
	_ = json.NewEncoder(w).Encode(body)
}

// OK writes a successful response with 200 status.
func OK(w http.ResponseWriter, fields map[string]any) {
	JSON(w, http.StatusOK, Success(fields))
}

// Error writes an error response with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Fail(message))
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// Unauthorized writes a 401 error response.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// MethodNotAllowed writes a 405 error response.
func MethodNotAllowed(w http.ResponseWriter, method string) {
	Error(w, http.StatusMethodNotAllowed, "method "+method+" is not supported for this endpoint")
}

// RequestTooLarge writes a 413 error response.
func RequestTooLarge(w http.ResponseWriter) {
	Error(w, http.StatusRequestEntityTooLarge, "request body too large")
}

// RateLimited writes a 429 error response.
func RateLimited(w http.ResponseWriter) {
	Error(w, http.StatusTooManyRequests, "rate limit exceeded")
}

// StatusFor maps typed errors to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrInvalidInput), errors.Is(err, errors.ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrAPIKeyRequired), errors.Is(err, errors.ErrAPIKeyInvalid):
		return http.StatusUnauthorized
	case errors.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrorFromType writes err with the status its type maps to.
func ErrorFromType(w http.ResponseWriter, err error) {
	Error(w, StatusFor(err), err.Error())
}
