package dto

import (
	"net/http"
	"strings"
)

// Handler-level error codes. Domain errors carry their own codes; these cover
// failures that happen before the request reaches a service.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used when request body validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "CONFLICT"
	// ErrCodeRequestTooLarge is used when the request body exceeds the limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Domain codes are
// listed explicitly so the original code survives into the response payload.
var ErrorCodeHTTPStatus = map[string]int{
	// Handler-level
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Resource lookups -> 404 Not Found
	ErrCodeNotFound:      http.StatusNotFound,
	"UNIT_NOT_FOUND":     http.StatusNotFound,
	"DELIVERY_NOT_FOUND": http.StatusNotFound,
	"PLAN_NOT_FOUND":     http.StatusNotFound,

	// Conflicts -> 409 Conflict
	ErrCodeConflict:             http.StatusConflict,
	"ALREADY_EXISTS":            http.StatusConflict,
	"DUPLICATE_PLAN":            http.StatusConflict,
	"CONCURRENCY_CONFLICT":      http.StatusConflict,
	"INSUFFICIENT_AVAILABILITY": http.StatusConflict,

	// State machine violations -> 422 Unprocessable Entity
	"INVALID_STATE":            http.StatusUnprocessableEntity,
	"INVALID_STATE_TRANSITION": http.StatusUnprocessableEntity,
	"PLAN_ALREADY_PAID":        http.StatusUnprocessableEntity,
	"NO_PAYMENTS_PENDING":      http.StatusUnprocessableEntity,
	"BONUS_ALREADY_APPLIED":    http.StatusUnprocessableEntity,
	"NO_BONUS_CONFIGURED":      http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code. Validation
// codes follow the INVALID_ prefix convention and map to 400; anything
// unrecognized is treated as an internal error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
