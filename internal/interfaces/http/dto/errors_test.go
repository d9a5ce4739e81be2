package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected int
	}{
		{"internal error", ErrCodeInternal, http.StatusInternalServerError},
		{"bad request", ErrCodeBadRequest, http.StatusBadRequest},
		{"validation", ErrCodeValidation, http.StatusBadRequest},
		{"not found", ErrCodeNotFound, http.StatusNotFound},
		{"unit not found", "UNIT_NOT_FOUND", http.StatusNotFound},
		{"delivery not found", "DELIVERY_NOT_FOUND", http.StatusNotFound},
		{"duplicate plan", "DUPLICATE_PLAN", http.StatusConflict},
		{"concurrency conflict", "CONCURRENCY_CONFLICT", http.StatusConflict},
		{"insufficient availability", "INSUFFICIENT_AVAILABILITY", http.StatusConflict},
		{"invalid state transition", "INVALID_STATE_TRANSITION", http.StatusUnprocessableEntity},
		{"plan already paid", "PLAN_ALREADY_PAID", http.StatusUnprocessableEntity},
		{"no payments pending", "NO_PAYMENTS_PENDING", http.StatusUnprocessableEntity},
		{"invalid prefix fallback", "INVALID_MARKUP", http.StatusBadRequest},
		{"invalid quantity fallback", "INVALID_QUANTITY", http.StatusBadRequest},
		{"unknown code", "SOMETHING_ELSE", http.StatusInternalServerError},
		{"empty code", "", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID("DUPLICATE_PLAN", "Delivery already has a plan", "req-42")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.Equal(t, "DUPLICATE_PLAN", resp.Error.Code)
	assert.Equal(t, "Delivery already has a plan", resp.Error.Message)
	assert.Equal(t, "req-42", resp.Error.RequestID)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "quantity", Message: "Must be at least 1"},
		{Field: "product_id", Message: "This field is required"},
	}

	resp := NewValidationErrorResponse("Request validation failed", "req-42", details)

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-42", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "quantity", resp.Error.Details[0].Field)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a", "b"}, 45, 2, 20)

	assert.True(t, resp.Success)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 20, resp.Meta.PageSize)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestNewSuccessResponseWithMeta_ZeroPageSize(t *testing.T) {
	resp := NewSuccessResponseWithMeta(nil, 10, 1, 0)

	assert.Equal(t, 0, resp.Meta.TotalPages)
}
