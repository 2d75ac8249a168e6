package dto

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/erp/orderdesk/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainCodes(t *testing.T) {
	tests := []struct {
		domain string
		wire   string
		status int
	}{
		{"NOT_FOUND", ErrCodeNotFound, http.StatusNotFound},
		{"ALREADY_EXISTS", ErrCodeAlreadyExists, http.StatusConflict},
		{"INVALID_INPUT", ErrCodeInvalidInput, http.StatusBadRequest},
		{"VALIDATION_ERROR", ErrCodeValidation, http.StatusBadRequest},
		{"UNAUTHORIZED", ErrCodeUnauthorized, http.StatusUnauthorized},
		{"CONCURRENCY_CONFLICT", ErrCodeConcurrencyConflict, http.StatusConflict},
		{"DUPLICATE_REQUEST", ErrCodeDuplicateRequest, http.StatusConflict},
		{"INVALID_STATE", ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{"INSUFFICIENT_STOCK", ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{trade.CodeInvalidQuantity, "INVALID_QUANTITY", http.StatusUnprocessableEntity},
		{trade.CodeQuantityExceeded, "QUANTITY_EXCEEDED", http.StatusUnprocessableEntity},
		{"LINE_NOT_FOUND", "LINE_NOT_FOUND", http.StatusUnprocessableEntity},
		{"CATEGORY_IN_USE", "CATEGORY_IN_USE", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			assert.Equal(t, tt.wire, WireCode(tt.domain))
			assert.Equal(t, tt.status, DomainStatus(tt.domain))
		})
	}
}

func TestWireCode_PassesEnvelopeCodesThrough(t *testing.T) {
	for _, code := range []string{ErrCodeNotFound, ErrCodeValidation, ErrCodeTokenExpired, ErrCodeRateLimited} {
		assert.Equal(t, code, WireCode(code))
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("NOT_FOUND", "Resource not found")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code) // Should be normalized
	assert.Equal(t, "Resource not found", resp.Error.Message)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	requestID := "req-123-456"
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Resource not found", requestID)

	assert.False(t, resp.Success)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Resource not found", resp.Error.Message)
	assert.Equal(t, requestID, resp.Error.RequestID)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "email", Message: "Invalid email format"},
		{Field: "age", Message: "Must be at least 18"},
	}
	requestID := "req-789"

	resp := NewValidationErrorResponse("Validation failed", requestID, details)

	assert.False(t, resp.Success)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "Validation failed", resp.Error.Message)
	assert.Equal(t, requestID, resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "email", resp.Error.Details[0].Field)
	assert.Equal(t, "Invalid email format", resp.Error.Details[0].Message)
}

func TestNewErrorResponseWithHelp(t *testing.T) {
	help := "https://docs.example.com/errors/auth"
	resp := NewErrorResponseWithHelp(ErrCodeUnauthorized, "Not authenticated", "req-001", help)

	assert.False(t, resp.Success)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnauthorized, resp.Error.Code)
	assert.Equal(t, "Not authenticated", resp.Error.Message)
	assert.Equal(t, help, resp.Error.Help)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "User not found", "req-test-123")

	data, err := json.Marshal(resp)
	assert.NoError(t, err)

	// Unmarshal and verify structure
	var decoded Response
	err = json.Unmarshal(data, &decoded)
	assert.NoError(t, err)

	assert.False(t, decoded.Success)
	assert.NotNil(t, decoded.Error)
	assert.Equal(t, ErrCodeNotFound, decoded.Error.Code)
	assert.Equal(t, "User not found", decoded.Error.Message)
	assert.Equal(t, "req-test-123", decoded.Error.RequestID)
}

func TestErrorResponseTimestamp(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponse(ErrCodeInternal, "Server error")
	after := time.Now()

	// Timestamp should be between before and after
	assert.True(t, !resp.Error.Timestamp.Before(before), "Timestamp should not be before call")
	assert.True(t, !resp.Error.Timestamp.After(after), "Timestamp should not be after call")
}

func TestNewSuccessResponse(t *testing.T) {
	data := map[string]string{"name": "test"}
	resp := NewSuccessResponse(data)

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
	assert.Nil(t, resp.Meta)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	data := []string{"item1", "item2"}
	resp := NewSuccessResponseWithMeta(data, 100, 1, 10)

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Meta)
	assert.Equal(t, int64(100), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 10, resp.Meta.PageSize)
	assert.Equal(t, 10, resp.Meta.TotalPages) // 100 / 10 = 10
}

func TestNewSuccessResponseWithMetaPagination(t *testing.T) {
	tests := []struct {
		total         int64
		page          int
		pageSize      int
		expectedPages int
		expectedSize  int // Expected page size after validation
	}{
		{100, 1, 10, 10, 10},
		{101, 1, 10, 11, 10}, // Partial page
		{0, 1, 10, 0, 10},
		{9, 1, 10, 1, 10},
		{10, 1, 10, 1, 10},
		{11, 1, 10, 2, 10},
		// Edge case: zero pageSize should default to 20
		{100, 1, 0, 5, 20},
		{100, 1, -1, 5, 20},
	}

	for _, tt := range tests {
		resp := NewSuccessResponseWithMeta(nil, tt.total, tt.page, tt.pageSize)
		assert.Equal(t, tt.expectedPages, resp.Meta.TotalPages)
		assert.Equal(t, tt.expectedSize, resp.Meta.PageSize)
	}
}

func TestFromError(t *testing.T) {
	t.Run("field errors", func(t *testing.T) {
		errs := shared.FieldErrors{}
		errs.Add("lines[0].quantity", "Must be greater than 0")
		errs.Add("counterparty_id", "This field is required")

		status, resp := FromError(fmt.Errorf("create order: %w", errs), "req-1")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 2)
		assert.Equal(t, "counterparty_id", resp.Error.Details[0].Field)
		assert.Equal(t, "req-1", resp.Error.RequestID)
	})

	t.Run("single field validation error keeps its code", func(t *testing.T) {
		err := shared.NewValidationError("quantity", "QUANTITY_EXCEEDED", "Quantity 5 exceeds the remaining 3")

		status, resp := FromError(err, "")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Quantity 5 exceeds the remaining 3", resp.Error.Message)
		assert.Equal(t, "QUANTITY_EXCEEDED", resp.Error.Details[0].Code)
	})

	t.Run("domain sentinel", func(t *testing.T) {
		status, resp := FromError(shared.ErrConcurrencyConflict, "")
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, ErrCodeConcurrencyConflict, resp.Error.Code)
	})

	t.Run("fulfillment rule keeps its code", func(t *testing.T) {
		status, resp := FromError(shared.NewDomainError("LINE_NOT_FOUND", "Order line not found"), "")
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, "LINE_NOT_FOUND", resp.Error.Code)
	})

	t.Run("duplicate request", func(t *testing.T) {
		status, resp := FromError(fmt.Errorf("record: %w", shared.ErrDuplicateRequest), "")
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, ErrCodeDuplicateRequest, resp.Error.Code)
	})

	t.Run("rule specific domain code", func(t *testing.T) {
		status, resp := FromError(shared.NewDomainError("CATEGORY_IN_USE", "Category has products"), "")
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, "CATEGORY_IN_USE", resp.Error.Code)
	})

	t.Run("unexpected error hides details", func(t *testing.T) {
		status, resp := FromError(fmt.Errorf("dial tcp: refused"), "")
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "An unexpected error occurred", resp.Error.Message)
	})
}
