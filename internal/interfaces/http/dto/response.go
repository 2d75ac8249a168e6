package dto

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/erp/orderdesk/internal/domain/shared"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Details   []ValidationDetail `json:"details,omitempty"`
	Help      string             `json:"help,omitempty"`
}

// ValidationDetail is one field-level validation failure
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Meta represents pagination metadata
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewSuccessResponseWithMeta creates a success response with pagination meta
func NewSuccessResponseWithMeta(data interface{}, total int64, page, pageSize int) Response {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      WireCode(code),
			Message:   message,
			Timestamp: time.Now(),
		},
	}
}

// NewErrorResponseWithRequestID creates an error response carrying the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	resp := NewErrorResponse(code, message)
	resp.Error.RequestID = requestID
	return resp
}

// NewErrorResponseWithHelp creates an error response with a help link
func NewErrorResponseWithHelp(code, message, requestID, help string) Response {
	resp := NewErrorResponseWithRequestID(code, message, requestID)
	resp.Error.Help = help
	return resp
}

// NewValidationErrorResponse creates a validation error response with field details
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}

// DetailsFromFieldErrors converts field errors to details sorted by field
func DetailsFromFieldErrors(errs shared.FieldErrors) []ValidationDetail {
	fields := errs.Fields()
	sort.Strings(fields)
	details := make([]ValidationDetail, 0, len(fields))
	for _, f := range fields {
		details = append(details, ValidationDetail{Field: f, Message: errs[f]})
	}
	return details
}

// FromError maps an application error to its HTTP status and envelope.
// Field errors and single-field validation errors become 400 with details;
// domain errors keep their message; anything else is a 500 with a generic
// message.
func FromError(err error, requestID string) (int, Response) {
	var fieldErrs shared.FieldErrors
	if errors.As(err, &fieldErrs) {
		return http.StatusBadRequest,
			NewValidationErrorResponse("Request validation failed", requestID, DetailsFromFieldErrors(fieldErrs))
	}

	var validationErr *shared.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, NewValidationErrorResponse(validationErr.Message, requestID, []ValidationDetail{{
			Field:   validationErr.Field,
			Message: validationErr.Message,
			Code:    validationErr.Code,
		}})
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return DomainStatus(domainErr.Code),
			NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID)
	}

	return http.StatusInternalServerError,
		NewErrorResponseWithRequestID(ErrCodeInternal, "An unexpected error occurred", requestID)
}
