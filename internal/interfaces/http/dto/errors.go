package dto

import (
	"net/http"

	"github.com/erp/orderdesk/internal/domain/trade"
)

// Request and server failures
const (
	ErrCodeInternal         = "ERR_INTERNAL"
	ErrCodeBadRequest       = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput     = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON      = "ERR_INVALID_JSON"
	ErrCodeValidation       = "ERR_VALIDATION"
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	ErrCodeRateLimited      = "ERR_RATE_LIMITED"
)

// Authentication and roles
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Orders, fulfillments and stock
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeDuplicateRequest    = "ERR_DUPLICATE_REQUEST"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeInsufficientStock   = "ERR_INSUFFICIENT_STOCK"
)

// wireCode is how one domain error code appears in the envelope
type wireCode struct {
	code   string
	status int
}

// domainCodes covers the shared sentinels, which get an ERR_ name, and the
// fulfillment rules, which keep theirs so clients can branch on them
var domainCodes = map[string]wireCode{
	"NOT_FOUND":            {ErrCodeNotFound, http.StatusNotFound},
	"ALREADY_EXISTS":       {ErrCodeAlreadyExists, http.StatusConflict},
	"INVALID_INPUT":        {ErrCodeInvalidInput, http.StatusBadRequest},
	"VALIDATION_ERROR":     {ErrCodeValidation, http.StatusBadRequest},
	"UNAUTHORIZED":         {ErrCodeUnauthorized, http.StatusUnauthorized},
	"CONCURRENCY_CONFLICT": {ErrCodeConcurrencyConflict, http.StatusConflict},
	"DUPLICATE_REQUEST":    {ErrCodeDuplicateRequest, http.StatusConflict},
	"INVALID_STATE":        {ErrCodeInvalidState, http.StatusUnprocessableEntity},
	"INSUFFICIENT_STOCK":   {ErrCodeInsufficientStock, http.StatusUnprocessableEntity},

	trade.CodeInvalidQuantity:  {trade.CodeInvalidQuantity, http.StatusUnprocessableEntity},
	trade.CodeQuantityExceeded: {trade.CodeQuantityExceeded, http.StatusUnprocessableEntity},
	trade.CodeInvalidLine:      {trade.CodeInvalidLine, http.StatusUnprocessableEntity},
	trade.CodeInvalidWarehouse: {trade.CodeInvalidWarehouse, http.StatusUnprocessableEntity},
	trade.CodeInvalidNote:      {trade.CodeInvalidNote, http.StatusUnprocessableEntity},
	"LINE_NOT_FOUND":           {"LINE_NOT_FOUND", http.StatusUnprocessableEntity},
	"ALREADY_FULFILLED":        {"ALREADY_FULFILLED", http.StatusUnprocessableEntity},
	"NO_LINES":                 {"NO_LINES", http.StatusUnprocessableEntity},
}

// WireCode returns the envelope code for a domain error code. Codes outside
// the table are sent unchanged.
func WireCode(code string) string {
	if w, ok := domainCodes[code]; ok {
		return w.code
	}
	return code
}

// DomainStatus returns the HTTP status of a domain error code. Any rule the
// table does not list is a 422.
func DomainStatus(code string) int {
	if w, ok := domainCodes[code]; ok {
		return w.status
	}
	return http.StatusUnprocessableEntity
}
