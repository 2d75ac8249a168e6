package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/erp/orderdesk/internal/application/validation"
	"github.com/erp/orderdesk/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// FormatBindError converts a binding or form check failure into the error
// envelope. Field failures carry per-field details.
func FormatBindError(err error, requestID string) (int, dto.Response) {
	if fieldErrs, ok := validation.Translate(err); ok {
		return http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed", requestID,
			dto.DetailsFromFieldErrors(fieldErrs))
	}

	var (
		maxErr    *http.MaxBytesError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(ErrCodeRequestTooLarge,
			"Request body exceeds maximum allowed size", requestID)
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed", requestID,
			[]dto.ValidationDetail{{Field: typeErr.Field, Message: "Has the wrong type", Code: dto.ErrCodeValidationFormat}})
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest, dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidJSON,
			"Request body is not valid JSON", requestID)
	}
	return http.StatusBadRequest, dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest,
		"Malformed request: "+err.Error(), requestID)
}

// HandleBindError writes the response for a failed bind
func HandleBindError(c *gin.Context, err error) {
	status, resp := FormatBindError(err, requestID(c))
	c.AbortWithStatusJSON(status, resp)
}
