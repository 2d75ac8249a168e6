package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/erp/orderdesk/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, h gin.HandlerFunc, target string) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(RequestIDKey, "req-1")
		c.Next()
	})
	engine.GET("/items/:id", h)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	var resp dto.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestBaseHandler_HandleError(t *testing.T) {
	var h BaseHandler

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"wrapped conflict", errors.Join(errors.New("save"), shared.ErrConcurrencyConflict), http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"duplicate", shared.ErrDuplicateRequest, http.StatusConflict, dto.ErrCodeDuplicateRequest},
		{"field errors", shared.FieldErrors{"name": "This field is required"}, http.StatusBadRequest, dto.ErrCodeValidation},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := serve(t, func(c *gin.Context) { h.HandleError(c, tt.err) }, "/items/1")
			assert.Equal(t, tt.status, w.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestBaseHandler_ParamID(t *testing.T) {
	var h BaseHandler
	handle := func(c *gin.Context) {
		id, ok := h.ParamID(c, "id")
		if !ok {
			return
		}
		h.Success(c, id.String())
	}

	w, resp := serve(t, handle, "/items/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)

	w, resp = serve(t, handle, "/items/0b7e8a52-3c55-4d3a-9a55-2f3c1d0c9e11")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0b7e8a52-3c55-4d3a-9a55-2f3c1d0c9e11", resp.Data)
}
