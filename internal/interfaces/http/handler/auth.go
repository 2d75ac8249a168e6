package handler

import (
	identityapp "github.com/erp/orderdesk/internal/application/identity"
	"github.com/erp/orderdesk/internal/application/validation"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// @Summary      Log in
// @Description  Exchange a username and password for a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body validation.LoginForm true "Credentials"
// @Success      200 {object} dto.Response{data=identityapp.LoginResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var form validation.LoginForm
	if !h.BindJSON(c, &form) {
		return
	}
	resp, err := h.authService.Login(c.Request.Context(), form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
