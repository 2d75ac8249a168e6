package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erp/orderdesk/internal/infrastructure/auth"
	"github.com/erp/orderdesk/internal/infrastructure/logger"
	"github.com/erp/orderdesk/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTUsernameKey = "jwt_username"
	JWTRoleKey     = "jwt_role"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// TokenValidator validates access tokens
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	Validator TokenValidator
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	Logger    *zap.Logger
}

// PublicPaths are served without a token
var PublicPaths = []string{
	"/health",
	"/metrics",
	"/api/v1/auth/login",
}

func isPublicPath(path string) bool {
	for _, p := range PublicPaths {
		if p == path {
			return true
		}
	}
	return false
}

// DefaultJWTConfig returns the default JWT middleware configuration
func DefaultJWTConfig(validator TokenValidator, log *zap.Logger) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		Validator: validator,
		SkipPaths: PublicPaths,
		Logger:    log,
	}
}

// JWTAuth returns a middleware that requires a valid bearer token
func JWTAuth(validator TokenValidator, log *zap.Logger) gin.HandlerFunc {
	return JWTAuthWithConfig(DefaultJWTConfig(validator, log))
}

// JWTAuthWithConfig returns a JWT middleware with custom configuration
func JWTAuthWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		token, ok := bearerToken(c.GetHeader(AuthHeaderKey))
		if !ok {
			abortAuth(c, dto.ErrCodeUnauthorized, "Authorization header is required")
			return
		}

		claims, err := cfg.Validator.Validate(token)
		if err != nil {
			log.Debug("Token rejected",
				zap.String("request_id", requestID(c)),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			handleAuthError(c, err)
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTUsernameKey, claims.Username)
		c.Set(JWTRoleKey, claims.Role)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

func handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		abortAuth(c, dto.ErrCodeTokenExpired, "Token has expired")
	case errors.Is(err, auth.ErrMissingUserID):
		abortAuth(c, dto.ErrCodeTokenInvalid, "Token has no user")
	default:
		abortAuth(c, dto.ErrCodeTokenInvalid, "Invalid token")
	}
}

func abortAuth(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, requestID(c)))
}

// GetClaims returns the validated token claims, if any
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(JWTClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// GetUserID returns the authenticated user ID, or "" when unauthenticated
func GetUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}
