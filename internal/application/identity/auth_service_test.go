package identity_test

import (
	"context"
	"testing"
	"time"

	identityapp "github.com/erp/orderdesk/internal/application/identity"
	"github.com/erp/orderdesk/internal/application/validation"
	"github.com/erp/orderdesk/internal/domain/identity"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/erp/orderdesk/internal/infrastructure/auth"
	"github.com/erp/orderdesk/internal/infrastructure/config"
	"github.com/erp/orderdesk/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	users *identityapp.UserService
	auth  *identityapp.AuthService
	jwt   *auth.JWTService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	prev := identity.SetHashCost(bcrypt.MinCost)
	t.Cleanup(func() { identity.SetHashCost(prev) })

	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, persistence.AutoMigrate(db.DB))

	logger := zaptest.NewLogger(t)
	repo := persistence.NewGormUserRepository(db.DB)
	jwtSvc := auth.NewJWTService(config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "orderdesk"})
	return &fixture{
		users: identityapp.NewUserService(repo, logger),
		auth:  identityapp.NewAuthService(repo, jwtSvc, logger),
		jwt:   jwtSvc,
	}
}

func userForm(username string) validation.UserForm {
	return validation.UserForm{
		Username:        username,
		Email:           username + "@example.com",
		DisplayName:     "Hanako",
		Password:        "s3cret-pass",
		ConfirmPassword: "s3cret-pass",
		Role:            "staff",
	}
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.users.Create(ctx, userForm("Hanako"))
	require.NoError(t, err)
	assert.Equal(t, "hanako", created.Username)
	assert.Equal(t, "active", created.Status)

	_, err = f.users.Create(ctx, userForm("HANAKO"))
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	form := userForm("taro")
	form.ConfirmPassword = "different"
	_, err = f.users.Create(ctx, form)
	var fieldErrs shared.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "Must match password", fieldErrs["confirm_password"])
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created, err := f.users.Create(ctx, userForm("hanako"))
	require.NoError(t, err)

	t.Run("issues a token carrying the role", func(t *testing.T) {
		resp, err := f.auth.Login(ctx, validation.LoginForm{Username: "Hanako", Password: "s3cret-pass"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", resp.TokenType)
		require.NotNil(t, resp.User.LastLoginAt)

		claims, err := f.jwt.Validate(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, created.ID.String(), claims.UserID)
		assert.Equal(t, "staff", claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.auth.Login(ctx, validation.LoginForm{Username: "hanako", Password: "nope-nope"})
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("unknown user looks the same", func(t *testing.T) {
		_, err := f.auth.Login(ctx, validation.LoginForm{Username: "ghost", Password: "s3cret-pass"})
		assert.ErrorIs(t, err, identityapp.ErrInvalidCredentials)
	})

	t.Run("deactivated user", func(t *testing.T) {
		_, err := f.users.Deactivate(ctx, created.ID)
		require.NoError(t, err)
		_, err = f.auth.Login(ctx, validation.LoginForm{Username: "hanako", Password: "s3cret-pass"})
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})
}

func TestUserService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.users.EnsureAdmin(ctx, "admin", "admin@example.com", "admin-pass-1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.users.EnsureAdmin(ctx, "admin", "admin@example.com", "admin-pass-1")
	require.NoError(t, err)
	assert.False(t, created)
}
