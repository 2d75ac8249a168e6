package identity

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	SetHashCost(bcrypt.MinCost)
	os.Exit(m.Run())
}

func TestNewUser(t *testing.T) {
	u, err := NewUser(" Clerk.One ", "clerk@example.jp", "secret123", RoleStaff)
	require.NoError(t, err)
	assert.Equal(t, "clerk.one", u.Username)
	assert.Equal(t, 1, u.Version)
	assert.True(t, u.CanLogin())
	assert.True(t, u.VerifyPassword("secret123"))
	assert.False(t, u.VerifyPassword("secret124"))
	assert.NotEqual(t, "secret123", u.PasswordHash)
}

func TestNewUser_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		role     Role
	}{
		{"short username", "ab", "a@b.jp", "secret123", RoleStaff},
		{"username with spaces", "a b c", "a@b.jp", "secret123", RoleStaff},
		{"missing email", "clerk", "", "secret123", RoleStaff},
		{"short password", "clerk", "a@b.jp", "abc1", RoleStaff},
		{"password without digit", "clerk", "a@b.jp", "abcdefghi", RoleStaff},
		{"unknown role", "clerk", "a@b.jp", "secret123", Role("owner")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.username, tt.email, tt.password, tt.role)
			assert.Error(t, err)
		})
	}
}

func TestUser_Lifecycle(t *testing.T) {
	u, err := NewUser("clerk", "clerk@example.jp", "secret123", RoleViewer)
	require.NoError(t, err)
	assert.False(t, u.Role.CanWrite())

	require.NoError(t, u.UpdateProfile("Clerk", "clerk2@example.jp", RoleAdmin))
	assert.True(t, u.Role.CanWrite())

	require.NoError(t, u.SetPassword("newpass99"))
	assert.True(t, u.VerifyPassword("newpass99"))

	u.RecordLogin()
	assert.NotNil(t, u.LastLoginAt)

	u.Deactivate()
	assert.False(t, u.CanLogin())
}
