package admin

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/frozenfood/server/internal/shared/config"
	"github.com/frozenfood/server/internal/utils/middleware"
)

func testAuthConfig(t *testing.T, password string) *config.AuthConfig {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &config.AuthConfig{
		JWTSecret:         "test-secret",
		AccessTokenExpiry: 30 * time.Minute,
		AdminUsername:     "admin",
		AdminPasswordHash: string(hash),
	}
}

func TestLogin_IssuesAdminToken(t *testing.T) {
	cfg := testAuthConfig(t, "correct horse")
	svc := NewService(cfg, zap.NewNop())

	token, expiresAt, err := svc.Login("admin", "correct horse")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(cfg.AccessTokenExpiry), expiresAt, time.Minute)

	var claims middleware.AdminClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Role)
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	svc := NewService(testAuthConfig(t, "correct horse"), zap.NewNop())

	_, _, err := svc.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login("root", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
