package admin

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/frozenfood/server/internal/shared/config"
	"github.com/frozenfood/server/internal/utils/middleware"
)

// ErrInvalidCredentials is returned for a wrong username or password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service authenticates the admin panel operator. There is a single
// operator account configured at deploy time; no user storage is
// involved.
type Service struct {
	cfg    *config.AuthConfig
	logger *zap.Logger
}

// NewService creates the admin auth service.
func NewService(cfg *config.AuthConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cfg: cfg, logger: logger}
}

// Login verifies the credentials and issues a signed access token.
func (s *Service) Login(username, password string) (string, time.Time, error) {
	if username != s.cfg.AdminUsername {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)); err != nil {
		s.logger.Warn("admin login rejected", zap.String("username", username))
		return "", time.Time{}, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.cfg.AccessTokenExpiry)
	claims := middleware.AdminClaims{
		Username: username,
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}
