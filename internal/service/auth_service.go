package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TokenRevoker stores revoked token ids; implemented by pkg/redis.Client
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService the part of authentication this service owns: revoking tokens
type AuthService interface {
	// Logout revokes the token until it expires. Reports false when no
	// revocation store is configured.
	Logout(ctx context.Context, jti string, expiresAt time.Time) (bool, error)
}

type authService struct {
	revoker TokenRevoker
	logger  *zap.Logger
}

// NewAuthService creates an AuthService; revoker may be nil
func NewAuthService(revoker TokenRevoker, logger *zap.Logger) AuthService {
	return &authService{revoker: revoker, logger: logger}
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	if s.revoker == nil || jti == "" {
		return false, nil
	}
	if err := s.revoker.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("revoke token failed", zap.String("jti", jti), zap.Error(err))
		return false, err
	}
	return true, nil
}
