// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shyam-international/exportsite/internal/core"
	"github.com/shyam-international/exportsite/internal/middleware"
)

var ErrMissingCredentials = errors.New("username and password required")

type Service struct {
	jwt       *JWTManager
	provider  Provider
	blacklist Blacklist
	logger    *slog.Logger
}

func NewService(
	jwt *JWTManager,
	provider Provider,
	blacklist Blacklist,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		jwt:       jwt,
		provider:  provider,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*TokenResponse, error) {
	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	identity, err := s.provider.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	return s.issue(identity)
}

// VerifyAccessToken checks signature, expiry and revocation, then resolves
// the subject through the configured provider.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			s.logger.Warn("blacklist lookup failed", "error", err)
		} else if revoked {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
		}
	}

	identity, err := s.provider.Resolve(ctx, claims)
	if err != nil {
		return nil, err
	}

	claims.Username = identity.Username
	claims.Role = identity.Role

	return claims, nil
}

func (s *Service) Refresh(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) (*TokenResponse, error) {
	identity, err := s.provider.Resolve(ctx, claims)
	if err != nil {
		return nil, err
	}

	resp, err := s.issue(identity)
	if err != nil {
		return nil, err
	}

	if err := s.revoke(ctx, claims); err != nil {
		s.logger.Warn("revoke refreshed token", "error", err)
	}

	return resp, nil
}

func (s *Service) Logout(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) error {
	return s.revoke(ctx, claims)
}

func (s *Service) revoke(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) error {
	if s.blacklist == nil || claims == nil {
		return nil
	}
	return s.blacklist.Revoke(ctx, claims.TokenID, claims.ExpiresAt)
}

func (s *Service) issue(identity *Identity) (*TokenResponse, error) {
	token, err := s.jwt.CreateAccessToken(*identity)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &TokenResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: s.jwt.now().Add(s.jwt.Lifetime()),
		User:      toUserResponse(identity),
	}, nil
}

var _ middleware.TokenVerifier = (*Service)(nil)
