// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/shyam-international/exportsite/internal/config"
	"github.com/shyam-international/exportsite/internal/core"
	"github.com/shyam-international/exportsite/internal/middleware"
)

const DefaultTokenLifetime = 24 * time.Hour

type JWTManager struct {
	secret []byte
	config config.JWTConfig
	now    func() time.Time
}

func NewJWTManager(cfg config.JWTConfig) *JWTManager {
	if cfg.AccessTokenExpire <= 0 {
		cfg.AccessTokenExpire = DefaultTokenLifetime
	}
	return &JWTManager{
		secret: []byte(cfg.Secret),
		config: cfg,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for issuing and validating.
func (m *JWTManager) WithClock(now func() time.Time) *JWTManager {
	m.now = now
	return m
}

func (m *JWTManager) Lifetime() time.Duration {
	return m.config.AccessTokenExpire
}

func (m *JWTManager) CreateAccessToken(identity Identity) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("create token: %w", core.ErrServerMisconfigured)
	}

	now := m.now()

	token, err := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Issuer(m.config.Issuer).
		Subject(identity.ID).
		IssuedAt(now).
		Expiration(now.Add(m.config.AccessTokenExpire)).
		Claim("username", identity.Username).
		Claim("role", identity.Role).
		Claim("type", "access").
		Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return string(signed), nil
}

func (m *JWTManager) VerifyAccessToken(
	_ context.Context,
	tokenString string,
) (*middleware.AccessTokenClaims, error) {
	if len(m.secret) == 0 {
		return nil, fmt.Errorf("verify token: %w", core.ErrServerMisconfigured)
	}

	opts := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256(), m.secret),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(m.now)),
	}
	if m.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.config.Issuer))
	}

	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	var tokenType string
	if err := token.Get("type", &tokenType); err != nil ||
		tokenType != "access" {
		return nil, fmt.Errorf(
			"verify token: invalid token type: %w",
			core.ErrTokenInvalid,
		)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	var role string
	if err := token.Get("role", &role); err != nil {
		return nil, fmt.Errorf(
			"verify token: missing role claim: %w",
			core.ErrTokenInvalid,
		)
	}

	var username string
	//nolint:errcheck // username is informational
	_ = token.Get("username", &username)

	claims := &middleware.AccessTokenClaims{
		UserID:   subject,
		Username: username,
		Role:     role,
	}
	if jti, ok := token.JwtID(); ok {
		claims.TokenID = jti
	}
	if iat, ok := token.IssuedAt(); ok {
		claims.IssuedAt = iat
	}
	if exp, ok := token.Expiration(); ok {
		claims.ExpiresAt = exp
	}

	return claims, nil
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "expired") ||
		(strings.Contains(errStr, `"exp"`) &&
			strings.Contains(errStr, "not satisfied"))
}
