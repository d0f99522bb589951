// AngelaMos | 2026
// provider.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shyam-international/exportsite/internal/core"
	"github.com/shyam-international/exportsite/internal/middleware"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	StaticAdminID = "admin-001"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
	ErrAccountInactive    = errors.New("account inactive")
)

type Identity struct {
	ID       string
	Username string
	Role     string
	IsActive bool
}

// Provider authenticates credentials and resolves verified claims back to
// an identity. A deployment wires exactly one.
type Provider interface {
	Authenticate(ctx context.Context, username, password string) (*Identity, error)
	Resolve(
		ctx context.Context,
		claims *middleware.AccessTokenClaims,
	) (*Identity, error)
}

type StaticCredentialAuth struct {
	username string
	password string
}

func NewStaticCredentialAuth(username, password string) *StaticCredentialAuth {
	return &StaticCredentialAuth{username: username, password: password}
}

func (a *StaticCredentialAuth) Authenticate(
	_ context.Context,
	username, password string,
) (*Identity, error) {
	if a.username == "" || a.password == "" {
		return nil, fmt.Errorf("static auth: %w", core.ErrServerMisconfigured)
	}

	userOK := core.SecureCompare(username, a.username)
	passOK := core.SecureCompare(password, a.password)
	if !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}

	return &Identity{
		ID:       StaticAdminID,
		Username: a.username,
		Role:     RoleAdmin,
		IsActive: true,
	}, nil
}

func (a *StaticCredentialAuth) Resolve(
	_ context.Context,
	claims *middleware.AccessTokenClaims,
) (*Identity, error) {
	return &Identity{
		ID:       claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
		IsActive: true,
	}, nil
}

type UserRecord struct {
	ID            string
	Username      string
	PasswordHash  string
	Role          string
	IsActive      bool
	LoginAttempts int
	LockUntil     *time.Time
}

func (u *UserRecord) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

func (u *UserRecord) identity() *Identity {
	return &Identity{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}

type UserProvider interface {
	GetByUsername(ctx context.Context, username string) (*UserRecord, error)
	GetByID(ctx context.Context, id string) (*UserRecord, error)
	RecordFailedLogin(ctx context.Context, id string, lockUntil *time.Time) error
	RecordSuccessfulLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type LockoutPolicy struct {
	MaxAttempts  int
	LockDuration time.Duration
}

var DefaultLockoutPolicy = LockoutPolicy{
	MaxAttempts:  5,
	LockDuration: 2 * time.Hour,
}

type StoredUserAuth struct {
	users  UserProvider
	cache  IdentityCache
	policy LockoutPolicy
	now    func() time.Time
	logger *slog.Logger
}

func NewStoredUserAuth(
	users UserProvider,
	cache IdentityCache,
	policy LockoutPolicy,
	logger *slog.Logger,
) *StoredUserAuth {
	if cache == nil {
		cache = NoopIdentityCache{}
	}
	if policy.MaxAttempts <= 0 {
		policy = DefaultLockoutPolicy
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StoredUserAuth{
		users:  users,
		cache:  cache,
		policy: policy,
		now:    time.Now,
		logger: logger,
	}
}

func (a *StoredUserAuth) Authenticate(
	ctx context.Context,
	username, password string,
) (*Identity, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.BurnPasswordCheck(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	now := a.now()
	if user.IsLocked(now) {
		return nil, ErrAccountLocked
	}

	ok, rehash, err := core.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !ok {
		var lockUntil *time.Time
		if user.LoginAttempts+1 >= a.policy.MaxAttempts {
			until := now.Add(a.policy.LockDuration)
			lockUntil = &until
		}
		if err := a.users.RecordFailedLogin(ctx, user.ID, lockUntil); err != nil {
			a.logger.Warn("record failed login", "user_id", user.ID, "error", err)
		}
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if err := a.users.RecordSuccessfulLogin(ctx, user.ID, now); err != nil {
		a.logger.Warn("record login", "user_id", user.ID, "error", err)
	}

	if rehash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = a.users.UpdatePassword(ctx, user.ID, rehash)
	}

	identity := user.identity()
	a.cache.Add(identity.ID, identity)

	return identity, nil
}

func (a *StoredUserAuth) Resolve(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) (*Identity, error) {
	identity, ok := a.cache.Get(claims.UserID)
	if !ok {
		user, err := a.users.GetByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return nil, fmt.Errorf("resolve user: %w", core.ErrTokenInvalid)
			}
			return nil, fmt.Errorf("resolve user: %w", err)
		}
		identity = user.identity()
		a.cache.Add(identity.ID, identity)
	}

	if !identity.IsActive {
		return nil, fmt.Errorf("resolve user: %w", core.ErrForbidden)
	}

	return identity, nil
}

var (
	_ Provider = (*StaticCredentialAuth)(nil)
	_ Provider = (*StoredUserAuth)(nil)
)
