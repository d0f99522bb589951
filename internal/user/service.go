// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shyam-international/exportsite/internal/auth"
	"github.com/shyam-international/exportsite/internal/core"
)

type Service struct {
	repo  Repository
	cache auth.IdentityCache
	now   func() time.Time
}

// NewService wires user management. cache is the identity cache used by
// stored-user auth; entries are evicted whenever an account changes.
func NewService(repo Repository, cache auth.IdentityCache) *Service {
	if cache == nil {
		cache = auth.NoopIdentityCache{}
	}
	return &Service{repo: repo, cache: cache, now: time.Now}
}

func (s *Service) GetByUsername(
	ctx context.Context,
	username string,
) (*auth.UserRecord, error) {
	u, err := s.repo.GetByUsername(ctx, strings.ToLower(username))
	if err != nil {
		return nil, err
	}
	return u.record(), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*auth.UserRecord, error) {
	if !core.ValidID(id) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.record(), nil
}

func (s *Service) RecordFailedLogin(
	ctx context.Context,
	id string,
	lockUntil *time.Time,
) error {
	return s.repo.RecordFailedLogin(ctx, id, lockUntil)
}

func (s *Service) RecordSuccessfulLogin(
	ctx context.Context,
	id string,
	at time.Time,
) error {
	return s.repo.RecordSuccessfulLogin(ctx, id, at)
}

func (s *Service) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

// Create hashes the password and stores an active account. Usernames are
// case-insensitive and stored lowercased.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = auth.RoleAdmin
	}

	u := &User{
		ID:           uuid.New().String(),
		Username:     strings.ToLower(strings.TrimSpace(req.Username)),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("Username already exists")
		}
		return nil, err
	}

	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(
	ctx context.Context,
	page core.Page,
	search, role string,
) ([]User, core.Pagination, error) {
	users, total, err := s.repo.List(ctx, ListParams{
		Offset: page.Offset(),
		Limit:  page.Limit,
		Search: strings.TrimSpace(search),
		Role:   role,
	})
	if err != nil {
		return nil, core.Pagination{}, err
	}
	return users, page.Paginate(total), nil
}

func (s *Service) Activate(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.SetActive(ctx, id, true)
	if err != nil {
		return nil, err
	}
	s.cache.Remove(id)
	return u, nil
}

func (s *Service) Deactivate(ctx context.Context, requesterID, id string) (*User, error) {
	if requesterID == id {
		return nil, core.ForbiddenError("You cannot deactivate your own account")
	}
	u, err := s.repo.SetActive(ctx, id, false)
	if err != nil {
		return nil, err
	}
	s.cache.Remove(id)
	return u, nil
}

func (s *Service) Delete(ctx context.Context, requesterID, id string) (*User, error) {
	if requesterID == id {
		return nil, core.ForbiddenError("You cannot delete your own account")
	}
	u, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Remove(id)
	return u, nil
}

func (s *Service) Counts(ctx context.Context) (*Counts, error) {
	return s.repo.Counts(ctx)
}

var _ auth.UserProvider = (*Service)(nil)
