// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/shyam-international/exportsite/internal/auth"
)

type User struct {
	ID            string     `db:"id"`
	Username      string     `db:"username"`
	PasswordHash  string     `db:"password_hash"`
	Role          string     `db:"role"`
	IsActive      bool       `db:"is_active"`
	LastLogin     *time.Time `db:"last_login"`
	LoginAttempts int        `db:"login_attempts"`
	LockUntil     *time.Time `db:"lock_until"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

func (u *User) record() *auth.UserRecord {
	return &auth.UserRecord{
		ID:            u.ID,
		Username:      u.Username,
		PasswordHash:  u.PasswordHash,
		Role:          u.Role,
		IsActive:      u.IsActive,
		LoginAttempts: u.LoginAttempts,
		LockUntil:     u.LockUntil,
	}
}

type ListParams struct {
	Offset int
	Limit  int
	Search string
	Role   string
}

type Counts struct {
	Total  int            `json:"total"`
	Active int            `json:"active"`
	ByRole map[string]int `json:"byRole"`
}
