// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shyam-international/exportsite/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context, params ListParams) ([]User, int, error)
	SetActive(ctx context.Context, id string, active bool) (*User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	RecordFailedLogin(ctx context.Context, id string, lockUntil *time.Time) error
	RecordSuccessfulLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) (*User, error)
	Counts(ctx context.Context) (*Counts, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `id, username, password_hash, role, is_active, last_login,
	login_attempts, lock_until, created_at, updated_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, username, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, user, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Role,
		user.IsActive,
	)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, core.NotFoundOr("get user", err)
	}

	return &user, nil
}

func (r *repository) GetByUsername(
	ctx context.Context,
	username string,
) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	var user User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		return nil, core.NotFoundOr("get user by username", err)
	}

	return &user, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]User, int, error) {
	var (
		conditions []string
		args       []any
	)

	if params.Search != "" {
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("username ILIKE $%d", len(args)))
	}
	if params.Role != "" {
		args = append(args, params.Role)
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM users"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)+1, len(args)+2)

	users := []User{}
	if err := r.db.SelectContext(ctx, &users, query,
		append(args, params.Limit, params.Offset)...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

// SetActive also clears any lockout when activating.
func (r *repository) SetActive(
	ctx context.Context,
	id string,
	active bool,
) (*User, error) {
	query := `
		UPDATE users
		SET is_active = $2,
		    login_attempts = CASE WHEN $2 THEN 0 ELSE login_attempts END,
		    lock_until = CASE WHEN $2 THEN NULL ELSE lock_until END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	var user User
	if err := r.db.GetContext(ctx, &user, query, id, active); err != nil {
		return nil, core.NotFoundOr("set user active", err)
	}

	return &user, nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	return r.exec(ctx, "update password", query, id, passwordHash)
}

func (r *repository) RecordFailedLogin(
	ctx context.Context,
	id string,
	lockUntil *time.Time,
) error {
	query := `
		UPDATE users
		SET login_attempts = CASE WHEN $2::timestamptz IS NULL THEN login_attempts + 1 ELSE 0 END,
		    lock_until = $2,
		    updated_at = NOW()
		WHERE id = $1`

	return r.exec(ctx, "record failed login", query, id, lockUntil)
}

func (r *repository) RecordSuccessfulLogin(
	ctx context.Context,
	id string,
	at time.Time,
) error {
	query := `
		UPDATE users
		SET login_attempts = 0, lock_until = NULL, last_login = $2, updated_at = NOW()
		WHERE id = $1`

	return r.exec(ctx, "record login", query, id, at)
}

func (r *repository) Delete(ctx context.Context, id string) (*User, error) {
	query := `DELETE FROM users WHERE id = $1 RETURNING ` + userColumns

	var user User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, core.NotFoundOr("delete user", err)
	}

	return &user, nil
}

func (r *repository) Counts(ctx context.Context) (*Counts, error) {
	query := `
		SELECT role, COUNT(*) AS total, COUNT(*) FILTER (WHERE is_active) AS active
		FROM users
		GROUP BY role`

	var rows []struct {
		Role   string `db:"role"`
		Total  int    `db:"total"`
		Active int    `db:"active"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	c := &Counts{ByRole: make(map[string]int, len(rows))}
	for _, row := range rows {
		c.Total += row.Total
		c.Active += row.Active
		c.ByRole[row.Role] = row.Total
	}

	return c, nil
}

func (r *repository) exec(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}
