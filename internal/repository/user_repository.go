package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/recipe-sharing-api/internal/model"
)

// UserRepo is the credential store.  Usernames and emails are trimmed and
// lower-cased on the way in, and the unique indexes on both columns are the
// only uniqueness check: concurrent registrations race on the insert, never
// on a prior SELECT.
type UserRepo struct {
	db  *sqlx.DB
	now clock
}

// NewUserRepo returns a UserRepo over db.
func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// WithClock returns a copy of r that stamps times from now.
func (r *UserRepo) WithClock(now func() time.Time) *UserRepo {
	return &UserRepo{db: r.db, now: now}
}

// NormalizeLogin is the case-folding applied to usernames and emails.
func NormalizeLogin(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Create inserts u as an active user and fills in ID and CreatedAt.
// Duplicate usernames or emails return ErrUsernameTaken or ErrEmailTaken.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Username = NormalizeLogin(u.Username)
	u.Email = NormalizeLogin(u.Email)
	u.FullName = strings.TrimSpace(u.FullName)
	u.IsActive = true
	u.CreatedAt = r.now.now()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, full_name, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.FullName, u.IsActive, u.CreatedAt)
	if err != nil {
		switch {
		case violates(err, "ux_users_username", "users.username"):
			return ErrUsernameTaken
		case violates(err, "ux_users_email", "users.email"):
			return ErrEmailTaken
		case isUniqueViolation(err):
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

const userColumns = "id, username, email, password_hash, full_name, is_active, created_at"

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// GetByLogin fetches a user by username or email.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (model.User, error) {
	login = NormalizeLogin(login)
	var u model.User
	err := r.db.GetContext(ctx, &u,
		"SELECT "+userColumns+" FROM users WHERE username = ? OR email = ? LIMIT 1", login, login)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// UpdatePasswordHash replaces the stored hash.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id uint64, hash string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", hash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive toggles the account's active flag, looked up by username or
// email.  Inactive accounts cannot log in.
func (r *UserRepo) SetActive(ctx context.Context, login string, active bool) error {
	login = NormalizeLogin(login)
	var id uint64
	err := r.db.GetContext(ctx, &id, "SELECT id FROM users WHERE username = ? OR email = ?", login, login)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, "UPDATE users SET is_active = ? WHERE id = ?", active, id)
	return err
}

// CountActiveRecipes returns how many active recipes the user owns.
func (r *UserRepo) CountActiveRecipes(ctx context.Context, id uint64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM recipes WHERE user_id = ? AND is_active = ?", id, true)
	return n, err
}
