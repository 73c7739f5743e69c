package model

import "time"

// User represents an account record as stored in the `users` table.
// The struct is internal to the repository and handler layers; it is never
// serialized directly because PasswordHash must not leave the process.
//
// Fields:
//
//	ID           – primary key, generated on insert and immutable.
//	Username     – unique login name, stored lower-cased.
//	Email        – unique email address, stored lower-cased.
//	PasswordHash – base64(salt‖key) produced by the password hasher.
//	FullName     – display name.
//	IsActive     – inactive accounts cannot log in.
//	CreatedAt    – registration time (UTC).
type User struct {
	ID           uint64    `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FullName     string    `db:"full_name"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
}

// UserView is the public representation of a user.
type UserView struct {
	ID          uint64    `json:"id"`
	Username    string    `json:"kullaniciAdi"`
	Email       string    `json:"email"`
	FullName    string    `json:"adSoyad"`
	CreatedAt   time.Time `json:"kayitTarihi"`
	RecipeCount int       `json:"tarifSayisi"`
}

// View flattens u for transport.
func (u User) View(recipeCount int) UserView {
	return UserView{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		CreatedAt:   u.CreatedAt,
		RecipeCount: recipeCount,
	}
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"kullaniciAdi" validate:"required,notblank,trimmin=3,trimmax=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"sifre" validate:"required,min=6,max=100"`
	FullName string `json:"adSoyad" validate:"trimmax=100"`
}

// LoginRequest is the body of POST /auth/login.  Login accepts either the
// username or the email address.
type LoginRequest struct {
	Login    string `json:"kullaniciAdiVeyaEmail" validate:"required,notblank"`
	Password string `json:"sifre" validate:"required"`
}

// ChangePasswordRequest is the body of PUT /auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=100"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token           string    `json:"token"`
	TokenExpiration time.Time `json:"tokenExpiration"`
	User            UserView  `json:"user"`
}
