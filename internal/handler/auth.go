package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/recipe-sharing-api/internal/auth"
	"github.com/iliyamo/recipe-sharing-api/internal/model"
	"github.com/iliyamo/recipe-sharing-api/internal/queue"
	"github.com/iliyamo/recipe-sharing-api/internal/repository"
	"github.com/iliyamo/recipe-sharing-api/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Users  *repository.UserRepo
	Hasher *auth.PasswordHasher
	Tokens *auth.TokenService
	Log    zerolog.Logger

	events emitter
	// decoy is verified against when the login name is unknown, so both
	// failure paths spend the same KDF work.
	decoy string
}

func NewAuthHandler(u *repository.UserRepo, h *auth.PasswordHasher, t *auth.TokenService, pub service.Publisher, log zerolog.Logger) (*AuthHandler, error) {
	decoy, err := h.Hash("decoy-password-never-matches")
	if err != nil {
		return nil, err
	}
	return &AuthHandler{
		Users:  u,
		Hasher: h,
		Tokens: t,
		Log:    log,
		events: emitter{pub: pub, log: log},
		decoy:  decoy,
	}, nil
}

// Register creates an account and returns a token for it.
func (h *AuthHandler) Register(c echo.Context) error {
	var req model.RegisterRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, err)
	}

	hash, err := h.Hasher.Hash(req.Password)
	if err != nil {
		return fail(c, h.Log, err)
	}
	u := model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.Create(ctx, &u); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameTaken):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "conflict", "message": "username already taken"})
		case errors.Is(err, repository.ErrEmailTaken):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "conflict", "message": "email already registered"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "conflict"})
		}
		return fail(c, h.Log, err)
	}

	resp, err := h.respond(u, 0)
	if err != nil {
		return fail(c, h.Log, err)
	}
	h.events.emit(c.Request().Context(), queue.ActivityEvent{
		Type:     queue.UserRegistered,
		UserID:   u.ID,
		Username: u.Username,
	})
	return c.JSON(http.StatusOK, resp)
}

// Login accepts a username or email plus password.
func (h *AuthHandler) Login(c echo.Context) error {
	var req model.LoginRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByLogin(ctx, req.Login)
	if errors.Is(err, repository.ErrNotFound) {
		h.Hasher.Verify(req.Password, h.decoy)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err != nil {
		return fail(c, h.Log, err)
	}
	if !h.Hasher.Verify(req.Password, u.PasswordHash) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account inactive"})
	}

	n, err := h.Users.CountActiveRecipes(ctx, u.ID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	resp, err := h.respond(u, n)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// ChangePassword replaces the caller's password after checking the current one.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	var req model.ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id.ID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if !h.Hasher.Verify(req.CurrentPassword, u.PasswordHash) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "current password is incorrect"})
	}
	hash, err := h.Hasher.Hash(req.NewPassword)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if err := h.Users.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id.ID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	n, err := h.Users.CountActiveRecipes(ctx, u.ID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, u.View(n))
}

func (h *AuthHandler) respond(u model.User, recipes int) (model.AuthResponse, error) {
	tok, err := h.Tokens.Issue(auth.Identity{ID: u.ID, Username: u.Username, Email: u.Email})
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{
		Token:           tok.Value,
		TokenExpiration: tok.ExpiresAt,
		User:            u.View(recipes),
	}, nil
}
