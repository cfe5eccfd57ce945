package handler

import (
	"context"  // provides context with cancellation for DB calls
	"errors"   // matching service sentinels
	"net/http" // HTTP status codes and primitives
	"time"     // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/altera-oes/backend/internal/logging" // structured logging
	"github.com/altera-oes/backend/internal/model"   // user record
	"github.com/altera-oes/backend/internal/service" // registration and login flow
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth *service.AuthService
	Log  logging.Logger
}

func NewAuthHandler(a *service.AuthService, log logging.Logger) *AuthHandler {
	return &AuthHandler{Auth: a, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
type tokenResp struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *userPart `json:"user,omitempty"`
}

func publicUser(u model.User) *userPart {
	return &userPart{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

// Register: create user and return a token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Auth.Register(ctx, req.Name, req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrDuplicateEmail):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		// hashing and store faults are answered with 400 like rejected input
		h.Log.Error(ctx, "register failed", "err", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not register user"})
	}

	return c.JSON(http.StatusCreated, tokenResp{
		Token:     res.Token.Token,
		ExpiresAt: res.Token.Exp,
		User:      publicUser(res.User),
	})
}

// Authenticate: verify credentials and return a new token.
func (h *AuthHandler) Authenticate(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tok, err := h.Auth.Login(ctx, req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrInvalidPassword):
		// same answer for both so the endpoint does not reveal which emails exist
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email or password"})
	default:
		h.Log.Error(ctx, "login failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "authentication failed"})
	}

	return c.JSON(http.StatusOK, tokenResp{Token: tok.Token, ExpiresAt: tok.Exp})
}
