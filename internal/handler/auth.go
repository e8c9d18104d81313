package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notebook-api/internal/middleware"
	"github.com/iliyamo/notebook-api/internal/model"
	"github.com/iliyamo/notebook-api/internal/service"
)

// Accounts is the account use case surface; *service.AccountService
// satisfies it.
type Accounts interface {
	Register(ctx context.Context, in service.RegisterInput) (string, error)
	Login(ctx context.Context, in service.LoginInput) (string, error)
	CurrentUser(ctx context.Context, userID string) (model.User, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	accounts Accounts
	log      *slog.Logger
}

// NewAuthHandler returns a handler backed by accounts.
func NewAuthHandler(accounts Accounts, log *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, log: log}
}

type tokenResp struct {
	Success   bool   `json:"success"`
	AuthToken string `json:"authToken"`
}

// Register: create user and return a token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	token, err := h.accounts.Register(ctx, req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, tokenResp{Success: true, AuthToken: token})
}

// Login: verify credentials and return a fresh token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req service.LoginInput
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	token, err := h.accounts.Login(ctx, req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, tokenResp{Success: true, AuthToken: token})
}

// Me returns the authenticated user. Must sit behind RequireToken.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, _ := middleware.UserID(c.Request().Context())

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.accounts.CurrentUser(ctx, uid)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, u)
}
