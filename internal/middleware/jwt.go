package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notebook-api/internal/auth"
)

// TokenVerifier resolves a raw token to a user id. *auth.TokenService
// satisfies it.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

const msgInvalidToken = "Please authenticate using a valid token"

// RequireToken returns an Echo middleware that reads the token from the
// given header, verifies it and stores the resolved user id in the request
// context. Protected routes read it back with UserID.
//
// A missing, malformed or expired token is answered with 401 and the
// wrapped handler is never invoked. Any other verification failure is a
// server fault and answered with 500.
func RequireToken(header string, tokens TokenVerifier, log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(c.Request().Header.Get(header))
			// tolerate clients that send the token as a bearer credential
			raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgInvalidToken})
			}

			userID, err := tokens.Verify(raw)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgInvalidToken})
				}
				log.ErrorContext(c.Request().Context(), "token verification fault", "error", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
			}

			req := c.Request()
			c.SetRequest(req.WithContext(WithUserID(req.Context(), userID)))
			return next(c)
		}
	}
}
