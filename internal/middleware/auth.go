package middleware

import (
	"net/http"

	"shpfusion-api/internal/auth"

	"github.com/labstack/echo/v4"
)

const (
	// TokenCookie is the httpOnly session cookie set on login.
	TokenCookie = "token"
	// UserIDKey is where the guard stores the authenticated user id.
	UserIDKey = "user_id"
)

// RequireAuth rejects requests without a valid session cookie.
func RequireAuth(tokenSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(TokenCookie)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token missing or invalid")
			}

			claims, err := auth.ParseToken(tokenSecret, cookie.Value)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token missing or invalid")
			}

			c.Set(UserIDKey, claims.ID)
			return next(c)
		}
	}
}
