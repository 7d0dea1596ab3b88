package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/natours/booking-api/internal/api/metrics"
	"github.com/natours/booking-api/internal/core/domain"
	"github.com/natours/booking-api/internal/core/ports"
)

const (
	// TokenCookie is the cookie that carries the session token for browsers.
	TokenCookie = "jwt"

	userKey = "user"
)

// Protect requires a valid token and stores its user on the context. The
// Authorization header wins over the cookie when both are present.
func Protect(auth ports.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := tokenFromRequest(c)
			if token == "" {
				metrics.AccessDeniedTotal.WithLabelValues("unauthenticated").Inc()
				return domain.ErrUnauthenticated
			}

			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				metrics.AccessDeniedTotal.WithLabelValues("unauthenticated").Inc()
				return err
			}

			SetCurrentUser(c, user)
			return next(c)
		}
	}
}

// IsSignedIn attaches the user when the request carries a valid token and
// otherwise continues anonymously. It never fails the request.
func IsSignedIn(auth ports.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := tokenFromRequest(c); token != "" {
				if user, err := auth.Authenticate(c.Request().Context(), token); err == nil {
					SetCurrentUser(c, user)
				}
			}
			return next(c)
		}
	}
}

// SetCurrentUser attaches user to the request context.
func SetCurrentUser(c echo.Context, user *domain.User) {
	c.Set(userKey, user)
}

// CurrentUser returns the user attached by Protect or IsSignedIn.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	u, ok := c.Get(userKey).(*domain.User)
	return u, ok && u != nil
}

func tokenFromRequest(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if t := strings.TrimSpace(parts[1]); t != "" {
				return t
			}
		}
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}
