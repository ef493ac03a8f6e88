package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// CookieName is the name of the session cookie.
const CookieName = "jwt"

const sessionTokenKey = "session_token"

// SessionCookie requires the session cookie and stores its raw value in the
// context. Validation is left to the handler.
func SessionCookie() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CookieName)
			if err != nil {
				if errors.Is(err, http.ErrNoCookie) {
					return domain.ErrMissingToken
				}
				return err
			}
			if cookie.Value == "" {
				return domain.ErrMissingToken
			}

			c.Set(sessionTokenKey, cookie.Value)
			return next(c)
		}
	}
}

// SessionToken returns the token stored by SessionCookie, or "".
func SessionToken(c echo.Context) string {
	tok, _ := c.Get(sessionTokenKey).(string)
	return tok
}

// NewSessionCookie builds the cookie carrying a session token.
func NewSessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredSessionCookie tells the browser to drop the session cookie.
func ExpiredSessionCookie() *http.Cookie {
	c := NewSessionCookie("")
	c.MaxAge = -1
	return c
}
