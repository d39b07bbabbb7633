package middleware

import (
	"net/http"

	"lead_sites_go/config"
	"lead_sites_go/services/analytics"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	sessionCookie       = "sid"
	ContextKeySessionID = "session_id"
)

// Session gives every visitor a random id in a session cookie. Form state
// and in-memory language preferences are keyed by it, and it doubles as the
// analytics client id.
func Session(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if cookie, err := c.Cookie(sessionCookie); err == nil {
				if parsed, err := uuid.Parse(cookie.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     sessionCookie,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					Secure:   cfg != nil && cfg.IsProduction(),
				})
			}

			c.Set(ContextKeySessionID, id)
			ctx := analytics.WithClientID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetSessionID returns the visitor's session id, or "" outside Session.
func GetSessionID(c echo.Context) string {
	if id, ok := c.Get(ContextKeySessionID).(string); ok {
		return id
	}
	return ""
}
