package middleware

import (
	"context"
	"net/http"

	"lead_sites_go/config"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const csrfContextKey contextKey = "csrf_token"

// CSRF protects the lead endpoints. htmx sends the token in the
// X-CSRF-Token header set on <body hx-headers>.
func CSRF(cfg *config.Config) echo.MiddlewareFunc {
	csrf := echomw.CSRFWithConfig(echomw.CSRFConfig{
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   cfg != nil && cfg.IsProduction(),
		CookieSameSite: http.SameSiteLaxMode,
	})
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return csrf(func(c echo.Context) error {
			// expose the token to templ components
			ctx := context.WithValue(c.Request().Context(), csrfContextKey, GetCSRFToken(c))
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		})
	}
}

// GetCSRFToken retrieves the CSRF token from the Echo context
// This token should be included in forms and AJAX requests
func GetCSRFToken(c echo.Context) string {
	if tokenStr, ok := c.Get("csrf").(string); ok {
		return tokenStr
	}
	return ""
}

// CSRFToken returns the token stored in a request context.
func CSRFToken(ctx context.Context) string {
	if val, ok := ctx.Value(csrfContextKey).(string); ok {
		return val
	}
	return ""
}
