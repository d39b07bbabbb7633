package handlers

import (
	"net/http"

	"lead_sites_go/config"
	"lead_sites_go/middleware"
	"lead_sites_go/services/i18n"
	"lead_sites_go/services/leads"
	"lead_sites_go/services/turnstile"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const envKey = "env"

// Env carries the services handlers use. Inject puts it on every request,
// next to the config.
type Env struct {
	Config  *config.Config
	Forms   *leads.Registry
	Captcha *turnstile.Verifier
	// Preferences selects each site's language store
	Preferences map[string]middleware.PreferenceSource
	Logger      *zap.Logger
}

// Inject makes env and its config available to handlers.
func Inject(env *Env) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(envKey, env)
			c.Set("config", env.Config)
			return next(c)
		}
	}
}

func getEnv(c echo.Context) *Env {
	env, ok := c.Get(envKey).(*Env)
	if !ok {
		// handlers are always mounted behind Inject
		panic("handlers: env missing from context")
	}
	return env
}

// PreferenceSource routes a request to the language store of the site it
// belongs to: the :site param, the site of the :form param, or the first
// path segment.
func (env *Env) PreferenceSource() middleware.PreferenceSource {
	return func(c echo.Context) i18n.PreferenceStore {
		if src, ok := env.Preferences[env.siteOf(c)]; ok {
			return src(c)
		}
		return middleware.CookiePreferences(env.Config)(c)
	}
}

func (env *Env) siteOf(c echo.Context) string {
	if site := c.Param("site"); site != "" {
		return site
	}
	if key := c.Param("form"); key != "" && env.Forms != nil {
		if cfg, ok := env.Forms.Catalog().Form(key); ok {
			return cfg.Site
		}
	}
	return firstSegment(c.Request().URL.Path)
}

func (env *Env) logger() *zap.Logger {
	if env.Logger == nil {
		return zap.NewNop()
	}
	return env.Logger
}

func render(c echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return component.Render(c.Request().Context(), c.Response().Writer)
}

func renderOK(c echo.Context, component templ.Component) error {
	return render(c, http.StatusOK, component)
}
