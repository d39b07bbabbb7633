package handlers

import (
	"net/http"
	"net/url"

	"lead_sites_go/middleware"
	"lead_sites_go/services/i18n"

	"github.com/labstack/echo/v4"
)

// LanguageToggleHandler flips the visitor's language for a site and reloads
// the page in the new language.
func LanguageToggleHandler(c echo.Context) error {
	env := getEnv(c)
	site := c.Param("site")
	if _, ok := SiteByKey(site); !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Site not found")
	}

	lang := i18n.TogglePreference(env.PreferenceSource()(c), middleware.GetSessionID(c), i18n.Parse(middleware.GetLocale(c)))
	middleware.SetLocale(c, lang)

	if middleware.IsHTMX(c) {
		c.Response().Header().Set("HX-Refresh", "true")
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, backTo(c, "/"+site))
}

// backTo returns the same-origin path of the Referer, or fallback.
func backTo(c echo.Context, fallback string) string {
	ref, err := url.Parse(c.Request().Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != c.Request().Host) {
		return fallback
	}
	return ref.Path
}
