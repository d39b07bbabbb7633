package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"lead_sites_go/middleware"
	"lead_sites_go/services/i18n"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toggleRequest(env *Env, site string, cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	_, c, rec := setupEcho(http.MethodPost, "/"+site+"/lang/toggle", nil)
	for _, cookie := range cookies {
		c.Request().AddCookie(cookie)
	}
	c.SetParamNames("site")
	c.SetParamValues(site)
	c.Set(envKey, env)
	c.Set(middleware.ContextKeySessionID, "visitor")
	return c, rec
}

func TestLanguageToggleMemoryStore(t *testing.T) {
	env := newTestEnv(t, &stubClient{result: delivered})
	before := i18n.Translate(i18n.Primary.String(), "kralj.hero.title")

	c, rec := toggleRequest(env, "kralj")
	c.Request().Header.Set("HX-Request", "true")
	require.NoError(t, LanguageToggleHandler(c))
	assert.Equal(t, "true", rec.Header().Get("HX-Refresh"))
	assert.Equal(t, "en", middleware.GetLocale(c))

	c, _ = toggleRequest(env, "kralj")
	require.NoError(t, LanguageToggleHandler(c))
	assert.Equal(t, "sr", middleware.GetLocale(c))

	// A→B→A leaves the stored preference and the strings as they were
	lang, ok := env.Preferences["kralj"](c).Get("visitor")
	require.True(t, ok)
	assert.Equal(t, i18n.Primary, lang)
	assert.Equal(t, before, i18n.T(c.Request().Context(), "kralj.hero.title"))
}

func TestLanguageToggleCookieStore(t *testing.T) {
	env := newTestEnv(t, &stubClient{result: delivered})

	c, rec := toggleRequest(env, "aisajt")
	c.Request().Header.Set("Referer", "http://example.com/aisajt/contact")
	c.Request().Host = "example.com"
	require.NoError(t, LanguageToggleHandler(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/aisajt/contact", rec.Header().Get(echo.HeaderLocation))

	first := cookieNamed(rec, "lang")
	require.NotNil(t, first)
	assert.Equal(t, "en", first.Value)

	c, rec = toggleRequest(env, "aisajt", &http.Cookie{Name: "lang", Value: first.Value})
	require.NoError(t, LanguageToggleHandler(c))
	second := cookieNamed(rec, "lang")
	require.NotNil(t, second)
	assert.Equal(t, "sr", second.Value)
	assert.Equal(t, "/aisajt", rec.Header().Get(echo.HeaderLocation))
}

func TestLanguageToggleUnknownSite(t *testing.T) {
	env := newTestEnv(t, &stubClient{result: delivered})
	c, _ := toggleRequest(env, "nope")
	err := LanguageToggleHandler(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}
