package handlers

import (
	"net/http"
	"testing"

	"lead_sites_go/middleware"
	"lead_sites_go/services/i18n"
	"lead_sites_go/services/reveal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageHandler(t *testing.T) {
	env := newTestEnv(t, &stubClient{result: delivered})
	site, ok := SiteByKey("aisajt")
	require.True(t, ok)

	_, c, rec := setupEcho(http.MethodGet, "/aisajt", nil)
	c.Set(envKey, env)
	c.Set(middleware.ContextKeySessionID, "s1")
	middleware.SetLocale(c, i18n.Secondary)

	require.NoError(t, PageHandler(site, site.Pages[0])(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `<html lang="en">`)
	assert.Contains(t, body, "<title>AiSajt | AI-built websites</title>")
	assert.Contains(t, body, `id="lead-aisajt-hero"`)
	assert.Contains(t, body, `hreflang="sr"`)
	assert.Contains(t, body, `id="hero" class="hero reveal revealed"`)
	assert.Contains(t, body, `id="process" class="process reveal"`)

	inst, err := env.Forms.Get("s1", "aisajt-hero")
	require.NoError(t, err)
	assert.Equal(t, "/aisajt", inst.Nav.CurrentPath())
}

func TestKraljApartmentsPage(t *testing.T) {
	env := newTestEnv(t, &stubClient{result: delivered})
	site, _ := SiteByKey("kralj")

	_, c, rec := setupEcho(http.MethodGet, "/kralj/apartments", nil)
	c.Set(envKey, env)
	c.Set(middleware.ContextKeySessionID, "s1")
	middleware.SetLocale(c, i18n.Primary)

	require.NoError(t, PageHandler(site, site.Pages[1])(c))
	body := rec.Body.String()
	assert.Contains(t, body, `id="lead-kralj-inquiry"`)
	assert.Contains(t, body, "<textarea")
	assert.Contains(t, body, `aria-current="page"`)
}

func TestPrerevealSections(t *testing.T) {
	applier := prerevealSections("kralj/home", reveal.Viewport{Width: 1280, Height: 1200})

	assert.Equal(t, "reveal revealed", applier.Class("hero"))
	assert.Equal(t, "reveal revealed", applier.Class("stats"))
	// location starts at 1020, 130px visible above the margin: 31%
	assert.Equal(t, "reveal revealed", applier.Class("location"))
	assert.Equal(t, "reveal", applier.Class("contact"))

	empty := prerevealSections("missing/page", defaultViewport)
	assert.Equal(t, "reveal", empty.Class("hero"))
}

func TestViewportFromHints(t *testing.T) {
	_, c, _ := setupEcho(http.MethodGet, "/", nil)
	assert.Equal(t, defaultViewport, viewportFromHints(c))

	c.Request().Header.Set("Sec-CH-Viewport-Width", "390")
	c.Request().Header.Set("Sec-CH-Viewport-Height", "844")
	assert.Equal(t, reveal.Viewport{Width: 390, Height: 844}, viewportFromHints(c))
}

func TestSiteRootHandler(t *testing.T) {
	_, c, rec := setupEcho(http.MethodGet, "/", nil)
	require.NoError(t, SiteRootHandler(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/aisajt", rec.Header().Get("Location"))
}
