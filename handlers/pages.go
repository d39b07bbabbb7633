package handlers

import (
	"net/http"
	"strconv"

	"lead_sites_go/middleware"
	"lead_sites_go/services/reveal"
	"lead_sites_go/templates/pages"
	"lead_sites_go/templates/partials"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var defaultViewport = reveal.Viewport{Width: 1280, Height: 800}

// PageHandler renders one page of a site with the visitor's forms in their
// current state.
func PageHandler(site Site, page PageDef) echo.HandlerFunc {
	return func(c echo.Context) error {
		env := getEnv(c)
		sessionID := middleware.GetSessionID(c)

		forms := make(map[string]partials.FormView, len(page.Forms))
		for _, key := range page.Forms {
			inst, err := env.Forms.Get(sessionID, key)
			if err != nil {
				env.logger().Error("page form missing", zap.String("form", key), zap.Error(err))
				return echo.NewHTTPError(http.StatusInternalServerError, "form not configured")
			}
			inst.Nav.SetPath(c.Request().URL.Path)
			// a full page load supersedes any pending post-success move
			inst.Nav.Take()
			forms[key] = partials.NewFormView(inst.Form, env.Config.TurnstileSiteKey)
		}

		data := pages.PageData{
			Site:             site.Key,
			Page:             page.Name,
			Path:             page.Path,
			SEO:              pageSEO(c.Request().Context(), env.Config, site, page),
			Nav:              site.nav(page.Name),
			Reveal:           prerevealSections(site.Key+"/"+page.Name, viewportFromHints(c)),
			Forms:            forms,
			TurnstileSiteKey: env.Config.TurnstileSiteKey,
		}
		return renderOK(c, page.Render(data))
	}
}

// prerevealSections runs the reveal tracker once over the page outline so
// sections already in view on first paint render revealed and do not wait
// for reveal.js.
func prerevealSections(outlineKey string, vp reveal.Viewport) *reveal.ClassApplier {
	applier := reveal.NewClassApplier()
	outline, ok := pages.Outlines[outlineKey]
	if !ok {
		return applier
	}

	tracker := reveal.NewTracker(reveal.DefaultOptions(), applier)
	defer tracker.Close()

	top := 0.0
	for _, s := range outline.Sections {
		tracker.Register(s.ID, reveal.Rect{Top: top, Width: vp.Width, Height: s.Height})
		top += s.Height
	}
	for _, p := range outline.Parallax {
		tracker.RegisterParallax(p.ID, p.Speed, p.Max)
	}
	tracker.Update(vp)
	return applier
}

// viewportFromHints reads the viewport client hints when the browser sends
// them, falling back to a desktop viewport.
func viewportFromHints(c echo.Context) reveal.Viewport {
	vp := defaultViewport
	h := c.Request().Header
	if w, err := strconv.ParseFloat(h.Get("Sec-CH-Viewport-Width"), 64); err == nil && w > 0 {
		vp.Width = w
	}
	if ht, err := strconv.ParseFloat(h.Get("Sec-CH-Viewport-Height"), 64); err == nil && ht > 0 {
		vp.Height = ht
	}
	return vp
}

// SiteRootHandler sends "/" to the first site.
func SiteRootHandler(c echo.Context) error {
	return c.Redirect(http.StatusFound, Sites[0].Pages[0].Path)
}
