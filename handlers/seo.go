package handlers

import (
	"context"

	"lead_sites_go/config"
	"lead_sites_go/models"
	"lead_sites_go/services/i18n"
)

// pageSEO builds the metadata for a page in the visitor's language.
func pageSEO(ctx context.Context, cfg *config.Config, site Site, page PageDef) *models.SEO {
	lang := i18n.Parse(i18n.GetLocale(ctx))

	return models.DefaultSEO(i18n.T(ctx, page.TitleKey), i18n.T(ctx, site.Key+".seo.description")).
		WithCanonical(cfg.AppURL + page.Path).
		WithOGImage(cfg.AppURL + "/static/images/" + site.Key + "-og.jpg").
		WithLocale(lang.String(), lang.Toggle().String())
}
