package pages

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"lead_sites_go/models"
	"lead_sites_go/services/i18n"
	"lead_sites_go/services/reveal"
	"lead_sites_go/templates/partials"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	require.NoError(t, i18n.Load())
	var sb strings.Builder
	ctx := i18n.WithLocale(context.Background(), i18n.Secondary)
	require.NoError(t, c.Render(ctx, &sb))
	return sb.String()
}

func aisajtHome() PageData {
	applier := reveal.NewClassApplier()
	applier.Reveal("hero", true)
	applier.Offset("aisajt-hero-bg", 12)

	return PageData{
		Site: "aisajt",
		Page: "home",
		Path: "/aisajt",
		SEO:  models.DefaultSEO("AiSajt", "Sites").WithCanonical("https://example.com/aisajt"),
		Nav: []NavLink{
			{Href: "/aisajt", LabelKey: "aisajt.nav.home", Active: true},
			{Href: "/aisajt/about", LabelKey: "aisajt.nav.about"},
		},
		Reveal: applier,
		Forms: map[string]partials.FormView{
			"aisajt-hero": {Key: "aisajt-hero", Location: "hero", Fields: []string{"name"}},
		},
	}
}

func TestLayoutWrapsPage(t *testing.T) {
	html := render(t, AiSajtHome(aisajtHome()))

	assert.True(t, strings.HasPrefix(html, `<!DOCTYPE html><html lang="en"><head>`))
	assert.True(t, strings.HasSuffix(html, `</body></html>`))
	assert.Contains(t, html, `<title>AiSajt</title>`)
	assert.Contains(t, html, `<link rel="canonical" href="https://example.com/aisajt">`)
	assert.Contains(t, html, `<link rel="alternate" hreflang="x-default" href="https://example.com/aisajt">`)
	assert.Contains(t, html, `<body class="site-aisajt"`)
	assert.Contains(t, html, `<a href="/aisajt" class="active" aria-current="page">`)
	assert.Contains(t, html, `<a href="/aisajt/about">`)
	assert.Contains(t, html, `action="/aisajt/lang/toggle"`)
	assert.NotContains(t, html, "challenges.cloudflare.com")

	main := strings.Index(html, `<main id="top">`)
	form := strings.Index(html, `id="lead-aisajt-hero"`)
	end := strings.Index(html, `</main>`)
	assert.True(t, main < form && form < end, "lead form renders inside main")
}

func TestSectionsCarryRevealState(t *testing.T) {
	html := render(t, AiSajtHome(aisajtHome()))

	assert.Contains(t, html, `<section id="hero" class="hero reveal revealed" data-reveal="hero">`)
	assert.Contains(t, html, `<section id="services" class="services reveal" data-reveal="services">`)
	assert.Contains(t, html, `data-parallax="aisajt-hero-bg" data-parallax-speed="0.3" data-parallax-max="120" style="--parallax-y: 12.0px"`)
	assert.Contains(t, html, `<span class="card-index">01</span>`)
}

func TestPageWithoutFormRendersNone(t *testing.T) {
	d := aisajtHome()
	d.Site, d.Page = "kralj", "apartments"
	d.Forms = nil

	html := render(t, KraljApartments(d))

	assert.Contains(t, html, `<table class="apartment-table">`)
	assert.Contains(t, html, `<th scope="row">`)
	assert.NotContains(t, html, "lead-form")
}

func TestKraljStats(t *testing.T) {
	d := aisajtHome()
	d.Site = "kralj"

	html := render(t, KraljHome(d))

	for _, s := range kraljStats {
		assert.Contains(t, html, `<strong data-count="`+strconv.Itoa(s.Value)+`">`+strconv.Itoa(s.Value)+`</strong>`)
	}
}
