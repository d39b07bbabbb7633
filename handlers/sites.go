package handlers

import (
	"strings"

	"lead_sites_go/templates/pages"

	"github.com/a-h/templ"
)

// PageDef is one routable page of a site.
type PageDef struct {
	Name     string
	Path     string
	TitleKey string
	NavKey   string
	// Forms are the lead form keys the page embeds
	Forms  []string
	Render func(pages.PageData) templ.Component
}

type Site struct {
	Key   string
	Pages []PageDef
	// Anchors are in-page nav entries on the home page
	Anchors []pages.NavLink
}

var Sites = []Site{
	{
		Key: "aisajt",
		Pages: []PageDef{
			{Name: "home", Path: "/aisajt", TitleKey: "aisajt.seo.home", NavKey: "aisajt.nav.home", Forms: []string{"aisajt-hero"}, Render: pages.AiSajtHome},
			{Name: "about", Path: "/aisajt/about", TitleKey: "aisajt.seo.about", NavKey: "aisajt.nav.about", Render: pages.AiSajtAbout},
			{Name: "contact", Path: "/aisajt/contact", TitleKey: "aisajt.seo.contact", NavKey: "aisajt.nav.contact", Forms: []string{"aisajt-contact"}, Render: pages.AiSajtContact},
		},
		Anchors: []pages.NavLink{
			{Href: "/aisajt#services", LabelKey: "aisajt.nav.services"},
		},
	},
	{
		Key: "kralj",
		Pages: []PageDef{
			{Name: "home", Path: "/kralj", TitleKey: "kralj.seo.home", NavKey: "kralj.nav.home", Forms: []string{"kralj-contact"}, Render: pages.KraljHome},
			{Name: "apartments", Path: "/kralj/apartments", TitleKey: "kralj.seo.apartments", NavKey: "kralj.nav.apartments", Forms: []string{"kralj-inquiry"}, Render: pages.KraljApartments},
		},
		Anchors: []pages.NavLink{
			{Href: "/kralj#location", LabelKey: "kralj.nav.location"},
			{Href: "/kralj#contact", LabelKey: "kralj.nav.contact"},
		},
	},
}

// SiteByKey finds a site definition.
func SiteByKey(key string) (Site, bool) {
	for _, s := range Sites {
		if s.Key == key {
			return s, true
		}
	}
	return Site{}, false
}

// nav builds the header links with the current page marked.
func (s Site) nav(current string) []pages.NavLink {
	links := make([]pages.NavLink, 0, len(s.Pages)+len(s.Anchors))
	for _, p := range s.Pages {
		links = append(links, pages.NavLink{Href: p.Path, LabelKey: p.NavKey, Active: p.Name == current})
	}
	return append(links, s.Anchors...)
}

func firstSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}
