package handlers

import (
	"encoding/xml"
	"net/http"

	"lead_sites_go/services/i18n"

	"github.com/labstack/echo/v4"
)

type SitemapLink struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

type SitemapURL struct {
	Loc        string        `xml:"loc"`
	ChangeFreq string        `xml:"changefreq,omitempty"`
	Priority   float32       `xml:"priority,omitempty"`
	Links      []SitemapLink `xml:"xhtml:link"`
}

type SitemapURLSet struct {
	XMLName    string       `xml:"urlset"`
	Xmlns      string       `xml:"xmlns,attr"`
	XmlnsXHTML string       `xml:"xmlns:xhtml,attr"`
	URLs       []SitemapURL `xml:"url"`
}

// GetSitemapHandler lists every page of both sites with its language variants
func GetSitemapHandler(c echo.Context) error {
	baseURL := getEnv(c).Config.AppURL

	var urls []SitemapURL
	for _, site := range Sites {
		for i, page := range site.Pages {
			loc := baseURL + page.Path
			entry := SitemapURL{Loc: loc, ChangeFreq: "monthly", Priority: 0.8}
			if i == 0 {
				entry.ChangeFreq = "weekly"
				entry.Priority = 1.0
			}
			for _, lang := range i18n.Languages() {
				entry.Links = append(entry.Links, SitemapLink{
					Rel:      "alternate",
					Hreflang: lang.String(),
					Href:     loc + "?lang=" + lang.String(),
				})
			}
			urls = append(urls, entry)
		}
	}

	urlSet := SitemapURLSet{
		Xmlns:      "http://www.sitemaps.org/schemas/sitemap/0.9",
		XmlnsXHTML: "http://www.w3.org/1999/xhtml",
		URLs:       urls,
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationXML)
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}

	encoder := xml.NewEncoder(c.Response().Writer)
	encoder.Indent("", "  ")
	return encoder.Encode(urlSet)
}
