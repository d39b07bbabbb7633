package models

import "strings"

// SEO contains metadata for search engine optimization and social sharing
type SEO struct {
	Title       string   // Page title
	Description string   // Meta description (150-160 chars recommended)
	Canonical   string   // Canonical URL
	OGTitle     string   // Open Graph title (defaults to Title if empty)
	OGDesc      string   // Open Graph description (defaults to Description if empty)
	OGImage     string   // Open Graph image URL
	OGType      string   // Open Graph type (website, article, etc.)
	TwitterCard string   // Twitter card type (summary, summary_large_image)
	NoIndex     bool     // If true, adds noindex directive
	Locale      string   // Current locale (e.g., "sr", "en")
	AltLocales  []string // Alternative locales for hreflang
}

// Alternate is one hreflang link.
type Alternate struct {
	Lang string
	URL  string
}

// DefaultSEO returns SEO with sensible defaults
func DefaultSEO(title, description string) *SEO {
	return &SEO{
		Title:       title,
		Description: description,
		OGType:      "website",
		TwitterCard: "summary_large_image",
		Locale:      "sr",
		AltLocales:  []string{"en"},
	}
}

// WithCanonical sets the canonical URL
func (s *SEO) WithCanonical(url string) *SEO {
	s.Canonical = url
	return s
}

// WithOGImage sets the Open Graph image
func (s *SEO) WithOGImage(imageURL string) *SEO {
	s.OGImage = imageURL
	return s
}

// WithLocale sets the current locale and alternative locales
func (s *SEO) WithLocale(locale string, altLocales ...string) *SEO {
	s.Locale = locale
	s.AltLocales = altLocales
	return s
}

// WithNoIndex sets the noindex directive
func (s *SEO) WithNoIndex() *SEO {
	s.NoIndex = true
	return s
}

// GetOGTitle returns OGTitle or falls back to Title
func (s *SEO) GetOGTitle() string {
	if s.OGTitle != "" {
		return s.OGTitle
	}
	return s.Title
}

// GetOGDesc returns OGDesc or falls back to Description
func (s *SEO) GetOGDesc() string {
	if s.OGDesc != "" {
		return s.OGDesc
	}
	return s.Description
}

// Alternates lists the hreflang links for every locale, the language being
// selected with the ?lang= query parameter. x-default points at the bare URL.
func (s *SEO) Alternates() []Alternate {
	if s.Canonical == "" {
		return nil
	}
	sep := "?"
	if strings.Contains(s.Canonical, "?") {
		sep = "&"
	}

	locales := append([]string{s.Locale}, s.AltLocales...)
	alts := make([]Alternate, 0, len(locales)+1)
	for _, l := range locales {
		if l == "" {
			continue
		}
		alts = append(alts, Alternate{Lang: l, URL: s.Canonical + sep + "lang=" + l})
	}
	return append(alts, Alternate{Lang: "x-default", URL: s.Canonical})
}
