package middleware

import (
	"net/http"
	"time"

	"lead_sites_go/config"
	"lead_sites_go/services/i18n"

	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"
)

const langCookie = "lang"

var matcher = language.NewMatcher([]language.Tag{
	language.Make(i18n.Primary.String()),
	language.Make(i18n.Secondary.String()),
})

// PreferenceSource returns the language store a request reads and writes.
type PreferenceSource func(c echo.Context) i18n.PreferenceStore

// CookiePreferences persists the language in a long-lived cookie, so it
// survives browser restarts.
func CookiePreferences(cfg *config.Config) PreferenceSource {
	return func(c echo.Context) i18n.PreferenceStore {
		return &cookieStore{c: c, secure: cfg != nil && cfg.IsProduction()}
	}
}

// MemoryPreferences keeps the language in process memory keyed by session.
func MemoryPreferences(store *i18n.MemoryStore) PreferenceSource {
	return func(echo.Context) i18n.PreferenceStore {
		return store
	}
}

type cookieStore struct {
	c      echo.Context
	secure bool
}

func (s *cookieStore) Get(string) (i18n.Language, bool) {
	cookie, err := s.c.Cookie(langCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return i18n.Parse(cookie.Value), true
}

func (s *cookieStore) Set(_ string, lang i18n.Language) {
	s.c.SetCookie(&http.Cookie{
		Name:     langCookie,
		Value:    lang.String(),
		Expires:  time.Now().Add(24 * 365 * time.Hour),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secure,
	})
	// later reads in this request see the new value
	s.c.Request().AddCookie(&http.Cookie{Name: langCookie, Value: lang.String()})
}

// Locale middleware resolves the display language.
// Priority:
// 1. Query param "lang" (stored as the preference)
// 2. Stored preference
// 3. Accept-Language header
// 4. Default ("sr")
func Locale(prefs PreferenceSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			store := prefs(c)
			visitor := GetSessionID(c)

			var lang i18n.Language
			if q := c.QueryParam("lang"); q != "" {
				lang = i18n.Parse(q)
				store.Set(visitor, lang)
			} else if stored, ok := store.Get(visitor); ok {
				lang = stored
			} else {
				lang = fromAcceptLanguage(c.Request().Header.Get("Accept-Language"))
			}

			SetLocale(c, lang)
			return next(c)
		}
	}
}

// SetLocale stores lang in the echo context and in the request context for templ.
func SetLocale(c echo.Context, lang i18n.Language) {
	c.Set("locale", lang.String())
	ctx := i18n.WithLocale(c.Request().Context(), lang)
	c.SetRequest(c.Request().WithContext(ctx))
}

func fromAcceptLanguage(header string) i18n.Language {
	if header == "" {
		return i18n.Primary
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return i18n.Primary
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return i18n.Primary
	}
	if index == 1 {
		return i18n.Secondary
	}
	return i18n.Primary
}

// GetLocale returns the current locale from context
func GetLocale(c echo.Context) string {
	if lang, ok := c.Get("locale").(string); ok {
		return lang
	}
	return i18n.Primary.String()
}
