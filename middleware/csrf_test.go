package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"lead_sites_go/config"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCSRFToken(t *testing.T) {
	e := echo.New()

	t.Run("TokenExists", func(t *testing.T) {
		c := e.NewContext(nil, nil)
		c.Set("csrf", "test-csrf-token")
		assert.Equal(t, "test-csrf-token", GetCSRFToken(c))
	})

	t.Run("TokenMissing", func(t *testing.T) {
		c := e.NewContext(nil, nil)
		assert.Equal(t, "", GetCSRFToken(c))
	})

	t.Run("TokenInvalidType", func(t *testing.T) {
		c := e.NewContext(nil, nil)
		c.Set("csrf", 123)
		assert.Equal(t, "", GetCSRFToken(c))
	})
}

func TestCSRF(t *testing.T) {
	e := echo.New()
	mw := CSRF(&config.Config{})

	t.Run("GetIssuesToken", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		var token string
		err := mw(func(c echo.Context) error {
			token = CSRFToken(c.Request().Context())
			return c.NoContent(http.StatusOK)
		})(c)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.NotNil(t, findCookie(rec, "_csrf"))
	})

	t.Run("PostWithoutTokenRejected", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())
		err := mw(okHandler)(c)
		assert.Error(t, err)
	})

	t.Run("PostWithMatchingHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.AddCookie(&http.Cookie{Name: "_csrf", Value: "tok"})
		req.Header.Set("X-CSRF-Token", "tok")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		assert.NoError(t, mw(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
