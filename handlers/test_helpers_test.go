package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"lead_sites_go/config"
	"lead_sites_go/middleware"
	"lead_sites_go/services/dispatch"
	"lead_sites_go/services/i18n"
	"lead_sites_go/services/leads"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	calls  int32
	result dispatch.SubmissionResult
}

func (s *stubClient) Send(ctx context.Context, req dispatch.SubmissionRequest) dispatch.SubmissionResult {
	atomic.AddInt32(&s.calls, 1)
	return s.result
}

func (s *stubClient) Calls() int {
	return int(atomic.LoadInt32(&s.calls))
}

var delivered = dispatch.SubmissionResult{Outcome: dispatch.Success, StatusCode: http.StatusOK, MessageID: "m-1"}

func newTestEnv(t *testing.T, client dispatch.Client) *Env {
	t.Helper()
	require.NoError(t, i18n.Load())

	catalog, err := leads.LoadForms()
	require.NoError(t, err)

	cfg := &config.Config{Environment: "test", AppURL: "https://example.rs"}
	registry := leads.NewRegistry(catalog, leads.Deps{Dispatch: client, Currency: "RSD"}, 0)
	t.Cleanup(registry.Close)

	return &Env{
		Config: cfg,
		Forms:  registry,
		Preferences: map[string]middleware.PreferenceSource{
			"aisajt": middleware.CookiePreferences(cfg),
			"kralj":  middleware.MemoryPreferences(i18n.NewMemoryStore()),
		},
	}
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set("config", &config.Config{
		Environment: "test",
	})

	return e, c, rec
}

// leadRequest builds a request for a /leads/:form/* endpoint from visitor sid.
func leadRequest(env *Env, sid, form, action string, values url.Values, htmx bool) (echo.Context, *httptest.ResponseRecorder) {
	_, c, rec := setupEcho(http.MethodPost, "/leads/"+form+"/"+action, strings.NewReader(values.Encode()))
	c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if htmx {
		c.Request().Header.Set("HX-Request", "true")
		c.Request().Header.Set("HX-Current-URL", "https://example.rs/"+strings.SplitN(form, "-", 2)[0])
	}
	c.SetParamNames("form")
	c.SetParamValues(form)
	c.Set(envKey, env)
	c.Set(middleware.ContextKeySessionID, sid)
	middleware.SetLocale(c, i18n.Primary)
	return c, rec
}

func completeLead() url.Values {
	return url.Values{
		"name":  {"Ana Petrović"},
		"email": {"ana@example.com"},
		"phone": {"+381601112233"},
	}
}
