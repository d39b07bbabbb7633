package handlers

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"lead_sites_go/services/dispatch"
	"lead_sites_go/services/leads"
	"lead_sites_go/services/turnstile"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadFieldHandler(t *testing.T) {
	env := newTestEnv(t, &stubClient{result: delivered})

	t.Run("StoresValue", func(t *testing.T) {
		c, rec := leadRequest(env, "s1", "aisajt-hero", "field", url.Values{"field": {"name"}, "name": {"Ana"}}, true)
		require.NoError(t, LeadFieldHandler(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		inst, err := env.Forms.Get("s1", "aisajt-hero")
		require.NoError(t, err)
		assert.Equal(t, "Ana", inst.Form.State().Fields["name"])
		assert.Equal(t, "/aisajt", inst.Nav.CurrentPath())
	})

	t.Run("UnknownField", func(t *testing.T) {
		c, _ := leadRequest(env, "s1", "aisajt-hero", "field", url.Values{"field": {"message"}, "message": {"hi"}}, true)
		err := LeadFieldHandler(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("UnknownForm", func(t *testing.T) {
		c, _ := leadRequest(env, "s1", "nope", "field", url.Values{"field": {"name"}}, true)
		err := LeadFieldHandler(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})
}

func TestLeadSubmitHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		client := &stubClient{result: delivered}
		env := newTestEnv(t, client)

		c, rec := leadRequest(env, "s1", "aisajt-hero", "submit", completeLead(), true)
		require.NoError(t, LeadSubmitHandler(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, client.Calls())
		body := rec.Body.String()
		assert.Contains(t, body, `id="lead-aisajt-hero"`)
		assert.Contains(t, body, "success-overlay")
		assert.Contains(t, body, "load delay:3000ms")
		assert.NotContains(t, body, "Ana Petrović")

		inst, _ := env.Forms.Get("s1", "aisajt-hero")
		assert.Equal(t, leads.Succeeded, inst.Form.State().Lifecycle)
	})

	t.Run("MissingField", func(t *testing.T) {
		client := &stubClient{result: delivered}
		env := newTestEnv(t, client)

		values := completeLead()
		values.Del("name")
		c, rec := leadRequest(env, "s1", "aisajt-hero", "submit", values, true)
		require.NoError(t, LeadSubmitHandler(c))

		assert.Equal(t, 0, client.Calls())
		body := rec.Body.String()
		assert.Contains(t, body, "form-error")
		assert.Contains(t, body, `aria-invalid="true"`)
		assert.Contains(t, body, "ana@example.com")
	})

	t.Run("DispatchFailure", func(t *testing.T) {
		client := &stubClient{result: dispatch.SubmissionResult{Outcome: dispatch.Failure, ErrorDetail: "Network Error"}}
		env := newTestEnv(t, client)

		c, rec := leadRequest(env, "s1", "kralj-inquiry", "submit", completeLead(), true)
		require.NoError(t, LeadSubmitHandler(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("HX-Trigger"), "lead:toast")
		assert.Contains(t, rec.Body.String(), "Ana Petrović")
		assert.NotContains(t, rec.Body.String(), "success-overlay")

		inst, _ := env.Forms.Get("s1", "kralj-inquiry")
		assert.Equal(t, leads.Failed, inst.Form.State().Lifecycle)
	})

	t.Run("SubmitWhileNotificationShowing", func(t *testing.T) {
		client := &stubClient{result: delivered}
		env := newTestEnv(t, client)

		c, _ := leadRequest(env, "s1", "kralj-contact", "submit", completeLead(), true)
		require.NoError(t, LeadSubmitHandler(c))

		c, rec := leadRequest(env, "s1", "kralj-contact", "submit", completeLead(), true)
		require.NoError(t, LeadSubmitHandler(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "none", rec.Header().Get("HX-Reswap"))
		assert.Equal(t, 1, client.Calls())

		// the rejected post must not refill the cleared form
		inst, err := env.Forms.Get("s1", "kralj-contact")
		require.NoError(t, err)
		state := inst.Form.State()
		assert.Equal(t, leads.Succeeded, state.Lifecycle)
		for field, value := range state.Fields {
			assert.Empty(t, value, field)
		}
	})

	t.Run("NonHTMXRedirects", func(t *testing.T) {
		env := newTestEnv(t, &stubClient{result: delivered})

		c, rec := leadRequest(env, "s1", "aisajt-contact", "submit", completeLead(), false)
		require.NoError(t, LeadSubmitHandler(c))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/aisajt", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("CaptchaRequired", func(t *testing.T) {
		client := &stubClient{result: delivered}
		env := newTestEnv(t, client)
		env.Captcha = turnstile.NewVerifier("secret")

		c, rec := leadRequest(env, "s1", "aisajt-hero", "submit", completeLead(), true)
		require.NoError(t, LeadSubmitHandler(c))
		assert.Equal(t, 0, client.Calls())
		assert.Contains(t, rec.Body.String(), "form-error")
	})
}

func TestLeadDismissHandler(t *testing.T) {
	t.Run("Navigate", func(t *testing.T) {
		env := newTestEnv(t, &stubClient{result: delivered})

		c, _ := leadRequest(env, "s1", "kralj-inquiry", "submit", completeLead(), true)
		require.NoError(t, LeadSubmitHandler(c))

		c, rec := leadRequest(env, "s1", "kralj-inquiry", "dismiss", url.Values{}, true)
		require.NoError(t, LeadDismissHandler(c))
		assert.Equal(t, "/kralj", rec.Header().Get("HX-Redirect"))

		inst, _ := env.Forms.Get("s1", "kralj-inquiry")
		assert.Equal(t, leads.Idle, inst.Form.State().Lifecycle)
	})

	t.Run("ScrollTop", func(t *testing.T) {
		env := newTestEnv(t, &stubClient{result: delivered})

		c, _ := leadRequest(env, "s1", "aisajt-hero", "submit", completeLead(), true)
		require.NoError(t, LeadSubmitHandler(c))

		c, rec := leadRequest(env, "s1", "aisajt-hero", "dismiss", url.Values{}, true)
		require.NoError(t, LeadDismissHandler(c))
		assert.Contains(t, rec.Header().Get("HX-Trigger"), "lead:scroll")
		assert.NotContains(t, rec.Body.String(), "success-overlay")
	})

	t.Run("AfterTimerExpired", func(t *testing.T) {
		env := newTestEnv(t, &stubClient{result: delivered})

		c, _ := leadRequest(env, "s1", "aisajt-hero", "submit", completeLead(), true)
		require.NoError(t, LeadSubmitHandler(c))
		inst, _ := env.Forms.Get("s1", "aisajt-hero")
		require.Eventually(t, func() bool {
			return inst.Form.State().Lifecycle == leads.Idle
		}, 5*time.Second, 20*time.Millisecond)

		// the page's delayed dismiss arrives after the server timer fired
		c, rec := leadRequest(env, "s1", "aisajt-hero", "dismiss", url.Values{}, true)
		require.NoError(t, LeadDismissHandler(c))
		assert.Contains(t, rec.Header().Get("HX-Trigger"), "lead:scroll")
	})
}
