package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"lead_sites_go/middleware"
	"lead_sites_go/services/i18n"
	"lead_sites_go/services/leads"
	"lead_sites_go/templates/partials"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// turnstileField is the form field the Turnstile widget fills in.
const turnstileField = "cf-turnstile-response"

func formInstance(c echo.Context) (*leads.Instance, error) {
	env := getEnv(c)
	inst, err := env.Forms.Get(middleware.GetSessionID(c), c.Param("form"))
	if errors.Is(err, leads.ErrUnknownForm) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Form not found")
	}
	if err != nil {
		return nil, err
	}
	if current := c.Request().Header.Get("HX-Current-URL"); current != "" {
		if u, err := url.Parse(current); err == nil {
			inst.Nav.SetPath(u.Path)
		}
	}
	return inst, nil
}

// LeadFieldHandler records a single field edit. htmx posts it as the
// visitor types.
func LeadFieldHandler(c echo.Context) error {
	inst, err := formInstance(c)
	if err != nil {
		return err
	}

	field := c.FormValue("field")
	if err := inst.Form.OnFieldChange(c.Request().Context(), field, c.FormValue(field)); err != nil {
		if errors.Is(err, leads.ErrUnknownField) {
			return echo.NewHTTPError(http.StatusBadRequest, "Unknown field")
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// LeadSubmitHandler runs one submission and re-renders the form for htmx.
func LeadSubmitHandler(c echo.Context) error {
	env := getEnv(c)
	ctx := c.Request().Context()

	inst, err := formInstance(c)
	if err != nil {
		return err
	}
	form := inst.Form

	// the submit carries the whole form, which may include edits the
	// per-field requests never delivered. A form that is submitting or
	// showing its acknowledgement keeps its fields; Submit rejects the post.
	if params, err := c.FormParams(); err == nil && acceptsEdits(form) {
		for _, field := range form.Config().Fields {
			if _, ok := params[field]; ok {
				if err := form.OnFieldChange(ctx, field, params.Get(field)); err != nil {
					return err
				}
			}
		}
	}

	view := func() partials.FormView {
		return partials.NewFormView(form, env.Config.TurnstileSiteKey)
	}

	if err := env.Captcha.Verify(ctx, c.FormValue(turnstileField), c.RealIP()); err != nil {
		env.logger().Info("turnstile rejected lead", zap.String("form", form.Config().Key), zap.Error(err))
		message := i18n.T(ctx, "form.error.captcha")
		if !middleware.IsHTMX(c) {
			return echo.NewHTTPError(http.StatusForbidden, message)
		}
		v := view()
		v.Error = message
		return renderOK(c, partials.LeadForm(v))
	}

	_, err = form.Submit(ctx)
	var missing *leads.MissingFieldsError

	switch {
	case err == nil:
		if !middleware.IsHTMX(c) {
			return c.Redirect(http.StatusSeeOther, returnPath(c, inst))
		}
		return renderOK(c, partials.LeadForm(view()))

	case errors.As(err, &missing):
		message := i18n.T(ctx, "form.error.required")
		if !middleware.IsHTMX(c) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, message)
		}
		v := view()
		v.Missing = missing.Fields
		v.Error = message
		return renderOK(c, partials.LeadForm(v))

	case errors.Is(err, leads.ErrSubmitInProgress):
		message := i18n.T(ctx, "form.error.busy")
		if !middleware.IsHTMX(c) {
			return echo.NewHTTPError(http.StatusConflict, message)
		}
		c.Response().Header().Set("HX-Reswap", "none")
		middleware.TriggerToast(c, "info", message)
		return c.NoContent(http.StatusConflict)

	case errors.Is(err, leads.ErrDispatchFailed):
		message := i18n.T(ctx, "form.error.toast")
		if !middleware.IsHTMX(c) {
			return echo.NewHTTPError(http.StatusBadGateway, message)
		}
		middleware.TriggerToast(c, "error", message)
		return renderOK(c, partials.LeadForm(view()))

	default:
		return err
	}
}

// LeadDismissHandler closes the success notification, by timeout or click,
// and carries out the form's post-success move.
func LeadDismissHandler(c echo.Context) error {
	env := getEnv(c)
	inst, err := formInstance(c)
	if err != nil {
		return err
	}

	inst.Form.Dismiss()

	if d, ok := inst.Nav.Take(); ok {
		switch d.Action {
		case leads.ActionNavigate:
			if !middleware.IsHTMX(c) {
				return c.Redirect(http.StatusSeeOther, d.Route)
			}
			c.Response().Header().Set("HX-Redirect", d.Route)
			return c.NoContent(http.StatusOK)
		default:
			middleware.Trigger(c, "lead:scroll", map[string]string{"target": d.ElementID})
		}
	}

	if !middleware.IsHTMX(c) {
		return c.Redirect(http.StatusSeeOther, returnPath(c, inst))
	}
	return renderOK(c, partials.LeadForm(partials.NewFormView(inst.Form, env.Config.TurnstileSiteKey)))
}

func acceptsEdits(form *leads.Form) bool {
	switch form.State().Lifecycle {
	case leads.Submitting, leads.Succeeded:
		return false
	default:
		return true
	}
}

func returnPath(c echo.Context, inst *leads.Instance) string {
	if p := inst.Nav.CurrentPath(); p != "" {
		return p
	}
	return "/" + inst.Form.Config().Site
}
