package middleware

import (
	"encoding/json"

	"github.com/labstack/echo/v4"
)

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

// Trigger sets HX-Trigger so htmx dispatches event with detail on the page.
func Trigger(c echo.Context, event string, detail interface{}) {
	payload, err := json.Marshal(map[string]interface{}{event: detail})
	if err != nil {
		return
	}
	c.Response().Header().Set("HX-Trigger", string(payload))
}

// TriggerToast asks the page to show a toast. static/js/leads.js listens for
// the "lead:toast" event.
func TriggerToast(c echo.Context, level, message string) {
	Trigger(c, "lead:toast", map[string]string{"level": level, "message": message})
}
