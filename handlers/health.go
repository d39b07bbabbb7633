package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports liveness and how many visitor forms are held in memory.
func HealthHandler(c echo.Context) error {
	env := getEnv(c)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"environment":  env.Config.Environment,
		"active_forms": env.Forms.Len(),
	})
}
