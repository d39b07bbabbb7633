package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHTMX(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.False(t, IsHTMX(e.NewContext(req, nil)))

	req.Header.Set("HX-Request", "true")
	assert.True(t, IsHTMX(e.NewContext(req, nil)))
}

func TestTriggerToast(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	TriggerToast(c, "error", `Greška "mreže"`)

	var payload map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &payload))
	assert.Equal(t, "error", payload["lead:toast"]["level"])
	assert.Equal(t, `Greška "mreže"`, payload["lead:toast"]["message"])
}
