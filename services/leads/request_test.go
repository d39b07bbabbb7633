package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRequestContactForm(t *testing.T) {
	req := buildRequest(heroConfig(), "sr", map[string]string{
		"name":  " Ana ",
		"email": "ana@example.com",
		"phone": "+381601112233",
	})

	assert.Equal(t, "aisajt", req.ServiceID())
	assert.Equal(t, "lead", req.TemplateID())
	assert.Equal(t, "sr", req.Language())
	assert.Equal(t, "Ana", req.Field("name"))
	assert.Equal(t, "hero", req.Field("form_location"))
	assert.Equal(t, "Ime: Ana\nEmail: ana@example.com\nTelefon: +381601112233", req.Field("message"))
	_, ok := req.Fields()["inquiry"]
	assert.False(t, ok)
}

func TestBuildRequestInquiryForm(t *testing.T) {
	cfg := heroConfig()
	cfg.Fields = []string{"name", "email", "phone", "message"}
	cfg.TemplateID = "inquiry"

	req := buildRequest(cfg, "en", map[string]string{
		"name":    "Marko",
		"email":   "marko@example.com",
		"phone":   "060",
		"message": "Zanima me stan A2.",
	})

	assert.Equal(t, "Zanima me stan A2.", req.Field("inquiry"))
	assert.Equal(t, "Ime: Marko\nEmail: marko@example.com\nTelefon: 060\nPoruka: Zanima me stan A2.", req.Field("message"))
}
