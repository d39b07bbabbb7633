package leads

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadForms(t *testing.T) {
	catalog, err := LoadForms()
	require.NoError(t, err)

	assert.Len(t, catalog.Services, 2)
	assert.Len(t, catalog.Forms, 4)

	hero, ok := catalog.Form("aisajt-hero")
	require.True(t, ok)
	assert.Equal(t, "hero", hero.Location)
	assert.Equal(t, 3*time.Second, hero.NotificationDuration)
	assert.Equal(t, ActionScrollTop, hero.PostSuccess.Action)

	inquiry, ok := catalog.Form("kralj-inquiry")
	require.True(t, ok)
	assert.True(t, inquiry.Declares("message"))
	assert.NotContains(t, inquiry.Required, "message")
	assert.Equal(t, ActionNavigate, inquiry.PostSuccess.Action)
	assert.Equal(t, "/kralj", inquiry.PostSuccess.Route)
	assert.Equal(t, 4*time.Second, inquiry.NotificationDuration)

	_, ok = catalog.Form("missing")
	assert.False(t, ok)
}

func TestParseFormsDefaults(t *testing.T) {
	catalog, err := ParseForms([]byte(`
services:
  - id: s
    recipient: a@b.rs
forms:
  - key: only
    fields: [name]
    service_id: s
    template_id: lead
`))
	require.NoError(t, err)

	f := catalog.Forms[0]
	assert.Equal(t, "only", f.Location)
	assert.Equal(t, defaultNotificationDuration, f.NotificationDuration)
	assert.Equal(t, ActionScrollTop, f.PostSuccess.Action)
}

func TestParseFormsRejects(t *testing.T) {
	const services = `
services:
  - id: s
    recipient: a@b.rs
`
	tests := []struct {
		name  string
		forms string
		want  string
	}{
		{
			name:  "duplicate key",
			forms: "forms:\n  - {key: a, fields: [name], service_id: s, template_id: t}\n  - {key: a, fields: [name], service_id: s, template_id: t}\n",
			want:  "duplicate form key",
		},
		{
			name:  "undeclared required",
			forms: "forms:\n  - {key: a, fields: [name], required: [email], service_id: s, template_id: t}\n",
			want:  "undeclared field",
		},
		{
			name:  "unknown service",
			forms: "forms:\n  - {key: a, fields: [name], service_id: x, template_id: t}\n",
			want:  "unknown service",
		},
		{
			name:  "no template",
			forms: "forms:\n  - {key: a, fields: [name], service_id: s}\n",
			want:  "no template id",
		},
		{
			name:  "no fields",
			forms: "forms:\n  - {key: a, service_id: s, template_id: t}\n",
			want:  "declares no fields",
		},
		{
			name:  "navigate without route",
			forms: "forms:\n  - {key: a, fields: [name], service_id: s, template_id: t, post_success: {action: navigate}}\n",
			want:  "no route",
		},
		{
			name:  "unknown action",
			forms: "forms:\n  - {key: a, fields: [name], service_id: s, template_id: t, post_success: {action: reload}}\n",
			want:  "unknown post-success action",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseForms([]byte(services + tt.forms))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseFormsInvalidYAML(t *testing.T) {
	_, err := ParseForms([]byte("forms: [unterminated"))
	assert.Error(t, err)
}
