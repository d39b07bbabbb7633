package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"lead_sites_go/config"
	"lead_sites_go/services/i18n"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testServices = []Service{
	{ID: "aisajt", Recipient: "kontakt@aisajt.rs", FromName: "AiSajt", SubjectKey: "email.subject.lead"},
	{ID: "kralj", Recipient: "prodaja@kraljresidence.rs", FromName: "Kralj Residence", SubjectKey: "email.subject.inquiry"},
}

func leadFields() map[string]string {
	return map[string]string{
		"name":          "Ana",
		"email":         "ana@example.com",
		"phone":         "+381601112233",
		"form_location": "hero",
		"message":       "Ime: Ana\nEmail: ana@example.com\nTelefon: +381601112233",
	}
}

func TestSubmissionRequestIsImmutable(t *testing.T) {
	fields := leadFields()
	req := NewSubmissionRequest("aisajt", "lead", "sr", fields)

	fields["name"] = "Changed"
	assert.Equal(t, "Ana", req.Field("name"))

	copied := req.Fields()
	copied["name"] = "Changed again"
	assert.Equal(t, "Ana", req.Field("name"))

	assert.Equal(t, "aisajt", req.ServiceID())
	assert.Equal(t, "lead", req.TemplateID())
	assert.Equal(t, "sr", req.Language())
}

func TestSubmissionResultSucceeded(t *testing.T) {
	assert.True(t, succeeded("id").Succeeded())
	assert.False(t, failed(500, errors.New("x")).Succeeded())
	assert.False(t, SubmissionResult{Outcome: Success, StatusCode: 202}.Succeeded())
}

func TestComposer(t *testing.T) {
	require.NoError(t, i18n.Load())
	c := NewComposer(testServices)

	t.Run("Base template", func(t *testing.T) {
		email, err := c.Compose(NewSubmissionRequest("aisajt", "lead", "sr", leadFields()))
		require.NoError(t, err)
		assert.Equal(t, []string{"kontakt@aisajt.rs"}, email.To)
		assert.Equal(t, "ana@example.com", email.ReplyTo)
		assert.Equal(t, "Novi upit sa sajta: Ana", email.Subject)
		assert.Contains(t, email.HTMLBody, "Novi upit sa sajta")
		assert.Contains(t, email.TextBody, "Telefon: +381601112233")
	})

	t.Run("Localized template", func(t *testing.T) {
		email, err := c.Compose(NewSubmissionRequest("aisajt", "lead", "en", leadFields()))
		require.NoError(t, err)
		assert.Equal(t, "New website inquiry: Ana", email.Subject)
		assert.Contains(t, email.TextBody, "Phone: +381601112233")
	})

	t.Run("Fallback to base when localized missing", func(t *testing.T) {
		fields := leadFields()
		fields["inquiry"] = "Zanima me dvosoban stan"
		email, err := c.Compose(NewSubmissionRequest("kralj", "inquiry", "en", fields))
		require.NoError(t, err)
		assert.Contains(t, email.TextBody, "Zanima me dvosoban stan")
		assert.Equal(t, []string{"prodaja@kraljresidence.rs"}, email.To)
	})

	t.Run("Markup is stripped from visitor input", func(t *testing.T) {
		fields := leadFields()
		fields["name"] = `<script>alert(1)</script>Ana & Marko`
		email, err := c.Compose(NewSubmissionRequest("aisajt", "lead", "sr", fields))
		require.NoError(t, err)
		assert.NotContains(t, email.HTMLBody, "<script>")
		assert.Contains(t, email.TextBody, "Ime: Ana & Marko")
		assert.Contains(t, email.HTMLBody, "Ana &amp; Marko")
	})

	t.Run("Unknown service", func(t *testing.T) {
		_, err := c.Compose(NewSubmissionRequest("nope", "lead", "sr", leadFields()))
		assert.Error(t, err)
	})

	t.Run("Unknown template", func(t *testing.T) {
		_, err := c.Compose(NewSubmissionRequest("aisajt", "missing", "sr", leadFields()))
		assert.Error(t, err)
	})
}

func TestConsoleClient(t *testing.T) {
	require.NoError(t, i18n.Load())
	c := NewConsoleClient(zap.NewNop(), NewComposer(testServices))

	res := c.Send(context.Background(), NewSubmissionRequest("aisajt", "lead", "sr", leadFields()))
	assert.True(t, res.Succeeded())

	res = c.Send(context.Background(), NewSubmissionRequest("unknown", "lead", "sr", leadFields()))
	assert.Equal(t, Failure, res.Outcome)
	assert.Contains(t, res.ErrorDetail, "unknown service id")
}

func TestResendClient(t *testing.T) {
	require.NoError(t, i18n.Load())

	t.Run("Success", func(t *testing.T) {
		var body map[string]interface{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/emails", r.URL.Path)
			assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
			_ = json.NewDecoder(r.Body).Decode(&body)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"id":"email_123"}`))
		}))
		defer server.Close()

		c := NewResendClient("re_test", "noreply@aisajt.rs", NewComposer(testServices))
		c.client.BaseURL, _ = url.Parse(server.URL + "/")

		res := c.Send(context.Background(), NewSubmissionRequest("aisajt", "lead", "sr", leadFields()))
		assert.True(t, res.Succeeded())
		assert.Equal(t, "email_123", res.MessageID)
		assert.Equal(t, "AiSajt <noreply@aisajt.rs>", body["from"])
	})

	t.Run("Provider rejection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid to field"}`))
		}))
		defer server.Close()

		c := NewResendClient("re_test", "noreply@aisajt.rs", NewComposer(testServices))
		c.client.BaseURL, _ = url.Parse(server.URL + "/")

		res := c.Send(context.Background(), NewSubmissionRequest("aisajt", "lead", "sr", leadFields()))
		assert.False(t, res.Succeeded())
		assert.Equal(t, Failure, res.Outcome)
		assert.Contains(t, res.ErrorDetail, "Resend")
	})
}

func TestWithTimeout(t *testing.T) {
	slow := ClientFunc(func(ctx context.Context, req SubmissionRequest) SubmissionResult {
		select {
		case <-ctx.Done():
			return failed(0, ctx.Err())
		case <-time.After(time.Second):
			return succeeded("late")
		}
	})

	res := WithTimeout(slow, 20*time.Millisecond).Send(context.Background(), SubmissionRequest{})
	assert.Equal(t, Failure, res.Outcome)
	assert.Contains(t, res.ErrorDetail, "deadline exceeded")

	// Zero keeps the original client untouched
	unbounded := WithTimeout(slow, 0)
	_, isFunc := unbounded.(ClientFunc)
	assert.True(t, isFunc)
}

func TestNew(t *testing.T) {
	logger := zap.NewNop()

	t.Run("Test mode uses console", func(t *testing.T) {
		c, err := New(&config.Config{EmailTestMode: true}, testServices, logger, nil)
		require.NoError(t, err)
		_, ok := c.(*ConsoleClient)
		assert.True(t, ok)
	})

	t.Run("Resend without key", func(t *testing.T) {
		_, err := New(&config.Config{EmailProvider: config.ProviderResend}, testServices, logger, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "RESEND_API_KEY not configured")
	})

	t.Run("Mailgun without domain", func(t *testing.T) {
		_, err := New(&config.Config{EmailProvider: config.ProviderMailgun, MailgunAPIKey: "k"}, testServices, logger, nil)
		assert.Error(t, err)
	})

	t.Run("Mailgun configured", func(t *testing.T) {
		c, err := New(&config.Config{EmailProvider: config.ProviderMailgun, MailgunDomain: "mg.aisajt.rs", MailgunAPIKey: "k"}, testServices, logger, nil)
		require.NoError(t, err)
		_, ok := c.(*MailgunClient)
		assert.True(t, ok)
	})

	t.Run("Unsupported provider", func(t *testing.T) {
		_, err := New(&config.Config{EmailProvider: "smtp"}, testServices, logger, nil)
		assert.Error(t, err)
	})
}

func TestFromAddress(t *testing.T) {
	assert.Equal(t, "a@b.rs", fromAddress("", "a@b.rs"))
	assert.Equal(t, "Kralj <a@b.rs>", fromAddress("Kralj", "a@b.rs"))
}

func TestComposerReplyTo(t *testing.T) {
	require.NoError(t, i18n.Load())
	c := NewComposer(testServices)

	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"plain", "ana@example.com", "ana@example.com"},
		{"trimmed", "  ana@example.com \t", "ana@example.com"},
		{"display name", "Ana <ana@example.com>", "ana@example.com"},
		{"header injection", "ana@example.com\r\nBcc: all@example.com", ""},
		{"bare newline", "ana@example.com\nX-Evil: 1", ""},
		{"malformed", "not an address", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := leadFields()
			fields["email"] = tt.email
			email, err := c.Compose(NewSubmissionRequest("aisajt", "lead", "sr", fields))
			require.NoError(t, err)
			assert.Equal(t, tt.want, email.ReplyTo)
		})
	}
}
