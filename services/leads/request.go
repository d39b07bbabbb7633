package leads

import (
	"strings"

	"lead_sites_go/services/dispatch"
)

// Placeholder names the email templates read.
const (
	placeholderName     = "name"
	placeholderEmail    = "email"
	placeholderPhone    = "phone"
	placeholderInquiry  = "inquiry"
	placeholderMessage  = "message"
	placeholderLocation = "form_location"
)

// buildRequest maps form fields to template placeholders. The visitor's own
// message travels as "inquiry"; "message" carries the fixed summary body.
func buildRequest(cfg FormConfig, lang string, fields map[string]string) dispatch.SubmissionRequest {
	placeholders := map[string]string{
		placeholderName:     strings.TrimSpace(fields["name"]),
		placeholderEmail:    strings.TrimSpace(fields["email"]),
		placeholderPhone:    strings.TrimSpace(fields["phone"]),
		placeholderLocation: cfg.Location,
	}
	if cfg.Declares("message") {
		placeholders[placeholderInquiry] = strings.TrimSpace(fields["message"])
	}
	placeholders[placeholderMessage] = summary(placeholders)

	return dispatch.NewSubmissionRequest(cfg.ServiceID, cfg.TemplateID, lang, placeholders)
}

func summary(p map[string]string) string {
	var b strings.Builder
	b.WriteString("Ime: " + p[placeholderName] + "\n")
	b.WriteString("Email: " + p[placeholderEmail] + "\n")
	b.WriteString("Telefon: " + p[placeholderPhone])
	if inquiry := p[placeholderInquiry]; inquiry != "" {
		b.WriteString("\nPoruka: " + inquiry)
	}
	return b.String()
}
