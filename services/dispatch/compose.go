package dispatch

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	htmltemplate "html/template"
	"io/fs"
	"net/mail"
	"strings"
	texttemplate "text/template"

	"lead_sites_go/services/i18n"

	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*
var templateFS embed.FS

// Service describes where submissions tagged with a service id are delivered.
type Service struct {
	ID         string `yaml:"id"`
	Recipient  string `yaml:"recipient"`
	FromName   string `yaml:"from_name"`
	SubjectKey string `yaml:"subject_key"`
}

// Email is a rendered message ready for a provider
type Email struct {
	To       []string
	ReplyTo  string
	Subject  string
	HTMLBody string
	TextBody string
	FromName string
}

// Composer renders submissions into emails.
type Composer struct {
	services map[string]Service
	files    fs.FS
	policy   *bluemonday.Policy
}

func NewComposer(services []Service) *Composer {
	byID := make(map[string]Service, len(services))
	for _, s := range services {
		byID[s.ID] = s
	}
	sub, _ := fs.Sub(templateFS, "templates")
	return &Composer{
		services: byID,
		files:    sub,
		policy:   bluemonday.StrictPolicy(),
	}
}

// Compose resolves the service and renders the template named by the request.
func (c *Composer) Compose(req SubmissionRequest) (*Email, error) {
	svc, ok := c.services[req.ServiceID()]
	if !ok {
		return nil, fmt.Errorf("unknown service id %q", req.ServiceID())
	}

	data := make(map[string]string, len(req.fields))
	for k, v := range req.fields {
		// Visitor input is plain text; strip any markup before it reaches a template
		data[k] = html.UnescapeString(c.policy.Sanitize(v))
	}

	htmlBody, err := c.render(req.TemplateID(), req.Language(), ".html", data)
	if err != nil {
		return nil, err
	}
	textBody, err := c.render(req.TemplateID(), req.Language(), ".txt", data)
	if err != nil {
		return nil, err
	}

	return &Email{
		To:       []string{svc.Recipient},
		ReplyTo:  replyTo(req.Field("email")),
		Subject:  i18n.Translate(req.Language(), svc.SubjectKey, map[string]interface{}{"name": data["name"]}),
		HTMLBody: htmlBody,
		TextBody: textBody,
		FromName: svc.FromName,
	}, nil
}

// replyTo returns the visitor's address when it is a single well-formed
// address, "" otherwise. The value ends up in a mail header.
func replyTo(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, "\r\n") {
		return ""
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return ""
	}
	return addr.Address
}

// render tries templateID_lang.ext first and falls back to templateID.ext.
func (c *Composer) render(templateID, lang, ext string, data map[string]string) (string, error) {
	name := fmt.Sprintf("%s_%s%s", templateID, lang, ext)
	content, err := fs.ReadFile(c.files, name)
	if err != nil {
		name = templateID + ext
		content, err = fs.ReadFile(c.files, name)
		if err != nil {
			return "", fmt.Errorf("failed to read template %s: %w", name, err)
		}
	}

	var buf bytes.Buffer
	if ext == ".html" {
		tmpl, err := htmltemplate.New(name).Option("missingkey=zero").Parse(string(content))
		if err != nil {
			return "", fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		if err := tmpl.Execute(&buf, data); err != nil {
			return "", fmt.Errorf("failed to execute template %s: %w", name, err)
		}
		return buf.String(), nil
	}

	tmpl, err := texttemplate.New(name).Option("missingkey=zero").Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
