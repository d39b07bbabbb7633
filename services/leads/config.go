package leads

import (
	_ "embed"
	"fmt"
	"time"

	"lead_sites_go/services/dispatch"

	"gopkg.in/yaml.v3"
)

//go:embed forms.yaml
var formsYAML []byte

const defaultNotificationDuration = 3 * time.Second

// Action is what happens once the success notification goes away.
type Action string

const (
	ActionScrollTop Action = "scroll_top"
	ActionNavigate  Action = "navigate"
)

type PostSuccess struct {
	Action    Action `yaml:"action"`
	Route     string `yaml:"route"`
	ElementID string `yaml:"element_id"`
}

// FormConfig parameterizes one lead capture form instance.
type FormConfig struct {
	Key                  string        `yaml:"key"`
	Site                 string        `yaml:"site"`
	Location             string        `yaml:"location"`
	Fields               []string      `yaml:"fields"`
	Required             []string      `yaml:"required"`
	ServiceID            string        `yaml:"service_id"`
	TemplateID           string        `yaml:"template_id"`
	LeadSource           string        `yaml:"lead_source"`
	NotificationDuration time.Duration `yaml:"notification_duration"`
	PostSuccess          PostSuccess   `yaml:"post_success"`
}

// Declares reports whether field belongs to the form.
func (c FormConfig) Declares(field string) bool {
	for _, f := range c.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Catalog is the parsed forms.yaml.
type Catalog struct {
	Services []dispatch.Service `yaml:"services"`
	Forms    []FormConfig       `yaml:"forms"`
}

// Form looks up a form by key.
func (c *Catalog) Form(key string) (FormConfig, bool) {
	for _, f := range c.Forms {
		if f.Key == key {
			return f, true
		}
	}
	return FormConfig{}, false
}

// LoadForms parses the embedded form catalog.
func LoadForms() (*Catalog, error) {
	return ParseForms(formsYAML)
}

// ParseForms parses and validates a form catalog.
func ParseForms(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse forms: %w", err)
	}

	services := make(map[string]bool, len(catalog.Services))
	for _, s := range catalog.Services {
		if s.ID == "" || s.Recipient == "" {
			return nil, fmt.Errorf("service %q needs an id and a recipient", s.ID)
		}
		services[s.ID] = true
	}

	seen := make(map[string]bool, len(catalog.Forms))
	for i := range catalog.Forms {
		f := &catalog.Forms[i]
		if f.Key == "" {
			return nil, fmt.Errorf("form #%d has no key", i)
		}
		if seen[f.Key] {
			return nil, fmt.Errorf("duplicate form key %q", f.Key)
		}
		seen[f.Key] = true

		if len(f.Fields) == 0 {
			return nil, fmt.Errorf("form %q declares no fields", f.Key)
		}
		for _, r := range f.Required {
			if !f.Declares(r) {
				return nil, fmt.Errorf("form %q requires undeclared field %q", f.Key, r)
			}
		}
		if !services[f.ServiceID] {
			return nil, fmt.Errorf("form %q uses unknown service %q", f.Key, f.ServiceID)
		}
		if f.TemplateID == "" {
			return nil, fmt.Errorf("form %q has no template id", f.Key)
		}
		if f.NotificationDuration <= 0 {
			f.NotificationDuration = defaultNotificationDuration
		}
		if f.Location == "" {
			f.Location = f.Key
		}

		switch f.PostSuccess.Action {
		case "":
			f.PostSuccess.Action = ActionScrollTop
		case ActionScrollTop:
		case ActionNavigate:
			if f.PostSuccess.Route == "" {
				return nil, fmt.Errorf("form %q navigates after success but has no route", f.Key)
			}
		default:
			return nil, fmt.Errorf("form %q has unknown post-success action %q", f.Key, f.PostSuccess.Action)
		}
	}

	return &catalog, nil
}
