package partials

import (
	"time"

	"lead_sites_go/services/leads"
)

// FormView is everything LeadForm needs to draw one form instance.
type FormView struct {
	Key          string
	Location     string
	Fields       []string
	Required     []string
	Values       map[string]string
	Lifecycle    leads.Lifecycle
	Notification bool
	Duration     time.Duration
	// Missing lists required fields left empty on the last submit
	Missing          []string
	Error            string
	TurnstileSiteKey string
}

// NewFormView snapshots a live form.
func NewFormView(f *leads.Form, turnstileSiteKey string) FormView {
	cfg := f.Config()
	state := f.State()
	return FormView{
		Key:              cfg.Key,
		Location:         cfg.Location,
		Fields:           cfg.Fields,
		Required:         cfg.Required,
		Values:           state.Fields,
		Lifecycle:        state.Lifecycle,
		Notification:     f.NotificationVisible(),
		Duration:         cfg.NotificationDuration,
		TurnstileSiteKey: turnstileSiteKey,
	}
}

func fieldID(v FormView, field string) string {
	return "lead-" + v.Key + "-" + field
}

func inputType(field string) string {
	switch field {
	case "email":
		return "email"
	case "phone":
		return "tel"
	default:
		return "text"
	}
}

func autocomplete(field string) string {
	switch field {
	case "name":
		return "name"
	case "email":
		return "email"
	case "phone":
		return "tel"
	default:
		return "off"
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
