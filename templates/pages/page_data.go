package pages

import (
	"strconv"

	"lead_sites_go/models"
	"lead_sites_go/services/reveal"
	"lead_sites_go/templates/partials"

	"github.com/a-h/templ"
)

type NavLink struct {
	Href     string
	LabelKey string
	Active   bool
}

// PageData is shared by every page of both sites.
type PageData struct {
	Site             string
	Page             string
	Path             string
	SEO              *models.SEO
	Nav              []NavLink
	Reveal           *reveal.ClassApplier
	Forms            map[string]partials.FormView
	TurnstileSiteKey string
}

// Form renders the named lead form, or nothing if the page has no such form.
func (d PageData) Form(key string) templ.Component {
	v, ok := d.Forms[key]
	if !ok {
		return templ.NopComponent
	}
	return partials.LeadForm(v)
}

// itemKey addresses one field of a translated list, e.g.
// "aisajt.process.items.2.title".
func itemKey(prefix string, i int, field string) string {
	return prefix + ".items." + strconv.Itoa(i) + "." + field
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
