package pages

// SectionBox is a section's approximate rendered height on a desktop
// viewport. Pages are a vertical stack of sections, so the boxes are enough
// to decide which sections are above the fold on first paint.
type SectionBox struct {
	ID     string
	Height float64
}

type ParallaxLayer struct {
	ID    string
	Speed float64
	Max   float64
}

// Outline describes a page for the reveal pre-pass.
type Outline struct {
	Sections []SectionBox
	Parallax []ParallaxLayer
}

var (
	aisajtHeroLayer = ParallaxLayer{ID: "aisajt-hero-bg", Speed: 0.3, Max: 120}
	kraljHeroLayer  = ParallaxLayer{ID: "kralj-hero-bg", Speed: 0.4, Max: 160}
)

// Outlines are keyed by site and page name.
var Outlines = map[string]Outline{
	"aisajt/home": {
		Sections: []SectionBox{
			{ID: "hero", Height: 720},
			{ID: "services", Height: 560},
			{ID: "process", Height: 480},
			{ID: "about", Height: 360},
		},
		Parallax: []ParallaxLayer{aisajtHeroLayer},
	},
	"aisajt/about": {
		Sections: []SectionBox{
			{ID: "about", Height: 520},
			{ID: "process", Height: 480},
		},
	},
	"aisajt/contact": {
		Sections: []SectionBox{
			{ID: "contact", Height: 760},
		},
	},
	"kralj/home": {
		Sections: []SectionBox{
			{ID: "hero", Height: 780},
			{ID: "stats", Height: 240},
			{ID: "location", Height: 420},
			{ID: "contact", Height: 680},
		},
		Parallax: []ParallaxLayer{kraljHeroLayer},
	},
	"kralj/apartments": {
		Sections: []SectionBox{
			{ID: "apartments", Height: 640},
			{ID: "inquiry", Height: 820},
		},
	},
}
