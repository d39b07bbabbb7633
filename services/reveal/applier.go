package reveal

import (
	"fmt"
	"sync"
)

// Applier writes state changes into whatever renders the page.
type Applier interface {
	Reveal(id string, revealed bool)
	Offset(id string, px float64)
}

type nopApplier struct{}

func (nopApplier) Reveal(string, bool)     {}
func (nopApplier) Offset(string, float64) {}

// ClassApplier collects reveal classes and parallax custom properties for
// the templates, so sections visible on first paint render already revealed.
type ClassApplier struct {
	mu       sync.RWMutex
	revealed map[string]bool
	offsets  map[string]float64
}

func NewClassApplier() *ClassApplier {
	return &ClassApplier{
		revealed: make(map[string]bool),
		offsets:  make(map[string]float64),
	}
}

func (a *ClassApplier) Reveal(id string, revealed bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.revealed[id] = revealed
}

func (a *ClassApplier) Offset(id string, px float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.offsets[id] = px
}

// Class returns the class list for a reveal section.
func (a *ClassApplier) Class(id string) string {
	if a == nil {
		return "reveal"
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.revealed[id] {
		return "reveal revealed"
	}
	return "reveal"
}

// Style returns the inline custom property for a parallax layer.
func (a *ClassApplier) Style(id string) string {
	if a == nil {
		return "--parallax-y: 0px"
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return fmt.Sprintf("--parallax-y: %.1fpx", a.offsets[id])
}
