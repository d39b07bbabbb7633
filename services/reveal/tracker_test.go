package reveal

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingApplier struct {
	mu      sync.Mutex
	reveals []string
	offsets map[string]float64
}

func (a *recordingApplier) Reveal(id string, revealed bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if revealed {
		a.reveals = append(a.reveals, "+"+id)
	} else {
		a.reveals = append(a.reveals, "-"+id)
	}
}

func (a *recordingApplier) Offset(id string, px float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.offsets == nil {
		a.offsets = make(map[string]float64)
	}
	a.offsets[id] = px
}

func TestTrackerRegisterStartsHidden(t *testing.T) {
	tr := NewTracker(DefaultOptions(), nil)
	tr.Register("hero", Rect{Top: 0, Width: 1280, Height: 600})

	revealed, ok := tr.State("hero")
	assert.True(t, ok)
	assert.False(t, revealed)

	_, ok = tr.State("missing")
	assert.False(t, ok)
}

func TestTrackerUpdateAppliesChanges(t *testing.T) {
	applier := &recordingApplier{}
	tr := NewTracker(DefaultOptions(), applier)
	tr.Register("hero", Rect{Top: 0, Width: 1280, Height: 600})
	tr.Register("services", Rect{Top: 1200, Width: 1280, Height: 600})

	tr.Update(desktop)
	assert.Equal(t, []string{"+hero"}, applier.reveals)

	tr.Update(desktop)
	assert.Equal(t, []string{"+hero"}, applier.reveals, "unchanged state is not re-applied")

	revealed, _ := tr.State("services")
	assert.False(t, revealed)
}

func TestTrackerOnceKeepsRevealed(t *testing.T) {
	tr := NewTracker(DefaultOptions(), nil)
	tr.Register("hero", Rect{Top: 0, Width: 1280, Height: 600})
	tr.Update(desktop)

	tr.Register("hero", Rect{Top: -2000, Width: 1280, Height: 600})
	tr.Update(desktop)

	revealed, _ := tr.State("hero")
	assert.True(t, revealed)
}

func TestTrackerWithoutOnceHidesAgain(t *testing.T) {
	applier := &recordingApplier{}
	tr := NewTracker(Options{Threshold: DefaultThreshold, BottomMargin: DefaultBottomMargin}, applier)
	tr.Register("hero", Rect{Top: 0, Width: 1280, Height: 600})
	tr.Update(desktop)

	tr.Register("hero", Rect{Top: -2000, Width: 1280, Height: 600})
	tr.Update(desktop)

	assert.Equal(t, []string{"+hero", "-hero"}, applier.reveals)
}

func TestTrackerSubscribe(t *testing.T) {
	tr := NewTracker(DefaultOptions(), nil)
	tr.Register("about", Rect{Top: 1000, Width: 1280, Height: 400})

	ch, cancel := tr.Subscribe("about")
	assert.False(t, <-ch)

	tr.Register("about", Rect{Top: 200, Width: 1280, Height: 400})
	tr.Update(desktop)
	assert.True(t, <-ch)

	cancel()
	_, open := <-ch
	assert.False(t, open)
	cancel()
}

func TestTrackerSubscribeUnknown(t *testing.T) {
	tr := NewTracker(DefaultOptions(), nil)
	ch, cancel := tr.Subscribe("missing")
	_, open := <-ch
	assert.False(t, open)
	cancel()
}

func TestTrackerUnregisterClosesSubscriptions(t *testing.T) {
	tr := NewTracker(DefaultOptions(), nil)
	tr.Register("about", Rect{Top: 0, Width: 100, Height: 100})
	ch, cancel := tr.Subscribe("about")
	<-ch

	tr.Unregister("about")
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, tr.Len())
	cancel()
}

func TestTrackerClose(t *testing.T) {
	applier := &recordingApplier{}
	tr := NewTracker(DefaultOptions(), applier)
	tr.Register("a", Rect{Top: 0, Width: 100, Height: 100})
	tr.Register("b", Rect{Top: 0, Width: 100, Height: 100})
	chA, _ := tr.Subscribe("a")
	<-chA

	tr.Close()
	_, open := <-chA
	assert.False(t, open)
	assert.Equal(t, 0, tr.Len())

	tr.Register("c", Rect{Top: 0, Width: 100, Height: 100})
	tr.Update(desktop)
	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, applier.reveals)
}

func TestTrackerParallax(t *testing.T) {
	applier := &recordingApplier{}
	tr := NewTracker(DefaultOptions(), applier)
	tr.RegisterParallax("hero-bg", 0.4, 120)

	tr.Update(Viewport{Width: 1280, Height: 800, ScrollY: 100})
	assert.InDelta(t, 40, tr.Offsets()["hero-bg"], 1e-9)

	tr.Update(Viewport{Width: 1280, Height: 800, ScrollY: 5000})
	assert.InDelta(t, 120, tr.Offsets()["hero-bg"], 1e-9)
	require.NotNil(t, applier.offsets)
	assert.InDelta(t, 120, applier.offsets["hero-bg"], 1e-9)

	tr.Unregister("hero-bg")
	assert.Empty(t, tr.Offsets())
}

func TestClassApplier(t *testing.T) {
	a := NewClassApplier()
	tr := NewTracker(DefaultOptions(), a)
	tr.Register("hero", Rect{Top: 0, Width: 1280, Height: 600})
	tr.Register("contact", Rect{Top: 3000, Width: 1280, Height: 600})
	tr.RegisterParallax("hero-bg", 0.5, 60)
	tr.Update(Viewport{Width: 1280, Height: 800, ScrollY: 20})

	assert.Equal(t, "reveal revealed", a.Class("hero"))
	assert.Equal(t, "reveal", a.Class("contact"))
	assert.Equal(t, "--parallax-y: 10.0px", a.Style("hero-bg"))
	assert.Equal(t, "--parallax-y: 0.0px", a.Style("other"))

	var nilApplier *ClassApplier
	assert.Equal(t, "reveal", nilApplier.Class("hero"))
}
