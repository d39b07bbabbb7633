package reveal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var desktop = Viewport{Width: 1280, Height: 800}

func TestRatio(t *testing.T) {
	opts := DefaultOptions()

	tests := []struct {
		name string
		rect Rect
		want float64
	}{
		{"fully inside", Rect{Top: 100, Width: 400, Height: 200}, 1},
		{"below the fold", Rect{Top: 900, Width: 400, Height: 200}, 0},
		{"scrolled past", Rect{Top: -300, Width: 400, Height: 200}, 0},
		{"half above", Rect{Top: -100, Width: 400, Height: 200}, 0.5},
		// the root ends at 750 once the bottom margin is taken off
		{"straddles margin", Rect{Top: 650, Width: 400, Height: 200}, 0.5},
		{"inside the margin only", Rect{Top: 760, Width: 400, Height: 30}, 0},
		{"zero area inside", Rect{Top: 10, Left: 10}, 1},
		{"zero area outside", Rect{Top: 790, Left: 10}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(tt.rect, desktop, opts), 1e-9)
		})
	}
}

func TestVisibleThreshold(t *testing.T) {
	opts := DefaultOptions()

	// 1000px tall element, root bottom at 750
	justUnder := Rect{Top: 651, Width: 100, Height: 1000}
	atThreshold := Rect{Top: 650, Width: 100, Height: 1000}

	assert.False(t, Visible(justUnder, desktop, opts))
	assert.True(t, Visible(atThreshold, desktop, opts))
}

func TestVisibleBottomMarginDelaysReveal(t *testing.T) {
	rect := Rect{Top: 770, Width: 100, Height: 100}

	assert.False(t, Visible(rect, desktop, DefaultOptions()))
	assert.True(t, Visible(rect, desktop, Options{Threshold: DefaultThreshold}))
}

func TestParallaxOffset(t *testing.T) {
	assert.Equal(t, 25.0, ParallaxOffset(100, 0.25, 80))
	assert.Equal(t, 80.0, ParallaxOffset(1000, 0.25, 80))
	assert.Equal(t, -80.0, ParallaxOffset(1000, -0.5, 80))
	assert.Equal(t, 80.0, ParallaxOffset(1000, 0.5, -80))
	assert.Equal(t, 0.0, ParallaxOffset(0, 0.5, 80))
}
