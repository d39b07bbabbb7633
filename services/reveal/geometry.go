// Package reveal decides which page sections are revealed by scroll
// animations. The geometry here is pure; Tracker keeps per-element state and
// hands changes to an Applier that writes them into the rendered page.
package reveal

import "math"

const (
	DefaultThreshold    = 0.10
	DefaultBottomMargin = 50
)

// Rect is an element box in viewport coordinates.
type Rect struct {
	Top    float64
	Left   float64
	Width  float64
	Height float64
}

func (r Rect) Bottom() float64 { return r.Top + r.Height }
func (r Rect) Right() float64  { return r.Left + r.Width }

// Viewport is the visible window and how far the page is scrolled.
type Viewport struct {
	Width   float64
	Height  float64
	ScrollY float64
}

type Options struct {
	// Threshold is the visible share of an element needed to reveal it.
	Threshold float64
	// BottomMargin shrinks the viewport from below so elements reveal
	// slightly after they enter.
	BottomMargin float64
	// Once keeps an element revealed after it first becomes visible.
	Once bool
}

func DefaultOptions() Options {
	return Options{
		Threshold:    DefaultThreshold,
		BottomMargin: DefaultBottomMargin,
		Once:         true,
	}
}

// Ratio returns the share of r inside the viewport after the bottom margin
// is taken off. A zero-area element counts as fully visible when it sits
// inside the viewport.
func Ratio(r Rect, vp Viewport, opts Options) float64 {
	rootBottom := vp.Height - opts.BottomMargin
	if rootBottom < 0 {
		rootBottom = 0
	}

	top := math.Max(r.Top, 0)
	bottom := math.Min(r.Bottom(), rootBottom)
	left := math.Max(r.Left, 0)
	right := math.Min(r.Right(), vp.Width)

	area := r.Width * r.Height
	if area <= 0 {
		if r.Top >= 0 && r.Top <= rootBottom && r.Left >= 0 && r.Left <= vp.Width {
			return 1
		}
		return 0
	}
	if bottom <= top || right <= left {
		return 0
	}
	return (bottom - top) * (right - left) / area
}

// Visible reports whether r crosses the reveal threshold.
func Visible(r Rect, vp Viewport, opts Options) bool {
	ratio := Ratio(r, vp, opts)
	return ratio > 0 && ratio >= opts.Threshold
}

// ParallaxOffset is the vertical shift for a parallax layer, clamped to
// ±max.
func ParallaxOffset(scrollY, speed, max float64) float64 {
	max = math.Abs(max)
	return math.Max(-max, math.Min(max, scrollY*speed))
}
