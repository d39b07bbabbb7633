package reveal

import (
	"sort"
	"sync"
)

type element struct {
	rect     Rect
	revealed bool
	subs     map[int]chan bool
}

type parallaxTarget struct {
	speed  float64
	max    float64
	offset float64
}

type change struct {
	id       string
	revealed bool
}

type offsetChange struct {
	id string
	px float64
}

// Tracker maintains the revealed state of a changing set of elements.
type Tracker struct {
	opts    Options
	applier Applier

	mu       sync.Mutex
	elements map[string]*element
	parallax map[string]*parallaxTarget
	nextSub  int
	closed   bool
}

func NewTracker(opts Options, applier Applier) *Tracker {
	if applier == nil {
		applier = nopApplier{}
	}
	return &Tracker{
		opts:     opts,
		applier:  applier,
		elements: make(map[string]*element),
		parallax: make(map[string]*parallaxTarget),
	}
}

// Register starts tracking id. New elements start hidden; registering a
// known id only updates its box.
func (t *Tracker) Register(id string, rect Rect) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if el, ok := t.elements[id]; ok {
		el.rect = rect
		return
	}
	t.elements[id] = &element{rect: rect, subs: make(map[int]chan bool)}
}

// Unregister stops tracking id and closes its subscriptions.
func (t *Tracker) Unregister(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeLocked(id)
	delete(t.parallax, id)
}

// RegisterParallax tracks id as a parallax layer moving at speed times the
// scroll offset, never more than max pixels either way.
func (t *Tracker) RegisterParallax(id string, speed, max float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.parallax[id] = &parallaxTarget{speed: speed, max: max}
}

// Update recomputes every tracked element against vp and reports changes to
// the applier and subscribers.
func (t *Tracker) Update(vp Viewport) {
	var changes []change
	var offsets []offsetChange

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	for id, el := range t.elements {
		if el.revealed && t.opts.Once {
			continue
		}
		visible := Visible(el.rect, vp, t.opts)
		if visible == el.revealed {
			continue
		}
		el.revealed = visible
		changes = append(changes, change{id: id, revealed: visible})
		for _, ch := range el.subs {
			publish(ch, visible)
		}
	}
	for id, p := range t.parallax {
		px := ParallaxOffset(vp.ScrollY, p.speed, p.max)
		if px == p.offset {
			continue
		}
		p.offset = px
		offsets = append(offsets, offsetChange{id: id, px: px})
	}
	t.mu.Unlock()

	sort.Slice(changes, func(i, j int) bool { return changes[i].id < changes[j].id })
	for _, c := range changes {
		t.applier.Reveal(c.id, c.revealed)
	}
	for _, o := range offsets {
		t.applier.Offset(o.id, o.px)
	}
}

// State returns the revealed state of id and whether it is tracked.
func (t *Tracker) State(id string) (revealed, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	el, ok := t.elements[id]
	if !ok {
		return false, false
	}
	return el.revealed, true
}

// Offsets returns the current parallax offsets.
func (t *Tracker) Offsets() map[string]float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]float64, len(t.parallax))
	for id, p := range t.parallax {
		out[id] = p.offset
	}
	return out
}

// Subscribe returns a stream of revealed states for id, starting with the
// current one. Slow readers only see the latest value. The channel is closed
// when id is unregistered, the tracker closes, or cancel is called.
func (t *Tracker) Subscribe(id string) (<-chan bool, func()) {
	ch := make(chan bool, 1)

	t.mu.Lock()
	defer t.mu.Unlock()
	el, ok := t.elements[id]
	if !ok || t.closed {
		close(ch)
		return ch, func() {}
	}

	t.nextSub++
	key := t.nextSub
	el.subs[key] = ch
	ch <- el.revealed

	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if cur, ok := t.elements[id]; ok && cur == el {
			if sub, ok := el.subs[key]; ok {
				delete(el.subs, key)
				close(sub)
			}
		}
	}
	return ch, cancel
}

// Len returns the number of tracked reveal elements.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.elements)
}

// Close stops tracking everything. Later calls are no-ops.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id := range t.elements {
		t.removeLocked(id)
	}
	t.parallax = make(map[string]*parallaxTarget)
	t.closed = true
}

func (t *Tracker) removeLocked(id string) {
	el, ok := t.elements[id]
	if !ok {
		return
	}
	for key, ch := range el.subs {
		close(ch)
		delete(el.subs, key)
	}
	delete(t.elements, id)
}

// publish replaces any unread value with v.
func publish(ch chan bool, v bool) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
