package leads

import "sync"

// Navigator is the routing capability a form needs: the current path for
// analytics tagging, and the two post-success moves.
type Navigator interface {
	CurrentPath() string
	Navigate(route string)
	// ScrollTo scrolls to an element id, or to the top of the page for "".
	ScrollTo(elementID string)
}

// Directive is a navigation request recorded for the visitor's next response.
type Directive struct {
	Action    Action
	Route     string
	ElementID string
}

// Recorder is the Navigator used for server-held forms: it cannot move the
// browser itself, so it keeps the last request path and the pending directive
// until the HTTP layer takes it.
type Recorder struct {
	mu      sync.Mutex
	path    string
	pending *Directive
}

func (r *Recorder) CurrentPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// SetPath records the page the visitor is on.
func (r *Recorder) SetPath(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = path
}

func (r *Recorder) Navigate(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = &Directive{Action: ActionNavigate, Route: route}
}

func (r *Recorder) ScrollTo(elementID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = &Directive{Action: ActionScrollTop, ElementID: elementID}
}

// Take returns and clears the pending directive.
func (r *Recorder) Take() (Directive, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		return Directive{}, false
	}
	d := *r.pending
	r.pending = nil
	return d, true
}
