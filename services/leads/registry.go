package leads

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrUnknownForm = errors.New("unknown form")

// Instance is a visitor's form together with its navigator.
type Instance struct {
	Form *Form
	Nav  *Recorder
}

// Registry holds one form instance per visitor session and form key. Form
// state lives only in memory and is swept once it has been idle for ttl.
type Registry struct {
	catalog *Catalog
	deps    Deps
	ttl     time.Duration

	mu        sync.Mutex
	instances map[string]*Instance
}

func NewRegistry(catalog *Catalog, deps Deps, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Registry{
		catalog:   catalog,
		deps:      deps,
		ttl:       ttl,
		instances: make(map[string]*Instance),
	}
}

// Catalog returns the form definitions the registry serves.
func (r *Registry) Catalog() *Catalog {
	return r.catalog
}

// Get returns the visitor's instance of a form, creating it on first use.
func (r *Registry) Get(sessionID, key string) (*Instance, error) {
	cfg, ok := r.catalog.Form(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownForm, key)
	}

	id := sessionID + "|" + key

	r.mu.Lock()
	defer r.mu.Unlock()

	if inst, ok := r.instances[id]; ok {
		return inst, nil
	}
	nav := &Recorder{}
	inst := &Instance{Form: NewForm(cfg, r.deps, nav), Nav: nav}
	r.instances[id] = inst
	r.deps.Metrics.ActiveForms(len(r.instances))
	return inst, nil
}

// Len returns the number of live instances.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}

// Sweep drops instances idle since before now-ttl. Forms that are submitting
// or showing a notification are kept.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, inst := range r.instances {
		lastUsed, discardable := inst.Form.IdleSince()
		if discardable && now.Sub(lastUsed) > r.ttl {
			inst.Form.Close()
			delete(r.instances, id)
			removed++
		}
	}
	r.deps.Metrics.ActiveForms(len(r.instances))
	return removed
}

// Run sweeps on a ticker until ctx is done.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := r.Sweep(now); n > 0 && r.deps.Logger != nil {
				r.deps.Logger.Debug("swept idle forms", zap.Int("removed", n))
			}
		}
	}
}

// Close tears down every instance.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, inst := range r.instances {
		inst.Form.Close()
		delete(r.instances, id)
	}
}
