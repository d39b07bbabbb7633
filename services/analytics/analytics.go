// Package analytics forwards named events to external collectors on a
// best-effort basis. Emitting never blocks the caller and never fails: a
// collector that is not configured is a silent no-op, and delivery errors
// are only logged.
package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lead_sites_go/services/metrics"

	"go.uber.org/zap"
)

// Event names emitted by the lead pipeline
const (
	EventFieldStart    = "form_start"
	EventSubmitAttempt = "form_submit"
	EventLead          = "generate_lead"
	EventSubmitError   = "form_submit_error"
	EventConversion    = "conversion"
)

const defaultCollectTimeout = 5 * time.Second

// Params is the parameter bag attached to an event.
type Params map[string]interface{}

// Sink accepts events. Implementations must not block or panic.
type Sink interface {
	Emit(ctx context.Context, name string, params Params)
}

// Noop drops every event. It stands in for a collector that is not loaded.
type Noop struct{}

func (Noop) Emit(context.Context, string, Params) {}

// Pair holds the two independent destinations: general site analytics and
// ads conversion tracking.
type Pair struct {
	Site Sink
	Ads  Sink
}

// EmitSite sends to the site analytics collector.
func (p Pair) EmitSite(ctx context.Context, name string, params Params) {
	if p.Site != nil {
		p.Site.Emit(ctx, name, params)
	}
}

// EmitAds sends to the ads conversion collector.
func (p Pair) EmitAds(ctx context.Context, name string, params Params) {
	if p.Ads != nil {
		p.Ads.Emit(ctx, name, params)
	}
}

// Event is what a Collector receives.
type Event struct {
	Name     string
	Params   Params
	ClientID string
	At       time.Time
}

// Collector delivers one event to a remote endpoint.
type Collector interface {
	Name() string
	Collect(ctx context.Context, ev Event) error
}

type clientIDKey struct{}

// WithClientID attaches the visitor identifier collectors use to group events.
func WithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, id)
}

// ClientID returns the visitor identifier from ctx, or "" when absent.
func ClientID(ctx context.Context) string {
	if id, ok := ctx.Value(clientIDKey{}).(string); ok {
		return id
	}
	return ""
}

// Async turns a Collector into a fire-and-forget Sink.
type Async struct {
	collector Collector
	logger    *zap.Logger
	metrics   *metrics.Metrics
	timeout   time.Duration
	wg        sync.WaitGroup
}

// NewAsync wraps c. A nil collector yields Noop.
func NewAsync(c Collector, logger *zap.Logger, m *metrics.Metrics) Sink {
	if c == nil {
		return Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Async{
		collector: c,
		logger:    logger.Named("analytics").With(zap.String("sink", c.Name())),
		metrics:   m,
		timeout:   defaultCollectTimeout,
	}
}

func (a *Async) Emit(ctx context.Context, name string, params Params) {
	ev := Event{
		Name:     name,
		Params:   clone(params),
		ClientID: ClientID(ctx),
		At:       time.Now().UTC(),
	}

	// Detach from the request so the event outlives the response
	base := context.WithoutCancel(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				a.logger.Warn("collector panicked", zap.String("event", name), zap.Any("panic", r))
				a.metrics.AnalyticsEvent(a.collector.Name(), name, "panic")
			}
		}()

		cctx, cancel := context.WithTimeout(base, a.timeout)
		defer cancel()

		if err := a.collector.Collect(cctx, ev); err != nil {
			a.logger.Debug("event not delivered", zap.String("event", name), zap.Error(err))
			a.metrics.AnalyticsEvent(a.collector.Name(), name, "error")
			return
		}
		a.metrics.AnalyticsEvent(a.collector.Name(), name, "ok")
	}()
}

// Wait blocks until in-flight events are handed off. Used on shutdown.
func (a *Async) Wait() {
	a.wg.Wait()
}

func clone(p Params) Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// stringParams flattens values for collectors that only accept strings.
func stringParams(p Params) map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}
